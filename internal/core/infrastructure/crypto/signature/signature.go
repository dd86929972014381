// Package signature 对消息签名和验签
//
// ECDSA 与 secp256k1 签名为消息 SHA-256 摘要上的 ASN.1 DER；Ed25519 直接签原始消息。
// 验签只调用库提供的原语，不比较任何派生值。
package signature

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// 错误定义
var (
	ErrInvalidSignature = errors.New("签名无效")
	ErrUnsupportedKey   = errors.New("不支持的公钥类型")
)

// Sign 使用私钥对消息签名
func Sign(signer crypto.Signer, message []byte) ([]byte, error) {
	if _, ok := signer.Public().(ed25519.PublicKey); ok {
		return signer.Sign(rand.Reader, message, crypto.Hash(0))
	}
	digest := sha256.Sum256(message)
	sig, err := signer.Sign(rand.Reader, digest[:], crypto.SHA256)
	if err != nil {
		return nil, fmt.Errorf("签名失败: %w", err)
	}
	return sig, nil
}

// Verify 验证签名，失败时返回 ErrInvalidSignature 或 ErrUnsupportedKey
func Verify(pub crypto.PublicKey, message, sig []byte) error {
	switch k := pub.(type) {
	case *ecdsa.PublicKey:
		digest := sha256.Sum256(message)
		if !ecdsa.VerifyASN1(k, digest[:], sig) {
			return ErrInvalidSignature
		}
		return nil

	case ed25519.PublicKey:
		if len(k) != ed25519.PublicKeySize || !ed25519.Verify(k, message, sig) {
			return ErrInvalidSignature
		}
		return nil

	case *btcec.PublicKey:
		parsed, err := btcecdsa.ParseDERSignature(sig)
		if err != nil {
			return ErrInvalidSignature
		}
		digest := sha256.Sum256(message)
		if !parsed.Verify(digest[:], k) {
			return ErrInvalidSignature
		}
		return nil
	}
	return fmt.Errorf("%w: %T", ErrUnsupportedKey, pub)
}
