// Package key 生成、编码和解析用户与节点的私钥、公钥
//
// 支持 ECDSA P-256/P-384、Ed25519 和 secp256k1。secp256k1 私钥通过
// Secp256k1PrivateKey 适配为 crypto.Signer，签名为 SHA-256 摘要上的 DER。
package key

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"golang.org/x/crypto/ssh"
)

// Algorithm 密钥算法
type Algorithm string

const (
	AlgorithmECDSAP256 Algorithm = "ecdsa-p256"
	AlgorithmECDSAP384 Algorithm = "ecdsa-p384"
	AlgorithmEd25519   Algorithm = "ed25519"
	AlgorithmSecp256k1 Algorithm = "secp256k1"
)

// PEM 块类型
const (
	pemPKCS8            = "PRIVATE KEY"
	pemSEC1             = "EC PRIVATE KEY"
	pemOpenSSH          = "OPENSSH PRIVATE KEY"
	pemSecp256k1Private = "SECP256K1 PRIVATE KEY"
	pemSecp256k1Public  = "SECP256K1 PUBLIC KEY"
	pemPublicKey        = "PUBLIC KEY"
)

// 错误定义
var (
	ErrUnsupportedAlgorithm = errors.New("不支持的密钥算法")
	ErrUnsupportedKey       = errors.New("不支持的密钥类型")
	ErrNoPEMBlock           = errors.New("未找到 PEM 块")
	ErrPassphraseRequired   = errors.New("私钥已加密，需要口令")
)

// Secp256k1PrivateKey 把 btcec 私钥适配为 crypto.Signer
type Secp256k1PrivateKey struct {
	*btcec.PrivateKey
}

// Public 返回 *btcec.PublicKey
func (k Secp256k1PrivateKey) Public() crypto.PublicKey {
	return k.PubKey()
}

// Sign 对 SHA-256 摘要签名，返回 DER 编码（低 S 值）
func (k Secp256k1PrivateKey) Sign(_ io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	if opts != nil && opts.HashFunc() != crypto.SHA256 {
		return nil, fmt.Errorf("secp256k1 只支持 SHA-256 摘要")
	}
	if len(digest) != 32 {
		return nil, fmt.Errorf("摘要长度错误: %d", len(digest))
	}
	return btcecdsa.Sign(k.PrivateKey, digest).Serialize(), nil
}

// Generate 生成指定算法的私钥
func Generate(alg Algorithm) (crypto.Signer, error) {
	switch alg {
	case AlgorithmECDSAP256:
		return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	case AlgorithmECDSAP384:
		return ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	case AlgorithmEd25519:
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, err
		}
		return priv, nil
	case AlgorithmSecp256k1:
		priv, err := btcec.NewPrivateKey()
		if err != nil {
			return nil, err
		}
		return Secp256k1PrivateKey{priv}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
}

// AlgorithmOf 识别公钥算法
func AlgorithmOf(pub crypto.PublicKey) (Algorithm, error) {
	switch k := pub.(type) {
	case *ecdsa.PublicKey:
		switch k.Curve {
		case elliptic.P256():
			return AlgorithmECDSAP256, nil
		case elliptic.P384():
			return AlgorithmECDSAP384, nil
		}
	case ed25519.PublicKey:
		return AlgorithmEd25519, nil
	case *btcec.PublicKey:
		return AlgorithmSecp256k1, nil
	}
	return "", fmt.Errorf("%w: %T", ErrUnsupportedKey, pub)
}

// MarshalPrivateKeyPEM 编码私钥
//
// ECDSA 和 Ed25519 使用 PKCS#8；secp256k1 使用原始 32 字节标量。
func MarshalPrivateKeyPEM(signer crypto.Signer) ([]byte, error) {
	switch k := signer.(type) {
	case Secp256k1PrivateKey:
		return pem.EncodeToMemory(&pem.Block{Type: pemSecp256k1Private, Bytes: k.Serialize()}), nil
	case *ecdsa.PrivateKey, ed25519.PrivateKey:
		der, err := x509.MarshalPKCS8PrivateKey(k)
		if err != nil {
			return nil, err
		}
		return pem.EncodeToMemory(&pem.Block{Type: pemPKCS8, Bytes: der}), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedKey, signer)
}

// MarshalPublicKeyPEM 编码公钥
//
// secp256k1 使用压缩格式，其余使用 PKIX。
func MarshalPublicKeyPEM(pub crypto.PublicKey) ([]byte, error) {
	if k, ok := pub.(*btcec.PublicKey); ok {
		return pem.EncodeToMemory(&pem.Block{Type: pemSecp256k1Public, Bytes: k.SerializeCompressed()}), nil
	}
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedKey, err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemPublicKey, Bytes: der}), nil
}

// ParsePrivateKey 解析 PEM 私钥
//
// 支持 PKCS#8、SEC1、OpenSSH 和 secp256k1 原始格式。加密的 OpenSSH 私钥
// 返回包装了 ErrPassphraseRequired 的错误。
func ParsePrivateKey(data []byte) (crypto.Signer, error) {
	return parsePrivateKey(data, nil)
}

// ParsePrivateKeyWithPassphrase 解析加密的 OpenSSH 私钥
func ParsePrivateKeyWithPassphrase(data, passphrase []byte) (crypto.Signer, error) {
	return parsePrivateKey(data, passphrase)
}

func parsePrivateKey(data, passphrase []byte) (crypto.Signer, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrNoPEMBlock
	}

	switch block.Type {
	case pemSecp256k1Private:
		if len(block.Bytes) != btcec.PrivKeyBytesLen {
			return nil, fmt.Errorf("secp256k1 私钥长度错误: %d", len(block.Bytes))
		}
		priv, _ := btcec.PrivKeyFromBytes(block.Bytes)
		return Secp256k1PrivateKey{priv}, nil

	case pemSEC1:
		return x509.ParseECPrivateKey(block.Bytes)

	case pemPKCS8:
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		return asSigner(parsed)

	case pemOpenSSH:
		var (
			parsed interface{}
			err    error
		)
		if passphrase != nil {
			parsed, err = ssh.ParseRawPrivateKeyWithPassphrase(data, passphrase)
		} else {
			parsed, err = ssh.ParseRawPrivateKey(data)
		}
		if err != nil {
			var missing *ssh.PassphraseMissingError
			if errors.As(err, &missing) {
				return nil, fmt.Errorf("%w: %v", ErrPassphraseRequired, err)
			}
			return nil, err
		}
		return asSigner(parsed)
	}
	return nil, fmt.Errorf("%w: PEM 类型 %q", ErrUnsupportedKey, block.Type)
}

func asSigner(parsed interface{}) (crypto.Signer, error) {
	switch k := parsed.(type) {
	case *ecdsa.PrivateKey:
		if _, err := AlgorithmOf(&k.PublicKey); err != nil {
			return nil, err
		}
		return k, nil
	case ed25519.PrivateKey:
		return k, nil
	case *ed25519.PrivateKey:
		return *k, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedKey, parsed)
}

// ParsePublicKeyPEM 解析 PEM 公钥
func ParsePublicKeyPEM(data []byte) (crypto.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrNoPEMBlock
	}
	switch block.Type {
	case pemSecp256k1Public:
		return ParseSecp256k1PublicKey(block.Bytes)
	case pemPublicKey:
		pub, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		if _, err := AlgorithmOf(pub); err != nil {
			return nil, err
		}
		return pub, nil
	}
	return nil, fmt.Errorf("%w: PEM 类型 %q", ErrUnsupportedKey, block.Type)
}

// ParseSecp256k1PublicKey 解析压缩或非压缩格式的 secp256k1 公钥
func ParseSecp256k1PublicKey(raw []byte) (*btcec.PublicKey, error) {
	pub, err := btcec.ParsePubKey(raw)
	if err != nil {
		return nil, fmt.Errorf("无效的 secp256k1 公钥: %w", err)
	}
	return pub, nil
}

// IsPEMPrivateKey 判断数据是否像 PEM 私钥（用于命令行提示）
func IsPEMPrivateKey(data []byte) bool {
	block, _ := pem.Decode(data)
	if block == nil {
		return false
	}
	switch block.Type {
	case pemPKCS8, pemSEC1, pemOpenSSH, pemSecp256k1Private:
		return true
	}
	return false
}
