// Package response 节点对响应签名，以及客户端侧的验签
package response

import (
	"crypto"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/key"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/pki"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/signature"
	"github.com/weisyn/bcdb/pkg/types"
)

// 错误定义
var (
	ErrKeyMismatch     = errors.New("节点私钥与证书不匹配")
	ErrBadSignature    = errors.New("响应签名无效")
	ErrNodeMismatch    = errors.New("响应节点与期望不符")
	ErrMissingResponse = errors.New("响应为空")
)

// Signer 以本节点身份签名响应
type Signer struct {
	nodeID      string
	signer      crypto.Signer
	certificate *x509.Certificate
}

// NewSigner 创建响应签名器，私钥必须与证书公钥一致
func NewSigner(nodeID string, signer crypto.Signer, cert *x509.Certificate) (*Signer, error) {
	if nodeID == "" {
		return nil, errors.New("节点 ID 不能为空")
	}
	pub, ok := signer.Public().(interface{ Equal(crypto.PublicKey) bool })
	if !ok || !pub.Equal(cert.PublicKey) {
		return nil, ErrKeyMismatch
	}
	return &Signer{nodeID: nodeID, signer: signer, certificate: cert}, nil
}

// Load 从 PEM 文件加载节点私钥和证书
func Load(nodeID, certPath, keyPath string) (*Signer, error) {
	cert, err := pki.LoadCertificate(certPath)
	if err != nil {
		return nil, fmt.Errorf("加载节点证书失败: %w", err)
	}
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("读取节点私钥失败: %w", err)
	}
	signer, err := key.ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("解析节点私钥失败: %w", err)
	}
	return NewSigner(nodeID, signer, cert)
}

// NodeID 本节点 ID
func (s *Signer) NodeID() string {
	return s.nodeID
}

// Certificate 本节点证书
func (s *Signer) Certificate() *x509.Certificate {
	return s.certificate
}

// Header 本节点的响应头
func (s *Signer) Header() *types.ResponseHeader {
	return &types.ResponseHeader{NodeID: s.nodeID}
}

// Sign 序列化响应并对序列化后的字节签名
func (s *Signer) Sign(payload interface{}) (*types.SignedResponse, error) {
	if payload == nil {
		return nil, ErrMissingResponse
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("序列化响应失败: %w", err)
	}
	sig, err := signature.Sign(s.signer, raw)
	if err != nil {
		return nil, fmt.Errorf("签名响应失败: %w", err)
	}
	return &types.SignedResponse{Response: raw, Signature: sig}, nil
}

// Verify 用期望节点的公钥校验响应签名，并确认 header.node_id 为该节点
//
// 校验针对收到的原始字节，不重新序列化。
func Verify(signed *types.SignedResponse, expectedNodeID string, pub crypto.PublicKey) error {
	if signed == nil || len(signed.Response) == 0 {
		return ErrMissingResponse
	}
	if err := signature.Verify(pub, signed.Response, signed.Signature); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	var envelope struct {
		Header *types.ResponseHeader `json:"header"`
	}
	if err := json.Unmarshal(signed.Response, &envelope); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if envelope.Header == nil || envelope.Header.NodeID != expectedNodeID {
		return ErrNodeMismatch
	}
	return nil
}

// Decode 校验通过后解码响应体
func Decode(signed *types.SignedResponse, expectedNodeID string, pub crypto.PublicKey, out interface{}) error {
	if err := Verify(signed, expectedNodeID, pub); err != nil {
		return err
	}
	return json.Unmarshal(signed.Response, out)
}
