package pki

import (
	"crypto"
	"fmt"
	"os"
	"path/filepath"

	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/key"
)

// Layout 证书材料目录布局
//
//	<root>/ca/ca.pem, ca.key
//	<root>/node/<id>.pem, <id>.key
//	<root>/users/<id>.pem, <id>.key   secp256k1 用户为 <id>.pub
type Layout struct {
	Root string
}

// CACert CA 证书路径
func (l Layout) CACert() string { return filepath.Join(l.Root, "ca", "ca.pem") }

// CAKey CA 私钥路径
func (l Layout) CAKey() string { return filepath.Join(l.Root, "ca", "ca.key") }

// NodeCert 节点证书路径
func (l Layout) NodeCert(id string) string { return filepath.Join(l.Root, "node", id+".pem") }

// NodeKey 节点私钥路径
func (l Layout) NodeKey(id string) string { return filepath.Join(l.Root, "node", id+".key") }

// UserCert 用户证书路径
func (l Layout) UserCert(id string) string { return filepath.Join(l.Root, "users", id+".pem") }

// UserKey 用户私钥路径
func (l Layout) UserKey(id string) string { return filepath.Join(l.Root, "users", id+".key") }

// UserPublicKey secp256k1 用户公钥路径
func (l Layout) UserPublicKey(id string) string { return filepath.Join(l.Root, "users", id+".pub") }

// WriteCA 生成根 CA 并写入目录
func (l Layout) WriteCA(alg key.Algorithm) (*CA, error) {
	ca, err := NewCA("bcdb-root-ca", alg)
	if err != nil {
		return nil, err
	}
	if err := writeKeyPair(l.CACert(), l.CAKey(), ca.Certificate.Raw, ca.Signer); err != nil {
		return nil, err
	}
	return ca, nil
}

// LoadCA 从目录加载 CA
func (l Layout) LoadCA() (*CA, error) {
	return LoadCA(l.CACert(), l.CAKey())
}

// WriteNode 为节点生成私钥并签发证书
func (l Layout) WriteNode(ca *CA, id string, alg key.Algorithm, hosts ...string) (crypto.Signer, error) {
	signer, err := key.Generate(alg)
	if err != nil {
		return nil, err
	}
	cert, err := ca.Issue(id, signer.Public(), hosts...)
	if err != nil {
		return nil, err
	}
	return signer, writeKeyPair(l.NodeCert(id), l.NodeKey(id), cert.Raw, signer)
}

// WriteUser 为用户生成私钥；secp256k1 用户只写公钥，其余签发证书
func (l Layout) WriteUser(ca *CA, id string, alg key.Algorithm) (crypto.Signer, error) {
	signer, err := key.Generate(alg)
	if err != nil {
		return nil, err
	}
	if alg == key.AlgorithmSecp256k1 {
		pub, err := key.MarshalPublicKeyPEM(signer.Public())
		if err != nil {
			return nil, err
		}
		if err := writeFile(l.UserPublicKey(id), pub, 0o644); err != nil {
			return nil, err
		}
		return signer, writePrivateKey(l.UserKey(id), signer)
	}
	cert, err := ca.Issue(id, signer.Public())
	if err != nil {
		return nil, err
	}
	return signer, writeKeyPair(l.UserCert(id), l.UserKey(id), cert.Raw, signer)
}

func writeKeyPair(certPath, keyPath string, der []byte, signer crypto.Signer) error {
	if err := writeFile(certPath, EncodeCertificatePEM(der), 0o644); err != nil {
		return err
	}
	return writePrivateKey(keyPath, signer)
}

func writePrivateKey(path string, signer crypto.Signer) error {
	data, err := key.MarshalPrivateKeyPEM(signer)
	if err != nil {
		return err
	}
	return writeFile(path, data, 0o600)
}

func writeFile(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	return nil
}
