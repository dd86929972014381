package transport

import (
	"fmt"
	"os"

	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/key"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/pki"
)

// LoadIdentity 从 PEM 或 OpenSSH 私钥文件加载用户身份，passphrase 可以为空
func LoadIdentity(userID, keyPath string, passphrase []byte) (Identity, error) {
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return Identity{}, fmt.Errorf("读取私钥失败: %w", err)
	}
	signer, err := key.ParsePrivateKeyWithPassphrase(data, passphrase)
	if err != nil {
		return Identity{}, fmt.Errorf("解析私钥失败: %w", err)
	}
	return Identity{UserID: userID, Signer: signer}, nil
}

// LoadEndpoint 从节点证书文件构造端点
func LoadEndpoint(nodeID, url, certPath string) (Endpoint, error) {
	cert, err := pki.LoadCertificate(certPath)
	if err != nil {
		return Endpoint{}, fmt.Errorf("加载节点证书失败: %w", err)
	}
	return Endpoint{NodeID: nodeID, URL: url, Certificate: cert}, nil
}
