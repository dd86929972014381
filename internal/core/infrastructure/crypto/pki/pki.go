// Package pki 签发和校验节点、用户 X.509 证书
//
// 用于 bcdb-keygen 生成测试与部署材料，以及提交路径校验证书链。
package pki

import (
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/key"
)

const pemCertificate = "CERTIFICATE"

// 默认有效期
const (
	DefaultCAValidity   = 10 * 365 * 24 * time.Hour
	DefaultCertValidity = 2 * 365 * 24 * time.Hour
)

// ErrNoCertificate 数据中不含证书
var ErrNoCertificate = errors.New("未找到 PEM 证书")

// CA 证书颁发机构
type CA struct {
	Certificate *x509.Certificate
	Signer      crypto.Signer
}

// NewCA 生成自签名根 CA
func NewCA(commonName string, alg key.Algorithm) (*CA, error) {
	signer, err := key.Generate(alg)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber:          newSerial(),
		Subject:               pkix.Name{CommonName: commonName, Organization: []string{"bcdb"}},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(DefaultCAValidity),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, signer.Public(), signer)
	if err != nil {
		return nil, fmt.Errorf("创建 CA 证书失败: %w", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, err
	}
	return &CA{Certificate: cert, Signer: signer}, nil
}

// LoadCA 从 PEM 文件加载 CA 证书和私钥
func LoadCA(certPath, keyPath string) (*CA, error) {
	cert, err := LoadCertificate(certPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("读取 CA 私钥失败: %w", err)
	}
	signer, err := key.ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("解析 CA 私钥失败: %w", err)
	}
	return &CA{Certificate: cert, Signer: signer}, nil
}

// Issue 为公钥签发叶子证书
//
// secp256k1 公钥不能放入 X.509 证书，此类用户只登记原始公钥。
func (ca *CA) Issue(commonName string, pub crypto.PublicKey, hosts ...string) (*x509.Certificate, error) {
	if alg, err := key.AlgorithmOf(pub); err != nil || alg == key.AlgorithmSecp256k1 {
		return nil, fmt.Errorf("%w: 证书不支持 %T", key.ErrUnsupportedKey, pub)
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber: newSerial(),
		Subject:      pkix.Name{CommonName: commonName, Organization: []string{"bcdb"}},
		NotBefore:    now.Add(-time.Minute),
		NotAfter:     now.Add(DefaultCertValidity),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth, x509.ExtKeyUsageServerAuth},
		DNSNames:     hosts,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, ca.Certificate, pub, ca.Signer)
	if err != nil {
		return nil, fmt.Errorf("签发证书失败(%s): %w", commonName, err)
	}
	return x509.ParseCertificate(der)
}

// EncodeCertificatePEM DER 转 PEM
func EncodeCertificatePEM(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: pemCertificate, Bytes: der})
}

// ParseCertificatePEM 解析第一个 PEM 证书
func ParseCertificatePEM(data []byte) (*x509.Certificate, error) {
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return nil, ErrNoCertificate
		}
		if block.Type == pemCertificate {
			return x509.ParseCertificate(block.Bytes)
		}
	}
}

// LoadCertificate 从文件加载 PEM 证书
func LoadCertificate(path string) (*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取证书失败: %w", err)
	}
	cert, err := ParseCertificatePEM(data)
	if err != nil {
		return nil, fmt.Errorf("解析证书失败(%s): %w", path, err)
	}
	return cert, nil
}

// VerifyChain 校验证书能链接到给定根证书
//
// 不检查用途扩展，客户端和节点证书共用同一套根。
func VerifyChain(cert *x509.Certificate, roots, intermediates [][]byte) error {
	if len(roots) == 0 {
		return errors.New("未配置根证书")
	}
	rootPool := x509.NewCertPool()
	for i, der := range roots {
		c, err := x509.ParseCertificate(der)
		if err != nil {
			return fmt.Errorf("根证书 %d 无效: %w", i, err)
		}
		rootPool.AddCert(c)
	}
	interPool := x509.NewCertPool()
	for i, der := range intermediates {
		c, err := x509.ParseCertificate(der)
		if err != nil {
			return fmt.Errorf("中间证书 %d 无效: %w", i, err)
		}
		interPool.AddCert(c)
	}

	_, err := cert.Verify(x509.VerifyOptions{
		Roots:         rootPool,
		Intermediates: interPool,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	})
	return err
}

func newSerial() *big.Int {
	limit := new(big.Int).Lsh(big.NewInt(1), 127)
	serial, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return big.NewInt(time.Now().UnixNano())
	}
	return serial
}
