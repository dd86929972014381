package pki

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/key"
)

func TestIssueAndVerifyChain(t *testing.T) {
	ca, err := NewCA("bcdb-ca", key.AlgorithmECDSAP256)
	require.NoError(t, err)
	assert.True(t, ca.Certificate.IsCA)

	for _, alg := range []key.Algorithm{key.AlgorithmECDSAP256, key.AlgorithmEd25519} {
		signer, err := key.Generate(alg)
		require.NoError(t, err)

		cert, err := ca.Issue("alice", signer.Public())
		require.NoError(t, err)
		assert.Equal(t, "alice", cert.Subject.CommonName)
		assert.NoError(t, VerifyChain(cert, [][]byte{ca.Certificate.Raw}, nil))
	}
}

func TestVerifyChain_UnknownRoot(t *testing.T) {
	ca, err := NewCA("ca-1", key.AlgorithmECDSAP256)
	require.NoError(t, err)
	other, err := NewCA("ca-2", key.AlgorithmECDSAP256)
	require.NoError(t, err)

	signer, err := key.Generate(key.AlgorithmECDSAP256)
	require.NoError(t, err)
	cert, err := ca.Issue("bob", signer.Public())
	require.NoError(t, err)

	assert.Error(t, VerifyChain(cert, [][]byte{other.Certificate.Raw}, nil))
	assert.Error(t, VerifyChain(cert, nil, nil))
}

func TestIssue_Secp256k1Rejected(t *testing.T) {
	ca, err := NewCA("ca", key.AlgorithmECDSAP256)
	require.NoError(t, err)
	signer, err := key.Generate(key.AlgorithmSecp256k1)
	require.NoError(t, err)

	_, err = ca.Issue("carol", signer.Public())
	assert.ErrorIs(t, err, key.ErrUnsupportedKey)
}

func TestLoadCA(t *testing.T) {
	ca, err := NewCA("ca", key.AlgorithmEd25519)
	require.NoError(t, err)

	dir := t.TempDir()
	certPath := filepath.Join(dir, "ca.pem")
	keyPath := filepath.Join(dir, "ca.key")
	require.NoError(t, os.WriteFile(certPath, EncodeCertificatePEM(ca.Certificate.Raw), 0o600))
	keyPEM, err := key.MarshalPrivateKeyPEM(ca.Signer)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(keyPath, keyPEM, 0o600))

	loaded, err := LoadCA(certPath, keyPath)
	require.NoError(t, err)
	assert.Equal(t, ca.Certificate.Raw, loaded.Certificate.Raw)

	_, err = LoadCertificate(filepath.Join(dir, "missing.pem"))
	assert.Error(t, err)
	_, err = ParseCertificatePEM(keyPEM)
	assert.ErrorIs(t, err, ErrNoCertificate)
}

func TestLayout_WriteMaterials(t *testing.T) {
	l := Layout{Root: t.TempDir()}
	ca, err := l.WriteCA(key.AlgorithmECDSAP256)
	require.NoError(t, err)

	_, err = l.WriteNode(ca, "bdb-node-1", key.AlgorithmEd25519, "localhost")
	require.NoError(t, err)
	_, err = l.WriteUser(ca, "admin", key.AlgorithmECDSAP256)
	require.NoError(t, err)
	_, err = l.WriteUser(ca, "bob", key.AlgorithmSecp256k1)
	require.NoError(t, err)

	loaded, err := l.LoadCA()
	require.NoError(t, err)
	assert.True(t, loaded.Certificate.Equal(ca.Certificate))

	nodeCert, err := LoadCertificate(l.NodeCert("bdb-node-1"))
	require.NoError(t, err)
	assert.NoError(t, VerifyChain(nodeCert, [][]byte{ca.Certificate.Raw}, nil))

	info, err := os.Stat(l.UserKey("admin"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// secp256k1 用户没有证书
	_, err = os.Stat(l.UserCert("bob"))
	assert.True(t, os.IsNotExist(err))
	pub, err := os.ReadFile(l.UserPublicKey("bob"))
	require.NoError(t, err)
	_, err = key.ParsePublicKeyPEM(pub)
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(l.Root, "users", "bob.pub"), l.UserPublicKey("bob"))
}
