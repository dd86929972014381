package identity_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/bcdb/internal/core/identity"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/key"
	logimpl "github.com/weisyn/bcdb/internal/core/infrastructure/log"
	"github.com/weisyn/bcdb/internal/core/persistence/state"
	"github.com/weisyn/bcdb/internal/core/persistence/testutil"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/bcdb/pkg/types"
)

func TestResolve(t *testing.T) {
	c := testutil.NewCluster(t)
	c.AddUser(t, "alice", key.AlgorithmEd25519, types.CapabilityReadConfig)
	c.AddUser(t, "bob", key.AlgorithmSecp256k1)
	reg := identity.New(c.Store, c.Codec, logimpl.NewNop())
	ctx := context.Background()

	admin, err := reg.Resolve(ctx, testutil.AdminID)
	require.NoError(t, err)
	assert.Equal(t, testutil.AdminID, admin.UserID)
	assert.True(t, admin.HasCapability(types.CapabilityReadConfig))
	require.NotNil(t, admin.Certificate)

	alice, err := reg.Resolve(ctx, "alice")
	require.NoError(t, err)
	assert.IsType(t, ed25519.PublicKey{}, alice.PublicKey)
	assert.True(t, alice.HasCapability(types.CapabilityReadConfig))
	assert.False(t, alice.HasCapability(types.CapabilityAdmin))

	bob, err := reg.Resolve(ctx, "bob")
	require.NoError(t, err)
	assert.IsType(t, &btcec.PublicKey{}, bob.PublicKey)
	assert.Nil(t, bob.Certificate)
	assert.False(t, bob.HasCapability(types.CapabilityReadConfig))

	_, err = reg.Resolve(ctx, "ghost")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

// TestResolve_ReadThrough 提交后的变更立即可见
func TestResolve_ReadThrough(t *testing.T) {
	c := testutil.NewCluster(t, "bdb-node-1")
	reg := identity.New(c.Store, c.Codec, logimpl.NewNop())
	ctx := context.Background()

	_, err := reg.Resolve(ctx, "carol")
	assert.ErrorIs(t, err, types.ErrNotFound)

	c.AddUser(t, "carol", key.AlgorithmECDSAP256)
	_, err = reg.Resolve(ctx, "carol")
	require.NoError(t, err)

	_, err = c.Writer.CommitUsers(ctx, nil, []string{"carol"})
	require.NoError(t, err)
	_, err = reg.Resolve(ctx, "carol")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

// TestResolve_CARotation 根证书轮换后，旧 CA 签发的用户证书不再被认可
func TestResolve_CARotation(t *testing.T) {
	c := testutil.NewCluster(t, "bdb-node-1")
	c.AddUser(t, "alice", key.AlgorithmEd25519, types.CapabilityReadConfig)
	c.AddUser(t, "bob", key.AlgorithmSecp256k1)
	reg := identity.New(c.Store, c.Codec, logimpl.NewNop())
	ctx := context.Background()

	_, err := reg.Resolve(ctx, "alice")
	require.NoError(t, err)

	c.RotateCA(t)

	_, err = reg.Resolve(ctx, "alice")
	assert.ErrorIs(t, err, types.ErrUnknownIdentity)
	assert.False(t, types.KindOf(err).Retryable())

	admin, err := reg.Resolve(ctx, testutil.AdminID)
	require.NoError(t, err)
	assert.True(t, c.Admin.Certificate.Equal(admin.Certificate))

	// 原始公钥用户不依赖证书链
	_, err = reg.Resolve(ctx, "bob")
	assert.NoError(t, err)
}

// TestResolve_ExpiredCertificate 过期证书在解析时被拒绝
func TestResolve_ExpiredCertificate(t *testing.T) {
	c := testutil.NewCluster(t, "bdb-node-1")
	reg := identity.New(c.Store, c.Codec, logimpl.NewNop())
	ctx := context.Background()

	signer, err := key.Generate(key.AlgorithmECDSAP256)
	require.NoError(t, err)
	now := time.Now()
	der, err := x509.CreateCertificate(rand.Reader, &x509.Certificate{
		SerialNumber: big.NewInt(42),
		Subject:      pkix.Name{CommonName: "dave"},
		NotBefore:    now.Add(-48 * time.Hour),
		NotAfter:     now.Add(-time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}, c.CA.Certificate, signer.Public(), c.CA.Signer)
	require.NoError(t, err)

	data, err := c.Codec.Encode(&types.UserRecord{
		ID:           "dave",
		Certificate:  der,
		Capabilities: []types.Capability{types.CapabilityReadConfig},
	})
	require.NoError(t, err)
	require.NoError(t, c.Store.Set(ctx, state.UserKey("dave"), data))

	_, err = reg.Resolve(ctx, "dave")
	assert.ErrorIs(t, err, types.ErrUnknownIdentity)
	assert.Contains(t, err.Error(), "expired")
}

func TestResolveNode(t *testing.T) {
	c := testutil.NewCluster(t)
	reg := identity.New(c.Store, c.Codec, logimpl.NewNop())
	ctx := context.Background()

	node, err := reg.ResolveNode(ctx, "bdb-node-2")
	require.NoError(t, err)
	assert.Equal(t, "bdb-node-2", node.Config.ID)
	require.NotNil(t, node.Member)
	assert.Equal(t, uint64(2), node.Member.RaftID)
	want := c.Node("bdb-node-2").Certificate.PublicKey.(*ecdsa.PublicKey)
	assert.True(t, want.Equal(node.PublicKey))

	_, err = reg.ResolveNode(ctx, "bdb-node-9")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestResolveNode_NoConfig(t *testing.T) {
	reg := identity.New(testutil.NewStore(t), state.NewCodec(false), logimpl.NewNop())
	_, err := reg.ResolveNode(context.Background(), "bdb-node-1")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

// slowStore 读取阻塞直到 release 关闭
type slowStore struct {
	storage.Store
	release chan struct{}
}

func (s *slowStore) Get(ctx context.Context, k []byte) ([]byte, error) {
	<-s.release
	return s.Store.Get(ctx, k)
}

type failingStore struct {
	storage.Store
}

func (failingStore) Get(context.Context, []byte) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func TestResolve_Timeout(t *testing.T) {
	c := testutil.NewCluster(t, "bdb-node-1")
	slow := &slowStore{Store: c.Store, release: make(chan struct{})}
	defer close(slow.release)
	reg := identity.New(slow, c.Codec, logimpl.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := reg.Resolve(ctx, testutil.AdminID)
	assert.ErrorIs(t, err, types.ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	ctx2, cancel2 := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel2()
	_, err = reg.ResolveNode(ctx2, "bdb-node-1")
	assert.ErrorIs(t, err, types.ErrUnavailable)
}

func TestResolve_Canceled(t *testing.T) {
	c := testutil.NewCluster(t, "bdb-node-1")
	reg := identity.New(c.Store, c.Codec, logimpl.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := reg.Resolve(ctx, testutil.AdminID)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, types.ErrorKind(""), types.KindOf(err))
}

func TestResolve_StoreFailure(t *testing.T) {
	c := testutil.NewCluster(t, "bdb-node-1")
	reg := identity.New(failingStore{c.Store}, c.Codec, logimpl.NewNop())

	_, err := reg.Resolve(context.Background(), testutil.AdminID)
	assert.ErrorIs(t, err, types.ErrUnavailable)
	assert.False(t, errors.Is(err, types.ErrNotFound))
}

func TestResolve_CorruptRecord(t *testing.T) {
	c := testutil.NewCluster(t, "bdb-node-1")
	require.NoError(t, c.Store.Set(context.Background(), state.UserKey("mallory"), []byte{0x01, '{'}))
	reg := identity.New(c.Store, c.Codec, logimpl.NewNop())

	_, err := reg.Resolve(context.Background(), "mallory")
	assert.ErrorIs(t, err, types.ErrUnavailable)
}
