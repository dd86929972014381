package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/key"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/pki"
)

func TestProfileManager_DefaultsAndSwitch(t *testing.T) {
	dir := t.TempDir()
	pm, err := NewProfileManager(dir)
	require.NoError(t, err)

	local, err := pm.GetCurrentProfile()
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile, local.Name)
	assert.Equal(t, "admin", local.UserID)
	assert.Equal(t, Duration(30*time.Second), local.Timeout)

	require.NoError(t, pm.SaveProfile(&Profile{
		Name:   "staging",
		UserID: "alice",
		Endpoints: []EndpointConfig{
			{NodeID: "bdb-node-2", URL: "http://10.0.0.2:6001", Priority: 2},
		},
	}))
	require.NoError(t, pm.SwitchProfile("staging"))
	assert.Error(t, pm.DeleteProfile("staging"))
	assert.Error(t, pm.SwitchProfile("missing"))

	// 重新加载后保持当前 profile
	reloaded, err := NewProfileManager(dir)
	require.NoError(t, err)
	assert.Equal(t, "staging", reloaded.CurrentName())
	assert.Equal(t, []string{"local", "staging"}, reloaded.ListProfiles())

	require.NoError(t, reloaded.DeleteProfile("local"))
	_, err = os.Stat(filepath.Join(dir, "profiles", "local.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestProfileManager_SkipsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "profiles"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profiles", "bad.json"), []byte("{"), 0o600))

	pm, err := NewProfileManager(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"local"}, pm.ListProfiles())
}

func TestSaveProfile_InvalidName(t *testing.T) {
	pm, err := NewProfileManager(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, pm.SaveProfile(&Profile{Name: "../x"}))
	assert.Error(t, pm.SaveProfile(&Profile{}))
}

func TestProfile_ClientConfig(t *testing.T) {
	l := pki.Layout{Root: t.TempDir()}
	ca, err := l.WriteCA(key.AlgorithmECDSAP256)
	require.NoError(t, err)
	_, err = l.WriteNode(ca, "bdb-node-1", key.AlgorithmECDSAP256)
	require.NoError(t, err)
	_, err = l.WriteUser(ca, "alice", key.AlgorithmEd25519)
	require.NoError(t, err)

	p := &Profile{
		Name:    "test",
		UserID:  "alice",
		KeyPath: l.UserKey("alice"),
		Endpoints: []EndpointConfig{
			{NodeID: "bdb-node-1", URL: "http://127.0.0.1:6001", CertificatePath: l.NodeCert("bdb-node-1"), Priority: 1},
		},
		Timeout:      Duration(5 * time.Second),
		RetryBackoff: Duration(time.Millisecond),
	}
	cc, err := p.ClientConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", cc.Identity.UserID)
	require.Len(t, cc.Endpoints, 1)
	assert.Equal(t, 1, cc.Endpoints[0].Priority)
	assert.NotNil(t, cc.Endpoints[0].Certificate)
	assert.Equal(t, 5*time.Second, cc.Timeout)

	p.Endpoints = nil
	_, err = p.ClientConfig(nil)
	assert.Error(t, err)
}
