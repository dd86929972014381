package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/bcdb/internal/config/storage"
	"github.com/weisyn/bcdb/pkg/types"
)

// TestGetEnvironment 测试 GetEnvironment() 方法
func TestGetEnvironment(t *testing.T) {
	cases := map[string]struct {
		env  *string
		want string
	}{
		"显式配置 dev":     {types.StringPtr("dev"), "dev"},
		"显式配置 test":    {types.StringPtr("test"), "test"},
		"未配置时默认为 prod": {nil, "prod"},
		"无效值默认为 prod":  {types.StringPtr("invalid"), "prod"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			provider := NewProvider(&types.AppConfig{Environment: tc.env})
			assert.Equal(t, tc.want, provider.GetEnvironment())
		})
	}
}

func TestDefaults(t *testing.T) {
	provider := NewProvider(nil)

	assert.Equal(t, "bdb-node-1", provider.GetNode().ID)
	assert.Equal(t, 2*time.Second, provider.GetAuth().LookupTimeout)
	assert.False(t, provider.GetAuth().ExposeRejectionKind)
	assert.Equal(t, storage.BackendBadger, provider.GetStorage().Backend)
	assert.True(t, provider.GetStorage().CompressValues)
	assert.Equal(t, "admin", provider.GetBootstrap().AdminID)
	assert.Equal(t, "info", provider.GetLog().Level)
	assert.True(t, provider.GetAPI().HTTP.Enabled)
}

func TestUserOverrides(t *testing.T) {
	dataRoot := t.TempDir()
	provider := NewProvider(&types.AppConfig{
		DataDir: types.StringPtr(dataRoot),
		Node: &types.UserNodeConfig{
			ID: types.StringPtr("bdb-node-2"),
		},
		Auth: &types.UserAuthConfig{
			LookupTimeout:       types.StringPtr("250ms"),
			ExposeRejectionKind: types.BoolPtr(true),
		},
		Storage: &types.UserStorageConfig{
			Backend: types.StringPtr("memory"),
		},
		API: &types.UserAPIConfig{
			HTTPPort:     types.IntPtr(7001),
			ReadTimeout:  types.StringPtr("not-a-duration"),
			WriteTimeout: types.StringPtr("3s"),
		},
	})

	assert.Equal(t, "bdb-node-2", provider.GetNode().ID)
	assert.Equal(t, 250*time.Millisecond, provider.GetAuth().LookupTimeout)
	assert.True(t, provider.GetAuth().ExposeRejectionKind)

	st := provider.GetStorage()
	assert.Equal(t, storage.BackendMemory, st.Backend)
	assert.Equal(t, filepath.Join(dataRoot, "badger"), st.Badger.Path)

	api := provider.GetAPI()
	assert.Equal(t, 7001, api.HTTP.Port)
	assert.Equal(t, 15*time.Second, api.HTTP.ReadTimeout, "无法解析的时长保留默认值")
	assert.Equal(t, 3*time.Second, api.HTTP.WriteTimeout)
}

func TestUnknownBackendFallsBack(t *testing.T) {
	provider := NewProvider(&types.AppConfig{
		Storage: &types.UserStorageConfig{Backend: types.StringPtr("leveldb")},
	})
	assert.Equal(t, storage.BackendBadger, provider.GetStorage().Backend)
}

func TestLoadAppConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("有效配置", func(t *testing.T) {
		path := filepath.Join(dir, "node.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"node":{"id":"bdb-node-3","port":6003},"log":{"level":"debug"}}`), 0600))

		cfg, err := LoadAppConfig(path)
		require.NoError(t, err)
		require.NotNil(t, cfg.Node)
		assert.Equal(t, "bdb-node-3", *cfg.Node.ID)
		assert.Equal(t, uint32(6003), *cfg.Node.Port)
	})

	t.Run("未知字段", func(t *testing.T) {
		_, err := ParseAppConfig([]byte(`{"nodes":{}}`))
		assert.Error(t, err)
	})

	t.Run("文件不存在", func(t *testing.T) {
		_, err := LoadAppConfig(filepath.Join(dir, "missing.json"))
		assert.Error(t, err)
	})
}

func TestProvideConfigServicesValidatesNode(t *testing.T) {
	_, err := ProvideConfigServices(ConfigParams{AppOptions: staticOptions{&types.AppConfig{
		Node: &types.UserNodeConfig{ID: types.StringPtr("")},
	}}})
	assert.Error(t, err)

	out, err := ProvideConfigServices(ConfigParams{})
	require.NoError(t, err)
	assert.NotNil(t, out.Provider)
}

func TestValidateAppConfig(t *testing.T) {
	require.NoError(t, ValidateAppConfig(nil))
	require.NoError(t, ValidateAppConfig(&types.AppConfig{
		Environment: types.StringPtr("dev"),
		Storage:     &types.UserStorageConfig{Backend: types.StringPtr("memory"), MemoryShards: types.IntPtr(64)},
		Auth:        &types.UserAuthConfig{LookupTimeout: types.StringPtr("2s"), ExposeRejectionKind: types.BoolPtr(true)},
	}))

	err := ValidateAppConfig(&types.AppConfig{
		Environment: types.StringPtr("prod"),
		Storage:     &types.UserStorageConfig{Backend: types.StringPtr("redis"), MemoryShards: types.IntPtr(3)},
		API:         &types.UserAPIConfig{ReadTimeout: types.StringPtr("soon")},
		Auth:        &types.UserAuthConfig{ExposeRejectionKind: types.BoolPtr(true)},
	})
	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := make([]string, 0, len(verrs.Errors))
	for _, e := range verrs.Errors {
		fields = append(fields, e.(*ValidationError).Field)
	}
	assert.ElementsMatch(t, []string{
		"storage.redis_addr",
		"storage.memory_shards",
		"api.read_timeout",
		"auth.expose_rejection_kind",
	}, fields)

	_, err = ProvideConfigServices(ConfigParams{AppOptions: staticOptions{&types.AppConfig{Environment: types.StringPtr("staging")}}})
	assert.Error(t, err)
}

type staticOptions struct{ cfg *types.AppConfig }

func (s staticOptions) GetAppConfig() *types.AppConfig { return s.cfg }
