// Package config 管理 bcdb-cli 的连接 Profile
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/weisyn/bcdb/client/core/transport"
)

// Profile 一组节点端点加上调用者身份
type Profile struct {
	Name string `json:"name"`

	// 调用者身份
	UserID  string `json:"user_id"`
	KeyPath string `json:"key_path"` // PEM 私钥

	// 节点端点(按优先级排序)
	Endpoints []EndpointConfig `json:"endpoints"`

	// 网络配置
	Timeout       Duration `json:"timeout"`
	RetryAttempts int      `json:"retry_attempts"`
	RetryBackoff  Duration `json:"retry_backoff"`

	// HealthCheckInterval 为 0 时不做后台探测
	HealthCheckInterval Duration `json:"health_check_interval"`
}

// EndpointConfig 端点配置
type EndpointConfig struct {
	NodeID          string `json:"node_id"`
	URL             string `json:"url"`
	CertificatePath string `json:"certificate_path"` // 用于验证响应签名
	Priority        int    `json:"priority"`         // 数字越小越优先
}

// Duration 时间duration(支持JSON序列化)
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}

	*d = Duration(dur)
	return nil
}

// ClientConfig 读取私钥和节点证书，转换为故障转移客户端配置
func (p *Profile) ClientConfig(passphrase []byte) (transport.ClientConfig, error) {
	if len(p.Endpoints) == 0 {
		return transport.ClientConfig{}, fmt.Errorf("profile %s 没有配置端点", p.Name)
	}
	identity, err := transport.LoadIdentity(p.UserID, p.KeyPath, passphrase)
	if err != nil {
		return transport.ClientConfig{}, err
	}

	eps := make([]transport.Endpoint, 0, len(p.Endpoints))
	for _, e := range p.Endpoints {
		ep, err := transport.LoadEndpoint(e.NodeID, e.URL, e.CertificatePath)
		if err != nil {
			return transport.ClientConfig{}, err
		}
		ep.Priority = e.Priority
		eps = append(eps, ep)
	}

	return transport.ClientConfig{
		Endpoints:           eps,
		Identity:            identity,
		Timeout:             time.Duration(p.Timeout),
		RetryAttempts:       p.RetryAttempts,
		RetryBackoff:        time.Duration(p.RetryBackoff),
		HealthCheckInterval: time.Duration(p.HealthCheckInterval),
	}, nil
}

// ProfileManager Profile管理器
type ProfileManager struct {
	configDir      string
	currentProfile string
	profiles       map[string]*Profile
}

// DefaultProfile 首次使用时创建的本地单节点 Profile
const DefaultProfile = "local"

// NewProfileManager 创建Profile管理器，configDir 为空时使用 ~/.bcdb
func NewProfileManager(configDir string) (*ProfileManager, error) {
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		configDir = filepath.Join(homeDir, ".bcdb")
	}

	if err := os.MkdirAll(filepath.Join(configDir, "profiles"), 0o700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	pm := &ProfileManager{
		configDir: configDir,
		profiles:  make(map[string]*Profile),
	}
	if err := pm.loadProfiles(); err != nil {
		return nil, err
	}
	if len(pm.profiles) == 0 {
		if err := pm.SaveProfile(localProfile()); err != nil {
			return nil, err
		}
	}
	if err := pm.loadCurrentProfile(); err != nil {
		pm.currentProfile = DefaultProfile
	}
	return pm, nil
}

// loadProfiles 加载所有profiles，单个文件损坏时跳过
func (pm *ProfileManager) loadProfiles() error {
	profilesDir := filepath.Join(pm.configDir, "profiles")
	entries, err := os.ReadDir(profilesDir)
	if err != nil {
		return fmt.Errorf("read profiles dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		profile, err := loadProfile(filepath.Join(profilesDir, entry.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to load profile %s: %v\n", entry.Name(), err)
			continue
		}
		pm.profiles[profile.Name] = profile
	}
	return nil
}

func loadProfile(filePath string) (*Profile, error) {
	//nolint:gosec // G304: filePath 来自配置目录
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	applyDefaults(&profile)
	return &profile, nil
}

func applyDefaults(p *Profile) {
	if p.Timeout == 0 {
		p.Timeout = Duration(30 * time.Second)
	}
	if p.RetryAttempts == 0 {
		p.RetryAttempts = 3
	}
	if p.RetryBackoff == 0 {
		p.RetryBackoff = Duration(time.Second)
	}
}

func localProfile() *Profile {
	p := &Profile{
		Name:    DefaultProfile,
		UserID:  "admin",
		KeyPath: "./crypto/users/admin.key",
		Endpoints: []EndpointConfig{{
			NodeID:          "bdb-node-1",
			URL:             "http://127.0.0.1:6001",
			CertificatePath: "./crypto/node/bdb-node-1.pem",
			Priority:        1,
		}},
	}
	applyDefaults(p)
	return p
}

func (pm *ProfileManager) loadCurrentProfile() error {
	//nolint:gosec // G304: 固定文件名
	data, err := os.ReadFile(filepath.Join(pm.configDir, "current"))
	if err != nil {
		return err
	}
	pm.currentProfile = strings.TrimSpace(string(data))
	return nil
}

func (pm *ProfileManager) saveCurrentProfile() error {
	return os.WriteFile(filepath.Join(pm.configDir, "current"), []byte(pm.currentProfile), 0o600)
}

// GetProfile 获取指定profile
func (pm *ProfileManager) GetProfile(name string) (*Profile, error) {
	profile, exists := pm.profiles[name]
	if !exists {
		return nil, fmt.Errorf("profile not found: %s", name)
	}
	return profile, nil
}

// GetCurrentProfile 获取当前profile
func (pm *ProfileManager) GetCurrentProfile() (*Profile, error) {
	return pm.GetProfile(pm.currentProfile)
}

// CurrentName 当前profile名称
func (pm *ProfileManager) CurrentName() string {
	return pm.currentProfile
}

// ListProfiles 按名称排序列出所有profiles
func (pm *ProfileManager) ListProfiles() []string {
	names := make([]string, 0, len(pm.profiles))
	for name := range pm.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SaveProfile 保存profile
func (pm *ProfileManager) SaveProfile(profile *Profile) error {
	if profile.Name == "" || strings.ContainsAny(profile.Name, `/\`) {
		return fmt.Errorf("invalid profile name: %q", profile.Name)
	}
	applyDefaults(profile)

	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	profilePath := filepath.Join(pm.configDir, "profiles", profile.Name+".json")
	if err := os.WriteFile(profilePath, data, 0o600); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}

	pm.profiles[profile.Name] = profile
	return nil
}

// SwitchProfile 切换profile
func (pm *ProfileManager) SwitchProfile(name string) error {
	if _, exists := pm.profiles[name]; !exists {
		return fmt.Errorf("profile not found: %s", name)
	}
	pm.currentProfile = name
	return pm.saveCurrentProfile()
}

// DeleteProfile 删除profile，不能删除当前profile
func (pm *ProfileManager) DeleteProfile(name string) error {
	if name == pm.currentProfile {
		return fmt.Errorf("cannot delete current profile")
	}

	profilePath := filepath.Join(pm.configDir, "profiles", name+".json")
	if err := os.Remove(profilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete profile file: %w", err)
	}
	delete(pm.profiles, name)
	return nil
}
