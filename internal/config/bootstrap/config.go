// Package bootstrap 首次启动时构建创世集群配置所需的参数
package bootstrap

import (
	"github.com/weisyn/bcdb/pkg/types"
)

// BootstrapOptions 引导配置选项
type BootstrapOptions struct {
	AdminID              string   `json:"admin_id"`
	AdminCertificatePath string   `json:"admin_certificate_path"`
	RootCACertPaths      []string `json:"root_ca_cert_paths"`
	IntermediateCAPaths  []string `json:"intermediate_ca_cert_paths"`
	ConsensusAlgorithm   string   `json:"consensus_algorithm"`
	RaftID               uint64   `json:"raft_id"`
	PeerHost             string   `json:"peer_host"` // 为空时使用 node.address
	PeerPort             uint32   `json:"peer_port"`
}

// Config 引导配置实现
type Config struct {
	options *BootstrapOptions
}

// New 创建引导配置
func New(user *types.UserBootstrapConfig) *Config {
	options := &BootstrapOptions{
		AdminID:              defaultAdminID,
		AdminCertificatePath: defaultAdminCertificatePath,
		RootCACertPaths:      []string{defaultRootCACertPath},
		ConsensusAlgorithm:   defaultConsensusAlgorithm,
		RaftID:               defaultRaftID,
		PeerPort:             defaultPeerPort,
	}
	if user != nil {
		if user.AdminID != nil {
			options.AdminID = *user.AdminID
		}
		if user.AdminCertificatePath != nil {
			options.AdminCertificatePath = *user.AdminCertificatePath
		}
		if len(user.RootCACertPaths) > 0 {
			options.RootCACertPaths = user.RootCACertPaths
		}
		if len(user.IntermediateCAPaths) > 0 {
			options.IntermediateCAPaths = user.IntermediateCAPaths
		}
		if user.ConsensusAlgorithm != nil {
			options.ConsensusAlgorithm = *user.ConsensusAlgorithm
		}
		if user.RaftID != nil {
			options.RaftID = *user.RaftID
		}
		if user.PeerHost != nil {
			options.PeerHost = *user.PeerHost
		}
		if user.PeerPort != nil {
			options.PeerPort = *user.PeerPort
		}
	}
	return &Config{options: options}
}

// GetOptions 获取引导配置选项
func (c *Config) GetOptions() *BootstrapOptions {
	return c.options
}
