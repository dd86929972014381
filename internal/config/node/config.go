// Package node 本节点身份配置
package node

import (
	"fmt"

	"github.com/weisyn/bcdb/pkg/types"
)

// NodeOptions 本节点身份与公布地址
type NodeOptions struct {
	ID              string `json:"id"`
	Address         string `json:"address"`
	Port            uint32 `json:"port"`
	CertificatePath string `json:"certificate_path"`
	KeyPath         string `json:"key_path"`
}

// Config 节点配置实现
type Config struct {
	options *NodeOptions
}

// New 创建节点配置
func New(user *types.UserNodeConfig) *Config {
	options := &NodeOptions{
		ID:              defaultNodeID,
		Address:         defaultAddress,
		Port:            defaultPort,
		CertificatePath: defaultCertificatePath,
		KeyPath:         defaultKeyPath,
	}
	if user != nil {
		if user.ID != nil {
			options.ID = *user.ID
		}
		if user.Address != nil {
			options.Address = *user.Address
		}
		if user.Port != nil {
			options.Port = *user.Port
		}
		if user.CertificatePath != nil {
			options.CertificatePath = *user.CertificatePath
		}
		if user.KeyPath != nil {
			options.KeyPath = *user.KeyPath
		}
	}
	return &Config{options: options}
}

// Validate 校验必填字段
func (o *NodeOptions) Validate() error {
	switch {
	case o.ID == "":
		return fmt.Errorf("node.id 不能为空")
	case o.Address == "":
		return fmt.Errorf("node.address 不能为空")
	case o.Port == 0:
		return fmt.Errorf("node.port 不能为0")
	case o.CertificatePath == "" || o.KeyPath == "":
		return fmt.Errorf("node.certificate_path 和 node.key_path 必须配置")
	}
	return nil
}

// GetOptions 获取节点配置选项
func (c *Config) GetOptions() *NodeOptions {
	return c.options
}
