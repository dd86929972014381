package types

import (
	"crypto"
	"crypto/x509"
)

// Capability 能力标签
type Capability string

const (
	// CapabilityReadConfig 读取集群/节点配置
	CapabilityReadConfig Capability = "read-config"
	// CapabilitySubmitTransaction 提交交易
	CapabilitySubmitTransaction Capability = "submit-transaction"
	// CapabilityAdmin 管理员，满足任何能力要求
	CapabilityAdmin Capability = "admin"
)

// Valid 是否为已知能力标签
func (c Capability) Valid() bool {
	switch c {
	case CapabilityReadConfig, CapabilitySubmitTransaction, CapabilityAdmin:
		return true
	}
	return false
}

// Version 已提交状态的版本（区块号 + 区块内交易序号）
type Version struct {
	BlockNum uint64 `json:"block_num"`
	TxNum    uint64 `json:"tx_num"`
}

// Less 比较两个版本
func (v Version) Less(o Version) bool {
	if v.BlockNum != o.BlockNum {
		return v.BlockNum < o.BlockNum
	}
	return v.TxNum < o.TxNum
}

// UserRecord 用户在存储中的提交形态
type UserRecord struct {
	ID           string       `json:"id"`
	Certificate  []byte       `json:"certificate,omitempty"` // DER
	PublicKey    []byte       `json:"public_key,omitempty"`  // 压缩格式 secp256k1 公钥（可选）
	Capabilities []Capability `json:"capabilities"`
	Version      Version      `json:"version"`
}

// Identity 解析后的用户身份
//
// 由 Identity Registry 从 UserRecord 解析得到，只在单次请求内使用。
type Identity struct {
	UserID       string
	Certificate  *x509.Certificate
	PublicKey    crypto.PublicKey
	Capabilities []Capability
	Version      Version
}

// HasCapability admin 满足任何能力要求
func (i *Identity) HasCapability(c Capability) bool {
	for _, have := range i.Capabilities {
		if have == c || have == CapabilityAdmin {
			return true
		}
	}
	return false
}

// Node 解析后的节点身份
type Node struct {
	Config    *NodeConfig
	Member    *ConsensusMember // 非共识成员时为 nil
	PublicKey crypto.PublicKey
}
