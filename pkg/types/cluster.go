package types

// NodeConfig 单个节点的配置
type NodeConfig struct {
	ID          string `json:"id"`
	Address     string `json:"address"`
	Port        uint32 `json:"port"`
	Certificate []byte `json:"certificate"` // DER
}

// ConsensusMember 共识成员
type ConsensusMember struct {
	NodeID   string `json:"node_id"`
	RaftID   uint64 `json:"raft_id"`
	PeerHost string `json:"peer_host"`
	PeerPort uint32 `json:"peer_port"`
}

// ConsensusConfig 共识配置
type ConsensusConfig struct {
	Algorithm string             `json:"algorithm"`
	Members   []*ConsensusMember `json:"members"`
	Observers []*ConsensusMember `json:"observers,omitempty"`
}

// CAConfig 证书颁发机构配置
type CAConfig struct {
	Roots         [][]byte `json:"roots"`                   // DER
	Intermediates [][]byte `json:"intermediates,omitempty"` // DER
}

// Admin 集群管理员
type Admin struct {
	ID          string `json:"id"`
	Certificate []byte `json:"certificate"` // DER
}

// ClusterConfig 集群配置
type ClusterConfig struct {
	Nodes           []*NodeConfig    `json:"nodes"`
	Admins          []*Admin         `json:"admins"`
	CertAuthConfig  *CAConfig        `json:"cert_auth_config"`
	ConsensusConfig *ConsensusConfig `json:"consensus_config,omitempty"`
}

// Node 按 ID 查找节点配置
func (c *ClusterConfig) Node(id string) *NodeConfig {
	for _, n := range c.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Member 按节点 ID 查找共识成员（含观察者）
func (c *ClusterConfig) Member(nodeID string) *ConsensusMember {
	if c.ConsensusConfig == nil {
		return nil
	}
	for _, m := range c.ConsensusConfig.Members {
		if m.NodeID == nodeID {
			return m
		}
	}
	for _, m := range c.ConsensusConfig.Observers {
		if m.NodeID == nodeID {
			return m
		}
	}
	return nil
}

// ConfigSnapshot 某一提交版本下的集群配置快照
type ConfigSnapshot struct {
	Config  *ClusterConfig `json:"config"`
	Version Version        `json:"version"`
	TxID    string         `json:"tx_id"`
}
