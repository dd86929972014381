package canonical

// GetConfigQuery 读取完整集群配置
type GetConfigQuery struct {
	UserID string
}

// Caller 请求方用户 ID
func (q GetConfigQuery) Caller() string { return q.UserID }

// Canonical 规范化签名字节
func (q GetConfigQuery) Canonical() ([]byte, error) {
	return Canonicalize(GetConfigSchema, []Field{String(FieldUserID, q.UserID)})
}

// GetNodeConfigQuery 读取单个节点配置
type GetNodeConfigQuery struct {
	UserID string
	NodeID string
}

// Caller 请求方用户 ID
func (q GetNodeConfigQuery) Caller() string { return q.UserID }

// Canonical 规范化签名字节
func (q GetNodeConfigQuery) Canonical() ([]byte, error) {
	return Canonicalize(GetNodeConfigSchema, []Field{
		String(FieldUserID, q.UserID),
		String(FieldNodeID, q.NodeID),
	})
}

// GetUserQuery 读取用户记录
type GetUserQuery struct {
	UserID       string
	TargetUserID string
}

// Caller 请求方用户 ID
func (q GetUserQuery) Caller() string { return q.UserID }

// Canonical 规范化签名字节
func (q GetUserQuery) Canonical() ([]byte, error) {
	return Canonicalize(GetUserSchema, []Field{
		String(FieldUserID, q.UserID),
		String(FieldTargetUserID, q.TargetUserID),
	})
}

// Query 可规范化的请求
type Query interface {
	// Caller 签名者的用户 ID，与规范字节中的 user_id 一致
	Caller() string
	// Canonical 规范化签名字节
	Canonical() ([]byte, error)
}

var (
	_ Query = GetConfigQuery{}
	_ Query = GetNodeConfigQuery{}
	_ Query = GetUserQuery{}
)
