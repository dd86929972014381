package types

import "encoding/json"

// ResponseHeader 响应头，标识应答节点
type ResponseHeader struct {
	NodeID string `json:"node_id"`
}

// SignedResponse 节点签名的响应
//
// Response 保存被签名的原始字节，客户端对这些字节验签，不做重新序列化。
type SignedResponse struct {
	Response  json.RawMessage `json:"response"`
	Signature []byte          `json:"signature"`
}

// GetNodeConfigResponse GET /config/node/{node_id}
type GetNodeConfigResponse struct {
	Header     *ResponseHeader `json:"header"`
	NodeConfig *NodeConfig     `json:"node_config"`
}

// GetConfigResponse GET /config/tx
type GetConfigResponse struct {
	Header  *ResponseHeader `json:"header"`
	Config  *ClusterConfig  `json:"config"`
	Version Version         `json:"version"`
}

// UserView 对外展示的用户信息
type UserView struct {
	ID           string       `json:"id"`
	Certificate  []byte       `json:"certificate,omitempty"`
	PublicKey    []byte       `json:"public_key,omitempty"`
	Capabilities []Capability `json:"capabilities"`
}

// GetUserResponse GET /user/{user_id}
type GetUserResponse struct {
	Header  *ResponseHeader `json:"header"`
	User    *UserView       `json:"user"`
	Version Version         `json:"version"`
}
