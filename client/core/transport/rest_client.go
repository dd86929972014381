package transport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/canonical"
	"github.com/weisyn/bcdb/internal/core/infrastructure/crypto/signature"
	"github.com/weisyn/bcdb/internal/core/response"
	"github.com/weisyn/bcdb/pkg/types"
)

// maxResponseSize 单个响应体的上限
const maxResponseSize = 8 << 20

// RESTClient 单节点 REST 客户端
type RESTClient struct {
	endpoint   Endpoint
	identity   Identity
	httpClient *http.Client
}

var _ Client = (*RESTClient)(nil)

// NewRESTClient 创建REST客户端
func NewRESTClient(endpoint Endpoint, identity Identity, timeout time.Duration) (*RESTClient, error) {
	if endpoint.NodeID == "" || endpoint.Certificate == nil {
		return nil, errors.New("必须提供节点 ID 与节点证书用于响应验签")
	}
	if identity.UserID == "" || identity.Signer == nil {
		return nil, errors.New("必须提供用户 ID 与签名私钥")
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	endpoint.URL = strings.TrimRight(endpoint.URL, "/")

	return &RESTClient{
		endpoint: endpoint,
		identity: identity,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// NodeID 应答节点的 ID
func (c *RESTClient) NodeID() string {
	return c.endpoint.NodeID
}

// GetClusterConfig GET /config/tx
func (c *RESTClient) GetClusterConfig(ctx context.Context) (*types.GetConfigResponse, error) {
	var out types.GetConfigResponse
	q := canonical.GetConfigQuery{UserID: c.identity.UserID}
	if err := c.get(ctx, "/config/tx", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetNodeConfig GET /config/node/{node_id}
func (c *RESTClient) GetNodeConfig(ctx context.Context, nodeID string) (*types.NodeConfig, error) {
	var out types.GetNodeConfigResponse
	q := canonical.GetNodeConfigQuery{UserID: c.identity.UserID, NodeID: nodeID}
	if err := c.get(ctx, "/config/node/"+url.PathEscape(nodeID), q, &out); err != nil {
		return nil, err
	}
	if out.NodeConfig == nil || out.NodeConfig.ID != nodeID {
		return nil, fmt.Errorf("%w: 返回的节点配置不是 %s", ErrResponseVerification, nodeID)
	}
	return out.NodeConfig, nil
}

// GetUser GET /user/{user_id}
func (c *RESTClient) GetUser(ctx context.Context, userID string) (*types.GetUserResponse, error) {
	var out types.GetUserResponse
	q := canonical.GetUserQuery{UserID: c.identity.UserID, TargetUserID: userID}
	if err := c.get(ctx, "/user/"+url.PathEscape(userID), q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ping GET /health
func (c *RESTClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint.URL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("节点 %s 不健康: http %d", c.endpoint.NodeID, resp.StatusCode)
	}
	return nil
}

// get 签名查询、发送请求并校验节点签名
func (c *RESTClient) get(ctx context.Context, path string, q canonical.Query, out interface{}) error {
	payload, err := q.Canonical()
	if err != nil {
		return err
	}
	sig, err := signature.Sign(c.identity.Signer, payload)
	if err != nil {
		return fmt.Errorf("签名请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint.URL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("UserID", c.identity.UserID)
	req.Header.Set("Signature", base64.StdEncoding.EncodeToString(sig))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return parseProblem(resp, body)
	}

	var signed types.SignedResponse
	if err := json.Unmarshal(body, &signed); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := response.Decode(&signed, c.endpoint.NodeID, c.endpoint.Certificate.PublicKey, out); err != nil {
		return fmt.Errorf("%w: %v", ErrResponseVerification, err)
	}
	return nil
}

// parseProblem 解析问题详情；无法解析时保留状态码与原始内容
func parseProblem(resp *http.Response, body []byte) error {
	var pd struct {
		Code    string `json:"code"`
		Detail  string `json:"detail"`
		TraceID string `json:"traceId"`
	}
	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.Unmarshal(body, &pd); err != nil || pd.Code == "" {
		apiErr.Code = http.StatusText(resp.StatusCode)
		apiErr.Detail = strings.TrimSpace(string(body))
	} else {
		apiErr.Code, apiErr.Detail, apiErr.TraceID = pd.Code, pd.Detail, pd.TraceID
	}
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		apiErr.RetryAfter = time.Duration(secs) * time.Second
	}
	return apiErr
}
