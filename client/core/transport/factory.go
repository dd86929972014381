package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/weisyn/bcdb/pkg/types"
)

// ClientConfig 多节点客户端配置
type ClientConfig struct {
	Endpoints []Endpoint
	Identity  Identity

	Timeout       time.Duration
	RetryAttempts int
	RetryBackoff  time.Duration

	// HealthCheckInterval 为 0 时不做后台健康检查
	HealthCheckInterval time.Duration
}

// FallbackClient 支持故障转移的客户端
//
// 只有可重试的错误（节点不可用、限流、网络错误）会切换节点；
// 认证、授权和验签失败直接返回，换一个节点结果也不会变。
type FallbackClient struct {
	config    ClientConfig
	clients   []clientWithPriority
	current   int
	mu        sync.Mutex
	closeCh   chan struct{}
	closeOnce sync.Once
}

type clientWithPriority struct {
	priority  int
	client    Client
	healthy   bool
	lastCheck time.Time
}

var _ Client = (*FallbackClient)(nil)

// NewFallbackClient 创建支持故障转移的客户端
func NewFallbackClient(config ClientConfig) (*FallbackClient, error) {
	if len(config.Endpoints) == 0 {
		return nil, errors.New("no endpoints configured")
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RetryAttempts == 0 {
		config.RetryAttempts = 3
	}
	if config.RetryBackoff == 0 {
		config.RetryBackoff = time.Second
	}

	clients := make([]clientWithPriority, 0, len(config.Endpoints))
	for _, ep := range config.Endpoints {
		c, err := NewRESTClient(ep, config.Identity, config.Timeout)
		if err != nil {
			return nil, fmt.Errorf("endpoint %s: %w", ep.NodeID, err)
		}
		clients = append(clients, clientWithPriority{priority: ep.Priority, client: c, healthy: true})
	}
	return newFallback(config, clients), nil
}

func newFallback(config ClientConfig, clients []clientWithPriority) *FallbackClient {
	sort.SliceStable(clients, func(i, j int) bool { return clients[i].priority < clients[j].priority })
	fc := &FallbackClient{
		config:  config,
		clients: clients,
		closeCh: make(chan struct{}),
	}
	if config.HealthCheckInterval > 0 {
		go fc.healthCheckLoop()
	}
	return fc
}

// Close 停止后台健康检查
func (fc *FallbackClient) Close() {
	fc.closeOnce.Do(func() { close(fc.closeCh) })
}

func (fc *FallbackClient) healthCheckLoop() {
	ticker := time.NewTicker(fc.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fc.checkAllClients()
		case <-fc.closeCh:
			return
		}
	}
}

// checkAllClients 探测在锁外进行，慢节点不阻塞请求
func (fc *FallbackClient) checkAllClients() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fc.mu.Lock()
	snapshot := make([]Client, len(fc.clients))
	for i := range fc.clients {
		snapshot[i] = fc.clients[i].client
	}
	fc.mu.Unlock()

	results := make([]bool, len(snapshot))
	for i, c := range snapshot {
		results[i] = c.Ping(ctx) == nil
	}

	now := time.Now()
	fc.mu.Lock()
	for i := range fc.clients {
		fc.clients[i].healthy = results[i]
		fc.clients[i].lastCheck = now
	}
	fc.mu.Unlock()
}

// getClient 当前节点健康时继续使用，否则选择下一个健康节点
func (fc *FallbackClient) getClient() (int, Client) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if fc.clients[fc.current].healthy {
		return fc.current, fc.clients[fc.current].client
	}
	for i, c := range fc.clients {
		if c.healthy {
			fc.current = i
			return i, c.client
		}
	}
	// 全部不健康时按优先级从头再试
	for i := range fc.clients {
		fc.clients[i].healthy = true
	}
	fc.current = 0
	return 0, fc.clients[0].client
}

func (fc *FallbackClient) markUnhealthy(i int) {
	fc.mu.Lock()
	fc.clients[i].healthy = false
	fc.mu.Unlock()
}

// tryWithFallback 执行操作，可重试错误时退避并切换节点
func (fc *FallbackClient) tryWithFallback(ctx context.Context, op func(Client) error) error {
	var lastErr error
	for attempt := 0; attempt < fc.config.RetryAttempts; attempt++ {
		i, client := fc.getClient()
		err := op(client)
		if err == nil {
			return nil
		}
		lastErr = err
		// 调用方取消或超时不是节点的问题
		if ctx.Err() != nil {
			return err
		}
		if !retryable(err) {
			return err
		}
		fc.markUnhealthy(i)

		if attempt < fc.config.RetryAttempts-1 {
			wait := fc.config.RetryBackoff * time.Duration(attempt+1)
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.RetryAfter > wait {
				wait = apiErr.RetryAfter
			}
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("all endpoints failed: %w", lastErr)
}

// retryable 节点不可用、限流或网络错误
func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// NodeID 当前使用的节点
func (fc *FallbackClient) NodeID() string {
	_, c := fc.getClient()
	return c.NodeID()
}

// GetClusterConfig GET /config/tx
func (fc *FallbackClient) GetClusterConfig(ctx context.Context) (*types.GetConfigResponse, error) {
	var result *types.GetConfigResponse
	err := fc.tryWithFallback(ctx, func(c Client) error {
		var e error
		result, e = c.GetClusterConfig(ctx)
		return e
	})
	return result, err
}

// GetNodeConfig GET /config/node/{node_id}
func (fc *FallbackClient) GetNodeConfig(ctx context.Context, nodeID string) (*types.NodeConfig, error) {
	var result *types.NodeConfig
	err := fc.tryWithFallback(ctx, func(c Client) error {
		var e error
		result, e = c.GetNodeConfig(ctx, nodeID)
		return e
	})
	return result, err
}

// GetUser GET /user/{user_id}
func (fc *FallbackClient) GetUser(ctx context.Context, userID string) (*types.GetUserResponse, error) {
	var result *types.GetUserResponse
	err := fc.tryWithFallback(ctx, func(c Client) error {
		var e error
		result, e = c.GetUser(ctx, userID)
		return e
	})
	return result, err
}

// Ping 任一节点可达即成功
func (fc *FallbackClient) Ping(ctx context.Context) error {
	return fc.tryWithFallback(ctx, func(c Client) error {
		if err := c.Ping(ctx); err != nil {
			return &APIError{Code: "UNAVAILABLE", Detail: err.Error()}
		}
		return nil
	})
}
