// Package http 对外 HTTP 查询接口
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/weisyn/bcdb/internal/api/http/handlers"
	"github.com/weisyn/bcdb/internal/api/http/middleware"
	apiconfig "github.com/weisyn/bcdb/internal/config/api"
	"github.com/weisyn/bcdb/internal/core/auth"
	"github.com/weisyn/bcdb/internal/core/configsvc"
	"github.com/weisyn/bcdb/internal/core/persistence/state"
	"github.com/weisyn/bcdb/internal/core/response"
	"github.com/weisyn/bcdb/internal/core/usersvc"
	"github.com/weisyn/bcdb/pkg/interfaces/config"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/bcdb/pkg/interfaces/infrastructure/writegate"
)

// Deps HTTP 服务器依赖
type Deps struct {
	fx.In

	Config      config.Provider
	Logger      log.Logger
	Verifier    *auth.Verifier
	Distributor *configsvc.Distributor
	Users       *usersvc.Service
	Signer      *response.Signer
	Store       storage.Store
	Codec       *state.Codec
	Registerer  prometheus.Registerer `optional:"true"`
	Gatherer    prometheus.Gatherer   `optional:"true"`
	WriteGate   writegate.WriteGate   `optional:"true"`
}

// Server HTTP服务器
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	options    apiconfig.HTTPConfig
	logger     log.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewServer 创建HTTP服务器并注册全部路由
func NewServer(d Deps) (*Server, error) {
	if d.Config.GetEnvironment() != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	options := d.Config.GetAPI().HTTP
	zl := d.Logger.GetZapLogger()

	metricsMiddleware, err := middleware.NewMetrics(d.Registerer)
	if err != nil {
		return nil, fmt.Errorf("注册HTTP指标失败: %w", err)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(
		gin.Recovery(),
		middleware.NewRequestID().Middleware(),
		middleware.NewLogger(d.Logger).Middleware(),
		metricsMiddleware.Middleware(),
		middleware.ErrorHandler(zl, d.Config.GetAuth().ExposeRejectionKind),
		middleware.BodyLimit(int64(options.MaxRequestSize)),
	)
	if options.CORSEnabled {
		router.Use(middleware.CORS(options.CORSOrigins))
	}

	handlers.NewHealthHandler(d.Signer.NodeID(), d.Store, d.Codec, d.Gatherer, d.WriteGate).RegisterRoutes(router)

	// 限流位于签名校验之前，只作用于需要验签的路由
	authed := router.Group("")
	if options.RateLimitRequestsPerSecond > 0 {
		authed.Use(middleware.NewRateLimit(zl, options.RateLimitRequestsPerSecond, options.RateLimitBurst).Middleware())
	}
	sig := middleware.NewSignatureValidation(d.Verifier)
	handlers.NewConfigHandlers(d.Distributor, d.Signer).RegisterRoutes(authed, sig)
	handlers.NewUserHandlers(d.Users, d.Signer).RegisterRoutes(authed, sig)

	s := &Server{
		router:  router,
		options: options,
		logger:  d.Logger,
	}
	s.httpServer = &http.Server{
		Handler:      router,
		ReadTimeout:  options.ReadTimeout,
		WriteTimeout: options.WriteTimeout,
	}
	return s, nil
}

// Handler 返回路由，供测试直接驱动
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start 监听配置的地址并在后台提供服务；端口被占用时直接失败
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.options.Host, fmt.Sprint(s.options.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("监听 %s 失败: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("HTTP服务器运行失败: %v", err)
		}
	}()
	s.logger.Infof("HTTP服务器已启动，监听地址: %s", ln.Addr())
	return nil
}

// Addr 实际监听地址，未启动时为空
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop 优雅关闭，等待进行中的请求完成
func (s *Server) Stop(ctx context.Context) error {
	stopCtx, cancel := context.WithTimeout(ctx, s.options.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(stopCtx); err != nil {
		s.logger.Errorf("HTTP服务器关闭出错: %v", err)
		return err
	}
	s.logger.Info("HTTP服务器已关闭")
	return nil
}
