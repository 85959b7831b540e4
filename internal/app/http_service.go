package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/cangchu-next/internal/config"
	"github.com/cangchu-next/internal/logger"
)

// HTTPService 后台 API 服务
type HTTPService struct {
	server *http.Server
}

// NewHTTPService 按服务配置创建 HTTP 服务，超时未配置时不限制
func NewHTTPService(cfg *config.ServerConfig, handler http.Handler) *HTTPService {
	server := &http.Server{Handler: handler}
	if cfg != nil {
		server.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
		if cfg.ReadTimeoutSeconds > 0 {
			server.ReadTimeout = time.Duration(cfg.ReadTimeoutSeconds) * time.Second
			server.ReadHeaderTimeout = server.ReadTimeout
		}
		if cfg.WriteTimeoutSeconds > 0 {
			server.WriteTimeout = time.Duration(cfg.WriteTimeoutSeconds) * time.Second
		}
	}
	return &HTTPService{server: server}
}

// Name 服务名称
func (s *HTTPService) Name() string {
	return "http"
}

// Addr 监听地址
func (s *HTTPService) Addr() string {
	if s == nil || s.server == nil {
		return ""
	}
	return s.server.Addr
}

// Start 阻塞监听直到 Stop 被调用
func (s *HTTPService) Start(_ context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("http server not initialized")
	}
	logger.Infow("app_http_listening", "addr", s.server.Addr)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop 优雅关闭，等待进行中的请求结束
func (s *HTTPService) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
