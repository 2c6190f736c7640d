package app

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// APIService 托管店面 HTTP API 的生命周期
type APIService struct {
	server *http.Server
}

// NewAPIService 创建 API 服务
func NewAPIService(addr string, handler http.Handler) *APIService {
	return &APIService{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Name 服务名称
func (s *APIService) Name() string { return "api" }

// Start 阻塞监听，被 Stop 正常关闭时返回 nil
func (s *APIService) Start(_ context.Context) error {
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop 优雅关闭，等待在途请求完成
func (s *APIService) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
