package worker

import (
	"context"
	"errors"

	"github.com/bookvine/internal/config"
	"github.com/bookvine/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 把 asynq 消费端包装成可被 Runner 托管的服务
type Service struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewService 创建队列消费服务，队列未启用时返回错误
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}

	opt, serverCfg := queue.BuildServerConfig(cfg)
	svc := &Service{
		server: asynq.NewServer(opt, serverCfg),
		mux:    asynq.NewServeMux(),
	}
	consumer.Register(svc.mux)
	return svc, nil
}

func (s *Service) Name() string { return "worker" }

// Start 阻塞消费任务，直到 Stop 被调用
func (s *Service) Start(context.Context) error {
	return s.server.Run(s.mux)
}

// Stop 等待在途任务结束后退出
func (s *Service) Stop(context.Context) error {
	s.server.Shutdown()
	return nil
}
