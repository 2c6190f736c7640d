package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bookvine/internal/config"
	"github.com/bookvine/internal/logger"

	"go.uber.org/zap"
)

// 启动模式：all 同进程跑 API 与队列消费者，api / worker 拆开部署。
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

// Service 可被 Runner 托管的长驻服务。
// Start 阻塞到服务退出；Stop 须在 ctx 截止前完成收尾。
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Options 启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.S()
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 10 * time.Second
	}
	if o.Mode == "" {
		o.Mode = ModeAll
	}
	return o
}

// Runner 成组运行服务：任一服务退出或外部取消后整体停机。
type Runner struct {
	services []Service
}

// NewRunner 创建服务运行器
func NewRunner(services ...Service) *Runner {
	return &Runner{services: services}
}

// Run 启动全部服务并阻塞，返回首个导致停机的错误。
// 外部取消（信号）视为正常退出。
func (r *Runner) Run(ctx context.Context, opts Options) error {
	if r == nil || len(r.services) == 0 {
		return errors.New("no services to run")
	}
	opts = opts.withDefaults()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	exit := make(chan error, len(r.services))
	for _, svc := range r.services {
		svc := svc
		go func() {
			opts.Logger.Infow("service_start", "service", svc.Name())
			err := svc.Start(runCtx)
			if err != nil {
				err = fmt.Errorf("%s: %w", svc.Name(), err)
			}
			exit <- err
		}()
	}

	var cause error
	select {
	case <-runCtx.Done():
		cause = runCtx.Err()
	case cause = <-exit:
	}
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer stopCancel()
	// 逆序停机：先关对外的 API，再关后台消费者
	for i := len(r.services) - 1; i >= 0; i-- {
		svc := r.services[i]
		if err := svc.Stop(stopCtx); err != nil {
			opts.Logger.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
			continue
		}
		opts.Logger.Infow("service_stopped", "service", svc.Name())
	}

	if errors.Is(cause, context.Canceled) {
		return nil
	}
	return cause
}
