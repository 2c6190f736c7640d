package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"

	"github.com/bookvine/internal/config"
	"github.com/bookvine/internal/provider"
	"github.com/bookvine/internal/router"
	"github.com/bookvine/internal/worker"
)

// BuildRunner 按启动模式装配服务组。
// worker 排在 API 之前，逆序停机时 API 先下线。
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if mode == "" {
		mode = ModeAll
	}
	switch mode {
	case ModeAll, ModeAPI, ModeWorker:
	default:
		return nil, fmt.Errorf("unknown run mode: %s", mode)
	}

	container := provider.NewContainer(cfg)
	var services []Service

	if mode != ModeAPI {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	}
	if mode != ModeWorker {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewAPIService(cfg.Server.Host+":"+cfg.Server.Port, engine))
	}
	return NewRunner(services...), nil
}

// Run 进程入口：装配服务、监听退出信号并阻塞运行。
func Run(opts Options) error {
	opts = opts.withDefaults()
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var cancel context.CancelFunc
		ctx, cancel = signal.NotifyContext(ctx, opts.Signals...)
		defer cancel()
	}

	opts.Logger.Infow("app_start",
		"addr", opts.Config.Server.Host+":"+opts.Config.Server.Port,
		"mode", opts.Mode,
	)
	return runner.Run(ctx, opts)
}
