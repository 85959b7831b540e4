package app

import (
	"errors"

	"github.com/cangchu-next/internal/config"
	"github.com/cangchu-next/internal/logger"
	"github.com/cangchu-next/internal/provider"
	"github.com/cangchu-next/internal/router"
	"github.com/cangchu-next/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	container := provider.NewContainer(cfg)

	var services []Service

	// 初始化 HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		httpService := NewHTTPService(&cfg.Server, engine)
		services = append(services, httpService)
	}

	// 初始化 Worker 服务：队列未启用时仅跳过异步重试，不阻断启动
	if mode == ModeAll || mode == ModeWorker {
		if cfg.Queue.Enabled {
			consumer := worker.NewConsumer(container)
			workerService, err := worker.NewService(&cfg.Queue, consumer)
			if err != nil {
				container.Close()
				return nil, err
			}
			services = append(services, workerService)
		} else {
			logger.Warnw("app_worker_skipped", "reason", "queue_disabled")
		}

		scheduler, err := worker.NewScheduler(&cfg.Stock, container.InventoryService)
		if err != nil {
			container.Close()
			return nil, err
		}
		if scheduler != nil {
			services = append(services, scheduler)
		}
	}

	if len(services) == 0 {
		container.Close()
		return nil, errors.New("no services initialized (check mode and config)")
	}

	runner := NewRunner(services...)
	runner.OnShutdown(container.Close)
	return runner, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
