package worker

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cangchu-next/internal/config"
	"github.com/cangchu-next/internal/logger"
	"github.com/cangchu-next/internal/service"

	"github.com/go-co-op/gocron/v2"
)

const (
	stockReconcileJobName = "stock-aggregate-reconcile"
	stockReconcileTimeout = 5 * time.Minute
)

// AggregateReconciler 商品库存汇总对账
type AggregateReconciler interface {
	ReconcileAggregates(ctx context.Context) (*service.ReconcileResult, error)
}

// Scheduler 定时任务服务
type Scheduler struct {
	name       string
	scheduler  gocron.Scheduler
	reconciler AggregateReconciler
}

// NewScheduler 创建定时任务服务，未配置对账表达式时返回 nil
func NewScheduler(cfg *config.StockConfig, reconciler AggregateReconciler) (*Scheduler, error) {
	if cfg == nil || strings.TrimSpace(cfg.ReconcileCron) == "" {
		return nil, nil
	}
	if reconciler == nil {
		return nil, errors.New("reconciler is nil")
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	s := &Scheduler{
		name:       "scheduler",
		scheduler:  scheduler,
		reconciler: reconciler,
	}
	if _, err := scheduler.NewJob(
		gocron.CronJob(strings.TrimSpace(cfg.ReconcileCron), false),
		gocron.NewTask(s.runStockReconcile),
		gocron.WithName(stockReconcileJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return s, nil
}

// Name 服务名称
func (s *Scheduler) Name() string {
	if s == nil || s.name == "" {
		return "scheduler"
	}
	return s.name
}

// Start 启动定时任务并阻塞至上下文结束
func (s *Scheduler) Start(ctx context.Context) error {
	if s == nil || s.scheduler == nil {
		return errors.New("scheduler not initialized")
	}
	s.scheduler.Start()
	logger.Infow("worker_scheduler_started", "jobs", len(s.scheduler.Jobs()))
	<-ctx.Done()
	return nil
}

// Stop 停止定时任务
func (s *Scheduler) Stop(ctx context.Context) error {
	if s == nil || s.scheduler == nil {
		return nil
	}
	_ = ctx
	return s.scheduler.Shutdown()
}

func (s *Scheduler) runStockReconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), stockReconcileTimeout)
	defer cancel()
	started := time.Now()
	result, err := s.reconciler.ReconcileAggregates(ctx)
	if err != nil {
		logger.Warnw("worker_stock_reconcile_failed", "error", err)
		return
	}
	logger.Infow("worker_stock_reconcile_done",
		"products", result.Products,
		"failed", result.Failed,
		"elapsed_ms", time.Since(started).Milliseconds(),
	)
}
