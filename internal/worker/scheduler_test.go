package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cangchu-next/internal/config"
	"github.com/cangchu-next/internal/service"
)

type stubReconciler struct {
	calls  int
	result *service.ReconcileResult
	err    error
}

func (s *stubReconciler) ReconcileAggregates(ctx context.Context) (*service.ReconcileResult, error) {
	s.calls++
	if ctx == nil {
		return nil, errors.New("nil context")
	}
	return s.result, s.err
}

func TestNewSchedulerDisabledWithoutCron(t *testing.T) {
	scheduler, err := NewScheduler(&config.StockConfig{ReconcileCron: "  "}, &stubReconciler{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scheduler != nil {
		t.Fatalf("scheduler should be nil when cron is empty")
	}
}

func TestNewSchedulerRejectsInvalidCron(t *testing.T) {
	if _, err := NewScheduler(&config.StockConfig{ReconcileCron: "not a cron"}, &stubReconciler{}); err == nil {
		t.Fatalf("expected invalid cron error")
	}
	if _, err := NewScheduler(&config.StockConfig{ReconcileCron: "*/5 * * * *"}, nil); err == nil {
		t.Fatalf("expected nil reconciler error")
	}
}

func TestSchedulerRunsReconcileAndStops(t *testing.T) {
	stub := &stubReconciler{result: &service.ReconcileResult{Products: 2}}
	scheduler, err := NewScheduler(&config.StockConfig{ReconcileCron: "*/10 * * * *"}, stub)
	if err != nil {
		t.Fatalf("new scheduler failed: %v", err)
	}
	if scheduler.Name() != "scheduler" {
		t.Fatalf("unexpected name %q", scheduler.Name())
	}

	scheduler.runStockReconcile()
	stub.err = errors.New("boom")
	scheduler.runStockReconcile()
	if stub.calls != 2 {
		t.Fatalf("reconcile calls want 2 got %d", stub.calls)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- scheduler.Start(ctx) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("start returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("scheduler did not return after cancel")
	}
	if err := scheduler.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
}
