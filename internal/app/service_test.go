package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cangchu-next/internal/config"
)

type fakeService struct {
	name     string
	startErr error
	block    bool

	mu      sync.Mutex
	stopped bool
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return nil
	}
	return s.startErr
}

func (s *fakeService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

func (s *fakeService) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func TestRunnerStopsAllWhenOneFails(t *testing.T) {
	boom := errors.New("listen failed")
	failing := &fakeService{name: "http", startErr: boom}
	blocking := &fakeService{name: "scheduler", block: true}

	runner := NewRunner(failing, blocking)
	cleaned := 0
	runner.OnShutdown(func() { cleaned++ })

	err := runner.Run(context.Background(), time.Second, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected start error, got %v", err)
	}
	if !failing.isStopped() || !blocking.isStopped() {
		t.Fatalf("all services should be stopped")
	}
	if cleaned != 1 {
		t.Fatalf("cleanup should run once, got %d", cleaned)
	}
}

func TestRunnerReturnsNilOnCancel(t *testing.T) {
	blocking := &fakeService{name: "worker", block: true}
	runner := NewRunner(blocking)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx, time.Second, nil) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("cancel should not be an error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not stop after cancel")
	}
	if !blocking.isStopped() {
		t.Fatalf("service should be stopped")
	}
}

func TestRunnerWithoutServices(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("expected error for empty runner")
	}
	var runner *Runner
	runner.OnShutdown(func() {})
}

func TestNewHTTPServiceAppliesServerConfig(t *testing.T) {
	svc := NewHTTPService(&config.ServerConfig{
		Host:                "127.0.0.1",
		Port:                "18080",
		ReadTimeoutSeconds:  5,
		WriteTimeoutSeconds: 7,
	}, nil)
	if svc.Addr() != "127.0.0.1:18080" {
		t.Fatalf("addr want 127.0.0.1:18080 got %s", svc.Addr())
	}
	if svc.server.ReadTimeout != 5*time.Second || svc.server.ReadHeaderTimeout != 5*time.Second {
		t.Fatalf("unexpected read timeout %v", svc.server.ReadTimeout)
	}
	if svc.server.WriteTimeout != 7*time.Second {
		t.Fatalf("unexpected write timeout %v", svc.server.WriteTimeout)
	}
	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("stop before start should succeed, got %v", err)
	}
}

