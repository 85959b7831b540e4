package cache

import (
	"context"
	"testing"
	"time"

	"github.com/cangchu-next/internal/config"
	"github.com/cangchu-next/internal/models"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	if err := InitRedis(&config.RedisConfig{Enabled: false}); err != nil {
		t.Fatalf("init disabled redis failed: %v", err)
	}
	if Enabled() {
		t.Fatalf("cache should be disabled")
	}
	if Client() != nil {
		t.Fatalf("client should be nil when disabled")
	}

	ctx := context.Background()
	if err := SetStockSummary(ctx, &StockSummary{ProductID: 1, AvailableQty: 3}, time.Minute); err != nil {
		t.Fatalf("set summary should be noop, got %v", err)
	}
	summary, hit, err := GetStockSummary(ctx, 1)
	if err != nil || hit || summary != nil {
		t.Fatalf("get summary want miss, got hit=%v summary=%v err=%v", hit, summary, err)
	}
	if err := InvalidateStockSummaries(ctx, 1, 0, 2); err != nil {
		t.Fatalf("invalidate should be noop, got %v", err)
	}
}

func TestBuildKeyUsesPrefix(t *testing.T) {
	redisPrefix = "cc"
	if got := buildKey("stock:summary:7"); got != "cc:stock:summary:7" {
		t.Fatalf("unexpected key: %s", got)
	}
	if got := buildKey(" "); got != "cc" {
		t.Fatalf("empty key should return prefix, got %s", got)
	}
	if got := stockSummaryKey(7); got != "stock:summary:7" {
		t.Fatalf("unexpected summary key: %s", got)
	}
}

func TestBuildAdminAuthState(t *testing.T) {
	invalidBefore := time.Unix(1700000000, 0)
	state := BuildAdminAuthState(&models.Admin{
		ID:                 3,
		Username:           "clerk",
		TokenVersion:       2,
		TokenInvalidBefore: &invalidBefore,
	})
	if state.AdminID != 3 || state.TokenVersion != 2 || state.TokenInvalidBefore != 1700000000 {
		t.Fatalf("unexpected auth state: %+v", state)
	}
	if BuildAdminAuthState(nil) != nil {
		t.Fatalf("nil admin should build nil state")
	}
}
