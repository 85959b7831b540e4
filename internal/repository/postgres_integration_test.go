//go:build integration
// +build integration

package repository

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/cangchu-next/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := models.AllModels()
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(cleanupModels...); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresKeywordSearchIsCaseInsensitive(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	warehouseRepo := NewWarehouseRepository(db)
	if err := warehouseRepo.Create(&models.Warehouse{Code: "SH-01", Name: "Shanghai Hub", IsActive: true}); err != nil {
		t.Fatalf("create warehouse failed: %v", err)
	}

	rows, total, err := warehouseRepo.List(WarehouseListFilter{Page: 1, PageSize: 20, Search: "shanghai"})
	if err != nil {
		t.Fatalf("warehouse search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("warehouse search want 1 got total=%d len=%d", total, len(rows))
	}

	productRepo := NewProductRepository(db)
	if err := productRepo.Create(&models.Product{SKU: "PG-ROCKET", Name: "Rocket Booster", IsActive: true}); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	products, productTotal, err := productRepo.List(ProductListFilter{Page: 1, PageSize: 20, Search: "booster"})
	if err != nil {
		t.Fatalf("product search failed: %v", err)
	}
	if productTotal != 1 || len(products) != 1 {
		t.Fatalf("product search want 1 got total=%d len=%d", productTotal, len(products))
	}
}

func TestPostgresConcurrentLedgerWritesSerialize(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewStockLedgerRepository(db)

	product := &models.Product{SKU: "PG-CONCURRENT", Name: "并发商品", IsActive: true}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if _, err := repo.ApplyMovements([]MovementPlan{
		{IdempotencyKey: "pg-seed", DocumentID: 1, ProductID: product.ID, WarehouseID: 1, MovementType: "GRN", QtyChangeOnHand: 10},
	}, false); err != nil {
		t.Fatalf("seed stock failed: %v", err)
	}

	const workers = 15
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, err := repo.ApplyMovements([]MovementPlan{
				{
					IdempotencyKey:  fmt.Sprintf("pg-issue-%d", idx),
					DocumentID:      uint(100 + idx),
					ProductID:       product.ID,
					WarehouseID:     1,
					MovementType:    "ISSUE",
					QtyChangeOnHand: -1,
				},
			}, false)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if succeeded != 10 {
		t.Fatalf("succeeded issues want 10 got %d", succeeded)
	}
	item, err := repo.GetItem(product.ID, 1, nil)
	if err != nil {
		t.Fatalf("get item failed: %v", err)
	}
	if item.OnHandQty != 0 {
		t.Fatalf("on hand want 0 got %d", item.OnHandQty)
	}
}

func TestPostgresConcurrentSameKeyAppliesOnce(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewStockLedgerRepository(db)

	product := &models.Product{SKU: "PG-SAME-KEY", Name: "幂等商品", IsActive: true}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if _, err := repo.ApplyMovements([]MovementPlan{
		{IdempotencyKey: "pg-same-seed", DocumentID: 1, ProductID: product.ID, WarehouseID: 1, MovementType: "GRN", QtyChangeOnHand: 10},
	}, false); err != nil {
		t.Fatalf("seed stock failed: %v", err)
	}

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, err := repo.ApplyMovements([]MovementPlan{
				{
					IdempotencyKey:    "pg-same-reserve",
					DocumentID:        uint(200 + idx),
					ProductID:         product.ID,
					WarehouseID:       1,
					MovementType:      "RESERVE",
					QtyChangeReserved: 4,
				},
			}, false)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("same key apply should not fail, got %v", err)
		}
	}
	item, err := repo.GetItem(product.ID, 1, nil)
	if err != nil {
		t.Fatalf("get item failed: %v", err)
	}
	if item.ReservedQty != 4 {
		t.Fatalf("reserved want 4 got %d", item.ReservedQty)
	}
}
