package service

import (
	"context"
	"time"

	"github.com/cangchu-next/internal/cache"
	"github.com/cangchu-next/internal/config"
	"github.com/cangchu-next/internal/logger"
	"github.com/cangchu-next/internal/models"
	"github.com/cangchu-next/internal/repository"
)

// InventoryService 库存余额查询与维护
type InventoryService struct {
	ledgerRepo  repository.StockLedgerRepository
	productRepo repository.ProductRepository
	summaryTTL  time.Duration
}

// NewInventoryService 创建库存服务
func NewInventoryService(ledgerRepo repository.StockLedgerRepository, productRepo repository.ProductRepository, cfg *config.StockConfig) *InventoryService {
	ttl := time.Minute
	if cfg != nil && cfg.SummaryCacheTTLSeconds > 0 {
		ttl = time.Duration(cfg.SummaryCacheTTLSeconds) * time.Second
	}
	return &InventoryService{
		ledgerRepo:  ledgerRepo,
		productRepo: productRepo,
		summaryTTL:  ttl,
	}
}

// ReconcileResult 汇总对账结果
type ReconcileResult struct {
	Products int `json:"products"`
	Failed   int `json:"failed"`
}

// ListItems 库存余额列表
func (s *InventoryService) ListItems(filter repository.InventoryItemListFilter) ([]models.InventoryItem, int64, error) {
	return s.ledgerRepo.ListItems(filter)
}

// SetReorderPoint 设置补货提醒阈值
func (s *InventoryService) SetReorderPoint(itemID uint, reorderPoint int) (*models.InventoryItem, error) {
	if reorderPoint < 0 {
		return nil, validationError("reorder point must not be negative")
	}
	item, err := s.ledgerRepo.GetItemByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrInventoryItemNotFound
	}
	if err := s.ledgerRepo.SetReorderPoint(item.ID, reorderPoint); err != nil {
		return nil, err
	}
	item.ReorderPoint = reorderPoint
	return item, nil
}

// ListMovements 库存流水列表
func (s *InventoryService) ListMovements(filter repository.StockMovementListFilter) ([]models.StockMovement, int64, error) {
	return s.ledgerRepo.ListMovements(filter)
}

// ProductSummary 商品跨仓库存汇总，优先读缓存
func (s *InventoryService) ProductSummary(ctx context.Context, productID uint) (*cache.StockSummary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if summary, hit, err := cache.GetStockSummary(ctx, productID); err != nil {
		logger.Warnw("stock_summary_cache_get_failed", "product_id", productID, "error", err)
	} else if hit {
		return summary, nil
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	items, err := s.ledgerRepo.ListItemsByProduct(product.ID)
	if err != nil {
		return nil, err
	}

	summary := &cache.StockSummary{
		ProductID:   product.ID,
		Warehouses:  make([]cache.StockSummaryWarehouse, 0),
		GeneratedAt: time.Now().Unix(),
	}
	index := make(map[uint]int)
	for _, item := range items {
		summary.OnHandQty += item.OnHandQty
		summary.ReservedQty += item.ReservedQty
		summary.AvailableQty += item.AvailableQty
		pos, ok := index[item.WarehouseID]
		if !ok {
			pos = len(summary.Warehouses)
			index[item.WarehouseID] = pos
			summary.Warehouses = append(summary.Warehouses, cache.StockSummaryWarehouse{WarehouseID: item.WarehouseID})
		}
		summary.Warehouses[pos].OnHandQty += item.OnHandQty
		summary.Warehouses[pos].ReservedQty += item.ReservedQty
		summary.Warehouses[pos].AvailableQty += item.AvailableQty
	}
	if err := cache.SetStockSummary(ctx, summary, s.summaryTTL); err != nil {
		logger.Warnw("stock_summary_cache_set_failed", "product_id", productID, "error", err)
	}
	return summary, nil
}

// ReconcileAggregates 按余额表重算所有商品的可用库存汇总
func (s *InventoryService) ReconcileAggregates(ctx context.Context) (*ReconcileResult, error) {
	productIDs, err := s.ledgerRepo.ListStockedProductIDs()
	if err != nil {
		return nil, err
	}
	result := &ReconcileResult{}
	for _, productID := range productIDs {
		if ctx != nil && ctx.Err() != nil {
			return result, ctx.Err()
		}
		if _, err := s.ledgerRepo.RecomputeProductAggregate(productID); err != nil {
			result.Failed++
			logger.Warnw("stock_aggregate_reconcile_failed", "product_id", productID, "error", err)
			continue
		}
		result.Products++
	}
	if len(productIDs) > 0 {
		if err := cache.InvalidateStockSummaries(context.Background(), productIDs...); err != nil {
			logger.Warnw("stock_summary_invalidate_failed", "product_ids", productIDs, "error", err)
		}
	}
	logger.Infow("stock_aggregate_reconciled", "products", result.Products, "failed", result.Failed)
	return result, nil
}
