package cache

import (
	"context"
	"fmt"
	"time"
)

const defaultStockSummaryTTL = time.Minute

// StockSummaryWarehouse 单仓库存汇总
type StockSummaryWarehouse struct {
	WarehouseID  uint `json:"warehouse_id"`
	OnHandQty    int  `json:"on_hand_qty"`
	ReservedQty  int  `json:"reserved_qty"`
	AvailableQty int  `json:"available_qty"`
}

// StockSummary 商品跨仓库存汇总快照
type StockSummary struct {
	ProductID    uint                    `json:"product_id"`
	OnHandQty    int                     `json:"on_hand_qty"`
	ReservedQty  int                     `json:"reserved_qty"`
	AvailableQty int                     `json:"available_qty"`
	Warehouses   []StockSummaryWarehouse `json:"warehouses"`
	GeneratedAt  int64                   `json:"generated_at"`
}

func stockSummaryKey(productID uint) string {
	return fmt.Sprintf("stock:summary:%d", productID)
}

// GetStockSummary 读取商品库存汇总
func GetStockSummary(ctx context.Context, productID uint) (*StockSummary, bool, error) {
	if productID == 0 {
		return nil, false, nil
	}
	var summary StockSummary
	hit, err := GetJSON(ctx, stockSummaryKey(productID), &summary)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &summary, true, nil
}

// SetStockSummary 写入商品库存汇总，ttl<=0 时使用默认值
func SetStockSummary(ctx context.Context, summary *StockSummary, ttl time.Duration) error {
	if summary == nil || summary.ProductID == 0 {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultStockSummaryTTL
	}
	return SetJSON(ctx, stockSummaryKey(summary.ProductID), summary, ttl)
}

// InvalidateStockSummaries 删除商品库存汇总
func InvalidateStockSummaries(ctx context.Context, productIDs ...uint) error {
	for _, productID := range productIDs {
		if productID == 0 {
			continue
		}
		if err := Del(ctx, stockSummaryKey(productID)); err != nil {
			return err
		}
	}
	return nil
}
