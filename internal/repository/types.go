package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page       int
	PageSize   int
	Search     string
	OnlyActive bool
}

// WarehouseListFilter 查询仓库列表的过滤条件
type WarehouseListFilter struct {
	Page       int
	PageSize   int
	Search     string
	OnlyActive bool
}

// InventoryItemListFilter 查询库存余额的过滤条件
type InventoryItemListFilter struct {
	Page         int
	PageSize     int
	ProductID    uint
	WarehouseID  uint
	LowStockOnly bool
}

// StockMovementListFilter 查询库存流水的过滤条件
type StockMovementListFilter struct {
	Page         int
	PageSize     int
	DocumentID   uint
	ProductID    uint
	WarehouseID  uint
	MovementType string
	KeyPrefix    string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

// StockDocumentListFilter 查询库存单据的过滤条件
type StockDocumentListFilter struct {
	Page          int
	PageSize      int
	Type          string
	Status        string
	WarehouseID   uint
	ReferenceType string
	ReferenceID   string
	Search        string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	Status      string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// PaymentListFilter 查询支付列表的过滤条件
type PaymentListFilter struct {
	Page      int
	PageSize  int
	OrderID   uint
	Direction string
	Status    string
}
