package models

import "time"

// StockDocument 库存单据
// 生命周期：DRAFT -> POSTED -> VOID；DRAFT 也可直接作废且不产生流水
type StockDocument struct {
	ID                uint       `gorm:"primarykey" json:"id"`                                                     // 主键
	Code              string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`                        // 单据编号
	Type              string     `gorm:"type:varchar(20);index;not null" json:"type"`                              // 单据类型
	Status            string     `gorm:"type:varchar(20);index;not null" json:"status"`                            // 单据状态
	WarehouseID       uint       `gorm:"index;not null" json:"warehouse_id"`                                       // 来源仓库
	TargetWarehouseID *uint      `gorm:"index" json:"target_warehouse_id,omitempty"`                               // 目标仓库（调拨）
	ReferenceType     string     `gorm:"type:varchar(32);index:idx_stock_doc_ref" json:"reference_type,omitempty"` // 关联类型（order/purchase_order）
	ReferenceID       string     `gorm:"type:varchar(64);index:idx_stock_doc_ref" json:"reference_id,omitempty"`   // 关联单号
	Note              string     `gorm:"type:text" json:"note"`                                                    // 备注
	CreatedBy         uint       `gorm:"not null;default:0" json:"created_by"`                                     // 创建人
	PostedBy          *uint      `json:"posted_by,omitempty"`                                                      // 过账人
	PostedAt          *time.Time `gorm:"index" json:"posted_at,omitempty"`                                         // 过账时间
	VoidedBy          *uint      `json:"voided_by,omitempty"`                                                      // 作废人
	VoidedAt          *time.Time `json:"voided_at,omitempty"`                                                      // 作废时间
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`                                                  // 创建时间
	UpdatedAt         time.Time  `json:"updated_at"`                                                               // 更新时间

	Lines []StockDocumentLine `gorm:"foreignKey:DocumentID" json:"lines,omitempty"` // 单据行
}

// TableName 指定表名
func (StockDocument) TableName() string {
	return "stock_documents"
}

// StockDocumentLine 库存单据行
// Quantity 为有符号数量，仅调整单允许为负
type StockDocumentLine struct {
	ID               uint      `gorm:"primarykey" json:"id"`                            // 主键
	DocumentID       uint      `gorm:"index;not null" json:"document_id"`               // 单据ID
	ProductID        uint      `gorm:"index;not null" json:"product_id"`                // 商品ID
	ProductName      string    `gorm:"type:varchar(255)" json:"product_name"`           // 商品名称快照
	ProductSKU       string    `gorm:"type:varchar(128)" json:"product_sku"`            // SKU 快照
	Quantity         int       `gorm:"not null" json:"quantity"`                        // 数量
	Direction        string    `gorm:"type:varchar(8)" json:"direction,omitempty"`      // 方向（IN/OUT）
	LocationID       *uint     `json:"location_id,omitempty"`                           // 来源库位
	TargetLocationID *uint     `json:"target_location_id,omitempty"`                    // 目标库位（调拨）
	MovementKey      string    `gorm:"type:varchar(191)" json:"movement_key,omitempty"` // 幂等键前缀（为空时按单据行生成）
	ReservedQty      *int      `json:"reserved_qty,omitempty"`                          // 出库时消耗的预留数量（为空时按数量扣减预留）
	CreatedAt        time.Time `json:"created_at"`                                      // 创建时间
}

// TableName 指定表名
func (StockDocumentLine) TableName() string {
	return "stock_document_lines"
}
