package models

import "time"

// StockMovement 库存流水（只追加，不修改不删除）
// 余额快照与库存余额在同一事务内写入
type StockMovement struct {
	ID                   uint      `gorm:"primarykey" json:"id"`                                          // 主键
	DocumentID           uint      `gorm:"index;not null" json:"document_id"`                             // 单据ID
	LineID               *uint     `gorm:"index" json:"line_id,omitempty"`                                // 单据行ID
	ProductID            uint      `gorm:"index;not null" json:"product_id"`                              // 商品ID
	WarehouseID          uint      `gorm:"index;not null" json:"warehouse_id"`                            // 仓库ID
	LocationID           *uint     `json:"location_id,omitempty"`                                         // 库位ID
	MovementType         string    `gorm:"type:varchar(20);index;not null" json:"movement_type"`          // 流水类型
	QtyChangeOnHand      int       `gorm:"not null;default:0" json:"qty_change_on_hand"`                  // 实物变动
	QtyChangeReserved    int       `gorm:"not null;default:0" json:"qty_change_reserved"`                 // 预留变动
	BalanceOnHandAfter   int       `gorm:"not null;default:0" json:"balance_on_hand_after"`               // 变动后实物余额
	BalanceReservedAfter int       `gorm:"not null;default:0" json:"balance_reserved_after"`              // 变动后预留余额
	IdempotencyKey       string    `gorm:"type:varchar(191);uniqueIndex;not null" json:"idempotency_key"` // 幂等键
	CreatedBy            uint      `gorm:"not null;default:0" json:"created_by"`                          // 操作人
	CreatedAt            time.Time `gorm:"index" json:"created_at"`                                       // 创建时间
}

// TableName 指定表名
func (StockMovement) TableName() string {
	return "stock_movements"
}
