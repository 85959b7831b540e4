package models

import "time"

// InventoryItem 库存余额投影，按 (商品, 仓库, 库位) 唯一
// AvailableQty 恒等于 OnHandQty - ReservedQty，只由库存账本写入
type InventoryItem struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                                             // 主键
	ProductID    uint      `gorm:"not null;uniqueIndex:idx_inventory_item_key,priority:1" json:"product_id"`         // 商品ID
	WarehouseID  uint      `gorm:"not null;uniqueIndex:idx_inventory_item_key,priority:2;index" json:"warehouse_id"` // 仓库ID
	LocationID   *uint     `gorm:"index" json:"location_id"`                                                         // 库位ID（空表示仓库级）
	LocationKey  uint      `gorm:"not null;default:0;uniqueIndex:idx_inventory_item_key,priority:3" json:"-"`        // 库位唯一键（空库位记为 0）
	OnHandQty    int       `gorm:"not null;default:0" json:"on_hand_qty"`                                            // 实物数量
	ReservedQty  int       `gorm:"not null;default:0" json:"reserved_qty"`                                           // 已预留数量
	AvailableQty int       `gorm:"not null;default:0;index" json:"available_qty"`                                    // 可用数量
	ReorderPoint int       `gorm:"not null;default:0" json:"reorder_point"`                                          // 补货提醒阈值
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                                                          // 创建时间
	UpdatedAt    time.Time `json:"updated_at"`                                                                       // 更新时间
}

// TableName 指定表名
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// LocationKeyOf 将可空库位转换为唯一键
func LocationKeyOf(locationID *uint) uint {
	if locationID == nil {
		return 0
	}
	return *locationID
}
