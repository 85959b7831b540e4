package models

import "time"

// Warehouse 仓库
// 任意时刻只有一个默认仓库，由服务层保证
type Warehouse struct {
	ID        uint      `gorm:"primarykey" json:"id"`                              // 主键
	Code      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"` // 仓库编码
	Name      string    `gorm:"type:varchar(128);not null" json:"name"`            // 仓库名称
	IsDefault bool      `gorm:"not null;default:false;index" json:"is_default"`    // 是否默认仓库
	IsActive  bool      `gorm:"not null;default:true;index" json:"is_active"`      // 是否启用
	CreatedAt time.Time `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                        // 更新时间

	Locations []WarehouseLocation `gorm:"foreignKey:WarehouseID" json:"locations,omitempty"` // 库位
}

// TableName 指定表名
func (Warehouse) TableName() string {
	return "warehouses"
}

// WarehouseLocation 库位（货架/货位/区域）
type WarehouseLocation struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                                          // 主键
	WarehouseID uint      `gorm:"not null;uniqueIndex:idx_warehouse_location_code" json:"warehouse_id"`          // 所属仓库
	Code        string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_warehouse_location_code" json:"code"` // 库位编码（仓内唯一）
	Name        string    `gorm:"type:varchar(128)" json:"name"`                                                 // 库位名称
	IsDefault   bool      `gorm:"not null;default:false" json:"is_default"`                                      // 是否仓内默认库位
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                                       // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                                                                    // 更新时间
}

// TableName 指定表名
func (WarehouseLocation) TableName() string {
	return "warehouse_locations"
}
