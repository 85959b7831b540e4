package models

import (
	"time"
)

// Product 商品只读投影
// 商品目录的增删改由目录服务负责，本服务只读取名称/SKU 并维护可用库存汇总
type Product struct {
	ID             uint      `gorm:"primarykey" json:"id"`                         // 主键
	SKU            string    `gorm:"uniqueIndex;not null" json:"sku"`              // SKU 编码
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`       // 商品名称
	StockAvailable int       `gorm:"not null;default:0" json:"stock_available"`    // 跨仓可用库存汇总（缓存字段，非事实来源）
	IsActive       bool      `gorm:"not null;default:true;index" json:"is_active"` // 是否启用
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                      // 创建时间
	UpdatedAt      time.Time `json:"updated_at"`                                   // 更新时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
