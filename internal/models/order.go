package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
// OrderStatus 仅通过状态机流转；FulfillmentStatus 与 Status 为写入时派生的兼容字段
type Order struct {
	ID                     uint           `gorm:"primarykey" json:"id"`                                            // 主键
	OrderNo                string         `gorm:"uniqueIndex;not null" json:"order_no"`                            // 订单编号
	OrderStatus            string         `gorm:"type:varchar(32);index;not null" json:"order_status"`             // 状态机状态
	FulfillmentStatus      string         `gorm:"type:varchar(32);index;not null" json:"fulfillment_status"`       // 履约状态（派生）
	Status                 string         `gorm:"type:varchar(32);index;not null" json:"status"`                   // 旧版粗粒度状态（派生）
	FulfillmentWarehouseID *uint          `gorm:"index" json:"fulfillment_warehouse_id,omitempty"`                 // 履约仓库
	Currency               string         `gorm:"type:varchar(8);not null" json:"currency"`                        // 币种
	TotalAmount            Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`       // 订单金额
	PaidAmount             Money          `gorm:"type:decimal(20,2);not null;default:0" json:"paid_amount"`        // 已收金额
	OutstandingAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"outstanding_amount"` // 待收金额
	PaymentState           string         `gorm:"type:varchar(32);index" json:"payment_state"`                     // 收款状态
	AccountingStatus       string         `gorm:"type:varchar(32);index" json:"accounting_status"`                 // 对账状态
	CancelReason           string         `gorm:"type:varchar(500)" json:"cancel_reason,omitempty"`                // 取消原因
	ShippedAt              *time.Time     `gorm:"index" json:"shipped_at"`                                         // 发货时间
	DeliveredAt            *time.Time     `gorm:"index" json:"delivered_at"`                                       // 签收时间
	CanceledAt             *time.Time     `gorm:"index" json:"canceled_at"`                                        // 取消时间
	CreatedAt              time.Time      `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt              time.Time      `gorm:"index" json:"updated_at"`                                         // 更新时间
	DeletedAt              gorm.DeletedAt `gorm:"index" json:"-"`                                                  // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
