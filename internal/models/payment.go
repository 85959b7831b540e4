package models

import "time"

// Payment 收退款记录（支付账本的只读投影）
type Payment struct {
	ID          uint       `gorm:"primarykey" json:"id"`                          // 主键
	OrderID     uint       `gorm:"index;not null" json:"order_id"`                // 订单ID
	Direction   string     `gorm:"type:varchar(8);not null" json:"direction"`     // 方向（in 收款 / out 退款）
	Amount      Money      `gorm:"type:decimal(20,2);not null" json:"amount"`     // 金额
	Currency    string     `gorm:"type:varchar(8);not null" json:"currency"`      // 币种
	Status      string     `gorm:"type:varchar(20);index;not null" json:"status"` // 状态
	ProviderRef string     `gorm:"type:varchar(128);index" json:"provider_ref"`   // 第三方流水号
	PaidAt      *time.Time `gorm:"index" json:"paid_at"`                          // 完成时间
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt   time.Time  `json:"updated_at"`                                    // 更新时间
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}
