package models

import "time"

// OrderStatusHistory 订单状态流转记录（只追加）
type OrderStatusHistory struct {
	ID           uint      `gorm:"primarykey" json:"id"`                             // 主键
	OrderID      uint      `gorm:"index;not null" json:"order_id"`                   // 订单ID
	FromStatus   string    `gorm:"type:varchar(32);not null" json:"from_status"`     // 原状态
	ToStatus     string    `gorm:"type:varchar(32);not null" json:"to_status"`       // 新状态
	ActorID      uint      `gorm:"not null;default:0" json:"actor_id"`               // 操作人
	NoteInternal string    `gorm:"type:text" json:"note_internal,omitempty"`         // 内部备注
	NoteCustomer string    `gorm:"type:text" json:"note_customer,omitempty"`         // 对客备注
	CancelReason string    `gorm:"type:varchar(500)" json:"cancel_reason,omitempty"` // 取消原因
	Forced       bool      `gorm:"not null;default:false" json:"forced"`             // 是否强制流转
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                          // 创建时间
}

// TableName 指定表名
func (OrderStatusHistory) TableName() string {
	return "order_status_histories"
}
