package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin 后台操作员
// 凭据签发由外部认证服务负责，此处仅保存身份与 Token 失效信息
type Admin struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                         // 主键
	Username           string         `gorm:"uniqueIndex;not null" json:"username"`         // 操作员账号
	DisplayName        string         `gorm:"type:varchar(100)" json:"display_name"`        // 显示名称
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"`                  // Token 版本（用于全量失效）
	TokenInvalidBefore *time.Time     `gorm:"index" json:"-"`                               // 该时间点前签发的 Token 失效
	IsSuper            bool           `gorm:"not null;default:false;index" json:"is_super"` // 是否超级管理员（免权限校验）
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                      // 创建时间
	UpdatedAt          time.Time      `json:"updated_at"`                                   // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                               // 软删除时间
}

// TableName 指定表名
func (Admin) TableName() string {
	return "admins"
}
