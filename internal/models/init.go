package models

import (
	"strings"
	"time"

	"github.com/cangchu-next/internal/logger"
)

// EnsureDefaultAdmin 确保存在默认超级管理员
// 返回该管理员，供 seed 命令签发开发环境 Token
func EnsureDefaultAdmin(username string) (*Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		username = "admin"
	}

	var admin Admin
	err := DB.Where("username = ?", username).Limit(1).Find(&admin).Error
	if err != nil {
		return nil, err
	}
	if admin.ID != 0 {
		if !admin.IsSuper {
			if err := DB.Model(&admin).Update("is_super", true).Error; err != nil {
				logger.Warnw("ensure_default_admin_super_failed", "username", username, "error", err)
			}
			admin.IsSuper = true
		}
		return &admin, nil
	}

	now := time.Now()
	admin = Admin{
		Username:  username,
		IsSuper:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return nil, err
	}
	logger.Infow("default_admin_created", "username", username, "admin_id", admin.ID)
	return &admin, nil
}
