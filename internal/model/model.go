package model

import (
	"terminal-terrace/edustream/internal/model/access"
	"terminal-terrace/edustream/internal/model/content"

	"gorm.io/gorm"
)

func InitTable(db *gorm.DB) error {
	// 自动迁移数据库表结构
	err := db.AutoMigrate(
		// 角色权限
		&access.Permission{},
		&access.RolePermission{},
		&access.UserRole{},
		// 投稿
		&content.Video{},
		&content.Article{},
	)
	if err != nil {
		return err
	}
	return nil
}
