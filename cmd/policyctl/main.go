// Package main 审核与权限的运维命令行
//
//	policyctl moderate --title "..." --description "..." --kind video
//	policyctl check --user <uuid> --permission upload_video
//	policyctl roles --user <uuid>
package main

import (
	"fmt"
	"os"

	"terminal-terrace/edustream/config"
	"terminal-terrace/edustream/internal/database"
	"terminal-terrace/edustream/internal/rbac"
)

func main() {
	if err := rootCmd(openGormStore).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// storeOpener 按配置文件打开角色存储，返回的函数用于释放连接
type storeOpener func(configPath string) (rbac.RoleStore, func(), error)

// openGormStore 只读连接角色库，不做迁移
func openGormStore(configPath string) (rbac.RoleStore, func(), error) {
	if err := config.Load(configPath); err != nil {
		return nil, nil, err
	}
	db, err := database.OpenReadOnly()
	if err != nil {
		return nil, nil, fmt.Errorf("connect role store: %w", err)
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return rbac.NewGormStore(db), closeDB, nil
}
