package rbac

import (
	"context"
	"fmt"

	"terminal-terrace/edustream/internal/model/access"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStore 基于 user_roles / role_permissions / permissions 三张表的角色存储
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// RolesForUser 原样返回 user_roles 中的角色字符串，是否合法由 Resolver 判断
func (s *GormStore) RolesForUser(ctx context.Context, userID uuid.UUID) ([]Role, error) {
	var rows []access.UserRole
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("role ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query user_roles: %w", err)
	}

	roles := make([]Role, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, Role(row.Role))
	}
	return roles, nil
}

// PermissionsForRole 通过 role_permissions 关联查询角色的权限
// 名称不合法的权限行会被跳过
func (s *GormStore) PermissionsForRole(ctx context.Context, role Role) ([]Permission, error) {
	var rows []access.Permission
	err := s.db.WithContext(ctx).
		Table("permissions").
		Select("permissions.id, permissions.name, permissions.description").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role = ?", string(role)).
		Order("permissions.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query role_permissions for %s: %w", role, err)
	}

	perms := make([]Permission, 0, len(rows))
	for _, row := range rows {
		name, err := NewPermissionName(row.Name)
		if err != nil {
			continue
		}
		perms = append(perms, Permission{
			ID:          row.ID.String(),
			Name:        name,
			Description: row.Description,
		})
	}
	return perms, nil
}
