package rbac

import (
	"context"
	"time"
)

// RolePermissionIndex 角色到权限集合的内存邻接表
// 每次权限检查只查这张表，不再对 user_roles/role_permissions/permissions 做连表查询
type RolePermissionIndex struct {
	byRole  map[Role]PermissionSet
	BuiltAt time.Time
}

// NewRolePermissionIndex 由映射直接构造索引
func NewRolePermissionIndex(mapping map[Role][]Permission) *RolePermissionIndex {
	idx := &RolePermissionIndex{
		byRole:  make(map[Role]PermissionSet, len(mapping)),
		BuiltAt: time.Now(),
	}
	for role, perms := range mapping {
		if !role.IsValid() {
			continue
		}
		idx.byRole[role] = NewPermissionSet(perms...)
	}
	return idx
}

// BuildIndex 从角色存储读取全部角色的权限并构造索引
func BuildIndex(ctx context.Context, store RoleStore) (*RolePermissionIndex, error) {
	mapping := make(map[Role][]Permission, len(AllRoles))
	for _, role := range AllRoles {
		perms, err := store.PermissionsForRole(ctx, role)
		if err != nil {
			return nil, err
		}
		mapping[role] = perms
	}
	return NewRolePermissionIndex(mapping), nil
}

// PermissionsFor 返回单个角色的权限集合
func (idx *RolePermissionIndex) PermissionsFor(role Role) PermissionSet {
	if idx == nil {
		return PermissionSet{}
	}
	return idx.byRole[role].Union(nil)
}

// EffectivePermissions 计算角色集合的有效权限：各角色权限按 ID 去重后的并集
// 空角色集合返回空权限集合
func (idx *RolePermissionIndex) EffectivePermissions(roles RoleSet) PermissionSet {
	out := PermissionSet{}
	if idx == nil {
		return out
	}
	for role := range roles {
		for _, p := range idx.byRole[role] {
			out.Add(p)
		}
	}
	return out
}

// Has 是否有任一角色拥有该权限
func (idx *RolePermissionIndex) Has(name PermissionName) bool {
	if idx == nil {
		return false
	}
	for _, perms := range idx.byRole {
		for _, p := range perms {
			if p.Name == name {
				return true
			}
		}
	}
	return false
}
