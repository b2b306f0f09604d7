package rbac

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// RoleStore 外部角色存储，只读
type RoleStore interface {
	// RolesForUser 返回用户被分配的角色，没有角色时返回空切片
	RolesForUser(ctx context.Context, userID uuid.UUID) ([]Role, error)
	// PermissionsForRole 返回角色关联的权限
	PermissionsForRole(ctx context.Context, role Role) ([]Permission, error)
}

// MemoryStore 内存实现的角色存储，用于测试和命令行演示
type MemoryStore struct {
	mu        sync.RWMutex
	userRoles map[uuid.UUID][]Role
	rolePerms map[Role][]Permission
	err       error
}

// NewMemoryStore 创建内存角色存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		userRoles: make(map[uuid.UUID][]Role),
		rolePerms: make(map[Role][]Permission),
	}
}

// AssignRoles 设置用户的角色
func (m *MemoryStore) AssignRoles(userID uuid.UUID, roles ...Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userRoles[userID] = append([]Role(nil), roles...)
}

// Grant 给角色追加权限
func (m *MemoryStore) Grant(role Role, perms ...Permission) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolePerms[role] = append(m.rolePerms[role], perms...)
}

// FailWith 之后的所有读取都返回 err，传 nil 恢复
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MemoryStore) RolesForUser(ctx context.Context, userID uuid.UUID) ([]Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]Role(nil), m.userRoles[userID]...), nil
}

func (m *MemoryStore) PermissionsForRole(ctx context.Context, role Role) ([]Permission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]Permission(nil), m.rolePerms[role]...), nil
}
