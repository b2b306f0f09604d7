package rbac

import (
	"fmt"
	"sort"
	"strings"
)

// Role 用户角色，取值是封闭的枚举
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
	RoleParent  Role = "parent"
	RoleGuest   Role = "guest"
)

// AllRoles 所有合法角色，顺序即展示顺序
var AllRoles = []Role{RoleStudent, RoleTeacher, RoleAdmin, RoleParent, RoleGuest}

var roleOrder = map[Role]int{
	RoleStudent: 0,
	RoleTeacher: 1,
	RoleAdmin:   2,
	RoleParent:  3,
	RoleGuest:   4,
}

// ParseRole 解析角色名称，大小写敏感，未知角色返回错误
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// IsValid 是否为合法角色
func (r Role) IsValid() bool {
	_, ok := roleOrder[r]
	return ok
}

func (r Role) String() string {
	return string(r)
}

// RoleSet 角色集合
type RoleSet map[Role]struct{}

// NewRoleSet 创建角色集合，非法角色会被忽略
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set.Add(r)
	}
	return set
}

// Add 添加角色，返回是否添加成功
func (s RoleSet) Add(r Role) bool {
	if !r.IsValid() {
		return false
	}
	s[r] = struct{}{}
	return true
}

// Contains 是否包含角色
func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

// Len 角色数量
func (s RoleSet) Len() int {
	return len(s)
}

// IsEmpty 是否为空
func (s RoleSet) IsEmpty() bool {
	return len(s) == 0
}

// Union 返回两个集合的并集
func (s RoleSet) Union(other RoleSet) RoleSet {
	out := make(RoleSet, len(s)+len(other))
	for r := range s {
		out[r] = struct{}{}
	}
	for r := range other {
		out[r] = struct{}{}
	}
	return out
}

// Slice 按枚举顺序返回角色列表
func (s RoleSet) Slice() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return roleOrder[out[i]] < roleOrder[out[j]]
	})
	return out
}

func (s RoleSet) String() string {
	names := make([]string, 0, len(s))
	for _, r := range s.Slice() {
		names = append(names, string(r))
	}
	return "{" + strings.Join(names, ",") + "}"
}
