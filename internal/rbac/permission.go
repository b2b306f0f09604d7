package rbac

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/go-playground/validator/v10"
)

var (
	permissionNameTag   = "permname"
	permissionNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*(:[a-z][a-z0-9_]*)*$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation(permissionNameTag, func(fl validator.FieldLevel) bool {
		return permissionNameRegex.MatchString(fl.Field().String())
	})
	return v
}

// PermissionName 校验过的权限标识
// 由小写字母、数字和下划线组成，可用冒号分隔命名空间，如 upload_video、content:moderate
type PermissionName string

// NewPermissionName 校验并创建权限标识
func NewPermissionName(s string) (PermissionName, error) {
	if err := validate.Var(s, "required,max=128,"+permissionNameTag); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPermission, s)
	}
	return PermissionName(s), nil
}

// MustPermissionName 同 NewPermissionName，非法时 panic，只用于常量定义
func MustPermissionName(s string) PermissionName {
	name, err := NewPermissionName(s)
	if err != nil {
		panic(err)
	}
	return name
}

func (n PermissionName) String() string {
	return string(n)
}

// 系统内置的权限
var (
	PermUploadVideo     = MustPermissionName("upload_video")
	PermCreateArticle   = MustPermissionName("create_article")
	PermModerateContent = MustPermissionName("moderate_content")
	PermManageUsers     = MustPermissionName("manage_users")
	PermViewContent     = MustPermissionName("view_content")
)

// IsBuiltin 是否为系统内置权限
func (n PermissionName) IsBuiltin() bool {
	switch n {
	case PermUploadVideo, PermCreateArticle, PermModerateContent, PermManageUsers, PermViewContent:
		return true
	}
	return false
}

// Permission 权限
type Permission struct {
	ID          string         `json:"id"`
	Name        PermissionName `json:"name"`
	Description *string        `json:"description,omitempty"`
}

// PermissionSet 权限集合，按权限 ID 去重
type PermissionSet map[string]Permission

// NewPermissionSet 创建权限集合
func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set.Add(p)
	}
	return set
}

// Add 添加权限，ID 已存在时保留原有项
func (s PermissionSet) Add(p Permission) {
	if _, ok := s[p.ID]; ok {
		return
	}
	s[p.ID] = p
}

// Union 返回两个集合的并集
func (s PermissionSet) Union(other PermissionSet) PermissionSet {
	out := make(PermissionSet, len(s)+len(other))
	for _, p := range s {
		out.Add(p)
	}
	for _, p := range other {
		out.Add(p)
	}
	return out
}

// Len 权限数量
func (s PermissionSet) Len() int {
	return len(s)
}

// HasName 集合中是否有指定名称的权限
func (s PermissionSet) HasName(name PermissionName) bool {
	for _, p := range s {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Names 权限名称列表（已去重、排序）
func (s PermissionSet) Names() []PermissionName {
	seen := make(map[PermissionName]struct{}, len(s))
	names := make([]PermissionName, 0, len(s))
	for _, p := range s {
		if _, ok := seen[p.Name]; ok {
			continue
		}
		seen[p.Name] = struct{}{}
		names = append(names, p.Name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Slice 按名称、ID 排序的权限列表
func (s PermissionSet) Slice() []Permission {
	out := make([]Permission, 0, len(s))
	for _, p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
