package rbac

import "errors"

var (
	// ErrStoreUnavailable 角色存储不可用，由调用方决定是否重试
	ErrStoreUnavailable = errors.New("role store unavailable")
	// ErrUnresolved 当前会话的权限尚未加载完成
	ErrUnresolved = errors.New("permissions not resolved")
	// ErrUnknownRole 非法角色名称
	ErrUnknownRole = errors.New("unknown role")
	// ErrInvalidPermission 非法权限名称
	ErrInvalidPermission = errors.New("invalid permission name")
)

// UnverifiedMessage 无法确认权限时给用户的提示
const UnverifiedMessage = "unable to verify access, try again"

// IsUnverified 权限是否无法确认（而不是被拒绝）
func IsUnverified(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrUnresolved)
}
