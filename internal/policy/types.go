package policy

import (
	"terminal-terrace/edustream/internal/rbac"

	"github.com/google/uuid"
)

// EvaluateRequest 审核预检请求，kind 为空时按视频处理
type EvaluateRequest struct {
	Title       string `json:"title" binding:"max=255"`
	Description string `json:"description" binding:"max=5000"`
	Kind        string `json:"kind" binding:"omitempty,oneof=video article"`
}

// AccessResponse 当前用户的角色和有效权限
type AccessResponse struct {
	UserID      uuid.UUID             `json:"user_id"`
	Roles       []rbac.Role           `json:"roles"`
	Permissions []rbac.PermissionName `json:"permissions"`
}

// CheckResponse 单个权限的检查结果
type CheckResponse struct {
	Permission string `json:"permission"`
	Allowed    bool   `json:"allowed"`
}
