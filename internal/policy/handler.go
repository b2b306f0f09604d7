// Package policy 对外提供审核预检和权限查询接口
package policy

import (
	"context"
	"errors"

	"terminal-terrace/edustream/internal/dto"
	"terminal-terrace/edustream/internal/middleware"
	"terminal-terrace/edustream/internal/moderation"
	"terminal-terrace/edustream/internal/rbac"
	"terminal-terrace/edustream/packages/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PermissionResolver rbac.Resolver 实现了该接口
type PermissionResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (rbac.Snapshot, error)
	Check(ctx context.Context, userID uuid.UUID, permission string) (bool, error)
}

// VerdictObserver 审核结果观察者
type VerdictObserver interface {
	ObserveVerdict(kind string, allowed bool)
}

type Handler struct {
	moderator *moderation.Moderator
	resolver  PermissionResolver
	observer  VerdictObserver
}

func NewHandler(moderator *moderation.Moderator, resolver PermissionResolver, observer VerdictObserver) *Handler {
	return &Handler{
		moderator: moderator,
		resolver:  resolver,
		observer:  observer,
	}
}

// Evaluate 审核预检，不保存内容
// @Router /moderation/evaluate [post]
func (h *Handler) Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	kind := moderation.KindVideo
	if req.Kind != "" {
		parsed, err := moderation.ParseContentKind(req.Kind)
		if err != nil {
			dto.ErrorResponse(c, response.NewBusinessError(
				response.WithErrorCode(response.InvalidParameter),
				response.WithErrorMessage(err.Error()),
			))
			return
		}
		kind = parsed
	}

	verdict := h.moderator.Evaluate(moderation.ContentSubmission{
		Title:       req.Title,
		Description: req.Description,
		Kind:        kind,
	})
	if h.observer != nil {
		h.observer.ObserveVerdict(string(kind), verdict.Allowed)
	}
	dto.SuccessResponse(c, verdict)
}

// Me 当前用户的角色和有效权限
// @Router /permissions/me [get]
func (h *Handler) Me(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	snap, err := h.resolver.Resolve(c.Request.Context(), userID)
	if err != nil {
		dto.ErrorResponse(c, accessError(err))
		return
	}

	dto.SuccessResponse(c, AccessResponse{
		UserID:      userID,
		Roles:       snap.Roles.Slice(),
		Permissions: snap.Permissions.Names(),
	})
}

// Check 检查当前用户是否拥有某个权限
// @Router /permissions/check [get]
func (h *Handler) Check(c *gin.Context) {
	name := c.Query("name")

	allowed, err := h.resolver.Check(c.Request.Context(), middleware.CurrentUserID(c), name)
	if err != nil {
		dto.ErrorResponse(c, accessError(err))
		return
	}

	dto.SuccessResponse(c, CheckResponse{
		Permission: name,
		Allowed:    allowed,
	})
}

func accessError(err error) *response.BusinessError {
	switch {
	case errors.Is(err, rbac.ErrInvalidPermission):
		return response.NewBusinessError(
			response.WithErrorCode(response.InvalidParameter),
			response.WithErrorMessage(err.Error()),
		)
	case rbac.IsUnverified(err):
		return response.NewBusinessError(
			response.WithErrorCode(response.AccessUnverified),
			response.WithErrorMessage(rbac.UnverifiedMessage),
			response.WithError(err),
		)
	default:
		return response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("服务器内部错误"),
			response.WithError(err),
		)
	}
}
