package submission

import (
	"errors"
	"strconv"

	"terminal-terrace/edustream/internal/dto"
	"terminal-terrace/edustream/internal/middleware"
	"terminal-terrace/edustream/internal/moderation"
	"terminal-terrace/edustream/internal/rbac"
	"terminal-terrace/edustream/packages/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SubmitVideo 提交视频
// @Router /videos [post]
func (h *Handler) SubmitVideo(c *gin.Context) {
	var req NewVideo
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	result, err := h.service.SubmitVideo(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		var data any
		if result != nil {
			data = result.Verdict
		}
		dto.ErrorResponse(c, toBusinessError(err, data))
		return
	}
	dto.SuccessResponse(c, result)
}

// SubmitArticle 提交文章
// @Router /articles [post]
func (h *Handler) SubmitArticle(c *gin.Context) {
	var req NewArticle
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ValidationErrorResponse(c, err)
		return
	}

	result, err := h.service.SubmitArticle(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		var data any
		if result != nil {
			data = result.Verdict
		}
		dto.ErrorResponse(c, toBusinessError(err, data))
		return
	}
	dto.SuccessResponse(c, result)
}

// ListCatalog 已通过审核的内容
// @Router /videos [get]
// @Router /articles [get]
func (h *Handler) ListCatalog(kind moderation.ContentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		catalog, err := h.service.ListCatalog(c.Request.Context(), kind, queryLimit(c))
		if err != nil {
			dto.ErrorResponse(c, toBusinessError(err, nil))
			return
		}
		dto.SuccessResponse(c, catalog)
	}
}

// ListPending 待审核列表
// @Router /videos/pending [get]
// @Router /articles/pending [get]
func (h *Handler) ListPending(kind moderation.ContentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		catalog, err := h.service.ListPending(c.Request.Context(), middleware.CurrentUserID(c), kind, queryLimit(c))
		if err != nil {
			dto.ErrorResponse(c, toBusinessError(err, nil))
			return
		}
		dto.SuccessResponse(c, catalog)
	}
}

// Review 审核投稿
// @Router /videos/{id}/review [post]
// @Router /articles/{id}/review [post]
func (h *Handler) Review(kind moderation.ContentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			dto.ErrorResponse(c, response.NewBusinessError(
				response.WithErrorCode(response.ParseError),
				response.WithErrorMessage("无效的投稿ID"),
			))
			return
		}

		var req ReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			dto.ValidationErrorResponse(c, err)
			return
		}

		result, err := h.service.Review(c.Request.Context(), middleware.CurrentUserID(c), kind, id, *req.Approve, req.Notes)
		if err != nil {
			dto.ErrorResponse(c, toBusinessError(err, nil))
			return
		}
		dto.SuccessResponse(c, result)
	}
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return limit
}

// toBusinessError 把服务层错误转换为接口错误码
func toBusinessError(err error, data any) *response.BusinessError {
	switch {
	case errors.Is(err, ErrContentRejected):
		reason := err.Error()
		if verdict, ok := data.(moderation.ModerationVerdict); ok {
			reason = verdict.Reason
		}
		return response.NewBusinessError(
			response.WithErrorCode(response.ModerationRejected),
			response.WithErrorMessage(reason),
			response.WithErrorData(data),
			response.WithError(err),
		)
	case errors.Is(err, ErrInvalidInput):
		return response.NewBusinessError(
			response.WithErrorCode(response.InvalidParameter),
			response.WithErrorMessage(err.Error()),
		)
	case errors.Is(err, ErrForbidden):
		return response.NewBusinessError(
			response.WithErrorCode(response.Forbidden),
			response.WithErrorMessage("没有权限执行此操作"),
			response.WithError(err),
		)
	case rbac.IsUnverified(err):
		return response.NewBusinessError(
			response.WithErrorCode(response.AccessUnverified),
			response.WithErrorMessage(rbac.UnverifiedMessage),
			response.WithError(err),
		)
	case errors.Is(err, ErrNotFound):
		return response.NewBusinessError(
			response.WithErrorCode(response.NotFound),
			response.WithErrorMessage("投稿不存在"),
		)
	case errors.Is(err, ErrInvalidTransition):
		return response.NewBusinessError(
			response.WithErrorCode(response.InvalidState),
			response.WithErrorMessage("投稿已审核，不能重复审核"),
		)
	default:
		return response.NewBusinessError(
			response.WithErrorCode(response.Fail),
			response.WithErrorMessage("服务器内部错误"),
			response.WithError(err),
		)
	}
}
