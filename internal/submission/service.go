// Package submission 视频与文章投稿
// 流程：检查上传权限 -> 关键词审核 -> 以 pending 状态入库，等待有 moderate_content 权限的用户审核
package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"terminal-terrace/edustream/internal/model/content"
	"terminal-terrace/edustream/internal/moderation"
	"terminal-terrace/edustream/internal/rbac"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidInput      = errors.New("invalid submission")
	ErrForbidden         = errors.New("permission denied")
	ErrContentRejected   = errors.New("content rejected")
	ErrNotFound          = errors.New("submission not found")
	ErrInvalidTransition = errors.New("submission is not pending")
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Authorizer 权限检查，rbac.Resolver 实现了该接口
type Authorizer interface {
	Check(ctx context.Context, userID uuid.UUID, permission string) (bool, error)
}

// VerdictObserver 审核结果观察者
type VerdictObserver interface {
	ObserveVerdict(kind string, allowed bool)
}

type Service struct {
	repo      Repository
	authz     Authorizer
	moderator *moderation.Moderator
	observer  VerdictObserver
	logger    zerolog.Logger
	now       func() time.Time
}

type ServiceOption func(*Service)

func WithObserver(observer VerdictObserver) ServiceOption {
	return func(s *Service) {
		s.observer = observer
	}
}

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(repo Repository, authz Authorizer, moderator *moderation.Moderator, opts ...ServiceOption) *Service {
	s := &Service{
		repo:      repo,
		authz:     authz,
		moderator: moderator,
		logger:    zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitVideo 提交视频
// 审核不通过时返回的错误包装 ErrContentRejected，同时返回审核结果
func (s *Service) SubmitVideo(ctx context.Context, userID uuid.UUID, in NewVideo) (*VideoResult, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.VideoURL) == "" {
		return nil, fmt.Errorf("%w: title and video url are required", ErrInvalidInput)
	}
	if err := s.require(ctx, userID, rbac.PermUploadVideo); err != nil {
		return nil, err
	}

	verdict := s.evaluate(userID, moderation.ContentSubmission{
		Title:       in.Title,
		Description: in.Description,
		Kind:        moderation.KindVideo,
	})
	if !verdict.Allowed {
		return &VideoResult{Verdict: verdict}, fmt.Errorf("%w: %s", ErrContentRejected, verdict.Reason)
	}

	video := &content.Video{
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Category:    in.Category,
		VideoURL:    strings.TrimSpace(in.VideoURL),
		Status:      content.StatusPending,
	}
	if err := s.repo.CreateVideo(ctx, video); err != nil {
		return nil, fmt.Errorf("save video: %w", err)
	}
	return &VideoResult{Video: video, Verdict: verdict}, nil
}

// SubmitArticle 提交文章，正文作为描述参与审核
func (s *Service) SubmitArticle(ctx context.Context, userID uuid.UUID, in NewArticle) (*ArticleResult, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrInvalidInput)
	}
	if err := s.require(ctx, userID, rbac.PermCreateArticle); err != nil {
		return nil, err
	}

	verdict := s.evaluate(userID, moderation.ContentSubmission{
		Title:       in.Title,
		Description: in.Content,
		Kind:        moderation.KindArticle,
	})
	if !verdict.Allowed {
		return &ArticleResult{Verdict: verdict}, fmt.Errorf("%w: %s", ErrContentRejected, verdict.Reason)
	}

	article := &content.Article{
		UserID:   userID,
		Title:    strings.TrimSpace(in.Title),
		Content:  in.Content,
		Category: in.Category,
		Tags:     joinTags(in.Tags),
		Status:   content.StatusPending,
	}
	if err := s.repo.CreateArticle(ctx, article); err != nil {
		return nil, fmt.Errorf("save article: %w", err)
	}
	return &ArticleResult{Article: article, Verdict: verdict}, nil
}

// ListCatalog 已通过审核的内容，不需要登录
func (s *Service) ListCatalog(ctx context.Context, kind moderation.ContentKind, limit int) (*Catalog, error) {
	return s.list(ctx, kind, content.StatusApproved, limit)
}

// ListPending 待审核列表，需要 moderate_content
func (s *Service) ListPending(ctx context.Context, userID uuid.UUID, kind moderation.ContentKind, limit int) (*Catalog, error) {
	if err := s.require(ctx, userID, rbac.PermModerateContent); err != nil {
		return nil, err
	}
	return s.list(ctx, kind, content.StatusPending, limit)
}

// Review 审核投稿，只允许 pending -> approved / rejected
func (s *Service) Review(ctx context.Context, reviewerID uuid.UUID, kind moderation.ContentKind, id uuid.UUID, approve bool, notes string) (*ReviewResult, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidInput)
	}
	if err := s.require(ctx, reviewerID, rbac.PermModerateContent); err != nil {
		return nil, err
	}

	to := content.StatusRejected
	if approve {
		to = content.StatusApproved
	}

	record := ReviewRecord{ReviewerID: reviewerID, At: s.now()}
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		record.Notes = &trimmed
	}

	if err := s.repo.Transition(ctx, kind, id, to, record); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("kind", string(kind)).
		Str("id", id.String()).
		Str("reviewer_id", reviewerID.String()).
		Str("status", to).
		Msg("submission reviewed")
	return &ReviewResult{Status: to}, nil
}

func (s *Service) list(ctx context.Context, kind moderation.ContentKind, status string, limit int) (*Catalog, error) {
	limit = clampLimit(limit)
	out := &Catalog{Kind: kind}

	switch kind {
	case moderation.KindVideo:
		videos, err := s.repo.ListVideos(ctx, status, limit)
		if err != nil {
			return nil, fmt.Errorf("list videos: %w", err)
		}
		out.Videos = videos
	case moderation.KindArticle:
		articles, err := s.repo.ListArticles(ctx, status, limit)
		if err != nil {
			return nil, fmt.Errorf("list articles: %w", err)
		}
		out.Articles = articles
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, kind)
	}
	return out, nil
}

// require 未登录、无权限返回 ErrForbidden；角色存储故障原样返回，调用方可以区分
func (s *Service) require(ctx context.Context, userID uuid.UUID, permission rbac.PermissionName) error {
	if userID == uuid.Nil {
		return fmt.Errorf("%w: %s requires a signed-in user", ErrForbidden, permission)
	}
	allowed, err := s.authz.Check(ctx, userID, permission.String())
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%w: missing %s", ErrForbidden, permission)
	}
	return nil
}

func (s *Service) evaluate(userID uuid.UUID, submission moderation.ContentSubmission) moderation.ModerationVerdict {
	verdict := s.moderator.Evaluate(submission)
	if s.observer != nil {
		s.observer.ObserveVerdict(string(submission.Kind), verdict.Allowed)
	}
	if !verdict.Allowed {
		s.logger.Info().
			Str("user_id", userID.String()).
			Str("kind", string(submission.Kind)).
			Strs("matched", verdict.Matched).
			Msg("submission rejected by moderation")
	}
	return verdict
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

func joinTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		cleaned = append(cleaned, tag)
	}
	return strings.Join(cleaned, ",")
}
