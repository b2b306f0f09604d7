package submission

import (
	"context"
	"time"

	"terminal-terrace/edustream/internal/model/content"
	"terminal-terrace/edustream/internal/moderation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository 投稿存储
type Repository interface {
	CreateVideo(ctx context.Context, video *content.Video) error
	CreateArticle(ctx context.Context, article *content.Article) error
	ListVideos(ctx context.Context, status string, limit int) ([]content.Video, error)
	ListArticles(ctx context.Context, status string, limit int) ([]content.Article, error)
	// Transition 把 pending 状态的记录改为 to，记录不是 pending 时返回 ErrInvalidTransition
	Transition(ctx context.Context, kind moderation.ContentKind, id uuid.UUID, to string, review ReviewRecord) error
}

// ReviewRecord 审核信息
type ReviewRecord struct {
	ReviewerID uuid.UUID
	Notes      *string
	At         time.Time
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) CreateVideo(ctx context.Context, video *content.Video) error {
	return r.db.WithContext(ctx).Create(video).Error
}

func (r *GormRepository) CreateArticle(ctx context.Context, article *content.Article) error {
	return r.db.WithContext(ctx).Create(article).Error
}

// ListVideos 按创建时间倒序
func (r *GormRepository) ListVideos(ctx context.Context, status string, limit int) ([]content.Video, error) {
	var videos []content.Video
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Limit(limit).
		Find(&videos).Error
	return videos, err
}

// ListArticles 按创建时间倒序
func (r *GormRepository) ListArticles(ctx context.Context, status string, limit int) ([]content.Article, error) {
	var articles []content.Article
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Limit(limit).
		Find(&articles).Error
	return articles, err
}

// Transition 用带状态条件的 UPDATE 保证只有 pending 能被审核，并发审核时只有一个成功
func (r *GormRepository) Transition(ctx context.Context, kind moderation.ContentKind, id uuid.UUID, to string, review ReviewRecord) error {
	var model any
	switch kind {
	case moderation.KindVideo:
		model = &content.Video{}
	case moderation.KindArticle:
		model = &content.Article{}
	default:
		return ErrInvalidInput
	}

	db := r.db.WithContext(ctx)
	result := db.Model(model).
		Where("id = ? AND status = ?", id, content.StatusPending).
		Updates(map[string]any{
			"status":       to,
			"reviewed_by":  review.ReviewerID,
			"review_notes": review.Notes,
			"reviewed_at":  review.At,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// 没有更新任何行：记录不存在，或者已经审核过
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrInvalidTransition
}

