// Package content 视频与文章投稿
package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 审核状态：pending(待审核), approved(已通过), rejected(已驳回)
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Video 视频表
// 只保存元数据，视频文件本身由外部存储提供，这里只记录地址
type Video struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"type:varchar(100)" json:"category"`
	VideoURL    string    `gorm:"type:text;not null" json:"video_url"`
	Status      string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	// 审核备注，驳回时填写原因
	ReviewNotes *string    `gorm:"type:text" json:"review_notes,omitempty"`
	ReviewedBy  *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	Views       int        `gorm:"default:0" json:"views"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Article 文章表
type Article struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Category    string     `gorm:"type:varchar(100)" json:"category"`
	Tags        string     `gorm:"type:text" json:"tags"` // 逗号分隔
	Status      string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReviewNotes *string    `gorm:"type:text" json:"review_notes,omitempty"`
	ReviewedBy  *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	Views       int        `gorm:"default:0" json:"views"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (Video) TableName() string {
	return "videos"
}

func (Article) TableName() string {
	return "articles"
}
