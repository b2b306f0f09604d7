package submission

import (
	"terminal-terrace/edustream/internal/model/content"
	"terminal-terrace/edustream/internal/moderation"
)

// NewVideo 视频投稿，视频文件由外部存储上传，这里只接收地址
type NewVideo struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"max=5000"`
	Category    string `json:"category" binding:"max=100"`
	VideoURL    string `json:"video_url" binding:"required,url"`
}

// NewArticle 文章投稿
type NewArticle struct {
	Title    string   `json:"title" binding:"required,max=255"`
	Content  string   `json:"content" binding:"required"`
	Category string   `json:"category" binding:"max=100"`
	Tags     []string `json:"tags" binding:"max=20,dive,max=50"`
}

// ReviewRequest 审核请求
type ReviewRequest struct {
	Approve *bool  `json:"approve" binding:"required"`
	Notes   string `json:"notes" binding:"max=2000"`
}

// VideoResult 视频投稿结果
type VideoResult struct {
	Video   *content.Video               `json:"video,omitempty"`
	Verdict moderation.ModerationVerdict `json:"verdict"`
}

// ArticleResult 文章投稿结果
type ArticleResult struct {
	Article *content.Article             `json:"article,omitempty"`
	Verdict moderation.ModerationVerdict `json:"verdict"`
}

// Catalog 列表结果，按类型只填充其中一个
type Catalog struct {
	Kind     moderation.ContentKind `json:"kind"`
	Videos   []content.Video        `json:"videos,omitempty"`
	Articles []content.Article      `json:"articles,omitempty"`
}

// ReviewResult 审核后的状态
type ReviewResult struct {
	Status string `json:"status"`
}
