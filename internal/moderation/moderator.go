// Package moderation 基于关键词的内容审核
// 对标题和描述做朴素的子串匹配（不做分词、不做词干化），
// 因此 "kill" 会命中 "killer"，例外词出现在无关单词里同样会放行，这是已知的误判来源。
package moderation

import (
	"fmt"
	"strings"
)

// ContentKind 内容类型
type ContentKind string

const (
	KindVideo   ContentKind = "video"
	KindArticle ContentKind = "article"
)

// ApprovedReason 审核通过时的固定说明
const ApprovedReason = "Content approved"

const rejectedReasonPrefix = "Content contains sensitive terms: "

// ParseContentKind 解析内容类型
func ParseContentKind(s string) (ContentKind, error) {
	switch ContentKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindVideo:
		return KindVideo, nil
	case KindArticle:
		return KindArticle, nil
	default:
		return "", fmt.Errorf("unknown content kind %q", s)
	}
}

// ContentSubmission 待审核的内容
type ContentSubmission struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Kind        ContentKind `json:"kind"`
}

// ModerationVerdict 审核结果
// Allowed 为 false 当且仅当命中了敏感词且文本中没有任何文化例外词
type ModerationVerdict struct {
	Allowed bool     `json:"allowed"`
	Reason  string   `json:"reason"`
	Matched []string `json:"matched,omitempty"`
}

// Rejected 是否被拒绝
func (v ModerationVerdict) Rejected() bool {
	return !v.Allowed
}

// Moderator 内容审核器，无状态，可并发使用
type Moderator struct {
	policy KeywordPolicy
}

// NewModerator 使用给定策略创建审核器
func NewModerator(policy KeywordPolicy) *Moderator {
	return &Moderator{policy: policy}
}

// Policy 返回审核器使用的策略
func (m *Moderator) Policy() KeywordPolicy {
	return m.policy
}

// Evaluate 审核一条内容
// 纯函数，不会 panic，空字符串按空文本处理（结果为通过）
func (m *Moderator) Evaluate(submission ContentSubmission) ModerationVerdict {
	text := strings.ToLower(submission.Title + " " + submission.Description)

	var found []string
	for _, term := range m.policy.sensitiveTerms {
		if strings.Contains(text, term) {
			found = append(found, term)
		}
	}

	if len(found) > 0 && !m.hasCulturalContext(text) {
		return ModerationVerdict{
			Allowed: false,
			Reason:  rejectedReasonPrefix + strings.Join(found, ", "),
			Matched: found,
		}
	}

	return ModerationVerdict{
		Allowed: true,
		Reason:  ApprovedReason,
	}
}

func (m *Moderator) hasCulturalContext(text string) bool {
	for _, term := range m.policy.culturalExceptions {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

var defaultModerator = NewModerator(DefaultPolicy())

// Evaluate 使用默认策略审核内容
func Evaluate(submission ContentSubmission) ModerationVerdict {
	return defaultModerator.Evaluate(submission)
}
