package moderation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEvaluateScenarios 测试典型审核场景
func TestEvaluateScenarios(t *testing.T) {
	tests := []struct {
		name       string
		submission ContentSubmission
		allowed    bool
		reason     string
	}{
		{
			name: "cultural class without sensitive terms",
			submission: ContentSubmission{
				Title:       "Class on indigenous ritual dance",
				Description: "teaching tradition",
				Kind:        KindVideo,
			},
			allowed: true,
			reason:  ApprovedReason,
		},
		{
			name: "graphic violence is rejected",
			submission: ContentSubmission{
				Title:       "Graphic violence in war",
				Description: "contains blood and gore",
				Kind:        KindVideo,
			},
			allowed: false,
			reason:  "Content contains sensitive terms: violence, gore, blood",
		},
		{
			name: "cultural exception overrides violence",
			submission: ContentSubmission{
				Title:       "Indigenous tribal ritual with depicted violence",
				Description: "educational context",
				Kind:        KindArticle,
			},
			allowed: true,
			reason:  ApprovedReason,
		},
		{
			name:       "empty submission is allowed",
			submission: ContentSubmission{},
			allowed:    true,
			reason:     ApprovedReason,
		},
		{
			name: "substring match inside longer word",
			submission: ContentSubmission{
				Title:       "The killer whale",
				Description: "ocean documentary",
				Kind:        KindVideo,
			},
			allowed: false,
			reason:  "Content contains sensitive terms: kill",
		},
		{
			name: "matching is case insensitive",
			submission: ContentSubmission{
				Title:       "ELECTION Night",
				Description: "",
				Kind:        KindArticle,
			},
			allowed: false,
			reason:  "Content contains sensitive terms: election",
		},
		{
			name: "exception term inside unrelated word still suppresses",
			submission: ContentSubmission{
				Title:       "Alternative party music",
				Description: "",
				Kind:        KindVideo,
			},
			// "alternative" contains "native"
			allowed: true,
			reason:  ApprovedReason,
		},
		{
			name: "separator joins title and description",
			submission: ContentSubmission{
				Title:       "vo",
				Description: "te",
				Kind:        KindArticle,
			},
			allowed: true,
			reason:  ApprovedReason,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := Evaluate(tt.submission)
			assert.Equal(t, tt.allowed, verdict.Allowed)
			assert.Equal(t, tt.reason, verdict.Reason)
			assert.Equal(t, !tt.allowed, verdict.Rejected())
		})
	}
}

// TestEvaluatePolicyOrder 命中词按策略顺序输出，而不是按文本中出现的顺序
func TestEvaluatePolicyOrder(t *testing.T) {
	verdict := Evaluate(ContentSubmission{
		Title:       "vote on torture and porn",
		Description: "hate murder",
	})

	require.False(t, verdict.Allowed)
	assert.Equal(t, []string{"murder", "torture", "porn", "hate", "vote"}, verdict.Matched)
	assert.Equal(t, "Content contains sensitive terms: murder, torture, porn, hate, vote", verdict.Reason)
}

// TestEvaluateOverlappingTerms 重叠的词条都会被列出
func TestEvaluateOverlappingTerms(t *testing.T) {
	verdict := Evaluate(ContentSubmission{Title: "pornography"})

	require.False(t, verdict.Allowed)
	assert.Equal(t, []string{"porn", "pornography"}, verdict.Matched)
}

// TestEvaluateIdempotent 同一输入多次审核结果一致
func TestEvaluateIdempotent(t *testing.T) {
	submissions := []ContentSubmission{
		{Title: "Graphic violence in war", Description: "contains blood and gore"},
		{Title: "Maths for beginners", Description: "fractions"},
		{Title: "Native heritage", Description: "death rites ceremony"},
	}

	for _, s := range submissions {
		assert.Equal(t, Evaluate(s), Evaluate(s))
	}
}

// TestEvaluateKindDoesNotMatter 内容类型不影响审核
func TestEvaluateKindDoesNotMatter(t *testing.T) {
	base := ContentSubmission{Title: "suicide prevention", Description: "helpline"}

	video := base
	video.Kind = KindVideo
	article := base
	article.Kind = KindArticle

	assert.Equal(t, Evaluate(video), Evaluate(article))
	assert.Equal(t, Evaluate(base), Evaluate(video))
}

// TestEvaluateProperties 对策略中的每个词检查基本性质
func TestEvaluateProperties(t *testing.T) {
	m := NewModerator(DefaultPolicy())

	for _, term := range DefaultSensitiveTerms() {
		verdict := m.Evaluate(ContentSubmission{Title: "lesson about " + term})
		assert.False(t, verdict.Allowed, "term %q should be rejected", term)
		assert.Contains(t, verdict.Matched, term)
		assert.True(t, strings.HasPrefix(verdict.Reason, rejectedReasonPrefix))

		for _, exception := range DefaultCulturalExceptions() {
			verdict := m.Evaluate(ContentSubmission{Title: term, Description: exception})
			assert.True(t, verdict.Allowed, "term %q with exception %q should be allowed", term, exception)
		}
	}

	clean := m.Evaluate(ContentSubmission{Title: "Algebra", Description: "linear equations"})
	assert.True(t, clean.Allowed)
	assert.Empty(t, clean.Matched)
}

// TestNewKeywordPolicyNormalizes 词条标准化
func TestNewKeywordPolicyNormalizes(t *testing.T) {
	policy := NewKeywordPolicy(
		[]string{"  Spoiler ", "", "spoiler", "LEAK"},
		[]string{" Review "},
	)

	assert.Equal(t, []string{"spoiler", "leak"}, policy.SensitiveTerms())
	assert.Equal(t, []string{"review"}, policy.CulturalExceptions())

	m := NewModerator(policy)
	assert.False(t, m.Evaluate(ContentSubmission{Title: "Big leak"}).Allowed)
	assert.True(t, m.Evaluate(ContentSubmission{Title: "Big leak", Description: "a review"}).Allowed)
	assert.True(t, m.Evaluate(ContentSubmission{Title: "violence"}).Allowed)
}

// TestPolicyAccessorsReturnCopies 返回的词表修改不会影响策略
func TestPolicyAccessorsReturnCopies(t *testing.T) {
	policy := DefaultPolicy()
	terms := policy.SensitiveTerms()
	terms[0] = "changed"

	assert.Equal(t, "violence", policy.SensitiveTerms()[0])
	assert.Equal(t, "violence", DefaultSensitiveTerms()[0])
}

// TestPolicyFromListsFallsBack 空列表回退到默认值
func TestPolicyFromListsFallsBack(t *testing.T) {
	policy := PolicyFromLists(nil, []string{"  "})

	assert.Equal(t, DefaultSensitiveTerms(), policy.SensitiveTerms())
	assert.Equal(t, DefaultCulturalExceptions(), policy.CulturalExceptions())

	custom := PolicyFromLists([]string{"cheat"}, nil)
	assert.Equal(t, []string{"cheat"}, custom.SensitiveTerms())
	assert.Equal(t, DefaultCulturalExceptions(), custom.CulturalExceptions())
}

// TestLoadPolicyFile 从 YAML 文件加载策略
func TestLoadPolicyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	content := "sensitiveTerms:\n  - Cheat\n  - plagiarism\nculturalExceptions:\n  - history\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	policy, err := LoadPolicyFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"cheat", "plagiarism"}, policy.SensitiveTerms())
	assert.Equal(t, []string{"history"}, policy.CulturalExceptions())

	_, err = LoadPolicyFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("sensitiveTerms: [unclosed"), 0o600))
	_, err = LoadPolicyFile(bad)
	assert.Error(t, err)
}

// TestParseContentKind 测试内容类型解析
func TestParseContentKind(t *testing.T) {
	tests := []struct {
		input   string
		want    ContentKind
		wantErr bool
	}{
		{"video", KindVideo, false},
		{" Article ", KindArticle, false},
		{"podcast", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, err := ParseContentKind(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)
		})
	}
}
