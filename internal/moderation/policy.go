package moderation

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeywordPolicy 关键词审核策略
// 构造后不可变，可以在多个 goroutine 之间共享
type KeywordPolicy struct {
	sensitiveTerms     []string
	culturalExceptions []string
}

// PolicyFile 外部策略文件的结构
type PolicyFile struct {
	SensitiveTerms     []string `yaml:"sensitiveTerms"`
	CulturalExceptions []string `yaml:"culturalExceptions"`
}

// NewKeywordPolicy 创建关键词策略
// 词条会被去除首尾空白并转为小写，空词条和重复词条会被忽略（保留第一次出现的顺序）
func NewKeywordPolicy(sensitiveTerms, culturalExceptions []string) KeywordPolicy {
	return KeywordPolicy{
		sensitiveTerms:     normalizeTerms(sensitiveTerms),
		culturalExceptions: normalizeTerms(culturalExceptions),
	}
}

// DefaultPolicy 返回内置的默认策略
func DefaultPolicy() KeywordPolicy {
	return NewKeywordPolicy(defaultSensitiveTerms, defaultCulturalExceptions)
}

// PolicyFromLists 使用配置中的词表创建策略，某个列表为空时回退到默认值
func PolicyFromLists(sensitiveTerms, culturalExceptions []string) KeywordPolicy {
	if len(normalizeTerms(sensitiveTerms)) == 0 {
		sensitiveTerms = defaultSensitiveTerms
	}
	if len(normalizeTerms(culturalExceptions)) == 0 {
		culturalExceptions = defaultCulturalExceptions
	}
	return NewKeywordPolicy(sensitiveTerms, culturalExceptions)
}

// LoadPolicyFile 从 YAML 文件加载策略
// 文件中缺失的列表回退到默认值
func LoadPolicyFile(path string) (KeywordPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return KeywordPolicy{}, fmt.Errorf("read policy file: %w", err)
	}

	var pf PolicyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return KeywordPolicy{}, fmt.Errorf("parse policy file %s: %w", path, err)
	}

	return PolicyFromLists(pf.SensitiveTerms, pf.CulturalExceptions), nil
}

// SensitiveTerms 返回敏感词表的副本
func (p KeywordPolicy) SensitiveTerms() []string {
	return append([]string(nil), p.sensitiveTerms...)
}

// CulturalExceptions 返回文化例外词表的副本
func (p KeywordPolicy) CulturalExceptions() []string {
	return append([]string(nil), p.culturalExceptions...)
}

func normalizeTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	normalized := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		normalized = append(normalized, term)
	}
	return normalized
}
