package moderation

// 默认敏感词表，按类别分组，匹配时视为一个有序列表
var defaultSensitiveTerms = []string{
	// 暴力
	"violence", "gore", "blood", "murder", "kill", "death", "torture",
	// 成人内容
	"porn", "pornography", "explicit", "xxx",
	// 仇恨言论
	"hate", "racist", "discrimination",
	// 政治
	"political", "election", "party", "vote",
	// 自残
	"suicide", "self-harm",
}

// 文化例外词：出现任意一个即不拒绝
var defaultCulturalExceptions = []string{
	"indigenous", "tribe", "cultural", "tradition", "ritual",
	"aboriginal", "native", "heritage", "ceremony",
}

// DefaultSensitiveTerms 返回默认敏感词表的副本
func DefaultSensitiveTerms() []string {
	return append([]string(nil), defaultSensitiveTerms...)
}

// DefaultCulturalExceptions 返回默认文化例外词表的副本
func DefaultCulturalExceptions() []string {
	return append([]string(nil), defaultCulturalExceptions...)
}
