package models

// Level 是严重程度/优先级等级
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

const (
	highThreshold   = 4.0 // 分数严格大于该值为 high
	mediumThreshold = 2.0 // 分数严格大于该值为 medium
)

// DeriveLevel 根据分类分数计算等级。对任何实数（包括负数和 NaN）都有定义。
func DeriveLevel(score float64) Level {
	switch {
	case score > highThreshold:
		return LevelHigh
	case score > mediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Rank 返回等级的序号，low < medium < high
func (l Level) Rank() int {
	switch l {
	case LevelHigh:
		return 2
	case LevelMedium:
		return 1
	default:
		return 0
	}
}

// Valid 判断等级是否合法
func (l Level) Valid() bool {
	return l == LevelLow || l == LevelMedium || l == LevelHigh
}
