package scoring

import (
	"fmt"
	"regexp"
	"strings"

	"score_analysis_backend/internal/table"
)

// Policy 决定学生个人成绩中哪些分数被视为有效。
// 不同年级的成绩单对 0 分的含义不一致（缺考或真实 0 分），因此由调用方选择。
type Policy string

const (
	// PolicyPositive 只保留大于 0 的分数，0 分视为缺考
	PolicyPositive Policy = "positive"
	// PolicyNonNegative 保留大于等于 0 的分数
	PolicyNonNegative Policy = "non_negative"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyPositive:
		return PolicyPositive, nil
	case PolicyNonNegative:
		return PolicyNonNegative, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// Accept 判断分数在该策略下是否计入
func (p Policy) Accept(v float64) bool {
	if p == PolicyNonNegative {
		return v >= 0
	}
	return v > 0
}

// DefaultPlaceholder 匹配表格软件自动生成的无名列
var DefaultPlaceholder = table.PlaceholderHeader

type Options struct {
	NameColumn  string
	IDColumns   []string // 按优先级排列，考号优先于学号
	TotalColumn string
	Excluded    []string
	Placeholder *regexp.Regexp
	Policy      Policy

	PassLine      float64
	TopRank       int
	HistogramBins int
}

func DefaultOptions() Options {
	return Options{
		NameColumn:    "姓名",
		IDColumns:     []string{"考号", "学号"},
		TotalColumn:   "总分赋分",
		Excluded:      []string{"序号", "班级", "性别", "总分", "班级排名", "年级排名", "班次", "校次"},
		Placeholder:   DefaultPlaceholder,
		Policy:        PolicyPositive,
		PassLine:      360,
		TopRank:       10,
		HistogramBins: 20,
	}
}
