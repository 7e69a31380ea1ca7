package table

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// ToNumber 尝试把单元格转换为数值。空白、文字（如"缺考"）、NaN 和无穷都视为缺失。
func ToNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(width.Fold.String(raw))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// IsMissing 判断单元格是否为空值
func IsMissing(raw string) bool {
	s := strings.TrimSpace(width.Fold.String(raw))
	switch strings.ToLower(s) {
	case "", "nan", "null", "none", "#n/a":
		return true
	}
	return false
}

// Mean 计算可转为数值的单元格的均值，缺失值不参与计算。
// 没有任何有效值时 ok 为 false。
func Mean(cells []string) (mean float64, ok bool) {
	var sum float64
	var n int
	for _, c := range cells {
		if v, valid := ToNumber(c); valid {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Round 四舍五入到 places 位小数
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
