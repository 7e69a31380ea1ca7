// Package knowledge 把按题目记录的小分汇总到知识点，给出掌握率。
//
// 输入表格有三级表头：第一行题号，第二行知识点，第三行满分。
// 同一个知识点可以对应多道题。
package knowledge

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"score_analysis_backend/internal/table"
)

var (
	ErrIdentityColumnsNotFound = errors.New("identity columns not found")
	ErrStudentRowNotFound      = errors.New("student row not found")
	ErrEmptyKnowledgePointSet  = errors.New("no knowledge point with a positive full mark")
)

// HeaderLevels 知识点表的表头层数
const HeaderLevels = 3

type Options struct {
	NameKeywords []string
	IDKeywords   []string
	WeakLine     float64
}

func DefaultOptions() Options {
	return Options{
		NameKeywords: []string{"姓名", "name"},
		IDKeywords:   []string{"考号", "学号", "id"},
		WeakLine:     60,
	}
}

type question struct {
	col       int
	label     string
	point     string
	fullMark  float64
	classMean float64
}

// Sheet 是解析过表头的知识点表
type Sheet struct {
	table     *table.HeaderTable
	opts      Options
	nameCol   int
	idCol     int
	questions []question
}

// NewSheet 定位身份列并解析所有满分大于 0 的题目列。
func NewSheet(t *table.HeaderTable, opts Options) *Sheet {
	s := &Sheet{table: t, opts: opts, nameCol: -1, idCol: -1}

	for c := range t.Headers {
		label := t.Label(c, 0)
		if table.IsPlaceholder(label) {
			continue
		}
		switch {
		case s.nameCol < 0 && containsAny(label, opts.NameKeywords):
			s.nameCol = c
		case s.idCol < 0 && containsAny(label, opts.IDKeywords):
			s.idCol = c
		}
	}

	for c := range t.Headers {
		if c == s.nameCol || c == s.idCol {
			continue
		}
		point := t.Label(c, 1)
		if table.IsPlaceholder(point) || strings.HasPrefix(strings.ToLower(point), "unnamed") {
			continue
		}
		full, ok := table.ToNumber(t.Label(c, 2))
		if !ok || full <= 0 {
			continue
		}
		mean, _ := table.Mean(t.Column(c))
		s.questions = append(s.questions, question{
			col:       c,
			label:     t.Label(c, 0),
			point:     point,
			fullMark:  full,
			classMean: mean,
		})
	}
	return s
}

// Students 返回 (姓名, 考号) 列表，身份列缺失时对应字段为空
func (s *Sheet) Students() [][2]string {
	out := make([][2]string, 0, len(s.table.Rows))
	for _, row := range s.table.Rows {
		var pair [2]string
		if s.nameCol >= 0 {
			pair[0] = table.NormalizeValue(row[s.nameCol])
		}
		if s.idCol >= 0 {
			pair[1] = table.NormalizeValue(row[s.idCol])
		}
		out = append(out, pair)
	}
	return out
}

func (s *Sheet) findRow(name, id string) (int, error) {
	if s.nameCol < 0 && s.idCol < 0 {
		return -1, ErrIdentityColumnsNotFound
	}
	name, id = table.NormalizeValue(name), table.NormalizeValue(id)
	for i, row := range s.table.Rows {
		if s.nameCol >= 0 && table.NormalizeValue(row[s.nameCol]) != name {
			continue
		}
		if s.idCol >= 0 && table.NormalizeValue(row[s.idCol]) != id {
			continue
		}
		return i, nil
	}
	return -1, ErrStudentRowNotFound
}

// containsAny 判断列名是否包含任一关键字。中文关键字按子串匹配（"学生姓名" 含 "姓名"），
// 英文关键字必须是完整单词，"id" 不匹配 "midpoint"。
func containsAny(label string, keywords []string) bool {
	lower := strings.ToLower(label)
	for _, k := range keywords {
		k = strings.ToLower(k)
		if k == "" {
			continue
		}
		if !isASCII(k) {
			if strings.Contains(lower, k) {
				return true
			}
			continue
		}
		if containsWord(lower, k) {
			return true
		}
	}
	return false
}

func containsWord(s, word string) bool {
	for start := 0; start <= len(s)-len(word); {
		i := strings.Index(s[start:], word)
		if i < 0 {
			return false
		}
		i += start
		before, _ := utf8.DecodeLastRuneInString(s[:i])
		after, _ := utf8.DecodeRuneInString(s[i+len(word):])
		if !isWordRune(before) && !isWordRune(after) {
			return true
		}
		start = i + 1
	}
	return false
}

// isWordRune 只把 ASCII 字母和数字算作单词的一部分，"考生ID" 中的 ID 仍是独立单词
func isWordRune(r rune) bool {
	return r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
