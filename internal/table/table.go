package table

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// RawTable 是从上传文件或远程表格读到的原始二维表，第一行为列名。
// 列名在构造时统一做去空白和全角折叠，重复列名按 "名称.1"、"名称.2" 重命名。
type RawTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`

	index map[string]int
}

// New 构造表格，行会被补齐或截断到列数。
func New(columns []string, rows [][]string) *RawTable {
	t := &RawTable{
		Columns: make([]string, len(columns)),
		Rows:    make([][]string, 0, len(rows)),
		index:   make(map[string]int, len(columns)),
	}

	original := make(map[string]bool, len(columns))
	for _, c := range columns {
		original[NormalizeHeader(c)] = true
	}
	// 重命名后的列名不能与已有列名或表中其他原始列名重复
	seen := make(map[string]int, len(columns))
	for i, c := range columns {
		name := NormalizeHeader(c)
		if _, used := t.index[name]; used {
			n := seen[name]
			var candidate string
			for {
				n++
				candidate = name + "." + strconv.Itoa(n)
				if _, used := t.index[candidate]; !used && !original[candidate] {
					break
				}
			}
			seen[name] = n
			name = candidate
		}
		t.Columns[i] = name
		t.index[name] = i
	}

	for _, r := range rows {
		row := make([]string, len(columns))
		copy(row, r)
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (t *RawTable) UnmarshalJSON(data []byte) error {
	var aux struct {
		Columns []string   `json:"columns"`
		Rows    [][]string `json:"rows"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*t = *New(aux.Columns, aux.Rows)
	return nil
}

// Len 返回数据行数
func (t *RawTable) Len() int {
	return len(t.Rows)
}

func (t *RawTable) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[NormalizeHeader(name)]
	return i, ok
}

func (t *RawTable) HasColumn(name string) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// Column 返回整列的原始文本，列不存在时返回 nil。
func (t *RawTable) Column(name string) []string {
	i, ok := t.ColumnIndex(name)
	if !ok {
		return nil
	}
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

func (t *RawTable) Cell(row int, column string) string {
	i, ok := t.ColumnIndex(column)
	if !ok || row < 0 || row >= len(t.Rows) {
		return ""
	}
	return t.Rows[row][i]
}

// Filter 返回只保留 keep 为 true 的行的新表，原表不变。
func (t *RawTable) Filter(keep func(row int) bool) *RawTable {
	out := &RawTable{Columns: t.Columns, index: t.index}
	for i, r := range t.Rows {
		if keep(i) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// PlaceholderHeader 匹配表格软件自动生成的无名列，如 "Unnamed: 3"、"Unnamed: 0_level_1"
var PlaceholderHeader = regexp.MustCompile(`^(?i:unnamed)(:\s*\d+)?(_level_\d+)?$`)

// IsPlaceholder 判断列名是否为空或自动生成的无名列
func IsPlaceholder(name string) bool {
	name = NormalizeHeader(name)
	return name == "" || PlaceholderHeader.MatchString(name)
}

// NormalizeHeader 去掉首尾空白，并把全角字母数字折叠为半角。
func NormalizeHeader(s string) string {
	return strings.TrimSpace(width.Fold.String(s))
}

// NormalizeValue 用于身份字段比较（姓名、考号），规则与列名一致。
func NormalizeValue(s string) string {
	return NormalizeHeader(s)
}
