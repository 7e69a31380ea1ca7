package table

import "fmt"

// HeaderTable 是多级表头的表格，例如知识点分析表：
// 第一行题号，第二行知识点，第三行满分。
type HeaderTable struct {
	Headers [][]string `json:"headers"` // Headers[列][层级]
	Rows    [][]string `json:"rows"`
}

// NewHeaderTable 取 grid 的前 levels 行作为表头，其余为数据行。
// 完全空白的数据行会被丢弃。
func NewHeaderTable(grid [][]string, levels int) (*HeaderTable, error) {
	grid = trimTrailingEmpty(grid)
	if levels <= 0 || len(grid) < levels {
		return nil, fmt.Errorf("%w: need %d header rows, got %d", ErrEmptySheet, levels, len(grid))
	}

	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}

	t := &HeaderTable{Headers: make([][]string, width)}
	for c := 0; c < width; c++ {
		labels := make([]string, levels)
		for l := 0; l < levels; l++ {
			if c < len(grid[l]) {
				labels[l] = NormalizeHeader(grid[l][c])
			}
		}
		t.Headers[c] = labels
	}

	for _, r := range grid[levels:] {
		if rowEmpty(r) {
			continue
		}
		row := make([]string, width)
		copy(row, r)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Label 返回第 col 列第 level 层（从 0 开始）的表头
func (t *HeaderTable) Label(col, level int) string {
	if col < 0 || col >= len(t.Headers) || level < 0 || level >= len(t.Headers[col]) {
		return ""
	}
	return t.Headers[col][level]
}

// Column 返回整列的原始文本
func (t *HeaderTable) Column(col int) []string {
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[col]
	}
	return out
}
