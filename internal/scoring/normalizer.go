package scoring

import (
	"fmt"
	"runtime"

	"score_analysis_backend/internal/table"

	"golang.org/x/sync/errgroup"
)

// ClassAverages 科目 -> 全体有效分数的均值（保留一位小数）
type ClassAverages map[string]float64

type StudentRecord struct {
	Name   string             `json:"name"`
	ID     string             `json:"id"`
	Scores map[string]float64 `json:"scores"` // 只包含能转为数值的科目
	Total  float64            `json:"total"`
	// HasTotal 为 false 表示总分缺失，该生不参与排名
	HasTotal bool `json:"hasTotal"`
}

// ScoreTable 是规范化后的成绩表。科目列在构造时一次性确定，后续所有计算共用。
type ScoreTable struct {
	Subjects    []string        `json:"subjects"`
	Averages    ClassAverages   `json:"averages"`
	Students    []StudentRecord `json:"students"`
	IDColumn    string          `json:"idColumn"`
	TotalColumn string          `json:"totalColumn"` // 为空表示总分由各科相加得出
}

type Normalizer struct {
	opts Options
}

func NewNormalizer(opts Options) *Normalizer {
	if opts.Placeholder == nil {
		opts.Placeholder = DefaultPlaceholder
	}
	if opts.Policy == "" {
		opts.Policy = PolicyPositive
	}
	return &Normalizer{opts: opts}
}

func (n *Normalizer) Options() Options {
	return n.opts
}

// Normalize 丢弃姓名为空的行，识别科目列并计算班级平均分。
func (n *Normalizer) Normalize(t *table.RawTable) (*ScoreTable, error) {
	if !t.HasColumn(n.opts.NameColumn) {
		return nil, fmt.Errorf("%w: name column %q", ErrMissingIdentityColumn, n.opts.NameColumn)
	}

	nameIdx, _ := t.ColumnIndex(n.opts.NameColumn)
	t = t.Filter(func(row int) bool {
		return !table.IsMissing(t.Rows[row][nameIdx])
	})
	if t.Len() == 0 {
		return nil, ErrEmptyTable
	}

	subjects := n.classify(t)
	if len(subjects) == 0 {
		return nil, ErrNoSubjectColumnsFound
	}

	st := &ScoreTable{
		Subjects: subjects,
		Averages: make(ClassAverages, len(subjects)),
		Students: make([]StudentRecord, 0, t.Len()),
	}

	for _, s := range subjects {
		// 科目列至少有一个有效值，均值一定存在
		mean, _ := table.Mean(t.Column(s))
		st.Averages[s] = table.Round(mean, 1)
	}

	for _, c := range n.opts.IDColumns {
		if t.HasColumn(c) {
			st.IDColumn = table.NormalizeHeader(c)
			break
		}
	}
	if n.opts.TotalColumn != "" && t.HasColumn(n.opts.TotalColumn) {
		st.TotalColumn = table.NormalizeHeader(n.opts.TotalColumn)
	}

	for i := range t.Rows {
		rec := StudentRecord{
			Name:   table.NormalizeValue(t.Cell(i, n.opts.NameColumn)),
			Scores: make(map[string]float64),
		}
		if st.IDColumn != "" {
			rec.ID = table.NormalizeValue(t.Cell(i, st.IDColumn))
		}
		for _, s := range subjects {
			if v, ok := table.ToNumber(t.Cell(i, s)); ok {
				rec.Scores[s] = v
			}
		}

		if st.TotalColumn != "" {
			rec.Total, rec.HasTotal = table.ToNumber(t.Cell(i, st.TotalColumn))
		} else {
			for _, s := range subjects {
				if v, ok := rec.Scores[s]; ok && n.opts.Policy.Accept(v) {
					rec.Total += v
					rec.HasTotal = true
				}
			}
			rec.Total = table.Round(rec.Total, 2)
		}
		st.Students = append(st.Students, rec)
	}

	return st, nil
}

// classify 判断每一列是否为科目列：不在排除集合、不是占位列名，且至少有一个单元格能转为数值。
// 各列之间互不依赖，按列并行判断，结果保持原列顺序。
func (n *Normalizer) classify(t *table.RawTable) []string {
	excluded := make(map[string]bool, len(n.opts.Excluded)+len(n.opts.IDColumns)+2)
	for _, c := range n.opts.Excluded {
		excluded[table.NormalizeHeader(c)] = true
	}
	for _, c := range n.opts.IDColumns {
		excluded[table.NormalizeHeader(c)] = true
	}
	excluded[table.NormalizeHeader(n.opts.NameColumn)] = true
	if n.opts.TotalColumn != "" {
		excluded[table.NormalizeHeader(n.opts.TotalColumn)] = true
	}

	isSubject := make([]bool, len(t.Columns))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, c := range t.Columns {
		if c == "" || excluded[c] || n.opts.Placeholder.MatchString(c) {
			continue
		}
		i := i
		g.Go(func() error {
			for _, row := range t.Rows {
				if _, ok := table.ToNumber(row[i]); ok {
					isSubject[i] = true
					break
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	var subjects []string
	for i, c := range t.Columns {
		if isSubject[i] {
			subjects = append(subjects, c)
		}
	}
	return subjects
}
