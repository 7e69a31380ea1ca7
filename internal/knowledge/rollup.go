package knowledge

import (
	"fmt"

	"score_analysis_backend/internal/table"
)

type Diagnosis string

const (
	DiagnosisWeak   Diagnosis = "weak"   // 低于薄弱线
	DiagnosisBehind Diagnosis = "behind" // 低于班级平均掌握率
	DiagnosisOK     Diagnosis = "ok"
)

// PointMastery 单个学生在一个知识点上的累计得分
type PointMastery struct {
	Point      string    `json:"point"`
	Questions  int       `json:"questions"`
	MyScore    float64   `json:"myScore"`
	FullMark   float64   `json:"fullMark"`
	ClassScore float64   `json:"classScore"`
	MyRatio    float64   `json:"myRatio"`
	ClassRatio float64   `json:"classRatio"`
	Diagnosis  Diagnosis `json:"diagnosis"`
}

type StudentMastery struct {
	Name   string         `json:"name"`
	ID     string         `json:"id"`
	Points []PointMastery `json:"points"`
}

// CohortPoint 全体学生在一个知识点上的平均掌握率
type CohortPoint struct {
	Point      string  `json:"point"`
	Questions  int     `json:"questions"`
	FullMark   float64 `json:"fullMark"`
	ClassRatio float64 `json:"classRatio"`
	Weak       bool    `json:"weak"`
}

// StudentRollup 按知识点累加学生得分、满分和班级平均分，再用累计值计算掌握率
// （先求和再相除，而不是对每题比率取平均）。学生未作答的题按 0 分计。
func (s *Sheet) StudentRollup(name, id string) (*StudentMastery, error) {
	if s.nameCol < 0 && s.idCol < 0 {
		return nil, ErrIdentityColumnsNotFound
	}
	if len(s.questions) == 0 {
		return nil, ErrEmptyKnowledgePointSet
	}
	row, err := s.findRow(name, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s (%s)", err, name, id)
	}

	var order []string
	acc := make(map[string]*PointMastery)
	for _, q := range s.questions {
		p, ok := acc[q.point]
		if !ok {
			p = &PointMastery{Point: q.point}
			acc[q.point] = p
			order = append(order, q.point)
		}
		my, _ := table.ToNumber(s.table.Rows[row][q.col])
		p.Questions++
		p.MyScore += my
		p.FullMark += q.fullMark
		p.ClassScore += q.classMean
	}

	out := &StudentMastery{Points: []PointMastery{}}
	if s.nameCol >= 0 {
		out.Name = table.NormalizeValue(s.table.Rows[row][s.nameCol])
	}
	if s.idCol >= 0 {
		out.ID = table.NormalizeValue(s.table.Rows[row][s.idCol])
	}
	for _, name := range order {
		p := acc[name]
		if p.FullMark <= 0 {
			continue
		}
		p.MyRatio = table.Round(p.MyScore/p.FullMark*100, 1)
		p.ClassRatio = table.Round(p.ClassScore/p.FullMark*100, 1)
		p.MyScore = table.Round(p.MyScore, 2)
		p.ClassScore = table.Round(p.ClassScore, 2)
		p.Diagnosis = s.diagnose(p.MyRatio, p.ClassRatio)
		out.Points = append(out.Points, *p)
	}
	if len(out.Points) == 0 {
		return nil, ErrEmptyKnowledgePointSet
	}
	return out, nil
}

// CohortRollup 按知识点对每道题的 (班级平均分 / 满分) 取平均，用来找全班的薄弱点。
// 与 StudentRollup 的"先求和再相除"不同，这里是比率的平均。
func (s *Sheet) CohortRollup() ([]CohortPoint, error) {
	if len(s.questions) == 0 {
		return nil, ErrEmptyKnowledgePointSet
	}

	type sum struct {
		ratio float64
		full  float64
		n     int
	}
	var order []string
	acc := make(map[string]*sum)
	for _, q := range s.questions {
		a, ok := acc[q.point]
		if !ok {
			a = &sum{}
			acc[q.point] = a
			order = append(order, q.point)
		}
		a.ratio += q.classMean / q.fullMark
		a.full += q.fullMark
		a.n++
	}

	out := make([]CohortPoint, 0, len(order))
	for _, name := range order {
		a := acc[name]
		ratio := table.Round(a.ratio/float64(a.n)*100, 1)
		out = append(out, CohortPoint{
			Point:      name,
			Questions:  a.n,
			FullMark:   table.Round(a.full, 2),
			ClassRatio: ratio,
			Weak:       ratio < s.opts.WeakLine,
		})
	}
	return out, nil
}

func (s *Sheet) diagnose(my, class float64) Diagnosis {
	switch {
	case my < s.opts.WeakLine:
		return DiagnosisWeak
	case my < class:
		return DiagnosisBehind
	}
	return DiagnosisOK
}
