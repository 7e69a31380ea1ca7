package scoring

import (
	"fmt"

	"score_analysis_backend/internal/table"
)

type Status string

const (
	StatusAbove Status = "above"
	StatusBelow Status = "below"
	StatusEqual Status = "equal"
)

// SubjectScore 学生某一科的成绩及对应的班级平均分
type SubjectScore struct {
	Subject      string  `json:"subject"`
	Score        float64 `json:"score"`
	ClassAverage float64 `json:"classAverage"`
	Diff         float64 `json:"diff"`
	Status       Status  `json:"status"`
}

type StudentReport struct {
	Name   string         `json:"name"`
	ID     string         `json:"id"`
	Policy Policy         `json:"policy"`
	Items  []SubjectScore `json:"items"`
	// Total 为 Items 中各科分数之和
	Total float64 `json:"total"`
}

// Lookup 按 (姓名, 考号/学号) 查找学生，两边都去除首尾空白后比较。
// 理论上身份唯一，若出现重复则取第一条。
func (s *ScoreTable) Lookup(name, id string) (*StudentRecord, error) {
	if s.IDColumn == "" {
		return nil, ErrMissingIdentityColumn
	}
	name, id = table.NormalizeValue(name), table.NormalizeValue(id)
	for i := range s.Students {
		if s.Students[i].Name == name && s.Students[i].ID == id {
			return &s.Students[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s (%s)", ErrStudentNotFound, name, id)
}

// Project 生成学生个人成绩单。缺失、无法转换或不满足 policy 的科目直接略去而不是按 0 分计，
// 这样总分和与班级平均分的对比都不会被缺考拉低。
func (s *ScoreTable) Project(name, id string, policy Policy) (*StudentReport, error) {
	rec, err := s.Lookup(name, id)
	if err != nil {
		return nil, err
	}

	report := &StudentReport{
		Name:   rec.Name,
		ID:     rec.ID,
		Policy: policy,
		Items:  []SubjectScore{},
	}
	var total float64
	for _, subject := range s.Subjects {
		v, ok := rec.Scores[subject]
		if !ok || !policy.Accept(v) {
			continue
		}
		avg := s.Averages[subject]
		report.Items = append(report.Items, SubjectScore{
			Subject:      subject,
			Score:        v,
			ClassAverage: avg,
			Diff:         table.Round(v-avg, 1),
			Status:       compare(v, avg),
		})
		total += v
	}
	report.Total = table.Round(total, 2)
	return report, nil
}

func compare(v, avg float64) Status {
	switch {
	case v > avg:
		return StatusAbove
	case v < avg:
		return StatusBelow
	}
	return StatusEqual
}
