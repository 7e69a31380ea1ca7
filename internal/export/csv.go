// Package export 把分析结果转成带表头的 CSV，供下载后用表格软件打开。
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"score_analysis_backend/internal/knowledge"
	"score_analysis_backend/internal/scoring"
)

// Records 是一张可以直接写成 CSV 的表
type Records struct {
	Header []string
	Rows   [][]string
}

const utf8BOM = "\ufeff"

// WriteCSV 写出 CSV。bom 为 true 时写入 UTF-8 BOM，Excel 打开中文不会乱码。
func WriteCSV(w io.Writer, rec Records, bom bool) error {
	if bom {
		if _, err := io.WriteString(w, utf8BOM); err != nil {
			return err
		}
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(rec.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(rec.Rows); err != nil {
		return err
	}
	return cw.Error()
}

func Averages(st *scoring.ScoreTable) Records {
	rec := Records{Header: []string{"科目", "班级平均分"}}
	for _, s := range st.Subjects {
		rec.Rows = append(rec.Rows, []string{s, num(st.Averages[s])})
	}
	return rec
}

func Ranking(entries []scoring.RankEntry) Records {
	rec := Records{Header: []string{"排名", "姓名", "考号", "总分"}}
	for _, e := range entries {
		rec.Rows = append(rec.Rows, []string{strconv.Itoa(e.Rank), e.Name, e.ID, num(e.Total)})
	}
	return rec
}

func StudentReport(r *scoring.StudentReport) Records {
	rec := Records{Header: []string{"科目", "我的分数", "班级平均分", "差值", "状态"}}
	for _, it := range r.Items {
		rec.Rows = append(rec.Rows, []string{it.Subject, num(it.Score), num(it.ClassAverage), num(it.Diff), statusLabel(it.Status)})
	}
	rec.Rows = append(rec.Rows, []string{"总分", num(r.Total), "", "", ""})
	return rec
}

func StudentMastery(m *knowledge.StudentMastery) Records {
	rec := Records{Header: []string{"知识点", "题目数", "我的得分", "满分", "班级平均得分", "我的掌握率", "班级掌握率", "诊断"}}
	for _, p := range m.Points {
		rec.Rows = append(rec.Rows, []string{
			p.Point,
			strconv.Itoa(p.Questions),
			num(p.MyScore),
			num(p.FullMark),
			num(p.ClassScore),
			num(p.MyRatio),
			num(p.ClassRatio),
			diagnosisLabel(p.Diagnosis),
		})
	}
	return rec
}

func Cohort(points []knowledge.CohortPoint) Records {
	rec := Records{Header: []string{"知识点", "题目数", "满分", "班级掌握率", "薄弱"}}
	for _, p := range points {
		weak := ""
		if p.Weak {
			weak = "是"
		}
		rec.Rows = append(rec.Rows, []string{p.Point, strconv.Itoa(p.Questions), num(p.FullMark), num(p.ClassRatio), weak})
	}
	return rec
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func statusLabel(s scoring.Status) string {
	switch s {
	case scoring.StatusAbove:
		return "高于平均"
	case scoring.StatusBelow:
		return "低于平均"
	}
	return "持平"
}

func diagnosisLabel(d knowledge.Diagnosis) string {
	switch d {
	case knowledge.DiagnosisWeak:
		return "薄弱"
	case knowledge.DiagnosisBehind:
		return "低于班级"
	}
	return "良好"
}
