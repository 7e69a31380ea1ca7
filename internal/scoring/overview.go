package scoring

import (
	"sort"

	"score_analysis_backend/internal/table"
)

type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type RankEntry struct {
	Rank  int     `json:"rank"`
	Name  string  `json:"name"`
	ID    string  `json:"id"`
	Total float64 `json:"total"`
}

// Overview 全班考情
type Overview struct {
	Participants int `json:"participants"`
	// Average 只统计总分大于 0 的学生，0 分按缺考处理
	Average   float64     `json:"average"`
	Max       float64     `json:"max"`
	PassLine  float64     `json:"passLine"`
	PassCount int         `json:"passCount"`
	PassRate  float64     `json:"passRate"`
	Histogram []Bin       `json:"histogram"`
	Ranking   []RankEntry `json:"ranking"`
}

// Standing 学生在全班的位置
type Standing struct {
	Total     float64 `json:"total"`
	Rank      int     `json:"rank"` // 0 表示未参与排名
	Top       bool    `json:"top"`
	BeatRatio float64 `json:"beatRatio"`
}

func (s *ScoreTable) Overview(passLine float64, bins int) *Overview {
	o := &Overview{
		Participants: len(s.Students),
		PassLine:     passLine,
		Ranking:      s.Ranking(),
	}

	var totals []float64
	var validSum float64
	var validCount int
	for _, st := range s.Students {
		if !st.HasTotal {
			continue
		}
		totals = append(totals, st.Total)
		if st.Total > 0 {
			validSum += st.Total
			validCount++
		}
		if st.Total >= passLine {
			o.PassCount++
		}
		if len(totals) == 1 || st.Total > o.Max {
			o.Max = st.Total
		}
	}
	if validCount > 0 {
		o.Average = table.Round(validSum/float64(validCount), 1)
	}
	if o.Participants > 0 {
		o.PassRate = table.Round(float64(o.PassCount)/float64(o.Participants)*100, 1)
	}
	o.Histogram = histogram(totals, bins)
	return o
}

// Ranking 按总分从高到低排名，同分同名次（1, 2, 2, 4）。总分缺失的学生不参与排名。
func (s *ScoreTable) Ranking() []RankEntry {
	entries := make([]RankEntry, 0, len(s.Students))
	for _, st := range s.Students {
		if st.HasTotal {
			entries = append(entries, RankEntry{Name: st.Name, ID: st.ID, Total: st.Total})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Total > entries[j].Total
	})
	for i := range entries {
		if i > 0 && entries[i].Total == entries[i-1].Total {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}
	return entries
}

// Standing 计算学生排名和"击败了全班百分之几的同学"
func (s *ScoreTable) Standing(rec *StudentRecord, topN int) Standing {
	if !rec.HasTotal {
		return Standing{}
	}
	higher, lower := 0, 0
	for _, st := range s.Students {
		if !st.HasTotal {
			continue
		}
		if st.Total > rec.Total {
			higher++
		} else if st.Total < rec.Total {
			lower++
		}
	}
	rank := higher + 1
	out := Standing{
		Total: rec.Total,
		Rank:  rank,
		Top:   topN > 0 && rank <= topN,
	}
	if n := len(s.Students); n > 0 {
		out.BeatRatio = table.Round(float64(lower)/float64(n)*100, 1)
	}
	return out
}

// histogram 等宽分箱，最后一个箱包含上界
func histogram(values []float64, bins int) []Bin {
	if len(values) == 0 || bins <= 0 {
		return []Bin{}
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return []Bin{{Lower: lo, Upper: hi, Count: len(values)}}
	}

	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lower = table.Round(lo+width*float64(i), 2)
		out[i].Upper = table.Round(lo+width*float64(i+1), 2)
	}
	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}
