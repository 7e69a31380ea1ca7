package service

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"score_analysis_backend/internal/config"
	"score_analysis_backend/internal/knowledge"
	"score_analysis_backend/internal/model"
	"score_analysis_backend/internal/scoring"
	"score_analysis_backend/internal/source"
	"score_analysis_backend/internal/table"
	"score_analysis_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGrid(t *testing.T, csv string) [][]string {
	t.Helper()
	grid, err := table.ReadGrid(bytes.NewReader([]byte(csv)), table.FormatCSV)
	require.NoError(t, err)
	return grid
}

func newAnalysisFixture(t *testing.T) (*AnalysisService, *staticLoader) {
	t.Helper()
	loader := &staticLoader{
		sheets: map[string]*model.ScoreSheet{
			"s1": {ID: "s1", Kind: model.SheetScores},
			"k1": {ID: "k1", Kind: model.SheetKnowledge},
		},
		grids: map[string][][]string{
			"s1": mustGrid(t, scoresCSV),
			"k1": mustGrid(t, knowledgeCSV),
		},
	}
	svc, err := NewAnalysisService(loader, &config.Config{})
	require.NoError(t, err)
	return svc, loader
}

func TestSubjectsListsAveragesInColumnOrder(t *testing.T) {
	svc, _ := newAnalysisFixture(t)

	summary, err := svc.Subjects(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "考号", summary.IDColumn)
	assert.Equal(t, "总分赋分", summary.TotalColumn)
	assert.Equal(t, 3, summary.Students)
	assert.Equal(t, []SubjectAverage{
		{Subject: "语文", Average: 90},
		{Subject: "数学", Average: 76.7},
	}, summary.Subjects)
}

func TestStudentReportAppliesPolicy(t *testing.T) {
	svc, _ := newAnalysisFixture(t)
	ctx := context.Background()

	res, err := svc.StudentReport(ctx, "s1", "李四", "2", "")
	require.NoError(t, err)
	require.Len(t, res.Report.Items, 1, "0 分在默认策略下略去")
	assert.Equal(t, "语文", res.Report.Items[0].Subject)
	assert.Equal(t, scoring.StatusEqual, res.Report.Items[0].Status)
	assert.Equal(t, 90.0, res.Report.Total)
	assert.Equal(t, scoring.PolicyPositive, res.Report.Policy)

	res, err = svc.StudentReport(ctx, "s1", "李四", "2", "non_negative")
	require.NoError(t, err)
	assert.Len(t, res.Report.Items, 2)
	assert.Equal(t, 90.0, res.Report.Total)

	_, err = svc.StudentReport(ctx, "s1", "李四", "2", "zero")
	assert.ErrorIs(t, err, scoring.ErrUnknownPolicy)
}

func TestStudentReportIncludesStanding(t *testing.T) {
	svc, _ := newAnalysisFixture(t)

	res, err := svc.StudentReport(context.Background(), "s1", "张三", "1", "")
	require.NoError(t, err)
	assert.Equal(t, scoring.Standing{Total: 220, Rank: 1, Top: true, BeatRatio: 66.7}, res.Standing)
}

func TestStudentReportNotFound(t *testing.T) {
	svc, _ := newAnalysisFixture(t)

	_, err := svc.StudentReport(context.Background(), "s1", "张三", "2", "")
	assert.ErrorIs(t, err, scoring.ErrStudentNotFound)
}

func TestOverviewUsesConfiguredPassLine(t *testing.T) {
	svc, _ := newAnalysisFixture(t)
	require.NoError(t, svc.ApplyConfig(&config.Config{Scoring: config.ScoringConfig{PassLine: 180, HistogramBins: 4}}))

	o, err := svc.Overview(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, o.Participants)
	assert.Equal(t, 180.0, o.PassLine)
	assert.Equal(t, 2, o.PassCount)
	assert.Equal(t, 220.0, o.Max)
	assert.Len(t, o.Histogram, 4)
	require.Len(t, o.Ranking, 3)
	assert.Equal(t, "张三", o.Ranking[0].Name)
}

func TestApplyConfigKeepsOptionsOnInvalidPolicy(t *testing.T) {
	svc, _ := newAnalysisFixture(t)

	err := svc.ApplyConfig(&config.Config{Scoring: config.ScoringConfig{Policy: "bogus"}})
	assert.ErrorIs(t, err, scoring.ErrUnknownPolicy)

	opts, _ := svc.options()
	assert.Equal(t, scoring.PolicyPositive, opts.Policy)
}

func TestApplyConfigSwitchesDefaultPolicy(t *testing.T) {
	svc, _ := newAnalysisFixture(t)
	require.NoError(t, svc.ApplyConfig(&config.Config{Scoring: config.ScoringConfig{Policy: "non_negative"}}))

	res, err := svc.StudentReport(context.Background(), "s1", "李四", "2", "")
	require.NoError(t, err)
	assert.Len(t, res.Report.Items, 2)
}

func TestKindMismatch(t *testing.T) {
	svc, _ := newAnalysisFixture(t)
	ctx := context.Background()

	_, err := svc.Overview(ctx, "k1")
	assert.ErrorIs(t, err, util.ErrSheetKindMismatch)

	_, err = svc.CohortKnowledge(ctx, "s1")
	assert.ErrorIs(t, err, util.ErrSheetKindMismatch)
}

func TestKnowledgeRollups(t *testing.T) {
	svc, _ := newAnalysisFixture(t)
	ctx := context.Background()

	m, err := svc.StudentKnowledge(ctx, "k1", "张三", "1")
	require.NoError(t, err)
	require.Len(t, m.Points, 1)
	assert.Equal(t, 33.3, m.Points[0].MyRatio)
	assert.Equal(t, knowledge.DiagnosisWeak, m.Points[0].Diagnosis)

	points, err := svc.CohortKnowledge(ctx, "k1")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 65.0, points[0].ClassRatio)

	_, err = svc.StudentKnowledge(ctx, "k1", "王五", "3")
	assert.ErrorIs(t, err, knowledge.ErrStudentRowNotFound)

	students, err := svc.KnowledgeStudents(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []StudentIdentity{{Name: "张三", ID: "1"}, {Name: "李四", ID: "2"}}, students)
}

func TestSourceUnavailableIsPropagated(t *testing.T) {
	svc, loader := newAnalysisFixture(t)
	loader.err = fmt.Errorf("%w: timeout", source.ErrSourceUnavailable)

	_, err := svc.Subjects(context.Background(), "s1")
	assert.ErrorIs(t, err, source.ErrSourceUnavailable)
}

func TestUnknownSheet(t *testing.T) {
	svc, _ := newAnalysisFixture(t)

	_, err := svc.Overview(context.Background(), "missing")
	assert.Error(t, err)
}

func TestScoringOptionsFromConfig(t *testing.T) {
	opts, err := ScoringOptions(config.ScoringConfig{
		NameColumn:      "name",
		IDColumns:       []string{"id"},
		ExcludedColumns: []string{},
		TopRank:         3,
	})
	require.NoError(t, err)
	assert.Equal(t, "name", opts.NameColumn)
	assert.Equal(t, []string{"id"}, opts.IDColumns)
	assert.Empty(t, opts.Excluded)
	assert.Equal(t, 3, opts.TopRank)
	assert.Equal(t, "总分赋分", opts.TotalColumn)
	assert.Equal(t, 360.0, opts.PassLine)
}
