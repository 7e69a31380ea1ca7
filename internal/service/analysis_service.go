package service

import (
	"context"
	"fmt"
	"sync"

	"score_analysis_backend/internal/config"
	"score_analysis_backend/internal/knowledge"
	"score_analysis_backend/internal/model"
	"score_analysis_backend/internal/scoring"
	"score_analysis_backend/internal/table"
	"score_analysis_backend/internal/util"
	"score_analysis_backend/pkg/logger"
	"score_analysis_backend/pkg/monitoring"
	"score_analysis_backend/pkg/tracing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// GridLoader 按 ID 取得成绩表登记信息和表格内容
type GridLoader interface {
	Get(id string) (*model.ScoreSheet, error)
	LoadGrid(ctx context.Context, sheet *model.ScoreSheet) ([][]string, error)
}

type SubjectAverage struct {
	Subject string  `json:"subject"`
	Average float64 `json:"average"`
}

type SubjectSummary struct {
	SheetID     string           `json:"sheetId"`
	IDColumn    string           `json:"idColumn"`
	TotalColumn string           `json:"totalColumn"`
	Students    int              `json:"students"`
	Subjects    []SubjectAverage `json:"subjects"`
}

type StudentReportResult struct {
	Report   *scoring.StudentReport `json:"report"`
	Standing scoring.Standing       `json:"standing"`
}

// AnalysisService 对成绩表执行各类分析。列名、策略等选项来自配置，可以热更新。
type AnalysisService struct {
	sheets GridLoader

	mu        sync.RWMutex
	scoring   scoring.Options
	knowledge knowledge.Options
}

func NewAnalysisService(sheets GridLoader, cfg *config.Config) (*AnalysisService, error) {
	s := &AnalysisService{sheets: sheets}
	if err := s.ApplyConfig(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// ApplyConfig 替换分析选项，配置不合法时保留原选项
func (s *AnalysisService) ApplyConfig(cfg *config.Config) error {
	so, err := ScoringOptions(cfg.Scoring)
	if err != nil {
		return err
	}
	ko := KnowledgeOptions(cfg.Knowledge)

	s.mu.Lock()
	s.scoring = so
	s.knowledge = ko
	s.mu.Unlock()

	logger.Log.Info("Analysis options applied",
		zap.String("policy", string(so.Policy)),
		zap.Strings("idColumns", so.IDColumns),
		zap.Float64("passLine", so.PassLine),
	)
	return nil
}

// ScoringOptions 把配置转换为规范化选项，未配置的字段沿用默认值
func ScoringOptions(c config.ScoringConfig) (scoring.Options, error) {
	opts := scoring.DefaultOptions()
	policy, err := scoring.ParsePolicy(c.Policy)
	if err != nil {
		return opts, err
	}
	opts.Policy = policy

	if c.NameColumn != "" {
		opts.NameColumn = c.NameColumn
	}
	if len(c.IDColumns) > 0 {
		opts.IDColumns = c.IDColumns
	}
	if c.TotalColumn != "" {
		opts.TotalColumn = c.TotalColumn
	}
	if c.ExcludedColumns != nil {
		opts.Excluded = c.ExcludedColumns
	}
	if c.PassLine > 0 {
		opts.PassLine = c.PassLine
	}
	if c.TopRank > 0 {
		opts.TopRank = c.TopRank
	}
	if c.HistogramBins > 0 {
		opts.HistogramBins = c.HistogramBins
	}
	return opts, nil
}

func KnowledgeOptions(c config.KnowledgeConfig) knowledge.Options {
	opts := knowledge.DefaultOptions()
	if len(c.NameKeywords) > 0 {
		opts.NameKeywords = c.NameKeywords
	}
	if len(c.IDKeywords) > 0 {
		opts.IDKeywords = c.IDKeywords
	}
	if c.WeakLine > 0 {
		opts.WeakLine = c.WeakLine
	}
	return opts
}

func (s *AnalysisService) options() (scoring.Options, knowledge.Options) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scoring, s.knowledge
}

func (s *AnalysisService) Subjects(ctx context.Context, sheetID string) (result *SubjectSummary, err error) {
	ctx, span := tracing.Start(ctx, "AnalysisService.Subjects", sheetID)
	defer func() { s.finish(span, "subjects", err) }()

	st, _, err := s.scoreTable(ctx, sheetID)
	if err != nil {
		return nil, err
	}

	result = &SubjectSummary{
		SheetID:     sheetID,
		IDColumn:    st.IDColumn,
		TotalColumn: st.TotalColumn,
		Students:    len(st.Students),
		Subjects:    make([]SubjectAverage, 0, len(st.Subjects)),
	}
	for _, subject := range st.Subjects {
		result.Subjects = append(result.Subjects, SubjectAverage{Subject: subject, Average: st.Averages[subject]})
	}
	return result, nil
}

func (s *AnalysisService) Overview(ctx context.Context, sheetID string) (result *scoring.Overview, err error) {
	ctx, span := tracing.Start(ctx, "AnalysisService.Overview", sheetID)
	defer func() { s.finish(span, "overview", err) }()

	st, opts, err := s.scoreTable(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	return st.Overview(opts.PassLine, opts.HistogramBins), nil
}

// Ranking 返回全班排名，供导出使用
func (s *AnalysisService) Ranking(ctx context.Context, sheetID string) (result []scoring.RankEntry, err error) {
	ctx, span := tracing.Start(ctx, "AnalysisService.Ranking", sheetID)
	defer func() { s.finish(span, "ranking", err) }()

	st, _, err := s.scoreTable(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	return st.Ranking(), nil
}

// ScoreTable 返回规范化后的成绩表
func (s *AnalysisService) ScoreTable(ctx context.Context, sheetID string) (*scoring.ScoreTable, error) {
	st, _, err := s.scoreTable(ctx, sheetID)
	return st, err
}

// StudentReport 生成学生个人成绩单及其在全班的排名。policy 为空时使用配置中的策略。
func (s *AnalysisService) StudentReport(ctx context.Context, sheetID, name, id, policy string) (result *StudentReportResult, err error) {
	ctx, span := tracing.Start(ctx, "AnalysisService.StudentReport", sheetID)
	defer func() { s.finish(span, "student_report", err) }()

	st, opts, err := s.scoreTable(ctx, sheetID)
	if err != nil {
		return nil, err
	}

	p := opts.Policy
	if policy != "" {
		if p, err = scoring.ParsePolicy(policy); err != nil {
			return nil, err
		}
	}

	report, err := st.Project(name, id, p)
	if err != nil {
		return nil, err
	}
	rec, err := st.Lookup(name, id)
	if err != nil {
		return nil, err
	}
	return &StudentReportResult{
		Report:   report,
		Standing: st.Standing(rec, opts.TopRank),
	}, nil
}

func (s *AnalysisService) StudentKnowledge(ctx context.Context, sheetID, name, id string) (result *knowledge.StudentMastery, err error) {
	ctx, span := tracing.Start(ctx, "AnalysisService.StudentKnowledge", sheetID)
	defer func() { s.finish(span, "student_knowledge", err) }()

	sheet, err := s.knowledgeSheet(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	return sheet.StudentRollup(name, id)
}

func (s *AnalysisService) CohortKnowledge(ctx context.Context, sheetID string) (result []knowledge.CohortPoint, err error) {
	ctx, span := tracing.Start(ctx, "AnalysisService.CohortKnowledge", sheetID)
	defer func() { s.finish(span, "cohort_knowledge", err) }()

	sheet, err := s.knowledgeSheet(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	return sheet.CohortRollup()
}

type StudentIdentity struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// KnowledgeStudents 列出小分表中的学生，供前端选择
func (s *AnalysisService) KnowledgeStudents(ctx context.Context, sheetID string) (result []StudentIdentity, err error) {
	ctx, span := tracing.Start(ctx, "AnalysisService.KnowledgeStudents", sheetID)
	defer func() { s.finish(span, "knowledge_students", err) }()

	sheet, err := s.knowledgeSheet(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	pairs := sheet.Students()
	result = make([]StudentIdentity, 0, len(pairs))
	for _, p := range pairs {
		if p[0] == "" && p[1] == "" {
			continue
		}
		result = append(result, StudentIdentity{Name: p[0], ID: p[1]})
	}
	return result, nil
}

func (s *AnalysisService) scoreTable(ctx context.Context, sheetID string) (*scoring.ScoreTable, scoring.Options, error) {
	opts, _ := s.options()

	grid, err := s.load(ctx, sheetID, model.SheetScores)
	if err != nil {
		return nil, opts, err
	}
	t, err := table.FromGrid(grid)
	if err != nil {
		return nil, opts, fmt.Errorf("%w: %v", util.ErrInvalidSheet, err)
	}

	st, err := scoring.NewNormalizer(opts).Normalize(t)
	if err != nil {
		return nil, opts, err
	}
	return st, opts, nil
}

func (s *AnalysisService) knowledgeSheet(ctx context.Context, sheetID string) (*knowledge.Sheet, error) {
	_, opts := s.options()

	grid, err := s.load(ctx, sheetID, model.SheetKnowledge)
	if err != nil {
		return nil, err
	}
	ht, err := table.NewHeaderTable(grid, knowledge.HeaderLevels)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidSheet, err)
	}
	return knowledge.NewSheet(ht, opts), nil
}

func (s *AnalysisService) load(ctx context.Context, sheetID string, kind model.SheetKind) ([][]string, error) {
	sheet, err := s.sheets.Get(sheetID)
	if err != nil {
		return nil, err
	}
	if sheet.Kind != kind {
		return nil, fmt.Errorf("%w: sheet %s is %s, want %s", util.ErrSheetKindMismatch, sheetID, sheet.Kind, kind)
	}
	return s.sheets.LoadGrid(ctx, sheet)
}

func (s *AnalysisService) finish(span trace.Span, kind string, err error) {
	tracing.End(span, err)
	monitoring.AnalysisQueries.WithLabelValues(kind, monitoring.Outcome(err)).Inc()
}
