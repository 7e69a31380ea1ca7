package service

import (
	"context"
	"fmt"

	"score_analysis_backend/internal/export"
	"score_analysis_backend/internal/util"
)

const (
	ExportAverages  = "averages"
	ExportRanking   = "ranking"
	ExportStudent   = "student"
	ExportKnowledge = "knowledge"
	ExportCohort    = "cohort"
)

type ExportRequest struct {
	SheetID string
	Kind    string
	Name    string
	ID      string
	Policy  string
}

// ExportService 把分析结果转成 CSV 表格，内容与接口返回的数据一致
type ExportService struct {
	analysis *AnalysisService
}

func NewExportService(analysis *AnalysisService) *ExportService {
	return &ExportService{analysis: analysis}
}

// Export 返回导出表格和建议的文件名
func (s *ExportService) Export(ctx context.Context, req ExportRequest) (export.Records, string, error) {
	filename := fmt.Sprintf("%s_%s.csv", req.SheetID, req.Kind)

	switch req.Kind {
	case ExportAverages:
		st, err := s.analysis.ScoreTable(ctx, req.SheetID)
		if err != nil {
			return export.Records{}, "", err
		}
		return export.Averages(st), filename, nil

	case ExportRanking:
		entries, err := s.analysis.Ranking(ctx, req.SheetID)
		if err != nil {
			return export.Records{}, "", err
		}
		return export.Ranking(entries), filename, nil

	case ExportStudent:
		result, err := s.analysis.StudentReport(ctx, req.SheetID, req.Name, req.ID, req.Policy)
		if err != nil {
			return export.Records{}, "", err
		}
		return export.StudentReport(result.Report), fmt.Sprintf("%s_%s_%s.csv", req.SheetID, req.Kind, result.Report.ID), nil

	case ExportKnowledge:
		mastery, err := s.analysis.StudentKnowledge(ctx, req.SheetID, req.Name, req.ID)
		if err != nil {
			return export.Records{}, "", err
		}
		who := mastery.ID
		if who == "" {
			who = mastery.Name
		}
		return export.StudentMastery(mastery), fmt.Sprintf("%s_%s_%s.csv", req.SheetID, req.Kind, who), nil

	case ExportCohort:
		points, err := s.analysis.CohortKnowledge(ctx, req.SheetID)
		if err != nil {
			return export.Records{}, "", err
		}
		return export.Cohort(points), filename, nil
	}
	return export.Records{}, "", fmt.Errorf("%w: %q", util.ErrUnknownExportKind, req.Kind)
}
