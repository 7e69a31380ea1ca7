package controller

import (
	"errors"
	"net/http"

	"score_analysis_backend/internal/knowledge"
	"score_analysis_backend/internal/scoring"
	"score_analysis_backend/internal/source"
	"score_analysis_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError 把业务错误映射为 HTTP 状态码，未知错误记录日志后返回 500
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrSheetNotFound):
		util.NotFound(ctx, "成绩表不存在")
	case errors.Is(err, scoring.ErrStudentNotFound), errors.Is(err, knowledge.ErrStudentRowNotFound):
		util.NotFound(ctx, "未找到该学生，请检查姓名和考号")
	case errors.Is(err, source.ErrSourceUnavailable):
		util.Error(ctx, http.StatusBadGateway, "远程表格暂时无法访问")
	case errors.Is(err, util.ErrFileTooLarge):
		util.Error(ctx, http.StatusRequestEntityTooLarge, "文件过大")
	case errors.Is(err, scoring.ErrEmptyTable):
		util.Error(ctx, http.StatusUnprocessableEntity, "成绩表没有学生数据")
	case errors.Is(err, scoring.ErrNoSubjectColumnsFound):
		util.Error(ctx, http.StatusUnprocessableEntity, "未识别到任何科目列")
	case errors.Is(err, scoring.ErrMissingIdentityColumn):
		util.Error(ctx, http.StatusUnprocessableEntity, "成绩表缺少姓名或考号/学号列")
	case errors.Is(err, knowledge.ErrIdentityColumnsNotFound):
		util.Error(ctx, http.StatusUnprocessableEntity, "小分表缺少姓名和考号列")
	case errors.Is(err, knowledge.ErrEmptyKnowledgePointSet):
		util.Error(ctx, http.StatusUnprocessableEntity, "小分表没有满分大于 0 的知识点")
	case errors.Is(err, util.ErrInvalidSheet):
		util.Error(ctx, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, util.ErrSheetKindMismatch):
		util.BadRequest(ctx, "成绩表类型与请求的分析不匹配")
	case errors.Is(err, scoring.ErrUnknownPolicy):
		util.BadRequest(ctx, "policy 只能是 positive 或 non_negative")
	case errors.Is(err, util.ErrUnknownExportKind):
		util.BadRequest(ctx, "不支持的导出类型")
	default:
		util.LogInternalError(ctx, err)
	}
}
