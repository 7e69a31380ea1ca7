package controller

import (
	"fmt"
	"net/url"
	"strings"

	"score_analysis_backend/internal/export"
	"score_analysis_backend/internal/service"
	"score_analysis_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExportController struct {
	Service *service.ExportService
}

func NewExportController(svc *service.ExportService) *ExportController {
	return &ExportController{Service: svc}
}

// @Summary 导出 CSV
// @Description kind: averages、ranking、student、knowledge、cohort。student 需要 name 和 id，knowledge 至少需要其中一个
// @Tags 导出
// @Produce text/csv
// @Param sheet_id path string true "成绩表ID"
// @Param kind path string true "导出类型"
// @Param name query string false "姓名"
// @Param id query string false "学生考号或学号"
// @Param policy query string false "positive 或 non_negative"
// @Success 200 {file} file
// @Failure 400 {object} util.Response
// @Router /api/sheets/{sheet_id}/export/{kind} [get]
func (c *ExportController) Export(ctx *gin.Context) {
	req := service.ExportRequest{
		SheetID: ctx.Param("sheet_id"),
		Kind:    ctx.Param("kind"),
		Name:    strings.TrimSpace(ctx.Query("name")),
		ID:      strings.TrimSpace(ctx.Query("id")),
		Policy:  ctx.Query("policy"),
	}
	switch req.Kind {
	case service.ExportStudent:
		if req.Name == "" || req.ID == "" {
			util.BadRequest(ctx, "请提供姓名(name)和考号(id)")
			return
		}
	case service.ExportKnowledge:
		if req.Name == "" && req.ID == "" {
			util.BadRequest(ctx, "请提供姓名(name)或考号(id)")
			return
		}
	}

	records, filename, err := c.Service.Export(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Header("Content-Type", util.MimeCSV+"; charset=utf-8")
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
	if err := export.WriteCSV(ctx.Writer, records, true); err != nil {
		util.LogInternalError(ctx, err)
	}
}
