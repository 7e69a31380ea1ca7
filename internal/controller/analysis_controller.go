package controller

import (
	"strings"

	"score_analysis_backend/internal/service"
	"score_analysis_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalysisController struct {
	Service *service.AnalysisService
}

func NewAnalysisController(svc *service.AnalysisService) *AnalysisController {
	return &AnalysisController{Service: svc}
}

// studentQuery 读取 name 和 id 两个查询参数，成绩单查询两者缺一不可
func studentQuery(ctx *gin.Context) (string, string, bool) {
	name := strings.TrimSpace(ctx.Query("name"))
	id := strings.TrimSpace(ctx.Query("id"))
	if name == "" || id == "" {
		util.BadRequest(ctx, "请提供姓名(name)和考号(id)")
		return "", "", false
	}
	return name, id, true
}

// knowledgeQuery 小分表可能只有姓名列或只有考号列，至少提供一个即可，由身份列决定如何比较
func knowledgeQuery(ctx *gin.Context) (string, string, bool) {
	name := strings.TrimSpace(ctx.Query("name"))
	id := strings.TrimSpace(ctx.Query("id"))
	if name == "" && id == "" {
		util.BadRequest(ctx, "请提供姓名(name)或考号(id)")
		return "", "", false
	}
	return name, id, true
}

// @Summary 科目及班级平均分
// @Tags 成绩分析
// @Produce json
// @Param sheet_id path string true "成绩表ID"
// @Success 200 {object} util.Response{data=service.SubjectSummary}
// @Router /api/sheets/{sheet_id}/subjects [get]
func (c *AnalysisController) Subjects(ctx *gin.Context) {
	summary, err := c.Service.Subjects(ctx.Request.Context(), ctx.Param("sheet_id"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, summary)
}

// @Summary 全班考情
// @Description 参考人数、平均分、最高分、及格率、分数分布和排名
// @Tags 成绩分析
// @Produce json
// @Param sheet_id path string true "成绩表ID"
// @Success 200 {object} util.Response{data=scoring.Overview}
// @Router /api/sheets/{sheet_id}/overview [get]
func (c *AnalysisController) Overview(ctx *gin.Context) {
	overview, err := c.Service.Overview(ctx.Request.Context(), ctx.Param("sheet_id"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, overview)
}

// @Summary 学生个人成绩单
// @Description 各科成绩与班级平均分对比。缺考或不满足 policy 的科目不出现在结果中
// @Tags 成绩分析
// @Produce json
// @Param sheet_id path string true "成绩表ID"
// @Param name query string true "姓名"
// @Param id query string true "学生考号或学号"
// @Param policy query string false "positive 或 non_negative"
// @Success 200 {object} util.Response{data=service.StudentReportResult}
// @Failure 404 {object} util.Response
// @Router /api/sheets/{sheet_id}/students/report [get]
func (c *AnalysisController) StudentReport(ctx *gin.Context) {
	name, id, ok := studentQuery(ctx)
	if !ok {
		return
	}

	result, err := c.Service.StudentReport(ctx.Request.Context(), ctx.Param("sheet_id"), name, id, ctx.Query("policy"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 小分表学生名单
// @Tags 知识点分析
// @Produce json
// @Param sheet_id path string true "成绩表ID"
// @Success 200 {object} util.Response{data=[]service.StudentIdentity}
// @Router /api/sheets/{sheet_id}/knowledge-points/students [get]
func (c *AnalysisController) KnowledgeStudents(ctx *gin.Context) {
	students, err := c.Service.KnowledgeStudents(ctx.Request.Context(), ctx.Param("sheet_id"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, students)
}

// @Summary 学生知识点掌握情况
// @Tags 知识点分析
// @Produce json
// @Param sheet_id path string true "成绩表ID"
// @Param name query string false "姓名，与考号至少提供一个"
// @Param id query string false "学生考号或学号，与姓名至少提供一个"
// @Success 200 {object} util.Response{data=knowledge.StudentMastery}
// @Failure 404 {object} util.Response
// @Router /api/sheets/{sheet_id}/knowledge-points/student [get]
func (c *AnalysisController) StudentKnowledge(ctx *gin.Context) {
	name, id, ok := knowledgeQuery(ctx)
	if !ok {
		return
	}

	mastery, err := c.Service.StudentKnowledge(ctx.Request.Context(), ctx.Param("sheet_id"), name, id)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, mastery)
}

// @Summary 全班知识点掌握率
// @Tags 知识点分析
// @Produce json
// @Param sheet_id path string true "成绩表ID"
// @Success 200 {object} util.Response{data=[]knowledge.CohortPoint}
// @Router /api/sheets/{sheet_id}/knowledge-points/cohort [get]
func (c *AnalysisController) CohortKnowledge(ctx *gin.Context) {
	points, err := c.Service.CohortKnowledge(ctx.Request.Context(), ctx.Param("sheet_id"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, points)
}
