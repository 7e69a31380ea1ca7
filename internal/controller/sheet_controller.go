package controller

import (
	"io"

	"score_analysis_backend/internal/service"
	"score_analysis_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SheetController struct {
	Service *service.SheetService
}

func NewSheetController(svc *service.SheetService) *SheetController {
	return &SheetController{Service: svc}
}

// @Summary 上传成绩表
// @Description 支持 CSV 和 XLSX。kind 为 scores（成绩单）或 knowledge（三级表头小分表）
// @Tags 成绩表
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "表格文件"
// @Param name formData string false "表格名称，默认使用文件名"
// @Param kind formData string false "scores 或 knowledge" default(scores)
// @Success 201 {object} util.Response{data=model.ScoreSheet}
// @Failure 400 {object} util.Response
// @Failure 413 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/sheets/upload [post]
func (c *SheetController) Upload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "请选择要上传的文件")
		return
	}
	if !util.IsAllowedSheet(fileHeader.Filename) {
		util.BadRequest(ctx, "只支持 csv、xlsx 文件")
		return
	}

	limit := c.Service.MaxUploadBytes()
	if limit > 0 && fileHeader.Size > limit {
		respondError(ctx, util.ErrFileTooLarge)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	var reader io.Reader = file
	if limit > 0 {
		// 多读一个字节，超限时由 Upload 返回 ErrFileTooLarge
		reader = io.LimitReader(file, limit+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	sheet, err := c.Service.Upload(ctx.Request.Context(), ctx.PostForm("name"), ctx.PostForm("kind"), fileHeader.Filename, data)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, sheet)
}

// @Summary 登记远程表格
// @Description 登记时拉取一次用于校验，之后每次查询都会重新拉取
// @Tags 成绩表
// @Accept json
// @Produce json
// @Param body body service.RegisterRemoteRequest true "远程表格信息"
// @Success 201 {object} util.Response{data=model.ScoreSheet}
// @Failure 502 {object} util.Response
// @Router /api/sheets/remote [post]
func (c *SheetController) RegisterRemote(ctx *gin.Context) {
	var req service.RegisterRemoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sheet, err := c.Service.RegisterRemote(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, sheet)
}

// @Summary 成绩表列表
// @Tags 成绩表
// @Produce json
// @Param kind query string false "按类型筛选"
// @Success 200 {object} util.Response{data=[]model.ScoreSheet}
// @Router /api/sheets [get]
func (c *SheetController) List(ctx *gin.Context) {
	sheets, err := c.Service.List(ctx.Query("kind"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, sheets)
}

// @Summary 成绩表详情
// @Tags 成绩表
// @Produce json
// @Param sheet_id path string true "成绩表ID"
// @Success 200 {object} util.Response{data=model.ScoreSheet}
// @Failure 404 {object} util.Response
// @Router /api/sheets/{sheet_id} [get]
func (c *SheetController) Get(ctx *gin.Context) {
	sheet, err := c.Service.Get(ctx.Param("sheet_id"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, sheet)
}

// @Summary 删除成绩表
// @Tags 成绩表
// @Produce json
// @Param sheet_id path string true "成绩表ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/sheets/{sheet_id} [delete]
func (c *SheetController) Delete(ctx *gin.Context) {
	id := ctx.Param("sheet_id")
	if err := c.Service.Delete(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": id})
}
