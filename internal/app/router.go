package app

import (
	"score_analysis_backend/docs"
	"score_analysis_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)
	}

	a.registerSheetRoutes(api, c)
	a.registerAnalysisRoutes(api, c)
}

func (a *App) registerSheetRoutes(api *gin.RouterGroup, c *controllers) {
	sheets := api.Group("/sheets")
	{
		sheets.POST("/upload", c.sheet.Upload)
		sheets.POST("/remote", c.sheet.RegisterRemote)
		sheets.GET("", c.sheet.List)
		sheets.GET("/:sheet_id", c.sheet.Get)
		sheets.DELETE("/:sheet_id", c.sheet.Delete)
	}
}

func (a *App) registerAnalysisRoutes(api *gin.RouterGroup, c *controllers) {
	sheet := api.Group("/sheets/:sheet_id")
	{
		// 成绩单
		sheet.GET("/subjects", c.analysis.Subjects)
		sheet.GET("/overview", c.analysis.Overview)
		sheet.GET("/students/report", c.analysis.StudentReport)

		// 知识点小分表
		sheet.GET("/knowledge-points/students", c.analysis.KnowledgeStudents)
		sheet.GET("/knowledge-points/student", c.analysis.StudentKnowledge)
		sheet.GET("/knowledge-points/cohort", c.analysis.CohortKnowledge)

		sheet.GET("/export/:kind", c.export.Export)
	}
}
