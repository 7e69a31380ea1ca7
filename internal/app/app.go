package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"score_analysis_backend/internal/config"
	"score_analysis_backend/internal/controller"
	"score_analysis_backend/internal/repository"
	"score_analysis_backend/internal/service"
	"score_analysis_backend/internal/source"
	"score_analysis_backend/pkg/database"
	"score_analysis_backend/pkg/logger"
	"score_analysis_backend/pkg/monitoring"
	"score_analysis_backend/pkg/security"
	"score_analysis_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	sheet *repository.SheetRepository
	cache *repository.TableCache
}

type services struct {
	storage  *service.StorageService
	sheet    *service.SheetService
	analysis *service.AnalysisService
	export   *service.ExportService
}

type controllers struct {
	sheet    *controller.SheetController
	analysis *controller.AnalysisController
	export   *controller.ExportController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ReloadConfig 配置文件变化后调用，依次通知已注册的回调
func (a *App) ReloadConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		sheet: repository.NewSheetRepository(db),
		cache: repository.NewTableCache(rdb, cfg.Cache.TTL),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	fetcher := source.NewFetcher(cfg.Source.Timeout, cfg.Source.MaxUploadMB<<20)
	s.sheet = service.NewSheetService(repos.sheet, s.storage, repos.cache, fetcher, cfg)

	analysis, err := service.NewAnalysisService(s.sheet, cfg)
	if err != nil {
		logger.Log.Fatal("Invalid scoring configuration", zap.Error(err))
	}
	s.analysis = analysis
	s.export = service.NewExportService(s.analysis)

	a.RegisterConfigCallback(func(c *config.Config) {
		if err := s.analysis.ApplyConfig(c); err != nil {
			logger.Log.Error("Ignored invalid scoring configuration", zap.Error(err))
		}
	})
	a.RegisterConfigCallback(func(c *config.Config) {
		if err := s.sheet.SyncConfigured(c.Source.Remotes); err != nil {
			logger.Log.Error("Failed to sync configured remote sheets", zap.Error(err))
		}
	})

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		sheet:    controller.NewSheetController(s.sheet),
		analysis: controller.NewAnalysisController(s.analysis),
		export:   controller.NewExportController(s.export),
		health:   controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 配置文件中的远程表格在启动时登记
	if err := services.sheet.SyncConfigured(cfg.Source.Remotes); err != nil {
		logger.Log.Error("Failed to sync configured remote sheets", zap.Error(err))
	}

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("score-analysis-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if err := a.Redis.Close(); err != nil {
		logger.Log.Warn("Failed to close redis", zap.Error(err))
	}

	log.Println("Server exiting")
}
