package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Minsekko/SJP-HR/internal/config"
	"github.com/Minsekko/SJP-HR/internal/handler"
	"github.com/Minsekko/SJP-HR/internal/middleware"
	"github.com/Minsekko/SJP-HR/internal/model/entity"
	"github.com/Minsekko/SJP-HR/internal/repository"
	"github.com/Minsekko/SJP-HR/internal/service"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting sjp-hr service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := entity.AutoMigrate(db); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Redis 可选，仅缓存会话
	rdb := initRedis(cfg.Redis)
	if rdb != nil {
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			zapLogger.Warn("Redis unavailable, session cache disabled", zap.Error(err))
			rdb = nil
		}
	}

	// MinIO 可选，仅附件存储
	minioClient := initMinio(cfg.MinIO, zapLogger)

	// 仓库、服务、处理器
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, minioClient, cfg)
	handlers := handler.NewHandlers(services)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// SQLite 写串行化，连接池保持最小
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	if cfg.Host == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func initMinio(cfg config.MinIOConfig, zapLogger *zap.Logger) *minio.Client {
	if cfg.Endpoint == "" {
		return nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		zapLogger.Warn("MinIO unavailable, attachment storage disabled", zap.Error(err))
		return nil
	}
	return client
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// 静态文件服务 - 前端
	r.StaticFile("/", "./web/static/index.html")
	r.Static("/static", "./web/static")

	// SPA 路由回退 - 所有非 API 路由返回 index.html
	r.NoRoute(func(c *gin.Context) {
		if len(c.Request.URL.Path) > 4 && c.Request.URL.Path[:5] == "/api/" {
			c.JSON(http.StatusNotFound, gin.H{"code": 40400, "message": "Not found"})
			return
		}
		indexData, err := os.ReadFile("./web/static/index.html")
		if err != nil {
			c.String(http.StatusInternalServerError, "index.html not found")
			return
		}
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexData)
	})

	// API v1
	v1 := r.Group("/api/v1")
	{
		// 认证（无需登录）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 以下需要登录
		authed := v1.Group("")
		authed.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			authed.GET("/auth/me", h.Auth.Me)
			authed.POST("/auth/logout", h.Auth.Logout)

			// 人事。台账变更仅限 hr 角色（admin 放行）
			employees := authed.Group("/employees")
			{
				employees.GET("", h.HR.ListEmployees)
				employees.POST("", middleware.RequireRole("hr"), h.HR.CreateEmployee)
				employees.GET("/:id", h.HR.GetEmployee)
				employees.PUT("/:id", middleware.RequireRole("hr"), h.HR.UpdateEmployee)
			}

			departments := authed.Group("/departments")
			{
				departments.GET("", h.HR.ListDepartments)
				departments.POST("", middleware.RequireRole("hr"), h.HR.CreateDepartment)
			}

			authed.GET("/positions", h.HR.ListPositions)
			authed.GET("/attendance-types", h.HR.ListAttendanceTypes)

			attendances := authed.Group("/attendances")
			{
				attendances.GET("", h.HR.ListAttendances)
				attendances.POST("/check-in", h.HR.CheckIn)
				attendances.POST("/check-out", h.HR.CheckOut)
			}

			leaves := authed.Group("/leaves")
			{
				leaves.GET("", h.HR.ListLeaves)
				leaves.POST("", h.HR.CreateLeave)
				leaves.POST("/:id/resolve", h.HR.ResolveLeave)
			}

			// 审批文档
			approvals := authed.Group("/approvals")
			{
				approvals.GET("", h.Approval.List)
				approvals.POST("", h.Approval.Create)
				approvals.GET("/my-approvals", h.Approval.MyApprovals)
				approvals.GET("/doc-types", h.Approval.ListDocTypes)
				approvals.GET("/doc-types/:id", h.Approval.GetDocType)
				approvals.GET("/attachments/:attachmentId/download", h.Approval.DownloadAttachment)
				approvals.GET("/:id", h.Approval.Get)
				approvals.GET("/:id/lines", h.Approval.ListLines)
				approvals.POST("/:id/lines", h.Approval.AddLine)
				approvals.POST("/:id/submit", h.Approval.Submit)
				approvals.POST("/:id/decide", h.Approval.Decide)
				approvals.GET("/:id/attachments", h.Approval.ListAttachments)
				approvals.POST("/:id/attachments", h.Approval.UploadAttachment)
			}

			// 财务
			sales := authed.Group("/sales")
			{
				sales.GET("", h.Finance.ListSales)
				sales.POST("", h.Finance.CreateSale)
				sales.GET("/export", h.Finance.ExportSales)
				sales.GET("/:id", h.Finance.GetSale)
				sales.PUT("/:id", h.Finance.UpdateSale)
				sales.POST("/:id/payments", h.Finance.RecordPayment)
			}

			purchases := authed.Group("/purchases")
			{
				purchases.GET("", h.Finance.ListPurchases)
				purchases.POST("", h.Finance.CreatePurchase)
			}

			expenses := authed.Group("/expenses")
			{
				expenses.GET("", h.Finance.ListExpenses)
				expenses.POST("", h.Finance.CreateExpense)
				expenses.POST("/:id/resolve", h.Finance.ResolveExpense)
			}

			budgets := authed.Group("/budgets")
			{
				budgets.GET("", h.Finance.ListBudgets)
				budgets.POST("", h.Finance.UpsertBudget)
			}

			authed.GET("/partners", h.Finance.ListPartners)
			authed.POST("/partners", h.Finance.CreatePartner)
			authed.GET("/account-codes", h.Finance.ListAccountCodes)
		}
	}
}
