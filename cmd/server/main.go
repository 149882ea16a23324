package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/group-shedule/schedule-site/config"
	"github.com/group-shedule/schedule-site/internal/api/handler"
	"github.com/group-shedule/schedule-site/internal/api/router"
	"github.com/group-shedule/schedule-site/internal/client"
	"github.com/group-shedule/schedule-site/internal/repository"
	"github.com/group-shedule/schedule-site/internal/service"
	"github.com/group-shedule/schedule-site/internal/session"
	"github.com/group-shedule/schedule-site/internal/view"
	"github.com/group-shedule/schedule-site/pkg/database"
	"github.com/group-shedule/schedule-site/pkg/jwt"
	applogger "github.com/group-shedule/schedule-site/pkg/logger"
	"github.com/group-shedule/schedule-site/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认 ./config/config.yaml）")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("upload_mode", cfg.Upload.Mode),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接 Redis（可选：失败时会话降级为进程内存储，Token 吊销与登录限流不可用）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，降级为内存会话", zap.Error(err))
		rdb = nil
	}

	var store session.Store
	var blacklist service.TokenBlacklist
	if rdb != nil {
		store = session.NewRedisStore(rdb, cfg.Redis.SessionTTL)
		blacklist = rdb
	} else {
		store = session.NewMemoryStore(cfg.Redis.SessionTTL)
	}

	// 4. 连接数据库（可选：仅通知发送记录使用）
	var db *gorm.DB
	var repo *repository.Repository
	if cfg.Database.Enabled {
		db, err = database.NewDB(&cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			logger.Fatal("数据库连接失败", zap.Error(err))
		}
		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			logger.Fatal("数据库迁移失败", zap.Error(err))
		}
		repo = repository.NewRepository(db)
		logger.Info("通知记录已启用")
	}

	// 5. 依赖注入: Backend → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	backend := client.NewHTTPBackend(&cfg.Backend, logger)
	svc := service.NewService(service.Deps{
		Config:    cfg,
		Backend:   backend,
		Repo:      repo,
		JWT:       jwtMgr,
		Blacklist: blacklist,
		Logger:    logger,
	})

	renderer, err := view.NewRenderer()
	if err != nil {
		logger.Fatal("页面模板加载失败", zap.Error(err))
	}
	h := handler.NewHandler(cfg, svc, renderer, logger)

	// 6. 初始化路由
	gin.SetMode(gin.ReleaseMode)
	engine := router.Setup(router.Deps{
		Config:  cfg,
		Handler: h,
		Auth:    svc.Auth,
		Store:   store,
		Redis:   rdb,
		Logger:  logger,
	})

	// 7. 启动 HTTP 服务器（优雅关闭）
	// 照片压缩与后端上传可能较慢，写超时需覆盖 backend.timeout
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: cfg.Backend.Timeout + 60*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 8. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if db != nil {
		database.Close(db)
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
