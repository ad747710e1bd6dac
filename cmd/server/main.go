package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ghilba812/ORSPost/internal/api"
	"github.com/Ghilba812/ORSPost/internal/config"
	"github.com/Ghilba812/ORSPost/internal/database"
	"github.com/Ghilba812/ORSPost/internal/logger"
	"github.com/Ghilba812/ORSPost/internal/ors"
	"github.com/Ghilba812/ORSPost/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		logger.L().Error("config_error", "err", err)
		os.Exit(1)
	}
	l := logger.Setup(cfg.Log.Level, cfg.Log.Format)
	if cfg.ORS.Key == "" {
		l.Warn("ors_key_missing", "hint", "time mode requests will fail upstream")
	}

	// 连接数据库
	db, err := database.Connect(cfg.Database)
	if err != nil {
		l.Error("db_connect_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	l.Info("db_connect_ok", "host", cfg.Database.Host, "db", cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		if err := database.EnsureSchema(context.Background(), db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
	}

	// 缓存：PostGIS 持久层，可选 Redis 前置层
	var cache service.CacheStore = service.NewPostgresCache(db)
	if rdb := service.OpenRedis(cfg.Redis); rdb != nil {
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			l.Warn("redis_ping_error", "addr", cfg.Redis.Addr, "err", err)
		} else {
			l.Info("redis_ping_ok", "addr", cfg.Redis.Addr)
		}
		cache = service.NewRedisCache(rdb, cache)
	} else {
		l.Info("redis_disabled")
	}

	// 初始化服务层
	billboards := service.NewBillboardService(db)
	provider := service.NewReachProvider(ors.NewClient(cfg.ORS), cfg.BufferSegments)
	isochroneService := service.NewIsochroneService(billboards, cache, provider)
	insightService := service.NewInsightService(cache, service.NewPostGISStats(db))

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.SetupRouter(api.NewHandler(isochroneService, insightService, billboards, service.NewPOICatalog(db)))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 优雅关闭
	go func() {
		l.Info("server_start", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("server_error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	l.Info("server_shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.Error("server_forced_shutdown", "err", err)
	}

	l.Info("server_exited")
}
