package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/rollbook/rollbook-api/api/swagger"
	"github.com/rollbook/rollbook-api/internal/handler"
	appmiddleware "github.com/rollbook/rollbook-api/internal/middleware"
	"github.com/rollbook/rollbook-api/internal/repository"
	"github.com/rollbook/rollbook-api/internal/service"
	"github.com/rollbook/rollbook-api/pkg/cache"
	"github.com/rollbook/rollbook-api/pkg/config"
	"github.com/rollbook/rollbook-api/pkg/database"
	"github.com/rollbook/rollbook-api/pkg/logger"
	"github.com/rollbook/rollbook-api/pkg/middleware/cors"
	"github.com/rollbook/rollbook-api/pkg/middleware/requestid"
	"github.com/rollbook/rollbook-api/pkg/storage"
)

// @title Rollbook API
// @version 1.0
// @description Classroom attendance tracking API: roster management, spreadsheet import, daily marks and reports.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("load config: %v", err))
	}

	log, err := logger.New(cfg)
	if err != nil {
		panic(fmt.Sprintf("init logger: %v", err))
	}
	defer log.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if err := database.InitSchema(db); err != nil {
		log.Fatal("init schema", zap.Error(err))
	}

	// Redis is optional: reporting queries fall back to the database.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, report caching disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close() //nolint:errcheck
	}

	uploads, err := storage.NewUploadStore(cfg.Uploads.Dir)
	if err != nil {
		log.Fatal("init upload store", zap.Error(err))
	}

	studentRepo := repository.NewStudentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	studentSvc := service.NewStudentService(studentRepo, attendanceRepo, cacheRepo, log)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, studentRepo, cacheRepo, cfg.Attendance.CacheTTL, cfg.Attendance.HistoryLimit, log)
	importSvc := service.NewImportService(uploads, studentRepo, cacheRepo, log)
	exportSvc := service.NewExportService(attendanceRepo, log)
	authSvc := service.NewAuthService(userRepo, cfg.OAuth, cfg.Session, log)
	metricsSvc := service.NewMetricsService()

	studentHandler := handler.NewStudentHandler(studentSvc, importSvc, log)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, exportSvc, log)
	authHandler := handler.NewAuthHandler(authSvc, log)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestid.Middleware())
	r.Use(cors.New(cfg.CORS.AllowedOrigins))
	r.Use(logger.GinMiddleware(log))
	r.Use(appmiddleware.Metrics(metricsSvc))

	registerRoutes(r, db, authSvc, metricsSvc, studentHandler, attendanceHandler, authHandler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server listening", zap.Int("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
