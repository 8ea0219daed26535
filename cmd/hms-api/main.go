package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carelane/hms-api/internal/config"
	v1 "github.com/carelane/hms-api/internal/handler/v1"
	"github.com/carelane/hms-api/internal/middleware"
	"github.com/carelane/hms-api/internal/repository/postgres"
	"github.com/carelane/hms-api/internal/service"
	"github.com/carelane/hms-api/pkg/auth"
	"github.com/carelane/hms-api/pkg/database"
	"github.com/carelane/hms-api/pkg/logger"
	"github.com/carelane/hms-api/pkg/metrics"
	"github.com/carelane/hms-api/pkg/tracer"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	log.Info("starting",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.Migrate(db, log); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	col := metrics.NewCollector("carelane")

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("obtaining sql.DB: %w", err)
	}
	go func() {
		for range time.Tick(15 * time.Second) {
			col.DBConnections.Set(float64(sqlDB.Stats().OpenConnections))
		}
	}()

	appointmentRepo := postgres.NewAppointmentRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	recordRepo := postgres.NewRecordRepository(db)
	userRepo := postgres.NewUserRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	auditSvc := service.NewAuditService(auditRepo, col, log)
	notifier := service.NewNotificationService(col, log)
	jwtManager := auth.NewJWTManager(cfg.JWT)

	authSvc := service.NewAuthService(userRepo, jwtManager, auditSvc, log)
	appointmentSvc := service.NewAppointmentService(appointmentRepo, doctorRepo, patientRepo, userRepo, auditSvc, notifier, log)
	doctorSvc := service.NewDoctorService(doctorRepo, auditSvc, log)
	patientSvc := service.NewPatientService(patientRepo, auditSvc, log)
	recordSvc := service.NewRecordService(recordRepo, patientRepo, auditSvc, log)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(log))
	engine.Use(middleware.Metrics(col))
	engine.Use(middleware.RateLimit(cfg.RateLimit))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	corsConfig.AllowMethods = cfg.CORS.AllowedMethods
	corsConfig.AllowHeaders = cfg.CORS.AllowedHeaders
	corsConfig.MaxAge = cfg.CORS.MaxAge
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	v1.RegisterRoutes(engine, v1.Handlers{
		Auth:        v1.NewAuthHandler(authSvc),
		Appointment: v1.NewAppointmentHandler(appointmentSvc, col),
		Doctor:      v1.NewDoctorHandler(doctorSvc, col),
		Patient:     v1.NewPatientHandler(patientSvc, col),
		Record:      v1.NewRecordHandler(recordSvc),
	}, jwtManager)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}

	// Drain async workers before closing the database so buffered audit
	// entries still land.
	auditSvc.Shutdown()
	notifier.Shutdown()

	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("tracer shutdown failed", zap.Error(err))
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("database close failed", zap.Error(err))
	}

	log.Info("shutdown complete")
	return nil
}
