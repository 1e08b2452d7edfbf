package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eduschool/backend/docs"
	"github.com/eduschool/backend/internal/handlers"
	"github.com/eduschool/backend/internal/repositories"
	"github.com/eduschool/backend/internal/services"
	"github.com/eduschool/backend/libs/auth/middleware"
	"github.com/eduschool/backend/libs/auth/service"
	"github.com/eduschool/backend/libs/config"
	"github.com/eduschool/backend/libs/logger"
	loggerMiddleware "github.com/eduschool/backend/libs/logger/middleware"
	sharedMiddleware "github.com/eduschool/backend/libs/middlewares"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const maxRequestSize = 1 << 20 // 1MB

// @title School Platform API
// @version 1.0
// @description Session-authenticated API for courses, lessons and lesson progress.
// @BasePath /api
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting school platform API")

	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, "school"),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      newRouter(cfg, db, registry, logger.Logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port), zap.String("api_prefix", cfg.APIPrefix))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// newRouter wires repositories, services and handlers into the HTTP router
func newRouter(cfg *config.Config, db *sql.DB, registry *prometheus.Registry, appLogger *zap.Logger) http.Handler {
	userRepo := repositories.NewUserRepository(db, appLogger)
	sessionRepo := repositories.NewSessionRepository(db)
	courseRepo := repositories.NewCourseRepository(db)
	lessonRepo := repositories.NewLessonRepository(db)
	progressRepo := repositories.NewProgressRepository(db)

	sessionManager := service.NewSessionManager(sessionRepo, cfg.Session.Secret, cfg.Session.TTL, cfg.Session.Secure, appLogger)

	authService := services.NewAuthService(userRepo, appLogger)
	contentService := services.NewContentService(courseRepo, lessonRepo, appLogger)
	progressService := services.NewProgressService(progressRepo, appLogger)

	authHandler := handlers.NewAuthHandler(authService, sessionManager, appLogger)
	contentHandler := handlers.NewContentHandler(contentService, appLogger)
	progressHandler := handlers.NewProgressHandler(progressService, appLogger)

	sessionMiddleware := middleware.AuthMiddleware(sessionManager, appLogger)
	csrfMiddleware := middleware.CSRFMiddleware(sessionManager, appLogger)
	metrics := sharedMiddleware.NewMetrics(registry)

	r := chi.NewRouter()

	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(appLogger))
	r.Use(sharedMiddleware.RecoveryMiddleware(appLogger))
	r.Use(metrics.Middleware)
	r.Use(sharedMiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(maxRequestSize))

	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	docs.SwaggerInfo.BasePath = cfg.APIPrefix
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route(cfg.APIPrefix, func(r chi.Router) {
		authHandler.RegisterRoutes(r, sessionMiddleware, csrfMiddleware)
		contentHandler.RegisterRoutes(r)
		progressHandler.RegisterRoutes(r, sessionMiddleware, csrfMiddleware)
	})

	return r
}

func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "school_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
