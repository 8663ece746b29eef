package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"appointment-service/config"
	deliveryHttp "appointment-service/internal/delivery/http"
	"appointment-service/internal/delivery/http/handler"
	"appointment-service/internal/delivery/http/middleware"
	domainRepo "appointment-service/internal/domain/repository"
	"appointment-service/internal/infrastructure/cache"
	"appointment-service/internal/infrastructure/database"
	"appointment-service/internal/infrastructure/messaging"
	"appointment-service/internal/repository"
	"appointment-service/internal/service"
	"appointment-service/internal/usecase"
	"appointment-service/pkg/jwt"
	"appointment-service/pkg/metrics"
	"appointment-service/pkg/tracer"
	"appointment-service/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config         *config.Config
	Log            *logrus.Logger
	DB             *gorm.DB
	RedisClient    *redis.Client
	Publisher      messaging.EventPublisher
	TracerProvider *sdktrace.TracerProvider
	Server         *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	log := setupLogger(cfg.App.LogLevel)
	app.Log = log
	log.Info("Configuration loaded successfully")

	ctx := context.Background()

	tp, err := tracer.Init(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	app.TracerProvider = tp

	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis, log)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.RedisClient = redisClient
	}

	if cfg.DB.Driver == config.DBDriverPostgres {
		db, err := database.NewPostgresConnection(cfg.DB, log)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(db); err != nil {
			app.DB = db
			app.Close()
			return nil, err
		}
		app.DB = db
	}

	if cfg.Kafka.Enabled {
		app.Publisher = messaging.NewKafkaPublisher(cfg.Kafka)
		log.Infof("Publishing appointment events to %s", cfg.Kafka.Topic)
	} else {
		app.Publisher = messaging.NewNoopPublisher()
	}

	server, err := initializeServer(app)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Server = server

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
		log.Warnf("Unknown LOG_LEVEL %q, using info", level)
	}
	log.SetLevel(parsed)
	return log
}

// initializeServer creates and configures the HTTP server
func initializeServer(app *App) (*http.Server, error) {
	cfg, log := app.Config, app.Log

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	messages, err := service.NewMessageService(log, cfg.App.MessagesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(strings.ReplaceAll(cfg.App.Name, "-", "_"), registry)

	// Initialize repositories
	var appointmentRepo domainRepo.AppointmentRepository
	var auditLogHandler *handler.AuditLogHandler
	if app.DB != nil {
		auditLogRepo := repository.NewAuditLogRepository()
		auditService := service.NewAuditService(log, auditLogRepo)
		appointmentRepo = repository.NewAppointmentRepository(app.DB, auditService)

		auditLogUsecase := usecase.NewAuditLogUsecase(app.DB, log, auditLogRepo, appointmentRepo, messages)
		auditLogHandler = handler.NewAuditLogHandler(auditLogUsecase)
	} else {
		log.Warn("Using in-memory appointment store; data is lost on restart")
		appointmentRepo = repository.NewMemoryAppointmentRepository()
	}
	if app.RedisClient != nil {
		appointmentRepo = repository.NewCachedAppointmentRepository(appointmentRepo, app.RedisClient, cfg.Redis.CacheTTL, log)
	}

	patientChecker := service.NewPatientChecker(log, cfg.Reference.PatientServiceURL, cfg.Reference.Timeout)
	doctorChecker := service.NewDoctorChecker(log, cfg.Reference.DoctorServiceURL, cfg.Reference.Timeout)

	// Initialize usecases
	appointmentUsecase := usecase.NewAppointmentUsecase(log, appointmentRepo, patientChecker, doctorChecker, messages, time.Now)
	appointmentUsecase = usecase.NewInstrumentedAppointmentUsecase(appointmentUsecase, log, collector)
	appointmentUsecase = usecase.NewEventingAppointmentUsecase(appointmentUsecase, app.Publisher, collector, log)

	// Initialize handlers
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, app.RedisClient, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigin)

	// Initialize router
	router := deliveryHttp.NewRouter(appointmentHandler, auditLogHandler, authMiddleware, corsMiddleware, collector, log)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s, store: %s", app.Config.App.Env, app.Config.DB.Driver)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close releases the database, Redis, the event publisher and the tracer.
func (app *App) Close() {
	if app.Publisher != nil {
		if err := app.Publisher.Close(); err != nil {
			app.Log.Warnf("Failed to close event publisher: %v", err)
		}
	}

	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}

	if app.TracerProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.TracerProvider.Shutdown(ctx); err != nil {
			app.Log.Warnf("Failed to flush traces: %v", err)
		}
	}
}
