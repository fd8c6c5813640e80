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

	"github.com/diegoalves1988/indicaai/internal/adapter/httpapi"
	natsAdapter "github.com/diegoalves1988/indicaai/internal/adapter/messaging/nats"
	mongoRepo "github.com/diegoalves1988/indicaai/internal/adapter/repository/mongodb"
	s3Storage "github.com/diegoalves1988/indicaai/internal/adapter/storage/s3"

	"github.com/diegoalves1988/indicaai/internal/config"
	"github.com/diegoalves1988/indicaai/internal/usecase"

	"github.com/diegoalves1988/indicaai/internal/platform/logger"
	"github.com/diegoalves1988/indicaai/internal/platform/metrics"
	"github.com/diegoalves1988/indicaai/internal/platform/tracer"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const serviceName = "indicaai"

func main() {
	// Load .env file (optional, for local development)
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	// 1. Initialize Logger
	appLogger := logger.NewLogger()
	appLogger.Info("Application starting...", zap.String("service_name", serviceName))

	// 2. Load Configuration
	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// 3. Initialize OpenTelemetry Tracer
	var tp *sdktrace.TracerProvider
	if cfg.OTExporterOTLPEndpoint != "" {
		tp = tracer.InitTracer(cfg.ServiceName, cfg.OTExporterOTLPEndpoint, appLogger)
		defer func() {
			appLogger.Info("Shutting down tracer provider...")
			ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelShutdown()
			if err := tp.Shutdown(ctxShutdown); err != nil {
				appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}()
	} else {
		appLogger.Info("OpenTelemetry Tracer not initialized (OTEL_EXPORTER_OTLP_ENDPOINT not set).")
	}

	// 4. Connect to MongoDB
	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		appLogger.Info("Disconnecting from MongoDB...")
		if err = mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	ctxPingMongo, cancelPingMongo := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPingMongo()
	if err = mongoClient.Ping(ctxPingMongo, nil); err != nil {
		appLogger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}
	appLogger.Info("Successfully connected and pinged MongoDB.")
	db := mongoClient.Database(cfg.MongoDatabase)

	// 5. Initialize NATS Publisher
	natsPublisher, err := natsAdapter.NewPublisher(cfg.NATSURL, appLogger, cfg.ServiceName)
	if err != nil {
		appLogger.Fatal("Failed to initialize NATS publisher", zap.Error(err))
	}
	defer natsPublisher.Close()

	// 6. Initialize Photo Storage
	photoStorage, err := s3Storage.NewS3Storage(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize photo storage", zap.Error(err))
	}

	// 7. Initialize Repositories
	ratingRepo, err := mongoRepo.NewRatingRepository(db, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize RatingRepository", zap.Error(err))
	}
	professionalRepo, err := mongoRepo.NewProfessionalRepository(db, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize ProfessionalRepository", zap.Error(err))
	}
	userRepo, err := mongoRepo.NewUserRepository(db, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize UserRepository", zap.Error(err))
	}
	appLogger.Info("Repositories initialized.")

	// 8. Initialize Usecases
	ratingUsecase := usecase.NewRatingUsecase(ratingRepo, professionalRepo, natsPublisher, appLogger)
	friendshipUsecase := usecase.NewFriendshipUsecase(userRepo, natsPublisher, appLogger)
	directoryUsecase := usecase.NewDirectoryUsecase(userRepo, professionalRepo, appLogger)
	professionalUsecase := usecase.NewProfessionalUsecase(professionalRepo, userRepo, natsPublisher, appLogger)
	userUsecase := usecase.NewUserUsecase(userRepo, professionalRepo, photoStorage, appLogger)
	appLogger.Info("Usecases initialized.")

	// 9. Initialize Metrics and HTTP Handlers
	metricsManager := metrics.NewManager(cfg.ServiceName)

	ratingHandler := httpapi.NewRatingHandler(ratingUsecase, metricsManager, appLogger)
	userHandler := httpapi.NewUserHandler(userUsecase, friendshipUsecase, directoryUsecase, metricsManager, appLogger)
	professionalHandler := httpapi.NewProfessionalHandler(professionalUsecase, directoryUsecase, metricsManager, appLogger)

	router := httpapi.NewRouter(ratingHandler, userHandler, professionalHandler, cfg.JWTSecret, metricsManager, appLogger)

	// 10. Start HTTP Server
	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// 11. Start Prometheus Metrics Server
	if cfg.PrometheusMetricsPort != "" {
		go func() {
			if err := metrics.StartServer(cfg.PrometheusMetricsPort, appLogger, metricsManager.Registry); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLogger.Error("Prometheus metrics server failed", zap.Error(err))
			}
		}()
	} else {
		appLogger.Info("Prometheus metrics server not started (PROMETHEUS_METRICS_PORT not set).")
	}

	// 12. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	appLogger.Info("Shutting down HTTP server...")
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		appLogger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		appLogger.Info("HTTP server stopped.")
	}

	appLogger.Info("Application shutting down...")
	// Deferred cleanups (MongoDB, NATS, Tracer) execute now.
}
