package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	// Platform packages
	"github.com/aradsms/churn_dashboard/internal/platform/config"
	"github.com/aradsms/churn_dashboard/internal/platform/database"
	"github.com/aradsms/churn_dashboard/internal/platform/logger"
	"github.com/aradsms/churn_dashboard/internal/platform/messagebroker"

	// Churn dashboard packages
	grpcAdapter "github.com/aradsms/churn_dashboard/internal/churn_service/adapters/grpc"
	churnApp "github.com/aradsms/churn_dashboard/internal/churn_service/app"
	"github.com/aradsms/churn_dashboard/internal/churn_service/dataset"
	"github.com/aradsms/churn_dashboard/internal/churn_service/domain"
	"github.com/aradsms/churn_dashboard/internal/churn_service/model"
	"github.com/aradsms/churn_dashboard/internal/churn_service/repository/postgres"
	httptransport "github.com/aradsms/churn_dashboard/internal/churn_service/transport/http"
)

const (
	serviceName     = "churn_dashboard"
	shutdownTimeout = 15 * time.Second
)

func main() {
	mainCtx, mainCancel := context.WithCancel(context.Background())
	defer mainCancel()

	cfg, err := config.Load(serviceName)
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger = appLogger.With("service", serviceName)
	appLogger.Info("Starting service...")

	if err := cfg.Validate(); err != nil {
		appLogger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	appLogger.Info("Configuration loaded",
		"log_level", cfg.LogLevel,
		"http_port", cfg.HTTPPort,
		"grpc_health_port", cfg.GRPCHealthPort,
		"dataset_path", cfg.DatasetPath,
		"artifact_path", cfg.ArtifactPath,
		"scaling_mode", cfg.ScalingMode,
		"postgres_dsn_present", cfg.PostgresDSN != "",
		"event_broker", cfg.EventBroker,
		"api_auth_enabled", cfg.APIJWTSecret != "",
	)

	// Read-only inputs. Any failure here is fatal before serving.
	data, err := dataset.Load(cfg.DatasetPath)
	if err != nil {
		appLogger.Error("Failed to load dataset", "error", err)
		os.Exit(1)
	}
	summary := data.Summary()
	appLogger.Info("Dataset loaded", "customers", summary.Customers, "churned", summary.Churned, "states", summary.States)

	artifact, err := model.LoadArtifact(cfg.ArtifactPath)
	if err != nil {
		appLogger.Error("Failed to load trained artifact", "error", err)
		os.Exit(1)
	}
	if cfg.ScalingMode == config.ScalingModeFitted && artifact.Scaler == nil {
		err := &domain.ArtifactLoadError{Path: cfg.ArtifactPath, Err: errors.New("scaling mode fitted requires a scaler in the artifact")}
		appLogger.Error("Failed to load trained artifact", "error", err)
		os.Exit(1)
	}
	appLogger.Info("Trained artifact loaded",
		"model_version", artifact.ModelVersion,
		"kind", artifact.Kind,
		"sha3_256", artifact.Digest,
		"has_scaler", artifact.Scaler != nil,
		"scaling_mode", cfg.ScalingMode,
	)

	// Optional prediction audit log.
	var repo domain.PredictionRepository
	if cfg.PostgresDSN != "" {
		dbPool, err := database.NewDBPool(mainCtx, cfg.PostgresDSN, appLogger)
		if err != nil {
			appLogger.Error("Failed to initialize database connection pool", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()
		repo = postgres.NewPgPredictionRepository(dbPool, appLogger)
		appLogger.Info("Prediction audit log enabled")
	} else {
		appLogger.Info("POSTGRES_DSN not configured, prediction audit log disabled.")
	}

	// Optional prediction events.
	publisher, err := newEventPublisher(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize event publisher", "broker", cfg.EventBroker, "error", err)
		os.Exit(1)
	}
	if publisher != nil {
		defer publisher.Close()
	}

	predictionService, err := churnApp.NewPredictionService(artifact, cfg.ScalingMode, repo, publisher, cfg.PredictionEventsSubject, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize prediction service", "error", err)
		os.Exit(1)
	}

	dashboardHandler, err := httptransport.NewDashboardHandler(predictionService, data, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize dashboard pages", "error", err)
		os.Exit(1)
	}
	apiHandler := httptransport.NewAPIHandler(predictionService, data, appLogger, httptransport.NewValidator())
	router := httptransport.NewRouter(httptransport.RouterConfig{
		RequestTimeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		APIJWTSecret:   cfg.APIJWTSecret,
	}, dashboardHandler, apiHandler, appLogger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, groupCtx := errgroup.WithContext(mainCtx)

	g.Go(func() error {
		appLogger.Info("HTTP server starting", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed to serve", "error", err)
			return err
		}
		appLogger.Info("HTTP server stopped gracefully.")
		return nil
	})

	var healthServer *grpcAdapter.HealthServer
	if cfg.GRPCHealthPort != 0 {
		healthServer = grpcAdapter.NewHealthServer(appLogger)
		g.Go(func() error {
			listenAddress := fmt.Sprintf(":%d", cfg.GRPCHealthPort)
			lis, err := net.Listen("tcp", listenAddress)
			if err != nil {
				appLogger.Error("Failed to listen for gRPC", "address", listenAddress, "error", err)
				return fmt.Errorf("failed to listen for gRPC on %s: %w", listenAddress, err)
			}
			defer lis.Close()
			return healthServer.Serve(lis)
		})
		healthServer.MarkServing()
	}

	// Goroutine for handling termination signals
	g.Go(func() error {
		stopSignal := make(chan os.Signal, 1)
		signal.Notify(stopSignal, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-stopSignal:
			appLogger.Info("Received termination signal", "signal", sig.String())
			mainCancel()
			return nil
		case <-groupCtx.Done():
			return nil
		}
	})

	// Goroutine for graceful shutdown
	g.Go(func() error {
		<-groupCtx.Done()
		appLogger.Info("Initiating graceful shutdown...")
		if healthServer != nil {
			healthServer.Shutdown()
		}
		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		if err := httpServer.Shutdown(ctxShutdown); err != nil {
			appLogger.Error("HTTP server shutdown failed", "error", err)
			return err
		}
		return nil
	})

	appLogger.Info("Service is ready and running.")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("Service group encountered an error", "error", err)
	}

	appLogger.Info("Service shutdown complete.")
}

// newEventPublisher returns nil when no broker is configured.
func newEventPublisher(cfg *config.Config, logger *slog.Logger) (domain.EventPublisher, error) {
	switch cfg.EventBroker {
	case config.EventBrokerNATS:
		client, err := messagebroker.NewNATSClient(cfg.NATSURL, logger, serviceName)
		if err != nil {
			return nil, err
		}
		logger.Info("Publishing prediction events to NATS", "url", cfg.NATSURL, "subject", cfg.PredictionEventsSubject)
		return client, nil
	case config.EventBrokerKafka:
		brokers := cfg.KafkaBrokerList()
		logger.Info("Publishing prediction events to Kafka", "brokers", brokers, "topic", cfg.PredictionEventsSubject)
		return messagebroker.NewKafkaProducer(brokers, logger), nil
	default:
		logger.Info("EVENT_BROKER not configured, prediction events disabled.")
		return nil, nil
	}
}
