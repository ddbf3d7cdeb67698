package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nlgkit/subjectivity/internal/application/usecase"
	"github.com/nlgkit/subjectivity/internal/domain/port"
	"github.com/nlgkit/subjectivity/internal/domain/service"
	"github.com/nlgkit/subjectivity/internal/infrastructure/config"
	kafkapublisher "github.com/nlgkit/subjectivity/internal/infrastructure/kafka"
	"github.com/nlgkit/subjectivity/internal/infrastructure/messaging"
	"github.com/nlgkit/subjectivity/internal/infrastructure/ml"
	"github.com/nlgkit/subjectivity/internal/infrastructure/postgres"
	"github.com/nlgkit/subjectivity/internal/presentation/consumer"
	grpcpresentation "github.com/nlgkit/subjectivity/internal/presentation/grpc"
	"github.com/nlgkit/subjectivity/internal/presentation/rest"
	"github.com/nlgkit/subjectivity/pkg/auth"
	"github.com/nlgkit/subjectivity/pkg/kafka"
	"github.com/nlgkit/subjectivity/pkg/observability"
	pgutil "github.com/nlgkit/subjectivity/pkg/postgres"
	"github.com/nlgkit/subjectivity/pkg/tlsutil"
)

const serviceName = "subjectivity-service"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
	})

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("subjectivity-service failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting subjectivity-service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"model_path", cfg.ModelPath,
	)

	// Initialize tracing.
	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: serviceName,
			Endpoint:    cfg.OTLPEndpoint,
			Insecure:    true,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() {
				flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer flushCancel()
				if err := shutdown(flushCtx); err != nil {
					logger.Warn("tracer shutdown", "error", err)
				}
			}()
		}
	}

	// Initialize metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: serviceName})
	if err != nil {
		return err
	}
	defer meterProvider.Shutdown(context.Background()) //nolint:errcheck
	otel.SetMeterProvider(meterProvider)

	recorder, err := observability.NewAssessmentMetrics(meterProvider.Meter(serviceName))
	if err != nil {
		return err
	}

	// Load the classifier before accepting traffic.
	assessor := service.NewAssessor(service.AssessorConfig{ModelPath: cfg.ModelPath}, ml.NewLoader(logger))
	if err := assessor.Load(ctx); err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	// Wire infrastructure adapters.
	readiness := map[string]rest.ReadinessCheck{
		"model": func(context.Context) error {
			if !assessor.Loaded() {
				return errors.New("model not loaded")
			}
			return nil
		},
	}

	var repo port.AssessmentRepository
	if cfg.PersistenceEnabled() {
		dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := pgutil.NewPool(dbCtx, pgutil.Config{
			URL:             cfg.DatabaseURL,
			ApplicationName: serviceName,
			RetryInterval:   time.Second,
		})
		dbCancel()
		if err != nil {
			return err
		}
		defer pool.Close()
		logger.Info("connected to database")

		if err := pgutil.Migrate(cfg.DatabaseURL, cfg.MigrationsDir, logger); err != nil {
			return err
		}

		repo = postgres.NewAssessmentRepository(pool)
		readiness["database"] = func(ctx context.Context) error { return pgutil.HealthCheck(ctx, pool) }
	} else {
		logger.Warn("DATABASE_URL not set, assessments are kept in memory")
		repo = postgres.NewMemoryRepository()
	}

	kafkaCfg := kafka.Config{
		Brokers:       cfg.KafkaBrokers,
		ConsumerGroup: cfg.KafkaConsumerGroup,
		Compression:   cfg.KafkaCompression,
	}

	var publisher port.EventPublisher
	if cfg.KafkaEnabled() {
		producer, err := kafka.NewProducer(kafkaCfg)
		if err != nil {
			return err
		}
		defer producer.Close() //nolint:errcheck
		publisher = kafkapublisher.NewPublisher(producer, cfg.KafkaEventsTopic, logger)
	} else {
		publisher = messaging.NewLogPublisher(logger)
	}

	// Wire use cases.
	scoreTextUC := usecase.NewScoreText(assessor, recorder)
	assessTextUC := usecase.NewAssessText(repo, publisher, assessor, recorder)
	assessBatchUC := usecase.NewAssessBatch(assessTextUC, usecase.BatchConfig{
		MaxBatchSize: cfg.MaxBatchSize,
		Concurrency:  cfg.BatchConcurrency,
	})
	getAssessmentUC := usecase.NewGetAssessment(repo)
	listAssessmentsUC := usecase.NewListAssessments(repo)

	// Authentication.
	var jwtService *auth.JWTService
	if cfg.AuthEnabled() {
		jwtCfg := auth.JWTConfig{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}
		if cfg.JWTPublicKeyPath != "" {
			pem, err := auth.LoadKeyFromFile(cfg.JWTPublicKeyPath)
			if err != nil {
				return err
			}
			jwtCfg.PublicKeyPEM = pem
		}
		if jwtService, err = auth.NewJWTService(jwtCfg); err != nil {
			return err
		}
	} else {
		logger.Warn("JWT not configured, requests are not authenticated")
	}

	// gRPC server.
	grpcOpts := grpcpresentation.ServerOptions{
		Address:    cfg.GRPCAddress(),
		JWT:        jwtService,
		Reflection: cfg.Environment != "production",
	}
	if cfg.TLSEnabled() {
		creds, err := tlsutil.ServerTLSConfig(cfg.TLSCertFile, cfg.TLSKeyFile, cfg.TLSCAFile)
		if err != nil {
			return err
		}
		grpcOpts.Credentials = creds
	}

	grpcHandler := grpcpresentation.NewSubjectivityServiceHandler(
		scoreTextUC, assessTextUC, assessBatchUC, getAssessmentUC, listAssessmentsUC, logger,
	)
	grpcServer := grpcpresentation.NewServer(grpcHandler, grpcOpts, logger)

	// HTTP server (health checks, scoring and metrics).
	routerCfg := rest.RouterConfig{
		Health:  rest.NewHealthHandler(logger, readiness),
		Score:   rest.NewScoreHandler(scoreTextUC, logger),
		Metrics: metricsHandler,
		Logger:  logger,
	}
	if jwtService != nil {
		routerCfg.Auth = auth.HTTPMiddleware(jwtService, rest.PublicPaths)
	}
	if cfg.RateLimitEnabled() {
		routerCfg.Limiter = rate.NewLimiter(rate.Limit(cfg.HTTPRateLimit), cfg.HTTPRateBurst)
	}
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      rest.NewRouter(routerCfg),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start servers.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := grpcServer.Start(); err != nil {
			return fmt.Errorf("gRPC server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	if cfg.KafkaEnabled() && cfg.KafkaRequestTopic != "" {
		requests := consumer.NewAssessmentRequestHandler(assessTextUC, logger)
		c, err := kafka.NewConsumer(kafkaCfg, cfg.KafkaRequestTopic, requests.Handle, logger)
		if err != nil {
			return err
		}
		defer c.Close() //nolint:errcheck
		g.Go(func() error { return c.Start(gctx) })
	}

	grpcServer.SetServing(true)
	logger.Info("subjectivity-service started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
		"environment", cfg.Environment,
		"model", assessor.ModelName(),
	)

	// Wait for shutdown signal or a server failure, then stop everything.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down subjectivity-service")

		grpcServer.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("subjectivity-service stopped")
	return nil
}
