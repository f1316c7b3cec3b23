package bootstrap

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

	"google.golang.org/grpc"

	cacheadapter "github.com/nischaysood/creator-connect/internal/adapters/cache"
	ethadapter "github.com/nischaysood/creator-connect/internal/adapters/ethereum"
	eventadapter "github.com/nischaysood/creator-connect/internal/adapters/events"
	"github.com/nischaysood/creator-connect/internal/adapters/gemini"
	grpcadapter "github.com/nischaysood/creator-connect/internal/adapters/grpc"
	httpadapter "github.com/nischaysood/creator-connect/internal/adapters/http"
	"github.com/nischaysood/creator-connect/internal/adapters/oembed"
	"github.com/nischaysood/creator-connect/internal/adapters/postgres"
	"github.com/nischaysood/creator-connect/internal/application"
	"github.com/nischaysood/creator-connect/internal/domain"
	"github.com/nischaysood/creator-connect/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	outbox     *eventadapter.Worker
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping verification agent", "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort)

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := pool.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	var escrow ports.EscrowClient
	var escrowClose func()
	if cfg.EscrowRPCURL != "" && cfg.EscrowContractAddress != "" && cfg.EscrowAgentPrivateKey != "" {
		client, err := ethadapter.NewClient(ctx, ethadapter.Config{
			RPCURL:          cfg.EscrowRPCURL,
			ContractAddress: cfg.EscrowContractAddress,
			AgentPrivateKey: cfg.EscrowAgentPrivateKey,
			ChainID:         cfg.EscrowChainID,
		})
		if err != nil {
			_ = sqlDB.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init escrow client: %w", err)
		}
		escrow = client
		escrowClose = client.Close
	} else {
		logger.Warn("escrow client not configured, verified content will not trigger payouts")
	}

	var domainEvents ports.DomainPublisher
	var dlq ports.DLQPublisher = eventadapter.LoggingDLQPublisher{}
	var eventsClose func()
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := eventadapter.NewKafkaDomainPublisher(cfg.KafkaBrokers, map[string]string{
			domain.EventVerificationCompleted: "creator-connect.verification.completed",
			domain.EventPaymentReleased:       "creator-connect.payment.released",
		})
		if err != nil {
			_ = sqlDB.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init kafka publisher: %w", err)
		}
		dlqPublisher, err := eventadapter.NewKafkaDLQPublisher(cfg.KafkaBrokers, cfg.DLQTopic)
		if err != nil {
			_ = publisher.Close()
			_ = sqlDB.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init kafka dlq publisher: %w", err)
		}
		domainEvents = publisher
		dlq = dlqPublisher
		eventsClose = func() {
			_ = publisher.Close()
			_ = dlqPublisher.Close()
		}
	} else {
		logger.Warn("kafka brokers not configured, domain events stay queued in the outbox")
	}

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:          cfg.ServiceID,
			IdempotencyTTL:       cfg.IdempotencyTTL,
			MetadataTimeout:      cfg.MetadataTimeout,
			AnalyzerTimeout:      cfg.AnalyzerTimeout,
			OutboxFlushBatchSize: cfg.OutboxBatchSize,
			RequireEnrollment:    cfg.RequireEnrollment,
		},
		Verifications: postgres.NewVerificationRepository(pool),
		Idempotency:   cacheadapter.NewRedisIdempotencyStore(redisClient),
		Outbox:        postgres.NewOutboxRepository(pool),
		Fetcher:       oembed.NewFetcher(cfg.MetadataTimeout),
		Analyzer: gemini.NewClient(gemini.Config{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			Timeout: cfg.AnalyzerTimeout,
		}),
		Escrow:       escrow,
		DomainEvents: domainEvents,
		DLQ:          dlq,
	})

	handler := httpadapter.NewHandler(svc)
	router := httpadapter.NewRouter(handler, httpadapter.RouterConfig{JWTSecret: cfg.JWTSecret})
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// grpcadapter.Register owns the health registration; registering the
	// standard health server here as well would be a duplicate and fatal.
	grpcServer := grpc.NewServer()
	grpcadapter.Register(grpcServer, grpcadapter.NewVerificationInternalServer(svc))

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("listen gRPC: %w", err)
	}

	outbox := eventadapter.NewWorker(logger, svc, cfg.OutboxPollInterval)

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		outbox:     outbox,
		cleanupFn: func(ctx context.Context) {
			if eventsClose != nil {
				eventsClose()
			}
			if escrowClose != nil {
				escrowClose()
			}
			_ = redisClient.Close()
			_ = sqlDB.Close()
		},
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc server started", "addr", r.grpcLis.Addr().String())
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return nil
}

func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("outbox worker started")
	err := r.outbox.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.cleanupFn(shutdownCtx)
	return nil
}
