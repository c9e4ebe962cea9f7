// Package main runs the sentiment backend service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "net/http/pprof"

	"github.com/hackathonone/sentiment-backend/internal/app"
	"github.com/hackathonone/sentiment-backend/internal/classifier"
	"github.com/hackathonone/sentiment-backend/internal/config"
	"github.com/hackathonone/sentiment-backend/internal/store"
	"github.com/hackathonone/sentiment-backend/pkg/bootstrap"
	"github.com/hackathonone/sentiment-backend/pkg/config/configloader"
	"github.com/hackathonone/sentiment-backend/pkg/messaging"
	"github.com/hackathonone/sentiment-backend/pkg/nats"
	"github.com/hackathonone/sentiment-backend/pkg/telemetry"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const serviceName = "sentiment"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run loads the configuration, connects the database, NATS and the classifier, and serves until ctx is cancelled.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	if cfg.Telemetry.Enabled {
		tracerProvider, err := telemetry.NewTracerProvider(ctx, serviceName, cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("failed to create tracer provider: %w", err)
		}
		defer func() {
			logger.Info("Shutting down tracer provider")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Failed to shutdown tracer provider", slog.Any("error", err))
			}
		}()
	}
	meterProvider, metricsHandler, err := telemetry.NewMeterProvider(serviceName)
	if err != nil {
		return fmt.Errorf("failed to create meter provider: %w", err)
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			logger.Warn("Failed to shutdown meter provider", slog.Any("error", err))
		}
	}()

	dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
	if err != nil {
		return fmt.Errorf("failed to create database connection pool: %w", err)
	}
	defer dbPool.Close()
	logger.Info("Successfully connected to the database!")

	if cfg.Database.Migrate {
		if err := store.Migrate(cfg.Database.URL); err != nil {
			return err
		}
		logger.Info("Database schema is up to date")
	}

	publisher, closeNats, err := setupPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeNats()

	client := classifier.NewClient(cfg.Classifier, cfg.Resilience.CircuitBreaker, logger)
	deps := app.SetupDependencies(store.NewPgStore(dbPool), client, publisher, cfg.Sentiment, logger)
	deps.Metrics = metricsHandler

	httpServer := app.SetupHttpServer(deps, cfg)
	grpcServer := app.SetupGrpcServer(deps, cfg.GRPC.ReflectionEnabled)

	g, gCtx := errgroup.WithContext(ctx)
	serveHTTP(gCtx, g, "HTTP", httpServer, cfg.Shutdown.Timeout, logger)
	serveGRPC(gCtx, g, ":"+cfg.GRPC.Port, grpcServer, cfg.Shutdown.Timeout, logger)
	if cfg.PProf.Enabled {
		pprofServer := &http.Server{Addr: cfg.PProf.Addr, ReadHeaderTimeout: 5 * time.Second}
		serveHTTP(gCtx, g, "pprof", pprofServer, cfg.Shutdown.Timeout, logger)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// serveHTTP runs srv in g and shuts it down once ctx is cancelled.
func serveHTTP(ctx context.Context, g *errgroup.Group, name string, srv *http.Server, timeout time.Duration, logger *slog.Logger) {
	g.Go(func() error {
		logger.Info(name+" server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server failed: %w", name, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down " + name + " server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// serveGRPC runs srv on addr in g. On cancellation it stops gracefully, forcing the stop after timeout.
func serveGRPC(ctx context.Context, g *errgroup.Group, addr string, srv *grpc.Server, timeout time.Duration, logger *slog.Logger) {
	g.Go(func() error {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to listen on gRPC port: %w", err)
		}
		logger.Info("gRPC server listening", slog.String("addr", addr))
		return srv.Serve(lis)
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down gRPC server...")
		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
			return nil
		case <-time.After(timeout):
			logger.Warn("gRPC server graceful stop timed out. Forcing stop.")
			srv.Stop()
			return errors.New("grpc server graceful stop timed out")
		}
	})
}

// setupPublisher connects to NATS and makes sure the stream for critical comment events exists.
// With NATS disabled, events are dropped.
func setupPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.Nats.Enabled {
		logger.Info("NATS disabled, critical comment events will not be published")
		return messaging.NoopPublisher{}, func() {}, nil
	}
	natsConn, err := nats.NewClient(cfg.Nats.Url, cfg.Nats.Timeout, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create NATS connection: %w", err)
	}
	js, err := nats.NewJetStreamContext(natsConn)
	if err != nil {
		natsConn.Close()
		return nil, nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}
	if _, err := nats.EnsureStream(ctx, js, cfg.Nats.Stream, messaging.CriticalCommentsSubject); err != nil {
		natsConn.Close()
		return nil, nil, fmt.Errorf("failed to ensure stream %s: %w", cfg.Nats.Stream, err)
	}
	logger.Info("Connected to NATS", slog.String("stream", cfg.Nats.Stream))
	return nats.NewNatsPublisher(js), func() {
		if err := natsConn.Drain(); err != nil {
			logger.Warn("Failed to drain NATS connection", slog.Any("error", err))
		}
	}, nil
}
