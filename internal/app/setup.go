// Package app wires the sentiment backend together.
package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hackathonone/sentiment-backend/internal/config"
	"github.com/hackathonone/sentiment-backend/internal/sentiment"
	"github.com/hackathonone/sentiment-backend/internal/service"
	"github.com/hackathonone/sentiment-backend/internal/store"
	grpcImpl "github.com/hackathonone/sentiment-backend/internal/transport/grpc"
	"github.com/hackathonone/sentiment-backend/internal/transport/rest"
	"github.com/hackathonone/sentiment-backend/pkg/messaging"
	"github.com/hackathonone/sentiment-backend/pkg/server"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const serviceName = "sentiment-backend"

type Dependencies struct {
	Services rest.Services
	// Metrics serves /metrics when set.
	Metrics http.Handler
	Logger  *slog.Logger
}

// SetupDependencies builds every service over the given store, classifier and publisher.
func SetupDependencies(st store.Store, c service.Classifier, publisher messaging.Publisher, cfg config.SentimentConfig, logger *slog.Logger) *Dependencies {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	rule := sentiment.NewRule(cfg.CriticalThreshold)
	aggregator := service.NewAggregator(st)
	batch := service.BatchOptions{MaxItems: cfg.BatchMaxItems, Concurrency: cfg.BatchConcurrency}

	return &Dependencies{
		Services: rest.Services{
			Sentiment:     service.NewSentimentService(st, c, rule, batch, logger),
			Stats:         aggregator,
			Dashboard:     service.NewDashboardService(st, aggregator),
			Customers:     service.NewCustomerService(st),
			Products:      service.NewProductService(st),
			Comments:      service.NewCommentService(st, c, rule, publisher, logger),
			Notifications: service.NewNotificationService(st, logger),
			Health:        service.NewHealthService(c, st),
		},
		Logger: logger,
	}
}

// SetupHttpHandler initializes the routes and middleware of the HTTP API.
// Used by E2E tests to run the application inside an httptest.Server.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	rest.NewHandler(deps.Services, deps.Logger).RegisterRoutes(mux)
	if deps.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
}

// SetupHttpServer creates the HTTP server of the API.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, serviceName, SetupHttpHandler(deps))
}

// SetupGrpcServer creates the gRPC server exposing the health protocol.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	return server.NewGRPCServer(deps.Logger, reflectionEnabled, func(s *grpc.Server) {
		healthpb.RegisterHealthServer(s, grpcImpl.NewHealthServer(deps.Services.Health))
	})
}
