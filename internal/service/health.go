package service

import (
	"context"

	"github.com/hackathonone/sentiment-backend/internal/store"
)

const (
	StatusUp   = "UP"
	StatusDown = "DOWN"

	serviceName = "sentiment-backend"
)

type HealthDto struct {
	Status       string            `json:"status"`
	Service      string            `json:"service"`
	Dependencies map[string]string `json:"dependencies"`
}

// HealthService reports the state of the service and of what it depends on.
// The service itself is always UP; a failing dependency only shows in Dependencies.
type HealthService interface {
	Check(ctx context.Context) HealthDto
}

type healthService struct {
	classifier Classifier
	store      store.Store
}

func NewHealthService(c Classifier, s store.Store) HealthService {
	return &healthService{classifier: c, store: s}
}

func (h *healthService) Check(ctx context.Context) HealthDto {
	return HealthDto{
		Status:  StatusUp,
		Service: serviceName,
		Dependencies: map[string]string{
			"ds-service": status(h.classifier.HealthCheck(ctx)),
			"database":   status(h.store.Ping(ctx) == nil),
		},
	}
}

func status(up bool) string {
	if up {
		return StatusUp
	}
	return StatusDown
}
