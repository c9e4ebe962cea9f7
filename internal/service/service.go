// Package service implements the sentiment analysis, marketplace and dashboard business logic.
package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hackathonone/sentiment-backend/internal/classifier"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "sentiment-backend"

// Classifier is the part of the classifier gateway the services depend on.
type Classifier interface {
	Predict(ctx context.Context, text string) (classifier.Prediction, error)
	HealthCheck(ctx context.Context) bool
}

var _ Classifier = (*classifier.Client)(nil)

func mustCounter(name, description string) metric.Int64Counter {
	counter, err := otel.Meter(meterName).Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		panic(fmt.Sprintf("failed to create %s counter: %v", name, err))
	}
	return counter
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func elapsedMs(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
