package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/hackathonone/sentiment-backend/internal/classifier"
	"github.com/hackathonone/sentiment-backend/internal/store"
	"github.com/hackathonone/sentiment-backend/pkg/messaging"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockClassifier struct {
	mock.Mock
}

func (m *mockClassifier) Predict(ctx context.Context, text string) (classifier.Prediction, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(classifier.Prediction), args.Error(1)
}

func (m *mockClassifier) HealthCheck(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

type recordingPublisher struct {
	mu     sync.Mutex
	err    error
	events []messaging.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event messaging.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedCustomer(t *testing.T, s store.Store, name string, kind store.CustomerKind) *store.Customer {
	t.Helper()
	c, err := s.CreateCustomer(context.Background(), store.Customer{
		Name:  name,
		Email: uuid.NewString() + "@example.com",
		Kind:  kind,
	})
	require.NoError(t, err)
	return c
}

func seedProduct(t *testing.T, s store.Store, name string, sellerID uuid.UUID) *store.Product {
	t.Helper()
	p, err := s.CreateProduct(context.Background(), store.Product{Name: name, Price: 99.9, SellerID: sellerID})
	require.NoError(t, err)
	return p
}
