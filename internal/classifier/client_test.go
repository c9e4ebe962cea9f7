package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	apperrors "github.com/hackathonone/sentiment-backend/internal/errors"
	"github.com/hackathonone/sentiment-backend/pkg/config"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "http://classifier.test"

func testConfig(healthTTL time.Duration) config.ClassifierConfig {
	return config.ClassifierConfig{
		URL:            baseURL + "/",
		ConnectTimeout: time.Second,
		ReadTimeout:    time.Second,
		HealthCacheTTL: healthTTL,
	}
}

func lenientBreaker() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{ConsecutiveFailures: 100, OpenTimeout: time.Minute}
}

func newTestClient(t *testing.T, cfg config.ClassifierConfig, cb config.CircuitBreakerConfig) (*Client, *httpmock.MockTransport) {
	t.Helper()
	mt := httpmock.NewMockTransport()
	c := NewClient(cfg, cb, slog.New(slog.DiscardHandler), WithHTTPClient(&http.Client{Transport: mt}))
	return c, mt
}

func TestClient_Predict(t *testing.T) {
	testCases := []struct {
		name        string
		responder   httpmock.Responder
		expected    Prediction
		expectedErr error
	}{
		{
			name:      "success",
			responder: httpmock.NewStringResponder(http.StatusOK, `{"label":"Negativo","probability":0.85}`),
			expected:  Prediction{Label: "Negativo", Probability: 0.85},
		},
		{
			name:        "server error",
			responder:   httpmock.NewStringResponder(http.StatusInternalServerError, "model not loaded"),
			expectedErr: apperrors.ErrClassifierUnavailable,
		},
		{
			name:        "network error",
			responder:   httpmock.NewErrorResponder(errors.New("connection refused")),
			expectedErr: apperrors.ErrClassifierUnavailable,
		},
		{
			name:        "malformed body",
			responder:   httpmock.NewStringResponder(http.StatusOK, `{"label":`),
			expectedErr: apperrors.ErrClassifierUnavailable,
		},
		{
			name:        "empty body",
			responder:   httpmock.NewStringResponder(http.StatusOK, ``),
			expectedErr: apperrors.ErrClassifierUnavailable,
		},
		{
			name:        "missing probability",
			responder:   httpmock.NewStringResponder(http.StatusOK, `{"label":"Positivo"}`),
			expectedErr: apperrors.ErrClassifierUnavailable,
		},
		{
			name:        "probability out of range",
			responder:   httpmock.NewStringResponder(http.StatusOK, `{"label":"Positivo","probability":1.2}`),
			expectedErr: apperrors.ErrClassifierUnavailable,
		},
		{
			name:        "blank label",
			responder:   httpmock.NewStringResponder(http.StatusOK, `{"label":"  ","probability":0.5}`),
			expectedErr: apperrors.ErrClassifierUnavailable,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			c, mt := newTestClient(t, testConfig(0), lenientBreaker())
			mt.RegisterResponder(http.MethodPost, baseURL+"/predict", tc.responder)

			// when
			got, err := c.Predict(context.Background(), "Produto excelente")

			// then
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestClient_Predict_SendsText(t *testing.T) {
	c, mt := newTestClient(t, testConfig(0), lenientBreaker())
	var sent predictRequest
	mt.RegisterResponder(http.MethodPost, baseURL+"/predict", func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		if err := json.NewDecoder(req.Body).Decode(&sent); err != nil {
			return nil, err
		}
		return httpmock.NewStringResponse(http.StatusOK, `{"label":"1","probability":0.7}`), nil
	})

	_, err := c.Predict(context.Background(), "Chegou rápido")

	require.NoError(t, err)
	assert.Equal(t, "Chegou rápido", sent.Text)
}

func TestClient_Predict_BreakerOpens(t *testing.T) {
	// given
	cb := config.CircuitBreakerConfig{ConsecutiveFailures: 2, OpenTimeout: time.Minute}
	c, mt := newTestClient(t, testConfig(0), cb)
	mt.RegisterResponder(http.MethodPost, baseURL+"/predict", httpmock.NewStringResponder(http.StatusBadGateway, ""))

	// when
	for range 2 {
		_, err := c.Predict(context.Background(), "texto")
		require.ErrorIs(t, err, apperrors.ErrClassifierUnavailable)
	}
	_, err := c.Predict(context.Background(), "texto")

	// then
	require.ErrorIs(t, err, apperrors.ErrClassifierUnavailable)
	assert.Equal(t, 2, mt.GetTotalCallCount(), "open breaker must not reach the classifier")
}

func TestClient_Predict_CanceledCallDoesNotTrip(t *testing.T) {
	cb := config.CircuitBreakerConfig{ConsecutiveFailures: 1, OpenTimeout: time.Minute}
	c, mt := newTestClient(t, testConfig(0), cb)
	mt.RegisterResponder(http.MethodPost, baseURL+"/predict", httpmock.NewStringResponder(http.StatusOK, `{"label":"pos","probability":0.9}`))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _ = c.Predict(ctx, "texto")

	got, err := c.Predict(context.Background(), "texto")
	require.NoError(t, err)
	assert.Equal(t, "pos", got.Label)
}

func TestClient_HealthCheck(t *testing.T) {
	testCases := []struct {
		name      string
		responder httpmock.Responder
		expected  bool
	}{
		{"healthy", httpmock.NewStringResponder(http.StatusOK, `{"status":"ok"}`), true},
		{"unhealthy status", httpmock.NewStringResponder(http.StatusServiceUnavailable, ""), false},
		{"unreachable", httpmock.NewErrorResponder(errors.New("dial tcp: timeout")), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, mt := newTestClient(t, testConfig(0), lenientBreaker())
			mt.RegisterResponder(http.MethodGet, baseURL+"/health", tc.responder)

			assert.Equal(t, tc.expected, c.HealthCheck(context.Background()))
		})
	}
}

func TestClient_HealthCheck_Cached(t *testing.T) {
	// given
	c, mt := newTestClient(t, testConfig(time.Minute), lenientBreaker())
	mt.RegisterResponder(http.MethodGet, baseURL+"/health", httpmock.NewStringResponder(http.StatusOK, ""))

	// when
	first := c.HealthCheck(context.Background())
	second := c.HealthCheck(context.Background())

	// then
	assert.True(t, first)
	assert.True(t, second)
	assert.Equal(t, 1, mt.GetTotalCallCount())
}
