// Package classifier is the HTTP gateway to the external sentiment classification service.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/hackathonone/sentiment-backend/internal/errors"
	"github.com/hackathonone/sentiment-backend/pkg/config"
	"github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	predictPath = "/predict"
	healthPath  = "/health"

	healthKey       = "health"
	breakerInterval = time.Minute
	maxErrorBody    = 512
)

// Prediction is the raw answer of the classifier, before normalization.
type Prediction struct {
	Label       string
	Probability float64
}

type predictRequest struct {
	Text string `json:"text"`
}

type predictResponse struct {
	Label       string   `json:"label"`
	Probability *float64 `json:"probability"`
}

// Client calls the classifier's /predict and /health endpoints.
// Every Predict failure wraps errors.ErrClassifierUnavailable.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[Prediction]
	health     *cache.Cache
	logger     *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(cfg config.ClassifierConfig, cbCfg config.CircuitBreakerConfig, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		httpClient: newHTTPClient(cfg),
		logger:     logger.With("component", "classifier"),
	}
	if cfg.HealthCacheTTL > 0 {
		// single key, Get already skips expired entries so no janitor is needed
		c.health = cache.New(cfg.HealthCacheTTL, 0)
	}
	c.breaker = gobreaker.NewCircuitBreaker[Prediction](c.breakerSettings(cbCfg))

	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newHTTPClient(cfg config.ClassifierConfig) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
	}
	return &http.Client{
		Transport: otelhttp.NewTransport(transport),
		Timeout:   cfg.ConnectTimeout + cfg.ReadTimeout,
	}
}

func (c *Client) breakerSettings(cfg config.CircuitBreakerConfig) gobreaker.Settings {
	interval := cfg.Interval
	if interval == 0 {
		interval = breakerInterval
	}
	return gobreaker.Settings{
		Name:        "classifier",
		MaxRequests: max(cfg.HalfOpenRequests, 1),
		Interval:    interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= cfg.ConsecutiveFailures {
				return true
			}
			if cfg.ErrorRatePercent == 0 || counts.Requests < max(cfg.MinRequests, 1) {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests)*100 >= float64(cfg.ErrorRatePercent)
		},
		IsSuccessful: func(err error) bool {
			// a caller giving up says nothing about the classifier's health
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
}

// Predict classifies text. The label is returned as sent by the classifier.
func (c *Client) Predict(ctx context.Context, text string) (Prediction, error) {
	p, err := c.breaker.Execute(func() (Prediction, error) {
		return c.predict(ctx, text)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Prediction{}, fmt.Errorf("%w: %w", apperrors.ErrClassifierUnavailable, err)
	}
	return p, err
}

func (c *Client) predict(ctx context.Context, text string) (Prediction, error) {
	body, err := json.Marshal(predictRequest{Text: text})
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: encode request: %w", apperrors.ErrClassifierUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictPath, bytes.NewReader(body))
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: build request: %w", apperrors.ErrClassifierUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: %w", apperrors.ErrClassifierUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Prediction{}, fmt.Errorf("%w: status %d: %s", apperrors.ErrClassifierUnavailable, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var pr predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return Prediction{}, fmt.Errorf("%w: decode response: %w", apperrors.ErrClassifierUnavailable, err)
	}
	if strings.TrimSpace(pr.Label) == "" || pr.Probability == nil {
		return Prediction{}, fmt.Errorf("%w: incomplete response", apperrors.ErrClassifierUnavailable)
	}
	if *pr.Probability < 0 || *pr.Probability > 1 {
		return Prediction{}, fmt.Errorf("%w: probability %v out of range", apperrors.ErrClassifierUnavailable, *pr.Probability)
	}
	return Prediction{Label: pr.Label, Probability: *pr.Probability}, nil
}

// HealthCheck reports whether the classifier answers /health with a 2xx status.
// Results are cached for the configured TTL.
func (c *Client) HealthCheck(ctx context.Context) bool {
	if c.health != nil {
		if v, ok := c.health.Get(healthKey); ok {
			return v.(bool)
		}
	}

	healthy := c.checkHealth(ctx)
	if c.health != nil {
		c.health.Set(healthKey, healthy, cache.DefaultExpiration)
	}
	return healthy
}

func (c *Client) checkHealth(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Classifier health check failed", "error", err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}
