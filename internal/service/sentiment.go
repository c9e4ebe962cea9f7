package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/hackathonone/sentiment-backend/internal/errors"
	"github.com/hackathonone/sentiment-backend/internal/sentiment"
	"github.com/hackathonone/sentiment-backend/internal/store"
	"github.com/hackathonone/sentiment-backend/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

const (
	OriginAPI      = "API"
	OriginBatch    = "BATCH"
	OriginSite     = "SITE"
	OriginFallback = "FALLBACK"

	// BatchErrorLabel marks a batch item whose classification failed.
	BatchErrorLabel = "ERROR"

	minTextLength       = 3
	defaultResultsLimit = 50
	maxResultsLimit     = 500
)

// SentimentService classifies free text and keeps the history of results.
type SentimentService interface {
	// Analyze classifies one text. Classifier failures are returned as ErrClassifierUnavailable.
	Analyze(ctx context.Context, text string) (*AnalysisDto, error)

	// AnalyzeBatch classifies up to the configured number of texts concurrently.
	// A failed item is reported with the ERROR label; the batch itself never fails after validation.
	AnalyzeBatch(ctx context.Context, texts []string) (*BatchReportDto, error)

	// ListResults returns the newest stored results matching query.
	ListResults(ctx context.Context, query ResultQuery) ([]ResultDto, error)
}

type AnalysisDto struct {
	Previsao      string  `json:"previsao"`
	Probabilidade float64 `json:"probabilidade"`
}

type BatchItemDto struct {
	Texto         string  `json:"texto"`
	Previsao      string  `json:"previsao"`
	Probabilidade float64 `json:"probabilidade"`
}

type BatchReportDto struct {
	BatchID      string         `json:"batch_id"`
	Total        int            `json:"total"`
	Resultados   []BatchItemDto `json:"resultados"`
	TempoTotalMs int64          `json:"tempo_total_ms"`
}

// ResultDto is a stored sentiment result.
type ResultDto struct {
	ID                   uuid.UUID  `json:"id"`
	Texto                string     `json:"texto"`
	Sentimento           string     `json:"sentimento"`
	Previsao             string     `json:"previsao"`
	Probabilidade        float64    `json:"probabilidade"`
	Critico              bool       `json:"eh_critico"`
	DataAnalise          string     `json:"data_analise"`
	TempoProcessamentoMs *int64     `json:"tempo_processamento_ms,omitempty"`
	Origem               string     `json:"origem"`
	BatchID              *string    `json:"batch_id,omitempty"`
	ComentarioID         *uuid.UUID `json:"comentario_id,omitempty"`
}

// ResultQuery filters ListResults. A zero Limit selects the default page size.
type ResultQuery struct {
	BatchID   *string
	Sentiment *sentiment.Sentiment
	From      *time.Time
	To        *time.Time
	Limit     int
}

// BatchOptions bounds AnalyzeBatch.
type BatchOptions struct {
	MaxItems    int
	Concurrency int
}

type sentimentService struct {
	results    store.ResultStore
	classifier Classifier
	rule       sentiment.Rule
	batch      BatchOptions
	logger     *slog.Logger
	analyses   metric.Int64Counter
}

// NewSentimentService creates a SentimentService backed by the given result store and classifier.
func NewSentimentService(results store.ResultStore, c Classifier, rule sentiment.Rule, batch BatchOptions, logger *slog.Logger) SentimentService {
	if batch.MaxItems <= 0 {
		batch.MaxItems = 100
	}
	if batch.Concurrency <= 0 {
		batch.Concurrency = 4
	}
	return &sentimentService{
		results:    results,
		classifier: c,
		rule:       rule,
		batch:      batch,
		logger:     logger.With("component", "sentiment-service"),
		analyses:   mustCounter("analyses_total", "Total number of sentiment classifications"),
	}
}

func (s *sentimentService) Analyze(ctx context.Context, text string) (*AnalysisDto, error) {
	text = strings.TrimSpace(text)
	if err := validateText(text); err != nil {
		return nil, err
	}

	r, err := s.classify(ctx, text, OriginAPI, nil)
	if err != nil {
		s.logger.WarnContext(ctx, "Classification failed", "error", err)
		return nil, err
	}

	saved, err := s.results.SaveResult(ctx, r)
	if err != nil {
		return nil, err
	}
	s.count(ctx, saved)

	return &AnalysisDto{Previsao: saved.Sentiment.Label(), Probabilidade: saved.Probability}, nil
}

func (s *sentimentService) AnalyzeBatch(ctx context.Context, texts []string) (*BatchReportDto, error) {
	if len(texts) == 0 || len(texts) > s.batch.MaxItems {
		return nil, fmt.Errorf("%w: a batch must have between 1 and %d texts", apperrors.ErrInvalidInput, s.batch.MaxItems)
	}
	trimmed := make([]string, len(texts))
	for i, t := range texts {
		trimmed[i] = strings.TrimSpace(t)
		if err := validateText(trimmed[i]); err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
	}

	start := time.Now()
	batchID := uuid.NewString()
	ctx = logger.WithAttrs(ctx, slog.String("batch_id", batchID))
	items := make([]BatchItemDto, len(trimmed))

	var g errgroup.Group
	g.SetLimit(s.batch.Concurrency)
	for i, text := range trimmed {
		g.Go(func() error {
			items[i] = s.analyzeItem(logger.WithAttrs(ctx, slog.Int("item", i)), texts[i], text, batchID)
			return nil
		})
	}
	_ = g.Wait()

	report := &BatchReportDto{
		BatchID:      batchID,
		Total:        len(items),
		Resultados:   items,
		TempoTotalMs: elapsedMs(start),
	}
	s.logger.InfoContext(ctx, "Batch analyzed", "total", report.Total, "elapsed_ms", report.TempoTotalMs)
	return report, nil
}

// analyzeItem classifies the trimmed text and reports it under the text as submitted.
func (s *sentimentService) analyzeItem(ctx context.Context, original, text, batchID string) BatchItemDto {
	failed := BatchItemDto{Texto: original, Previsao: BatchErrorLabel, Probabilidade: 0.0}

	r, err := s.classify(ctx, text, OriginBatch, &batchID)
	if err != nil {
		s.logger.WarnContext(ctx, "Batch item classification failed", "error", err)
		return failed
	}
	saved, err := s.results.SaveResult(ctx, r)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to store batch item", "error", err)
		return failed
	}
	s.count(ctx, saved)

	return BatchItemDto{Texto: original, Previsao: saved.Sentiment.Label(), Probabilidade: saved.Probability}
}

// classify calls the classifier and builds an unsaved result.
func (s *sentimentService) classify(ctx context.Context, text, origin string, batchID *string) (store.SentimentResult, error) {
	start := time.Now()
	p, err := s.classifier.Predict(ctx, text)
	if err != nil {
		return store.SentimentResult{}, err
	}
	elapsed := elapsedMs(start)

	label := sentiment.Normalize(p.Label)
	return store.SentimentResult{
		Text:             text,
		Sentiment:        label,
		Probability:      p.Probability,
		Critical:         s.rule.IsCritical(label, p.Probability),
		ProcessingTimeMs: &elapsed,
		Origin:           origin,
		BatchID:          batchID,
	}, nil
}

func (s *sentimentService) count(ctx context.Context, r *store.SentimentResult) {
	s.analyses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("origin", r.Origin),
		attribute.String("sentiment", r.Sentiment.String()),
	))
}

func (s *sentimentService) ListResults(ctx context.Context, query ResultQuery) ([]ResultDto, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultResultsLimit
	}
	limit = min(limit, maxResultsLimit)

	results, err := s.results.FindResults(ctx, store.ResultFilter{
		BatchID:   query.BatchID,
		Sentiment: query.Sentiment,
		From:      query.From,
		To:        query.To,
	}, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]ResultDto, len(results))
	for i := range results {
		dtos[i] = toResultDto(&results[i])
	}
	return dtos, nil
}

func validateText(text string) error {
	if len([]rune(text)) < minTextLength {
		return fmt.Errorf("%w: text must have at least %d characters", apperrors.ErrInvalidInput, minTextLength)
	}
	return nil
}

func toResultDto(r *store.SentimentResult) ResultDto {
	return ResultDto{
		ID:                   r.ID,
		Texto:                r.Text,
		Sentimento:           r.Sentiment.String(),
		Previsao:             r.Sentiment.Label(),
		Probabilidade:        r.Probability,
		Critico:              r.Critical,
		DataAnalise:          r.AnalyzedAt.Format(time.RFC3339),
		TempoProcessamentoMs: r.ProcessingTimeMs,
		Origem:               r.Origin,
		BatchID:              r.BatchID,
		ComentarioID:         r.CommentID,
	}
}
