package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hackathonone/sentiment-backend/internal/store"
)

// Scope selects the results a report aggregates. The zero Scope is global.
type Scope struct {
	SellerID *uuid.UUID
	BatchID  *string
	From     *time.Time
	To       *time.Time
}

type StatsReportDto struct {
	TotalAnalises               int64   `json:"total_analises"`
	Positivos                   int64   `json:"positivos"`
	Negativos                   int64   `json:"negativos"`
	Neutros                     int64   `json:"neutros"`
	PercentualPositivos         float64 `json:"percentual_positivos"`
	PercentualNegativos         float64 `json:"percentual_negativos"`
	PercentualNeutros           float64 `json:"percentual_neutros"`
	ProbabilidadeMediaPositivos float64 `json:"probabilidade_media_positivos"`
	ProbabilidadeMediaNegativos float64 `json:"probabilidade_media_negativos"`
	TempoMedioProcessamentoMs   float64 `json:"tempo_medio_processamento_ms"`
}

// Aggregator derives statistics from stored results.
type Aggregator interface {
	ComputeStats(ctx context.Context, scope Scope) (*StatsReportDto, error)
}

type aggregator struct {
	results store.ResultStore
}

func NewAggregator(results store.ResultStore) Aggregator {
	return &aggregator{results: results}
}

func (a *aggregator) ComputeStats(ctx context.Context, scope Scope) (*StatsReportDto, error) {
	tally, err := a.results.Tally(ctx, store.ResultFilter{
		SellerID: scope.SellerID,
		BatchID:  scope.BatchID,
		From:     scope.From,
		To:       scope.To,
	})
	if err != nil {
		return nil, err
	}
	return report(tally), nil
}

// report turns a tally into figures. Any figure whose denominator is zero is zero.
func report(t store.Tally) *StatsReportDto {
	return &StatsReportDto{
		TotalAnalises:               t.Total,
		Positivos:                   t.Positive,
		Negativos:                   t.Negative,
		Neutros:                     t.Neutral,
		PercentualPositivos:         percent(t.Positive, t.Total),
		PercentualNegativos:         percent(t.Negative, t.Total),
		PercentualNeutros:           percent(t.Neutral, t.Total),
		ProbabilidadeMediaPositivos: mean(t.PositiveProbabilitySum, t.Positive),
		ProbabilidadeMediaNegativos: mean(t.NegativeProbabilitySum, t.Negative),
		TempoMedioProcessamentoMs:   mean(float64(t.ProcessingTimeSumMs), t.ProcessingTimeCount),
	}
}

func percent(count, total int64) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(count) / float64(total) * 100)
}

func mean(sum float64, count int64) float64 {
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
