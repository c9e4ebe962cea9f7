package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/hackathonone/sentiment-backend/internal/classifier"
	apperrors "github.com/hackathonone/sentiment-backend/internal/errors"
	"github.com/hackathonone/sentiment-backend/internal/sentiment"
	"github.com/hackathonone/sentiment-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newSentimentService(c Classifier, s store.ResultStore) SentimentService {
	return NewSentimentService(s, c, sentiment.NewRule(0.8), BatchOptions{MaxItems: 100, Concurrency: 4}, discardLogger())
}

func TestSentimentService_Analyze(t *testing.T) {
	testCases := []struct {
		name        string
		text        string
		prediction  classifier.Prediction
		predictErr  error
		expected    *AnalysisDto
		expectedErr error
		stored      int
	}{
		{
			name:       "positive text",
			text:       "Produto excelente, recomendo",
			prediction: classifier.Prediction{Label: "positivo", Probability: 0.93},
			expected:   &AnalysisDto{Previsao: "Positivo", Probabilidade: 0.93},
			stored:     1,
		},
		{
			name:       "unknown label is neutral",
			text:       "Chegou ontem",
			prediction: classifier.Prediction{Label: "misto", Probability: 0.51},
			expected:   &AnalysisDto{Previsao: "Neutro", Probabilidade: 0.51},
			stored:     1,
		},
		{
			name:        "classifier unavailable",
			text:        "Produto ruim",
			predictErr:  fmt.Errorf("connection refused: %w", apperrors.ErrClassifierUnavailable),
			expectedErr: apperrors.ErrClassifierUnavailable,
		},
		{
			name:        "text too short after trim",
			text:        "  ok  ",
			expectedErr: apperrors.ErrInvalidInput,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mc := new(mockClassifier)
			mc.On("Predict", mock.Anything, mock.Anything).Return(tc.prediction, tc.predictErr).Maybe()
			s := store.NewMemoryStore()
			service := newSentimentService(mc, s)

			// when
			got, err := service.Analyze(context.Background(), tc.text)

			// then
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, got)
			}
			results, err := s.FindResults(context.Background(), store.ResultFilter{}, 10)
			require.NoError(t, err)
			require.Len(t, results, tc.stored)
			if tc.stored > 0 {
				assert.Equal(t, OriginAPI, results[0].Origin)
				assert.NotNil(t, results[0].ProcessingTimeMs)
			}
		})
	}
}

func TestSentimentService_AnalyzeFlagsCriticalResults(t *testing.T) {
	mc := new(mockClassifier)
	mc.On("Predict", mock.Anything, "Horrível, quebrou no primeiro dia").
		Return(classifier.Prediction{Label: "NEG", Probability: 0.95}, nil)
	s := store.NewMemoryStore()

	_, err := newSentimentService(mc, s).Analyze(context.Background(), "Horrível, quebrou no primeiro dia")

	require.NoError(t, err)
	results, err := s.FindResults(context.Background(), store.ResultFilter{}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Critical)
	assert.Equal(t, sentiment.Negative, results[0].Sentiment)
}

func TestSentimentService_AnalyzeBatchKeepsInputOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	// given
	mc := new(mockClassifier)
	texts := make([]string, 20)
	for i := range texts {
		texts[i] = fmt.Sprintf("comentario numero %02d", i)
		label := "positivo"
		if i%2 == 1 {
			label = "negativo"
		}
		mc.On("Predict", mock.Anything, texts[i]).Return(classifier.Prediction{Label: label, Probability: float64(i) / 100}, nil)
	}
	s := store.NewMemoryStore()
	service := newSentimentService(mc, s)

	// when
	report, err := service.AnalyzeBatch(context.Background(), texts)

	// then
	require.NoError(t, err)
	assert.NotEmpty(t, report.BatchID)
	assert.Equal(t, len(texts), report.Total)
	require.Len(t, report.Resultados, len(texts))
	for i, item := range report.Resultados {
		assert.Equal(t, texts[i], item.Texto)
		assert.InDelta(t, float64(i)/100, item.Probabilidade, 1e-9)
		if i%2 == 1 {
			assert.Equal(t, "Negativo", item.Previsao)
		} else {
			assert.Equal(t, "Positivo", item.Previsao)
		}
	}

	stored, err := s.FindResults(context.Background(), store.ResultFilter{BatchID: &report.BatchID}, 100)
	require.NoError(t, err)
	assert.Len(t, stored, len(texts))
	for _, r := range stored {
		assert.Equal(t, OriginBatch, r.Origin)
	}
}

func TestSentimentService_AnalyzeBatchIsolatesItemFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	// given
	mc := new(mockClassifier)
	mc.On("Predict", mock.Anything, "primeiro texto").Return(classifier.Prediction{Label: "POSITIVE", Probability: 0.9}, nil)
	mc.On("Predict", mock.Anything, "segundo texto").Return(classifier.Prediction{}, apperrors.ErrClassifierUnavailable)
	mc.On("Predict", mock.Anything, "terceiro texto").Return(classifier.Prediction{Label: "NEGATIVE", Probability: 0.7}, nil)
	s := store.NewMemoryStore()
	service := newSentimentService(mc, s)

	// when
	report, err := service.AnalyzeBatch(context.Background(), []string{"primeiro texto", "segundo texto", "terceiro texto"})

	// then
	require.NoError(t, err)
	assert.Equal(t, []BatchItemDto{
		{Texto: "primeiro texto", Previsao: "Positivo", Probabilidade: 0.9},
		{Texto: "segundo texto", Previsao: BatchErrorLabel, Probabilidade: 0.0},
		{Texto: "terceiro texto", Previsao: "Negativo", Probabilidade: 0.7},
	}, report.Resultados)

	stored, err := s.FindResults(context.Background(), store.ResultFilter{BatchID: &report.BatchID}, 100)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestSentimentService_AnalyzeBatchEchoesSubmittedText(t *testing.T) {
	defer goleak.VerifyNone(t)

	// given
	mc := new(mockClassifier)
	mc.On("Predict", mock.Anything, "chegou rapido").Return(classifier.Prediction{Label: "POSITIVE", Probability: 0.8}, nil)
	mc.On("Predict", mock.Anything, "veio quebrado").Return(classifier.Prediction{}, apperrors.ErrClassifierUnavailable)
	s := store.NewMemoryStore()
	service := newSentimentService(mc, s)
	texts := []string{"  chegou rapido\n", "\tveio quebrado  "}

	// when
	report, err := service.AnalyzeBatch(context.Background(), texts)

	// then
	require.NoError(t, err)
	assert.Equal(t, []BatchItemDto{
		{Texto: "  chegou rapido\n", Previsao: "Positivo", Probabilidade: 0.8},
		{Texto: "\tveio quebrado  ", Previsao: BatchErrorLabel, Probabilidade: 0.0},
	}, report.Resultados)

	stored, err := s.FindResults(context.Background(), store.ResultFilter{BatchID: &report.BatchID}, 100)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "chegou rapido", stored[0].Text, "stored text is trimmed")
	mc.AssertExpectations(t)
}

func TestSentimentService_AnalyzeBatchValidation(t *testing.T) {
	tooMany := make([]string, 101)
	for i := range tooMany {
		tooMany[i] = "texto valido"
	}

	testCases := []struct {
		name  string
		texts []string
	}{
		{name: "empty", texts: nil},
		{name: "above limit", texts: tooMany},
		{name: "short item", texts: []string{"texto valido", " a "}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mc := new(mockClassifier)
			s := store.NewMemoryStore()

			// when
			report, err := newSentimentService(mc, s).AnalyzeBatch(context.Background(), tc.texts)

			// then
			require.ErrorIs(t, err, apperrors.ErrInvalidInput)
			assert.Nil(t, report)
			mc.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
		})
	}
}

func TestSentimentService_ListResults(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	batch := "b-1"
	for _, r := range []store.SentimentResult{
		{Text: "um", Sentiment: sentiment.Positive, Probability: 0.9, Origin: OriginAPI},
		{Text: "dois", Sentiment: sentiment.Negative, Probability: 0.8, Origin: OriginBatch, BatchID: &batch},
		{Text: "tres", Sentiment: sentiment.Positive, Probability: 0.6, Origin: OriginBatch, BatchID: &batch},
	} {
		_, err := s.SaveResult(ctx, r)
		require.NoError(t, err)
	}
	service := newSentimentService(new(mockClassifier), s)
	positive := sentiment.Positive

	all, err := service.ListResults(ctx, ResultQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	filtered, err := service.ListResults(ctx, ResultQuery{BatchID: &batch, Sentiment: &positive})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "tres", filtered[0].Texto)
	assert.Equal(t, "Positivo", filtered[0].Previsao)

	limited, err := service.ListResults(ctx, ResultQuery{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
