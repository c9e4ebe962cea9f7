package store

import "github.com/hackathonone/sentiment-backend/internal/sentiment"

// Tally holds the sums needed to derive statistics over a set of results.
// Tallies over disjoint sets can be merged, and a tally can grow one result at a time.
type Tally struct {
	Total    int64
	Positive int64
	Negative int64
	Neutral  int64

	PositiveProbabilitySum float64
	NegativeProbabilitySum float64

	ProcessingTimeSumMs int64
	ProcessingTimeCount int64
}

// Add counts one result.
func (t *Tally) Add(r SentimentResult) {
	t.Total++
	switch r.Sentiment {
	case sentiment.Positive:
		t.Positive++
		t.PositiveProbabilitySum += r.Probability
	case sentiment.Negative:
		t.Negative++
		t.NegativeProbabilitySum += r.Probability
	default:
		t.Neutral++
	}
	if r.ProcessingTimeMs != nil {
		t.ProcessingTimeSumMs += *r.ProcessingTimeMs
		t.ProcessingTimeCount++
	}
}

// Merge adds o into t.
func (t *Tally) Merge(o Tally) {
	t.Total += o.Total
	t.Positive += o.Positive
	t.Negative += o.Negative
	t.Neutral += o.Neutral
	t.PositiveProbabilitySum += o.PositiveProbabilitySum
	t.NegativeProbabilitySum += o.NegativeProbabilitySum
	t.ProcessingTimeSumMs += o.ProcessingTimeSumMs
	t.ProcessingTimeCount += o.ProcessingTimeCount
}

// Count returns the number of results with sentiment s.
func (t Tally) Count(s sentiment.Sentiment) int64 {
	switch s {
	case sentiment.Positive:
		return t.Positive
	case sentiment.Negative:
		return t.Negative
	default:
		return t.Neutral
	}
}
