// Package sentiment holds the canonical sentiment values, the mapping from
// classifier labels onto them, and the rule that flags a result as critical.
package sentiment

import "strings"

// Sentiment is the canonical polarity of a text.
type Sentiment string

const (
	Positive Sentiment = "POSITIVE"
	Negative Sentiment = "NEGATIVE"
	Neutral  Sentiment = "NEUTRAL"
)

// DefaultCriticalThreshold is the minimum probability at which a negative result is critical.
const DefaultCriticalThreshold = 0.8

// All lists every canonical sentiment in reporting order.
var All = []Sentiment{Positive, Negative, Neutral}

var synonyms = map[string]Sentiment{
	"POSITIVO": Positive,
	"POSITIVE": Positive,
	"POS":      Positive,
	"1":        Positive,
	"NEGATIVO": Negative,
	"NEGATIVE": Negative,
	"NEG":      Negative,
	"0":        Negative,
}

// Normalize maps a raw classifier label onto a canonical sentiment.
// Anything it does not recognise, including the empty string, is Neutral.
func Normalize(raw string) Sentiment {
	if s, ok := synonyms[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return s
	}
	return Neutral
}

// Parse accepts a stored code and reports whether it is canonical.
func Parse(code string) (Sentiment, bool) {
	switch s := Sentiment(code); s {
	case Positive, Negative, Neutral:
		return s, true
	}
	return "", false
}

func (s Sentiment) String() string { return string(s) }

// Label is the display name returned to API clients.
func (s Sentiment) Label() string {
	switch s {
	case Positive:
		return "Positivo"
	case Negative:
		return "Negativo"
	default:
		return "Neutro"
	}
}

// Rule decides whether a classification is critical.
type Rule struct {
	Threshold float64
}

// NewRule returns a Rule for threshold, falling back to DefaultCriticalThreshold when it is outside (0, 1].
func NewRule(threshold float64) Rule {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultCriticalThreshold
	}
	return Rule{Threshold: threshold}
}

// IsCritical is true iff s is Negative and p reaches the threshold.
func (r Rule) IsCritical(s Sentiment, p float64) bool {
	return s == Negative && p >= r.Threshold
}
