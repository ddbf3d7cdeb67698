package valueobject

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// HighlySubjectiveThreshold is the score at which a text is flagged as highly subjective.
const HighlySubjectiveThreshold = 90.0

// Score is a percentage in [0, 100].
type Score struct {
	value float64
}

// NewScore validates and wraps a percentage.
func NewScore(v float64) (Score, error) {
	if math.IsNaN(v) || v < 0 || v > 100 {
		return Score{}, fmt.Errorf("score must be between 0 and 100, got %v", v)
	}
	return Score{value: v}, nil
}

// ScoreFromDecimal reconstructs a Score from its persisted form.
func ScoreFromDecimal(d decimal.Decimal) (Score, error) {
	return NewScore(d.InexactFloat64())
}

// Float64 returns the raw percentage.
func (s Score) Float64() float64 {
	return s.value
}

// Decimal returns the score rounded to two decimal places.
func (s Score) Decimal() decimal.Decimal {
	return decimal.NewFromFloat(s.value).Round(2)
}

// String formats the score with two decimals.
func (s Score) String() string {
	return s.Decimal().StringFixed(2)
}

// IsHighlySubjective reports whether the score reaches HighlySubjectiveThreshold.
func (s Score) IsHighlySubjective() bool {
	return s.value >= HighlySubjectiveThreshold
}
