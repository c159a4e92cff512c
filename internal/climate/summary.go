package climate

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Trend describes how the latest value compares to the period mean.
type Trend string

const (
	TrendRising  Trend = "Rising"
	TrendFalling Trend = "Falling"
	TrendStable  Trend = "Stable"
	TrendUnknown Trend = "Unknown"
)

// Summary holds descriptive statistics for one parameter.
type Summary struct {
	Parameter string  `json:"parameter"`
	Count     int     `json:"count"`
	Mean      float64 `json:"mean"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	// Latest is the value of the last period, missing when that period is.
	Latest Value `json:"latest"`
}

// Trend compares the latest value against the mean.
func (s Summary) Trend() Trend {
	switch {
	case !s.Latest.Valid:
		return TrendUnknown
	case s.Latest.Float > s.Mean:
		return TrendRising
	case s.Latest.Float < s.Mean:
		return TrendFalling
	default:
		return TrendStable
	}
}

// Summarize computes statistics for column over non-missing values.
// Returns nil when the column is absent or every value is missing.
func Summarize(t *Table, column string) *Summary {
	if t == nil || !t.HasParameter(column) {
		return nil
	}

	values := t.Column(column)
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Valid {
			present = append(present, v.Float)
		}
	}
	if len(present) == 0 {
		return nil
	}

	return &Summary{
		Parameter: column,
		Count:     len(present),
		Mean:      stat.Mean(present, nil),
		Min:       floats.Min(present),
		Max:       floats.Max(present),
		Latest:    values[len(values)-1],
	}
}

// SummarizeAll summarizes every table parameter in column order, skipping
// parameters with no data.
func SummarizeAll(t *Table) []Summary {
	if t == nil {
		return nil
	}
	out := make([]Summary, 0, len(t.Parameters))
	for _, code := range t.Parameters {
		if s := Summarize(t, code); s != nil {
			out = append(out, *s)
		}
	}
	return out
}
