// Package forecast extrapolates short horizons from a historical column of a
// climate table. Two strategies are provided: a linear trend fit and a
// trailing moving average.
package forecast

import (
	"fmt"
	"time"

	"github.com/climatelens/climatelens/internal/climate"
)

// Kind names a forecasting strategy.
type Kind string

const (
	KindTrend     Kind = "trend"
	KindSmoothing Kind = "smoothing"
)

// Point is one extrapolated value.
type Point struct {
	Period string    `json:"period"`
	Date   time.Time `json:"date"`
	Value  float64   `json:"value"`
}

// Series is the forecast for one parameter. Points is empty when there was
// not enough history.
type Series struct {
	Parameter string  `json:"parameter"`
	Strategy  Kind    `json:"strategy"`
	Points    []Point `json:"points"`
}

// Strategy produces a forecast for one column of a table.
type Strategy interface {
	Name() Kind
	Forecast(t *climate.Table, column string) (Series, error)
}

// InsufficientDataError is returned alongside an empty series when the
// column has too few non-missing values.
type InsufficientDataError struct {
	Parameter string
	Have      int
	Need      int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("forecast %s: %d usable values, need at least %d", e.Parameter, e.Have, e.Need)
}

// New returns the strategy for kind. A horizon <= 0 keeps the strategy's
// default.
func New(kind Kind, horizon int) (Strategy, error) {
	switch kind {
	case KindTrend, "":
		s := DefaultTrend()
		if horizon > 0 {
			s.Horizon = horizon
		}
		return s, nil
	case KindSmoothing:
		s := DefaultSmoothing()
		if horizon > 0 {
			s.Horizon = horizon
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown forecast strategy %q", kind)
	}
}

// history returns the non-missing values of column and the time of the last
// calendar period in the table, missing or not.
func history(t *climate.Table, column string) ([]float64, time.Time, error) {
	rows := t.HistoryRows()
	if len(rows) == 0 {
		return nil, time.Time{}, nil
	}

	last, err := t.Resolution.ParsePeriod(rows[len(rows)-1].Period)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("parsing last period: %w", err)
	}

	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if v := row.Values[column]; v.Valid {
			values = append(values, v.Float)
		}
	}
	return values, last, nil
}

// future builds horizon points after last using value(i) for the i-th step.
// A horizon <= 0 yields no points.
func future(res climate.Resolution, last time.Time, horizon int, value func(i int) float64) []Point {
	horizon = max(horizon, 0)
	points := make([]Point, horizon)
	for i := range points {
		date := res.Advance(last, i+1)
		points[i] = Point{
			Period: res.FormatPeriod(date),
			Date:   date,
			Value:  value(i),
		}
	}
	return points
}

func emptySeries(column string, kind Kind) Series {
	return Series{Parameter: column, Strategy: kind, Points: []Point{}}
}
