package forecast

import (
	"gonum.org/v1/gonum/stat"

	"github.com/climatelens/climatelens/internal/climate"
)

// minTrendPoints is the fewest values a line is fitted through.
const minTrendPoints = 3

// Trend fits an ordinary least-squares line through the trailing Window
// values (x = 0-based position) and extrapolates Horizon periods.
type Trend struct {
	Window  int
	Horizon int
}

// DefaultTrend returns a 30-value window and a 7-period horizon.
func DefaultTrend() Trend {
	return Trend{Window: 30, Horizon: 7}
}

// Name implements Strategy.
func (Trend) Name() Kind {
	return KindTrend
}

// Forecast implements Strategy.
func (s Trend) Forecast(t *climate.Table, column string) (Series, error) {
	values, last, err := history(t, column)
	if err != nil {
		return emptySeries(column, KindTrend), err
	}
	if len(values) < minTrendPoints {
		return emptySeries(column, KindTrend), &InsufficientDataError{
			Parameter: column,
			Have:      len(values),
			Need:      minTrendPoints,
		}
	}

	if s.Window > 0 && len(values) > s.Window {
		values = values[len(values)-s.Window:]
	}

	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}
	intercept, slope := stat.LinearRegression(xs, values, nil, false)

	n := len(values)
	return Series{
		Parameter: column,
		Strategy:  KindTrend,
		Points: future(t.Resolution, last, s.Horizon, func(i int) float64 {
			return intercept + slope*float64(n+i)
		}),
	}, nil
}
