package forecast

import (
	"gonum.org/v1/gonum/stat"

	"github.com/climatelens/climatelens/internal/climate"
)

// Smoothing repeats the mean of the trailing Window values for Horizon periods.
type Smoothing struct {
	Window  int
	Horizon int
}

// DefaultSmoothing returns a 3-value window and a 3-period horizon.
func DefaultSmoothing() Smoothing {
	return Smoothing{Window: 3, Horizon: 3}
}

// Name implements Strategy.
func (Smoothing) Name() Kind {
	return KindSmoothing
}

// Forecast implements Strategy.
func (s Smoothing) Forecast(t *climate.Table, column string) (Series, error) {
	window := s.Window
	if window <= 0 {
		window = DefaultSmoothing().Window
	}

	values, last, err := history(t, column)
	if err != nil {
		return emptySeries(column, KindSmoothing), err
	}
	if len(values) < window {
		return emptySeries(column, KindSmoothing), &InsufficientDataError{
			Parameter: column,
			Have:      len(values),
			Need:      window,
		}
	}

	mean := stat.Mean(values[len(values)-window:], nil)

	return Series{
		Parameter: column,
		Strategy:  KindSmoothing,
		Points: future(t.Resolution, last, s.Horizon, func(int) float64 {
			return mean
		}),
	}, nil
}
