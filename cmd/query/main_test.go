package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climatelens/climatelens/internal/climate"
	"github.com/climatelens/climatelens/internal/dashboard"
	"github.com/climatelens/climatelens/internal/forecast"
	"github.com/climatelens/climatelens/internal/narrator"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-lat", "31.1", "-start", "20240101", "-end", "20240131", "-strategy", "smoothing"})
	require.NoError(t, err)

	assert.InDelta(t, 31.1, opts.lat, 1e-9)
	assert.InDelta(t, 77.2, opts.lon, 1e-9)
	assert.Equal(t, "smoothing", opts.strategy)
	assert.Equal(t, "daily", opts.resolution)

	_, err = parseFlags([]string{"-start", "20240101"})
	assert.Error(t, err)
}

func TestPrintReport(t *testing.T) {
	report := &dashboard.Report{
		Table: &climate.Table{
			Resolution: climate.ResolutionDaily,
			Parameters: []string{"T2M"},
			Rows: []climate.Row{
				{Period: "20240101", Values: map[string]climate.Value{"T2M": climate.Some(10)}},
				{Period: "20240102", Values: map[string]climate.Value{"T2M": climate.Missing()}},
			},
		},
		Summaries: []climate.Summary{{Parameter: "T2M", Count: 1, Mean: 10, Min: 10, Max: 10, Latest: climate.Missing()}},
		Forecasts: []forecast.Series{{Parameter: "T2M", Strategy: forecast.KindTrend, Points: []forecast.Point{{Period: "20240103", Value: 11}}}},
		Notices:   []dashboard.Notice{{Code: dashboard.NoticeForecastOmitted, Message: "not enough history"}},
		Insight:   &narrator.Insight{Text: "Mild.", Source: narrator.SourceFallback},
	}

	var out bytes.Buffer
	require.NoError(t, printReport(&out, report, climate.DefaultCatalog()))

	s := out.String()
	assert.Contains(t, s, "20240102  n/a")
	assert.Contains(t, s, "Air temperature at 2 meters")
	assert.Contains(t, s, "FORECAST T2M (trend)")
	assert.Contains(t, s, "note: not enough history")
	assert.Contains(t, s, "Mild.")
}
