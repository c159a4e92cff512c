// Package chart renders dashboard results as PNG images.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/climatelens/climatelens/internal/climate"
	"github.com/climatelens/climatelens/internal/forecast"
)

// Default image size.
const (
	DefaultWidth  = 1200
	DefaultHeight = 600
)

// ErrNotEnoughData is returned when fewer than two points could be plotted.
var ErrNotEnoughData = errors.New("not enough data to draw a chart")

// palette follows the tab10 colour cycle.
var palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
	drawing.ColorFromHex("e377c2"),
	drawing.ColorFromHex("7f7f7f"),
	drawing.ColorFromHex("bcbd22"),
	drawing.ColorFromHex("17becf"),
}

var separatorColor = drawing.ColorFromHex("808080").WithAlpha(128)

// SeriesInput is what the time series chart plots.
type SeriesInput struct {
	Table     *climate.Table
	Forecasts []forecast.Series
	Catalog   climate.Catalog
	// Title defaults to "<Resolution> Weather Data".
	Title  string
	Width  int
	Height int
}

// Series draws every table parameter as a solid line and its forecast, if
// any, as a dashed line of the same colour. A dotted vertical line marks the
// last historical period when at least one forecast is drawn.
func Series(w io.Writer, in SeriesInput) error {
	if in.Table == nil {
		return ErrNotEnoughData
	}
	if in.Catalog == nil {
		in.Catalog = climate.DefaultCatalog()
	}
	if in.Width <= 0 {
		in.Width = DefaultWidth
	}
	if in.Height <= 0 {
		in.Height = DefaultHeight
	}
	if in.Title == "" {
		res := string(in.Table.Resolution)
		if res != "" {
			res = strings.ToUpper(res[:1]) + res[1:]
		}
		in.Title = strings.TrimSpace(res + " Weather Data")
	}

	forecasts := make(map[string]forecast.Series, len(in.Forecasts))
	for _, f := range in.Forecasts {
		forecasts[f.Parameter] = f
	}

	rows := in.Table.HistoryRows()
	var (
		series   []gochart.Series
		xs       = map[time.Time]struct{}{}
		lo, hi   = math.Inf(1), math.Inf(-1)
		lastDate time.Time
		dashed   bool
	)
	track := func(t time.Time, v float64) {
		xs[t] = struct{}{}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	for i, code := range in.Table.Parameters {
		color := palette[i%len(palette)]
		label := in.Catalog.Label(code)

		hist := gochart.TimeSeries{
			Name:  fmt.Sprintf("%s (%s)", label, in.Catalog.Unit(code)),
			Style: gochart.Style{StrokeColor: color, StrokeWidth: 2},
		}
		for _, row := range rows {
			v := row.Values[code]
			if !v.Valid {
				continue
			}
			date, err := in.Table.Resolution.ParsePeriod(row.Period)
			if err != nil {
				return fmt.Errorf("parsing period %q: %w", row.Period, err)
			}
			hist.XValues = append(hist.XValues, date)
			hist.YValues = append(hist.YValues, v.Float)
			track(date, v.Float)
			if date.After(lastDate) {
				lastDate = date
			}
		}
		if len(hist.XValues) > 0 {
			series = append(series, hist)
		}

		fc, ok := forecasts[code]
		if !ok || len(fc.Points) == 0 {
			continue
		}
		future := gochart.TimeSeries{
			Name: label + " (Forecast)",
			Style: gochart.Style{
				StrokeColor:     color.WithAlpha(204),
				StrokeWidth:     2,
				StrokeDashArray: []float64{6, 4},
			},
		}
		for _, p := range fc.Points {
			future.XValues = append(future.XValues, p.Date)
			future.YValues = append(future.YValues, p.Value)
			track(p.Date, p.Value)
		}
		series = append(series, future)
		dashed = true
	}

	if len(xs) < 2 {
		return ErrNotEnoughData
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}

	if dashed && !lastDate.IsZero() {
		series = append(series, gochart.TimeSeries{
			Name: "Forecast start",
			Style: gochart.Style{
				StrokeColor:     separatorColor,
				StrokeWidth:     1,
				StrokeDashArray: []float64{1, 3},
			},
			XValues: []time.Time{lastDate, lastDate},
			YValues: []float64{lo, hi},
		})
	}

	graph := gochart.Chart{
		Title:  in.Title,
		Width:  in.Width,
		Height: in.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:           "Date",
			ValueFormatter: dateFormatter(in.Table.Resolution),
		},
		YAxis: gochart.YAxis{
			Name:  "Value",
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: series,
	}
	graph.Elements = []gochart.Renderable{gochart.LegendLeft(&graph)}

	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("rendering series chart: %w", err)
	}
	return nil
}

func dateFormatter(res climate.Resolution) gochart.ValueFormatter {
	layout := "2006-01-02"
	if res == climate.ResolutionMonthly {
		layout = "2006-01"
	}
	return gochart.TimeValueFormatterWithFormat(layout)
}
