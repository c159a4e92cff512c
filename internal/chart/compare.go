package chart

import (
	"fmt"
	"io"

	charts "github.com/vicanso/go-charts/v2"

	"github.com/climatelens/climatelens/internal/dashboard"
)

// Comparison renders the metrics of both locations as grouped bars. Missing
// metrics are drawn as zero.
func Comparison(w io.Writer, cmp *dashboard.Comparison) error {
	if cmp == nil {
		return ErrNotEnoughData
	}

	row := func(c dashboard.Climate) []float64 {
		return []float64{
			c.AvgTemp.Float,
			c.HotDaysPct.Float,
			c.AvgPrecip.Float,
			c.RainyDaysPct.Float,
			c.AvgWind.Float,
		}
	}

	p, err := charts.BarRender(
		[][]float64{row(cmp.A.Climate), row(cmp.B.Climate)},
		charts.TitleTextOptionFunc(cmp.Summary),
		charts.XAxisDataOptionFunc([]string{
			"Avg temp (°C)",
			"Hot days (%)",
			"Avg precip (mm/day)",
			"Rainy days (%)",
			"Avg wind (m/s)",
		}),
		charts.LegendLabelsOptionFunc([]string{cmp.A.Location.Name, cmp.B.Location.Name}, charts.PositionRight),
		charts.WidthOptionFunc(DefaultWidth),
		charts.HeightOptionFunc(DefaultHeight/3*2),
		charts.PaddingOptionFunc(charts.Box{
			Top:    20,
			Right:  20,
			Bottom: 20,
			Left:   20,
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to render comparison chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("writing comparison chart: %w", err)
	}
	return nil
}
