package narrator

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/climatelens/climatelens/internal/climate"
	"github.com/climatelens/climatelens/internal/forecast"
)

// Parameter codes the local summary knows how to describe.
const (
	codeTemperature   = "T2M"
	codePrecipitation = "PRECTOTCORR"
	codeWind          = "WS2M"
)

// LocalSummary describes the queried period in plain sentences without any
// external service: temperature, rainfall and wind where present, then an
// overall assessment.
func LocalSummary(in Input) string {
	if in.Table == nil {
		return "No weather data available for summary generation."
	}
	rows := in.Table.HistoryRows()
	if len(rows) == 0 {
		return "No weather data available for summary generation."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "This weather analysis covers the period from %s to %s for the location at %.4f°N, %.4f°E.",
		displayPeriod(in.Table.Resolution, rows[0].Period),
		displayPeriod(in.Table.Resolution, rows[len(rows)-1].Period),
		in.Latitude, in.Longitude,
	)

	temps := present(in.Table, codeTemperature)
	if len(temps) > 0 {
		avg := stat.Mean(temps, nil)
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "The temperature during this period has been quite %s, averaging %.1f°C. ", warmth(avg), avg)
		fmt.Fprintf(&b, "The warmest period reached %.1f°C, while the coolest dropped to %.1f°C. ", floats.Max(temps), floats.Min(temps))
		b.WriteString(temperatureTrend(temps))
		if p, ok := firstPoint(in.Forecasts, codeTemperature); ok {
			fmt.Fprintf(&b, " Looking ahead, temperatures around %.1f°C are projected.", p.Value)
		}
	}

	rain := present(in.Table, codePrecipitation)
	if len(rain) > 0 {
		total := floats.Sum(rain)
		b.WriteString("\n\n")
		switch {
		case total < 10:
			fmt.Fprintf(&b, "This has been a relatively dry period with only %.1fmm of total rainfall. ", total)
		case total < 50:
			fmt.Fprintf(&b, "Rainfall has been moderate during this period, totaling %.1fmm. ", total)
		default:
			fmt.Fprintf(&b, "This has been quite a wet period with %.1fmm of total precipitation. ", total)
		}

		rainy := 0
		for _, v := range rain {
			if v > 0.1 {
				rainy++
			}
		}
		maxRain := floats.Max(rain)
		if maxRain > 20 {
			fmt.Fprintf(&b, "There were %d periods with measurable rainfall, including one particularly heavy one with %.1fmm.", rainy, maxRain)
		} else {
			fmt.Fprintf(&b, "There were %d periods with measurable rainfall, with the heaviest receiving %.1fmm.", rainy, maxRain)
		}

		if p, ok := firstPoint(in.Forecasts, codePrecipitation); ok {
			switch {
			case p.Value > 5:
				b.WriteString(" Rain is expected in the coming periods.")
			case p.Value > 0.1:
				b.WriteString(" Light precipitation is possible in the forecast.")
			default:
				b.WriteString(" Dry conditions are expected to continue.")
			}
		}
	}

	wind := present(in.Table, codeWind)
	if len(wind) > 0 {
		avg := stat.Mean(wind, nil)
		b.WriteString("\n\n")
		switch {
		case avg < 2:
			fmt.Fprintf(&b, "Wind conditions have been generally calm, averaging %.1f m/s.", avg)
		case avg < 5:
			fmt.Fprintf(&b, "There's been a light breeze throughout the period, with average wind speeds of %.1f m/s.", avg)
		default:
			fmt.Fprintf(&b, "It's been quite breezy, with average wind speeds reaching %.1f m/s.", avg)
		}
		if peak := floats.Max(wind); peak > 10 {
			fmt.Fprintf(&b, " The windiest moment peaked at %.1f m/s.", peak)
		}
	}

	b.WriteString("\n\nOverall, this location has experienced ")
	b.WriteString(overall(temps, rain))

	return b.String()
}

func present(t *climate.Table, code string) []float64 {
	if !t.HasParameter(code) {
		return nil
	}
	var out []float64
	for _, v := range t.Column(code) {
		if v.Valid {
			out = append(out, v.Float)
		}
	}
	return out
}

func warmth(avg float64) string {
	switch {
	case avg > 25:
		return "warm"
	case avg > 15:
		return "moderate"
	default:
		return "cool"
	}
}

// temperatureTrend compares the mean of the last seven values with the
// first seven; a difference above one degree counts as a trend.
func temperatureTrend(temps []float64) string {
	n := 7
	if len(temps) < n {
		n = len(temps)
	}
	recent := stat.Mean(temps[len(temps)-n:], nil)
	earlier := stat.Mean(temps[:n], nil)
	switch {
	case recent > earlier+1:
		return "Recently, temperatures have been trending upward."
	case recent < earlier-1:
		return "Recently, temperatures have been cooling down."
	default:
		return "Temperature patterns have remained relatively stable."
	}
}

func overall(temps, rain []float64) string {
	hasTemp, hasRain := len(temps) > 0, len(rain) > 0
	var avg, total float64
	if hasTemp {
		avg = stat.Mean(temps, nil)
	}
	if hasRain {
		total = floats.Sum(rain)
	}

	switch {
	case hasTemp && hasRain && avg > 25 && total < 20:
		return "warm and dry conditions, ideal for outdoor activities."
	case hasTemp && hasRain && avg > 25 && total > 50:
		return "warm and humid conditions with significant rainfall."
	case hasTemp && hasRain && avg < 15 && total > 30:
		return "cool and wet weather patterns."
	case hasTemp && avg < 15:
		return "cooler weather conditions."
	default:
		return "typical seasonal weather patterns for this geographic region."
	}
}

func firstPoint(series []forecast.Series, code string) (forecast.Point, bool) {
	for _, s := range series {
		if s.Parameter == code && len(s.Points) > 0 {
			return s.Points[0], true
		}
	}
	return forecast.Point{}, false
}

// displayPeriod renders 20240131 as 31/01/2024 and 202401 as 01/2024.
func displayPeriod(res climate.Resolution, period string) string {
	t, err := res.ParsePeriod(period)
	if err != nil {
		return period
	}
	if res == climate.ResolutionMonthly {
		return t.Format("01/2006")
	}
	return t.Format("02/01/2006")
}
