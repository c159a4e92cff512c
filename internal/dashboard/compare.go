package dashboard

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/climatelens/climatelens/internal/climate"
	"github.com/climatelens/climatelens/internal/narrator"
)

// Comparison thresholds.
const (
	hotDayCelsius = 30.0
	rainyDayMM    = 1.0
	compareDays   = 30
	compareParams = "T2M,PRECTOTCORR,WS2M"
	codeTemp      = "T2M"
	codePrecip    = "PRECTOTCORR"
	codeWind      = "WS2M"
)

// Location is a named point to compare.
type Location struct {
	Name      string  `json:"name" validate:"required,max=200"`
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// CompareRequest asks which of two locations suits a purpose better.
type CompareRequest struct {
	A Location `json:"a"`
	B Location `json:"b"`
	// Purpose is free text such as "vacation" or "business trip".
	Purpose string `json:"purpose" validate:"required,max=500"`
	// Start and End default to the last 30 days.
	Start string `json:"start,omitempty" validate:"omitempty,len=8,numeric"`
	End   string `json:"end,omitempty" validate:"omitempty,len=8,numeric"`
}

// Climate condenses a daily table into comparison metrics. Values are
// missing when the location had no data for that parameter.
type Climate struct {
	AvgTemp      climate.Value `json:"avgTemp"`
	HotDaysPct   climate.Value `json:"hotDaysPct"`
	AvgPrecip    climate.Value `json:"avgPrecip"`
	RainyDaysPct climate.Value `json:"rainyDaysPct"`
	AvgWind      climate.Value `json:"avgWind"`
}

// LocationClimate pairs a location with its metrics.
type LocationClimate struct {
	Location Location `json:"location"`
	Climate  Climate  `json:"climate"`
}

// Comparison is the result of Compare.
type Comparison struct {
	Start string          `json:"start"`
	End   string          `json:"end"`
	A     LocationClimate `json:"a"`
	B     LocationClimate `json:"b"`
	// Cooler names the location with fewer hot days. Empty when either
	// location has no temperature data.
	Cooler  string `json:"cooler"`
	Summary string `json:"summary"`
	// Recommendation answers the purpose, from the model or the rules.
	Recommendation narrator.Insight `json:"recommendation"`
}

// Compare fetches both locations concurrently and ranks them for the
// request purpose. A failure fetching either location cancels the other and
// is returned.
func (s *Service) Compare(ctx context.Context, req CompareRequest) (*Comparison, error) {
	if err := climate.ValidateStruct(req); err != nil {
		return nil, err
	}

	start, end := req.Start, req.End
	if start == "" || end == "" {
		today := s.now().UTC()
		end = climate.ResolutionDaily.FormatPeriod(today)
		start = climate.ResolutionDaily.FormatPeriod(today.AddDate(0, 0, -compareDays))
	}

	query := func(loc Location) climate.Query {
		return climate.Query{
			Latitude:   loc.Latitude,
			Longitude:  loc.Longitude,
			Start:      start,
			End:        end,
			Parameters: strings.Split(compareParams, ","),
			Resolution: climate.ResolutionDaily,
			Community:  s.community,
		}
	}
	qa, qb := query(req.A), query(req.B)
	if err := qa.Validate(); err != nil {
		return nil, err
	}
	if err := qb.Validate(); err != nil {
		return nil, err
	}

	var ta, tb *climate.Table
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.fetcher.Fetch(gctx, qa)
		if err != nil {
			return fmt.Errorf("location %s: %w", req.A.Name, err)
		}
		ta = t
		return nil
	})
	g.Go(func() error {
		t, err := s.fetcher.Fetch(gctx, qb)
		if err != nil {
			return fmt.Errorf("location %s: %w", req.B.Name, err)
		}
		tb = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a := LocationClimate{Location: req.A, Climate: Measure(ta)}
	b := LocationClimate{Location: req.B, Climate: Measure(tb)}

	cmp := &Comparison{Start: start, End: end, A: a, B: b}
	cmp.Cooler, cmp.Summary = coolerSummary(a, b)

	rules := RecommendByPurpose(a, b, req.Purpose)
	cmp.Recommendation = s.narrator.Complete(ctx, recommendationPrompt(a, b, req.Purpose), func() string {
		return rules
	})

	return cmp, nil
}

// Measure computes comparison metrics over the non-missing values of t.
func Measure(t *climate.Table) Climate {
	temps := validValues(t, codeTemp)
	precip := validValues(t, codePrecip)
	wind := validValues(t, codeWind)

	return Climate{
		AvgTemp:      mean(temps),
		HotDaysPct:   share(temps, func(v float64) bool { return v > hotDayCelsius }),
		AvgPrecip:    mean(precip),
		RainyDaysPct: share(precip, func(v float64) bool { return v > rainyDayMM }),
		AvgWind:      mean(wind),
	}
}

// RecommendByPurpose picks a winner with fixed rules keyed on words in the
// purpose. Location A must pass the purpose test to win; otherwise B wins.
func RecommendByPurpose(a, b LocationClimate, purpose string) string {
	p := strings.ToLower(purpose)
	ca, cb := a.Climate, b.Climate

	var winner LocationClimate
	var reason string
	switch {
	case containsAny(p, "vacation", "holiday", "tourism"):
		winner = pick(a, b, between(ca.AvgTemp, 20, 30) && lessThan(ca.RainyDaysPct, 30))
		reason = "offers better vacation weather with comfortable temperatures and fewer rainy days, ideal for outdoor sightseeing and activities."
	case containsAny(p, "work", "job", "business"):
		winner = pick(a, b, lessValue(ca.AvgTemp, cb.AvgTemp))
		reason = "has more comfortable temperatures that enhance productivity and reduce heat-related stress during work hours."
	case containsAny(p, "health", "medical"):
		winner = pick(a, b, between(ca.AvgTemp, 15, 28))
		reason = "offers moderate temperatures that are generally better for health and well-being, avoiding extreme heat or cold."
	default:
		winner = pick(a, b, lessValue(ca.HotDaysPct, cb.HotDaysPct))
		reason = "has fewer extremely hot days, providing more comfortable overall weather conditions."
	}

	return fmt.Sprintf("WINNER: %s\n\nREASON: %s %s", winner.Location.Name, winner.Location.Name, reason)
}

func coolerSummary(a, b LocationClimate) (string, string) {
	if !a.Climate.HotDaysPct.Valid || !b.Climate.HotDaysPct.Valid {
		return "", "hot-day data is unavailable for one or both locations"
	}
	if lessValue(a.Climate.HotDaysPct, b.Climate.HotDaysPct) {
		return a.Location.Name, fmt.Sprintf("%s is cooler with %.0f%% hot days vs %.0f%%",
			a.Location.Name, a.Climate.HotDaysPct.Float, b.Climate.HotDaysPct.Float)
	}
	return b.Location.Name, fmt.Sprintf("%s is cooler with %.0f%% hot days vs %.0f%%",
		b.Location.Name, b.Climate.HotDaysPct.Float, a.Climate.HotDaysPct.Float)
}

func recommendationPrompt(a, b LocationClimate, purpose string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Two locations are being compared for this purpose: %q.\n", purpose)
	for _, lc := range []LocationClimate{a, b} {
		c := lc.Climate
		fmt.Fprintf(&sb, "%s: average temperature=%s°C, hot days (>30°C)=%s%%, average precipitation=%smm/day, rainy days (>1mm)=%s%%, average wind=%sm/s\n",
			lc.Location.Name, c.AvgTemp, c.HotDaysPct, c.AvgPrecip, c.RainyDaysPct, c.AvgWind)
	}
	sb.WriteString("Recommend one of them. Answer in the form \"WINNER: <name>\" followed by a blank line and \"REASON: <one or two sentences>\".")
	return sb.String()
}

func validValues(t *climate.Table, code string) []float64 {
	if t == nil || !t.HasParameter(code) {
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

func mean(xs []float64) climate.Value {
	if len(xs) == 0 {
		return climate.Missing()
	}
	return climate.Some(stat.Mean(xs, nil))
}

func share(xs []float64, match func(float64) bool) climate.Value {
	if len(xs) == 0 {
		return climate.Missing()
	}
	n := 0
	for _, x := range xs {
		if match(x) {
			n++
		}
	}
	return climate.Some(float64(n) / float64(len(xs)) * 100)
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func pick(a, b LocationClimate, aWins bool) LocationClimate {
	if aWins {
		return a
	}
	return b
}

// between is strict on both ends; a missing value never qualifies.
func between(v climate.Value, lo, hi float64) bool {
	return v.Valid && v.Float > lo && v.Float < hi
}

func lessThan(v climate.Value, limit float64) bool {
	return v.Valid && v.Float < limit
}

func lessValue(a, b climate.Value) bool {
	return a.Valid && b.Valid && a.Float < b.Float
}
