package dashboard_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climatelens/climatelens/internal/climate"
	"github.com/climatelens/climatelens/internal/dashboard"
	"github.com/climatelens/climatelens/internal/forecast"
	"github.com/climatelens/climatelens/internal/narrator"
)

// fakeFetcher returns a table per latitude, or err.
type fakeFetcher struct {
	mu      sync.Mutex
	tables  map[float64]*climate.Table
	err     error
	queries []climate.Query
}

func (f *fakeFetcher) Fetch(_ context.Context, q climate.Query) (*climate.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.tables[q.Latitude]
	if !ok {
		return nil, &climate.TransportError{StatusCode: 404, Err: errors.New("no fixture")}
	}
	return t, nil
}

type stubGenerator struct {
	text string
	err  error
}

func (g stubGenerator) Generate(context.Context, string) (string, error) {
	return g.text, g.err
}

func dailyTable(code string, start time.Time, values ...climate.Value) *climate.Table {
	t := &climate.Table{Resolution: climate.ResolutionDaily, Parameters: []string{code}}
	for i, v := range values {
		t.Rows = append(t.Rows, climate.Row{
			Period: climate.ResolutionDaily.FormatPeriod(start.AddDate(0, 0, i)),
			Values: map[string]climate.Value{code: v},
		})
	}
	return t
}

func fixtureQuery() climate.Query {
	return climate.Query{
		Latitude:   28.6,
		Longitude:  77.2,
		Start:      "20240101",
		End:        "20240103",
		Parameters: []string{"T2M"},
		Resolution: climate.ResolutionDaily,
	}
}

func jan1() time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func TestRun_EndToEnd(t *testing.T) {
	fetcher := &fakeFetcher{tables: map[float64]*climate.Table{
		28.6: dailyTable("T2M", jan1(), climate.Some(10), climate.Missing(), climate.Some(12)),
	}}
	svc := dashboard.NewService(dashboard.Config{Fetcher: fetcher})

	report, err := svc.Run(context.Background(), dashboard.Request{Query: fixtureQuery()})
	require.NoError(t, err)

	require.Len(t, fetcher.queries, 1)
	assert.Equal(t, climate.DefaultCommunity, fetcher.queries[0].Community)

	require.Len(t, report.Summaries, 1)
	s := report.Summaries[0]
	assert.Equal(t, "T2M", s.Parameter)
	assert.Equal(t, 2, s.Count)
	assert.InDelta(t, 11.0, s.Mean, 1e-9)
	assert.Equal(t, 10.0, s.Min)
	assert.Equal(t, 12.0, s.Max)
	assert.Equal(t, climate.Some(12), s.Latest)

	// Two usable values are not enough for a trend fit.
	require.Len(t, report.Forecasts, 1)
	assert.Empty(t, report.Forecasts[0].Points)
	require.Len(t, report.Notices, 1)
	assert.Equal(t, dashboard.NoticeForecastOmitted, report.Notices[0].Code)
	assert.Equal(t, "T2M", report.Notices[0].Parameter)

	assert.Nil(t, report.Insight)
}

func TestRun_SmoothingForecast(t *testing.T) {
	fetcher := &fakeFetcher{tables: map[float64]*climate.Table{
		28.6: dailyTable("T2M", jan1(), climate.Some(2), climate.Some(4), climate.Some(6), climate.Some(8)),
	}}
	svc := dashboard.NewService(dashboard.Config{Fetcher: fetcher})

	q := fixtureQuery()
	q.End = "20240104"
	report, err := svc.Run(context.Background(), dashboard.Request{Query: q, Strategy: forecast.KindSmoothing, Horizon: 2})
	require.NoError(t, err)

	require.Len(t, report.Forecasts, 1)
	series := report.Forecasts[0]
	assert.Equal(t, forecast.KindSmoothing, series.Strategy)
	require.Len(t, series.Points, 2)
	assert.Equal(t, "20240105", series.Points[0].Period)
	assert.InDelta(t, 6.0, series.Points[0].Value, 1e-9)
	assert.Empty(t, report.Notices)
}

func TestRun_ParameterWithoutData(t *testing.T) {
	fetcher := &fakeFetcher{tables: map[float64]*climate.Table{
		28.6: dailyTable("T2M", jan1(), climate.Missing(), climate.Missing(), climate.Missing()),
	}}
	svc := dashboard.NewService(dashboard.Config{Fetcher: fetcher})

	report, err := svc.Run(context.Background(), dashboard.Request{Query: fixtureQuery()})
	require.NoError(t, err)

	assert.Empty(t, report.Summaries)
	codes := make([]string, 0, len(report.Notices))
	for _, n := range report.Notices {
		codes = append(codes, n.Code)
	}
	assert.ElementsMatch(t, []string{dashboard.NoticeParameterNoData, dashboard.NoticeForecastOmitted}, codes)
}

func TestRun_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dashboard.Request)
		field  string
	}{
		{"latitude", func(r *dashboard.Request) { r.Query.Latitude = 91 }, "latitude"},
		{"reversed dates", func(r *dashboard.Request) { r.Query.Start = "20240105" }, "start"},
		{"strategy", func(r *dashboard.Request) { r.Strategy = "neural" }, "strategy"},
		{"horizon", func(r *dashboard.Request) { r.Horizon = 1000 }, "horizon"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := &fakeFetcher{}
			svc := dashboard.NewService(dashboard.Config{Fetcher: fetcher})
			req := dashboard.Request{Query: fixtureQuery()}
			tc.mutate(&req)

			_, err := svc.Run(context.Background(), req)

			var verr *climate.ValidationError
			require.ErrorAs(t, err, &verr)
			fields := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				fields = append(fields, f.Field)
			}
			assert.Contains(t, fields, tc.field)
			assert.Empty(t, fetcher.queries)
		})
	}
}

func TestRun_FetchErrorAborts(t *testing.T) {
	upstream := &climate.UpstreamMessageError{Messages: []string{"Invalid parameter"}}
	svc := dashboard.NewService(dashboard.Config{Fetcher: &fakeFetcher{err: upstream}})

	report, err := svc.Run(context.Background(), dashboard.Request{Query: fixtureQuery()})

	assert.Nil(t, report)
	assert.ErrorIs(t, err, upstream)
}

func TestRun_Narration(t *testing.T) {
	table := dailyTable("T2M", jan1(), climate.Some(10), climate.Some(11), climate.Some(12))

	t.Run("model text", func(t *testing.T) {
		n := narrator.New(narrator.Config{Generator: stubGenerator{text: "Warming slightly."}})
		svc := dashboard.NewService(dashboard.Config{
			Fetcher:  &fakeFetcher{tables: map[float64]*climate.Table{28.6: table}},
			Narrator: n,
		})

		report, err := svc.Run(context.Background(), dashboard.Request{Query: fixtureQuery(), Narrate: true})
		require.NoError(t, err)
		require.NotNil(t, report.Insight)
		assert.Equal(t, narrator.SourceModel, report.Insight.Source)
		assert.Equal(t, "Warming slightly.", report.Insight.Text)
		assert.Empty(t, report.Notices)
	})

	t.Run("quota falls back with notice", func(t *testing.T) {
		n := narrator.New(narrator.Config{Generator: stubGenerator{err: errors.New("429 quota exhausted")}})
		svc := dashboard.NewService(dashboard.Config{
			Fetcher:  &fakeFetcher{tables: map[float64]*climate.Table{28.6: table}},
			Narrator: n,
		})

		report, err := svc.Run(context.Background(), dashboard.Request{Query: fixtureQuery(), Narrate: true})
		require.NoError(t, err)
		require.NotNil(t, report.Insight)
		assert.Equal(t, narrator.SourceFallback, report.Insight.Source)
		assert.Contains(t, report.Insight.Text, "Current: 12.0")
		require.Len(t, report.Notices, 1)
		assert.Equal(t, dashboard.NoticeInsightDegraded, report.Notices[0].Code)
		assert.Equal(t, narrator.NoticeQuota, report.Notices[0].Message)
	})
}
