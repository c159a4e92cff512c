package climate_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climatelens/climatelens/internal/climate"
)

func tableOf(res climate.Resolution, code string, periods []string, values []climate.Value) *climate.Table {
	rows := make([]climate.Row, len(periods))
	for i, p := range periods {
		rows[i] = climate.Row{Period: p, Values: map[string]climate.Value{code: values[i]}}
	}
	return &climate.Table{Resolution: res, Parameters: []string{code}, Rows: rows}
}

func days(n int) []string {
	periods := make([]string, n)
	for i := range periods {
		periods[i] = climate.ResolutionDaily.FormatPeriod(climate.ResolutionDaily.Advance(mustDay("20240101"), i))
	}
	return periods
}

func TestSummarize_ExcludesMissing(t *testing.T) {
	table := tableOf(climate.ResolutionDaily, "T2M", days(5), []climate.Value{
		climate.Some(10), climate.Missing(), climate.Some(20), climate.Missing(), climate.Some(30),
	})

	s := climate.Summarize(table, "T2M")
	require.NotNil(t, s)

	assert.Equal(t, "T2M", s.Parameter)
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 20.0, s.Mean, 1e-9)
	assert.Equal(t, 10.0, s.Min)
	assert.Equal(t, 30.0, s.Max)
	assert.Equal(t, climate.Some(30), s.Latest)
	assert.Equal(t, climate.TrendRising, s.Trend())
}

func TestSummarize_LatestMissing(t *testing.T) {
	table := tableOf(climate.ResolutionDaily, "T2M", days(3), []climate.Value{
		climate.Some(10), climate.Some(20), climate.Missing(),
	})

	s := climate.Summarize(table, "T2M")
	require.NotNil(t, s)

	assert.False(t, s.Latest.Valid)
	assert.Equal(t, climate.TrendUnknown, s.Trend())

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"latest":null`)
}

func TestSummarize_AllMissing(t *testing.T) {
	table := tableOf(climate.ResolutionDaily, "T2M", days(2), []climate.Value{climate.Missing(), climate.Missing()})
	assert.Nil(t, climate.Summarize(table, "T2M"))
	assert.Nil(t, climate.Summarize(table, "WS2M"))
	assert.Empty(t, climate.SummarizeAll(table))
}

func TestSummarize_SkipsAnnualAggregate(t *testing.T) {
	table := tableOf(climate.ResolutionMonthly, "T2M",
		[]string{"202311", "202312", "202313"},
		[]climate.Value{climate.Some(4), climate.Some(6), climate.Some(50)},
	)

	s := climate.Summarize(table, "T2M")
	require.NotNil(t, s)
	assert.Equal(t, 2, s.Count)
	assert.InDelta(t, 5.0, s.Mean, 1e-9)
	assert.Equal(t, climate.Some(6), s.Latest)
}

func TestSummary_Trend(t *testing.T) {
	tests := []struct {
		latest climate.Value
		want   climate.Trend
	}{
		{climate.Some(12), climate.TrendRising},
		{climate.Some(8), climate.TrendFalling},
		{climate.Some(10), climate.TrendStable},
		{climate.Missing(), climate.TrendUnknown},
	}
	for _, tc := range tests {
		t.Run(string(tc.want), func(t *testing.T) {
			s := climate.Summary{Mean: 10, Latest: tc.latest}
			assert.Equal(t, tc.want, s.Trend())
		})
	}
}
