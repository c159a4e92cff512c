package climate_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climatelens/climatelens/internal/climate"
)

func TestParameterData_PreservesKeyOrder(t *testing.T) {
	payload := `{
		"WS2M": {"20240103": 3.1, "20240101": 2.0, "20240102": -999},
		"T2M":  {"20240103": 12, "20240101": 10, "20240102": 11}
	}`

	var data climate.ParameterData
	require.NoError(t, json.Unmarshal([]byte(payload), &data))

	require.Len(t, data, 2)
	assert.Equal(t, "WS2M", data[0].Code)
	assert.Equal(t, "T2M", data[1].Code)

	periods := make([]string, 0, len(data[0].Points))
	for _, p := range data[0].Points {
		periods = append(periods, p.Period)
	}
	assert.Equal(t, []string{"20240103", "20240101", "20240102"}, periods)
	assert.Equal(t, -999.0, data[0].Points[2].Value)
}

func TestParameterData_RejectsNonNumericValue(t *testing.T) {
	var data climate.ParameterData
	err := json.Unmarshal([]byte(`{"T2M": {"20240101": "warm"}}`), &data)
	assert.Error(t, err)
}

func TestParameterData_Null(t *testing.T) {
	var data climate.ParameterData
	require.NoError(t, json.Unmarshal([]byte(`null`), &data))
	assert.Nil(t, data)
}

func TestNormalize(t *testing.T) {
	data := climate.ParameterData{
		{Code: "T2M", Points: []climate.RawPoint{
			{Period: "20240101", Value: 10},
			{Period: "20240102", Value: -999},
			{Period: "20240103", Value: 12},
		}},
		{Code: "WS2M", Points: []climate.RawPoint{
			{Period: "20240103", Value: 3},
			{Period: "20240101", Value: 1},
			{Period: "20240102", Value: 2},
		}},
	}

	table, err := climate.Normalize(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"T2M", "WS2M"}, table.Parameters)
	require.Len(t, table.Rows, 3)

	assert.Equal(t, "20240101", table.Rows[0].Period)
	assert.Equal(t, "20240102", table.Rows[1].Period)
	assert.Equal(t, "20240103", table.Rows[2].Period)

	assert.Equal(t, climate.Some(10), table.Rows[0].Values["T2M"])
	assert.Equal(t, climate.Missing(), table.Rows[1].Values["T2M"])
	assert.Equal(t, climate.Some(12), table.Rows[2].Values["T2M"])
	assert.Equal(t, climate.Some(2), table.Rows[1].Values["WS2M"])

	for _, row := range table.Rows {
		assert.Len(t, row.Values, 2)
	}
}

func TestNormalize_SentinelNeverSurvives(t *testing.T) {
	data := climate.ParameterData{
		{Code: "A", Points: []climate.RawPoint{{"1", -999}, {"2", -999.0}, {"3", -998.9}, {"4", 0}}},
		{Code: "B", Points: []climate.RawPoint{{"1", 5}, {"2", -999}, {"3", -999}, {"4", -999}}},
	}

	table, err := climate.Normalize(data)
	require.NoError(t, err)

	for _, row := range table.Rows {
		for code, v := range row.Values {
			if v.Valid {
				assert.NotEqual(t, climate.SentinelMissing, v.Float, "period %s param %s", row.Period, code)
			}
		}
	}

	// Only exact matches are rewritten.
	assert.Equal(t, climate.Some(-998.9), table.Rows[2].Values["A"])
	assert.Equal(t, climate.Some(0), table.Rows[3].Values["A"])
}

func TestNormalize_Idempotent(t *testing.T) {
	data := climate.ParameterData{
		{Code: "T2M", Points: []climate.RawPoint{{"20240101", 1}, {"20240102", -999}}},
	}

	first, err := climate.Normalize(data)
	require.NoError(t, err)
	second, err := climate.Normalize(data)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, -999.0, data[0].Points[1].Value, "input must not be mutated")
}

func TestNormalize_ShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		data climate.ParameterData
	}{
		{
			name: "empty",
			data: climate.ParameterData{},
		},
		{
			name: "first parameter has no periods",
			data: climate.ParameterData{{Code: "T2M"}},
		},
		{
			name: "missing period in second parameter",
			data: climate.ParameterData{
				{Code: "T2M", Points: []climate.RawPoint{{"20240101", 1}, {"20240102", 2}}},
				{Code: "WS2M", Points: []climate.RawPoint{{"20240101", 1}}},
			},
		},
		{
			name: "extra period in second parameter",
			data: climate.ParameterData{
				{Code: "T2M", Points: []climate.RawPoint{{"20240101", 1}}},
				{Code: "WS2M", Points: []climate.RawPoint{{"20240101", 1}, {"20240102", 2}}},
			},
		},
		{
			name: "same count different keys",
			data: climate.ParameterData{
				{Code: "T2M", Points: []climate.RawPoint{{"20240101", 1}, {"20240102", 2}}},
				{Code: "WS2M", Points: []climate.RawPoint{{"20240101", 1}, {"20240105", 2}}},
			},
		},
		{
			name: "duplicate parameter",
			data: climate.ParameterData{
				{Code: "T2M", Points: []climate.RawPoint{{"20240101", 1}}},
				{Code: "T2M", Points: []climate.RawPoint{{"20240101", 1}}},
			},
		},
		{
			name: "repeated period",
			data: climate.ParameterData{
				{Code: "T2M", Points: []climate.RawPoint{{"20240101", 1}, {"20240101", 2}}},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			table, err := climate.Normalize(tc.data)
			assert.Nil(t, table)

			var shapeErr *climate.ShapeError
			require.True(t, errors.As(err, &shapeErr), "expected ShapeError, got %v", err)
			assert.True(t, climate.IsQueryFatal(err))
		})
	}
}
