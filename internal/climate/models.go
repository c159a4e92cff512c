// Package climate holds the point-location climate data model: queries,
// normalized observation tables and the summary statistics derived from them.
package climate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SentinelMissing is the value NASA POWER uses to mean "no data".
const SentinelMissing = -999.0

// DefaultCommunity is the POWER user community used when a query leaves it empty.
const DefaultCommunity = "AG"

// Resolution is the temporal resolution of a query.
type Resolution string

const (
	ResolutionDaily   Resolution = "daily"
	ResolutionMonthly Resolution = "monthly"
)

// Period layouts per resolution.
const (
	dailyLayout   = "20060102"
	monthlyLayout = "200601"
)

// PeriodLength returns the number of digits a period key has at this resolution.
func (r Resolution) PeriodLength() int {
	switch r {
	case ResolutionDaily:
		return len(dailyLayout)
	case ResolutionMonthly:
		return len(monthlyLayout)
	default:
		return 0
	}
}

// ParsePeriod parses a period key such as "20240101" or "202401".
func (r Resolution) ParsePeriod(period string) (time.Time, error) {
	switch r {
	case ResolutionDaily:
		return time.Parse(dailyLayout, period)
	case ResolutionMonthly:
		return time.Parse(monthlyLayout, period)
	default:
		return time.Time{}, fmt.Errorf("unknown resolution %q", r)
	}
}

// FormatPeriod formats t as a period key.
func (r Resolution) FormatPeriod(t time.Time) string {
	if r == ResolutionMonthly {
		return t.Format(monthlyLayout)
	}
	return t.Format(dailyLayout)
}

// Advance moves t forward by n periods.
func (r Resolution) Advance(t time.Time, n int) time.Time {
	if r == ResolutionMonthly {
		return t.AddDate(0, n, 0)
	}
	return t.AddDate(0, 0, n)
}

// IsAggregate reports whether period is an aggregate bucket rather than a
// calendar period. Monthly POWER responses carry a 13th month per year
// holding the annual value.
func (r Resolution) IsAggregate(period string) bool {
	return r == ResolutionMonthly && len(period) == len(monthlyLayout) && strings.HasSuffix(period, "13")
}

// Query describes one request for a point time series.
type Query struct {
	Latitude   float64    `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude  float64    `json:"longitude" validate:"gte=-180,lte=180"`
	Start      string     `json:"start" validate:"required,numeric"`
	End        string     `json:"end" validate:"required,numeric"`
	Parameters []string   `json:"parameters" validate:"required,min=1,dive,required,alphanum"`
	Resolution Resolution `json:"resolution" validate:"required,oneof=daily monthly"`
	Community  string     `json:"community,omitempty" validate:"omitempty,alpha"`
}

// ParameterList returns the comma-joined parameter codes.
func (q Query) ParameterList() string {
	return strings.Join(q.Parameters, ",")
}

// CommunityOrDefault returns the query community, falling back to DefaultCommunity.
func (q Query) CommunityOrDefault() string {
	if q.Community == "" {
		return DefaultCommunity
	}
	return q.Community
}

// Value is a numeric observation that may be missing.
type Value struct {
	Float float64
	Valid bool
}

// Some returns a present value.
func Some(f float64) Value {
	return Value{Float: f, Valid: true}
}

// Missing returns the explicit "no data" marker.
func Missing() Value {
	return Value{}
}

// MarshalJSON encodes a missing value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v.Float, 'f', -1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Missing()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if !v.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(v.Float, 'f', 2, 64)
}

// Row is one period of a table with one value slot per parameter.
type Row struct {
	Period string           `json:"period"`
	Values map[string]Value `json:"values"`
}

// Table is a normalized observation table, one row per period.
type Table struct {
	Resolution Resolution        `json:"resolution"`
	Parameters []string          `json:"parameters"`
	Units      map[string]string `json:"units,omitempty"`
	Rows       []Row             `json:"rows"`
}

// HasParameter reports whether the table carries a column for code.
func (t *Table) HasParameter(code string) bool {
	for _, p := range t.Parameters {
		if p == code {
			return true
		}
	}
	return false
}

// HistoryRows returns the rows that represent calendar periods, skipping
// aggregate buckets.
func (t *Table) HistoryRows() []Row {
	rows := make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		if t.Resolution.IsAggregate(row.Period) {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// Column returns the history values for code in period order.
func (t *Table) Column(code string) []Value {
	rows := t.HistoryRows()
	values := make([]Value, len(rows))
	for i, row := range rows {
		values[i] = row.Values[code]
	}
	return values
}

// ParameterInfo describes a POWER parameter code for display.
type ParameterInfo struct {
	Code  string `json:"code" yaml:"code"`
	Label string `json:"label" yaml:"label"`
	Unit  string `json:"unit" yaml:"unit"`
}

// Catalog is an ordered list of known parameters.
type Catalog []ParameterInfo

// DefaultCatalog returns the parameters offered by the dashboard.
func DefaultCatalog() Catalog {
	return Catalog{
		{Code: "T2M", Label: "Air temperature at 2 meters", Unit: "°C"},
		{Code: "PRECTOTCORR", Label: "Corrected total precipitation", Unit: "mm/day"},
		{Code: "WS2M", Label: "Wind speed at 2 meters", Unit: "m/s"},
		{Code: "RH2M", Label: "Relative Humidity (2m)", Unit: "%"},
		{Code: "SNODP", Label: "Snow Depth", Unit: "m"},
	}
}

// Lookup returns the entry for code.
func (c Catalog) Lookup(code string) (ParameterInfo, bool) {
	for _, p := range c {
		if p.Code == code {
			return p, true
		}
	}
	return ParameterInfo{}, false
}

// Label returns the display label for code, or the code itself.
func (c Catalog) Label(code string) string {
	if p, ok := c.Lookup(code); ok && p.Label != "" {
		return p.Label
	}
	return code
}

// Unit returns the unit for code, or an empty string.
func (c Catalog) Unit(code string) string {
	if p, ok := c.Lookup(code); ok {
		return p.Unit
	}
	return ""
}

// DefaultParameters returns the first three catalog codes.
func (c Catalog) DefaultParameters() []string {
	n := 3
	if len(c) < n {
		n = len(c)
	}
	codes := make([]string, 0, n)
	for _, p := range c[:n] {
		codes = append(codes, p.Code)
	}
	return codes
}
