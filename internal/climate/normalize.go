package climate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RawPoint is one period/value pair as sent by the API.
type RawPoint struct {
	Period string
	Value  float64
}

// ParameterSeries holds the raw values of one parameter in response order.
type ParameterSeries struct {
	Code   string
	Points []RawPoint
}

// ParameterData is the nested parameter -> period -> value object of a POWER
// response. It decodes preserving the key order of the payload, which is the
// chronological order the API emits.
type ParameterData []ParameterSeries

// UnmarshalJSON implements json.Unmarshaler.
func (d *ParameterData) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return err
	}

	out := ParameterData{}
	for dec.More() {
		code, err := readKey(dec)
		if err != nil {
			return err
		}

		series := ParameterSeries{Code: code}
		if err := expectDelim(dec, '{'); err != nil {
			return fmt.Errorf("parameter %s: %w", code, err)
		}
		for dec.More() {
			period, err := readKey(dec)
			if err != nil {
				return fmt.Errorf("parameter %s: %w", code, err)
			}
			tok, err := dec.Token()
			if err != nil {
				return fmt.Errorf("parameter %s period %s: %w", code, period, err)
			}
			num, ok := tok.(json.Number)
			if !ok {
				return fmt.Errorf("parameter %s period %s: value %v is not a number", code, period, tok)
			}
			v, err := num.Float64()
			if err != nil {
				return fmt.Errorf("parameter %s period %s: %w", code, period, err)
			}
			series.Points = append(series.Points, RawPoint{Period: period, Value: v})
		}
		if err := expectDelim(dec, '}'); err != nil {
			return fmt.Errorf("parameter %s: %w", code, err)
		}

		out = append(out, series)
	}

	if err := expectDelim(dec, '}'); err != nil {
		return err
	}

	*d = out
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

// Normalize reshapes per-parameter series into a row-per-period table.
//
// Periods are taken from the first parameter. Every other parameter must
// carry exactly the same period set; any disagreement is a ShapeError.
// Values equal to SentinelMissing become the missing marker. The input is
// not modified.
func Normalize(data ParameterData) (*Table, error) {
	if len(data) == 0 {
		return nil, &ShapeError{Reason: "parameter map is empty", Err: ErrNoParameterData}
	}

	first := data[0]
	if len(first.Points) == 0 {
		return nil, &ShapeError{Reason: "parameter " + first.Code, Err: ErrEmptyParameter}
	}

	index := make([]map[string]float64, len(data))
	params := make([]string, len(data))
	seen := make(map[string]bool, len(data))

	for i, series := range data {
		if seen[series.Code] {
			return nil, &ShapeError{Reason: "duplicate parameter " + series.Code}
		}
		seen[series.Code] = true
		params[i] = series.Code

		byPeriod := make(map[string]float64, len(series.Points))
		for _, p := range series.Points {
			if _, dup := byPeriod[p.Period]; dup {
				return nil, &ShapeError{Reason: fmt.Sprintf("parameter %s repeats period %s", series.Code, p.Period)}
			}
			byPeriod[p.Period] = p.Value
		}
		if len(byPeriod) != len(first.Points) {
			return nil, &ShapeError{Reason: fmt.Sprintf(
				"parameter %s has %d periods, %s has %d",
				series.Code, len(byPeriod), first.Code, len(first.Points),
			)}
		}
		index[i] = byPeriod
	}

	rows := make([]Row, 0, len(first.Points))
	for _, p := range first.Points {
		row := Row{
			Period: p.Period,
			Values: make(map[string]Value, len(params)),
		}
		for i, code := range params {
			raw, ok := index[i][p.Period]
			if !ok {
				return nil, &ShapeError{Reason: fmt.Sprintf("parameter %s has no value for period %s", code, p.Period)}
			}
			row.Values[code] = normalizeValue(raw)
		}
		rows = append(rows, row)
	}

	return &Table{
		Parameters: params,
		Rows:       rows,
	}, nil
}

func normalizeValue(v float64) Value {
	if v == SentinelMissing {
		return Missing()
	}
	return Some(v)
}
