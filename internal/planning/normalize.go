// Package planning implements the row-level-security-aware core over the
// shared planning table: schema normalization, scope filtering, insertion
// validation and the merge-back reconciler.
package planning

import (
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/schema"
)

// Normalize coerces an arbitrary input table into the canonical planning
// schema. Missing canonical columns are fabricated, numeric columns become
// floats (unparsable cells degrade to 0.0, never an error), boolean columns
// are coerced through the shared token set, and extra input columns are
// dropped. The result has exactly schema.AllCols in canonical order.
//
// Normalize is pure and idempotent: normalizing its own output is a no-op.
func Normalize(df dataframe.DataFrame) dataframe.DataFrame {
	nrow := df.Nrow()
	cols := make([]series.Series, 0, len(schema.AllCols))

	for _, name := range schema.AllCols {
		raw, present := columnRecords(df, name)
		switch {
		case schema.IsNumeric(name):
			cols = append(cols, numericSeries(name, raw, present, nrow))
		case schema.IsBool(name):
			cols = append(cols, boolSeries(name, raw, present, nrow))
		default:
			cols = append(cols, stringSeries(name, raw, present, nrow))
		}
	}
	return dataframe.New(cols...)
}

func columnRecords(df dataframe.DataFrame, name string) ([]string, bool) {
	for _, n := range df.Names() {
		if n == name {
			return df.Col(name).Records(), true
		}
	}
	return nil, false
}

func numericSeries(name string, raw []string, present bool, nrow int) series.Series {
	vals := make([]float64, nrow)
	if present {
		for i, r := range raw {
			vals[i] = ParseAmount(r)
		}
	}
	return series.New(vals, series.Float, name)
}

func boolSeries(name string, raw []string, present bool, nrow int) series.Series {
	vals := make([]bool, nrow)
	if present {
		for i, r := range raw {
			vals[i] = schema.Truthy(r)
		}
	}
	return series.New(vals, series.Bool, name)
}

func stringSeries(name string, raw []string, present bool, nrow int) series.Series {
	vals := make([]string, nrow)
	if present {
		for i, r := range raw {
			if r == "NaN" {
				r = ""
			}
			vals[i] = strings.TrimSpace(r)
		}
	}
	return series.New(vals, series.String, name)
}

// ParseAmount parses a monetary cell tolerantly. Plain decimal notation is
// tried first; pt-BR notation ("1.234,56") is recognized by the decimal
// comma. Anything unparsable, including null markers, degrades to 0.0.
func ParseAmount(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" || s == "NaN" {
		return 0.0
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	if strings.Contains(s, ",") {
		clean := strings.ReplaceAll(s, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
		if v, err := strconv.ParseFloat(clean, 64); err == nil {
			return v
		}
	}
	return 0.0
}

// ParseUnitCode parses a UO code cell numerically. Float renderings of
// integer codes ("1251.000000") are accepted; anything else fails.
func ParseUnitCode(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "NaN" {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		return int(f), true
	}
	return 0, false
}
