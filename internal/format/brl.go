// Package format renders pivot results for display: pt-BR currency strings
// and user-facing column labels.
package format

import (
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/shopspring/decimal"

	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/schema"
)

// BRL renders a monetary value as pt-BR currency, "R$ 1.234,56". Decimal
// arithmetic keeps the rounding exact at the cents boundary.
func BRL(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	neg := d.IsNegative()
	if neg {
		d = d.Neg()
	}

	fixed := d.StringFixed(2)
	dot := strings.LastIndex(fixed, ".")
	intPart, fracPart := fixed[:dot], fixed[dot+1:]

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("R$ ")
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(ch)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	return b.String()
}

// FormatMeasures replaces the named float columns with their BRL renderings.
func FormatMeasures(df dataframe.DataFrame, measures []string) dataframe.DataFrame {
	for _, m := range measures {
		if !hasColumn(df, m) {
			continue
		}
		vals := df.Col(m).Float()
		out := make([]string, len(vals))
		for i, v := range vals {
			out[i] = BRL(v)
		}
		df = df.Mutate(series.New(out, series.String, m))
	}
	return df
}

// ApplyLabels renames the view's internal column names to their display
// labels. Columns outside the registry keep their names.
func ApplyLabels(df dataframe.DataFrame, view schema.ViewSpec) dataframe.DataFrame {
	names := df.Names()
	labels := make([]string, len(names))
	for i, n := range names {
		labels[i] = view.LabelFor(n)
	}
	if err := df.SetNames(labels...); err != nil {
		return df
	}
	return df
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}
