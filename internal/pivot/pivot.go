// Package pivot is the dynamic aggregation engine behind the panel's pivot
// tables: group a wide view by any dimension subset and sum any measure
// subset, with deterministic row order.
package pivot

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ErrNothingSelected is returned when neither dimensions nor measures were
// requested.
var ErrNothingSelected = errors.New("select at least one dimension or one measure")

// Aggregate groups df by dims and sums measures over each group.
//
// With no measures it returns the distinct dimension combinations; with no
// dimensions it returns a single grand-total row. Null measure cells count as
// zero. Rows are ordered by the dimension values, numerically when both cells
// parse as numbers, with empty cells sorting last.
func Aggregate(df dataframe.DataFrame, dims, measures []string) (dataframe.DataFrame, error) {
	if len(dims) == 0 && len(measures) == 0 {
		return dataframe.DataFrame{}, ErrNothingSelected
	}
	for _, col := range append(append([]string{}, dims...), measures...) {
		if !hasColumn(df, col) {
			return dataframe.DataFrame{}, fmt.Errorf("unknown column %q", col)
		}
	}

	nrow := df.Nrow()
	dimRecs := make([][]string, len(dims))
	for j, d := range dims {
		dimRecs[j] = cleanRecords(df.Col(d).Records())
	}
	measVals := make([][]float64, len(measures))
	for j, m := range measures {
		measVals[j] = df.Col(m).Float()
	}

	if len(dims) == 0 {
		totals := make([]float64, len(measures))
		for j := range measures {
			for _, v := range measVals[j] {
				if !math.IsNaN(v) {
					totals[j] += v
				}
			}
		}
		cols := make([]series.Series, len(measures))
		for j, m := range measures {
			cols[j] = series.New([]float64{totals[j]}, series.Float, m)
		}
		return dataframe.New(cols...), nil
	}

	type group struct {
		fields []string
		sums   []float64
	}
	index := make(map[string]*group)
	var groups []*group
	for i := 0; i < nrow; i++ {
		fields := make([]string, len(dims))
		for j := range dims {
			fields[j] = dimRecs[j][i]
		}
		key := strings.Join(fields, "\x1f")
		g, ok := index[key]
		if !ok {
			g = &group{fields: fields, sums: make([]float64, len(measures))}
			index[key] = g
			groups = append(groups, g)
		}
		for j := range measures {
			if v := measVals[j][i]; !math.IsNaN(v) {
				g.sums[j] += v
			}
		}
	}

	sort.Slice(groups, func(a, b int) bool {
		ga, gb := groups[a], groups[b]
		for j := range ga.fields {
			if c := compareCells(ga.fields[j], gb.fields[j]); c != 0 {
				return c < 0
			}
		}
		return false
	})

	cols := make([]series.Series, 0, len(dims)+len(measures))
	for j, d := range dims {
		vals := make([]string, len(groups))
		for i, g := range groups {
			vals[i] = g.fields[j]
		}
		cols = append(cols, series.New(vals, series.String, d))
	}
	for j, m := range measures {
		vals := make([]float64, len(groups))
		for i, g := range groups {
			vals[i] = g.sums[j]
		}
		cols = append(cols, series.New(vals, series.Float, m))
	}
	return dataframe.New(cols...), nil
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

func cleanRecords(recs []string) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		if r == "NaN" {
			r = ""
		}
		out[i] = r
	}
	return out
}

// compareCells orders two dimension cells: empty after everything, numeric
// comparison when both sides parse, lexicographic otherwise.
func compareCells(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}
