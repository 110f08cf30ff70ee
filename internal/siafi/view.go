package siafi

import (
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/logger"
	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/planning"
	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/schema"
)

// Sources holds the paths of every extract the view builder reads.
type Sources struct {
	Execution     string
	Arrears       string
	Units         string
	Actions       string
	Items         string
	Limits        string
	Interventions string
}

// ViewBuilder assembles the wide pivot tables from the extract files. It is
// stateless; callers that want reuse wrap it in a Cache.
type ViewBuilder struct {
	src Sources
	log *logger.Logger
}

func NewViewBuilder(src Sources, log *logger.Logger) *ViewBuilder {
	return &ViewBuilder{src: src, log: log}
}

// ApplyGlobalFilter keeps only the rows inside the Propag perimeter:
// (fonte_cod = 89 OR ipu_cod = 0) AND uo_cod != 1261. A cell that does not
// parse numerically never satisfies its condition; a column absent from the
// file entirely (the hand-maintained limit extracts) does not restrict.
func ApplyGlobalFilter(df dataframe.DataFrame) dataframe.DataFrame {
	mask := perimeterMask(df)
	keep := make([]int, 0, df.Nrow())
	for i, in := range mask {
		if in {
			keep = append(keep, i)
		}
	}
	return df.Subset(keep)
}

func perimeterMask(df dataframe.DataFrame) []bool {
	fonte, fonteOK, hasFonte := codeValues(df, "fonte_cod")
	ipu, ipuOK, hasIPU := codeValues(df, "ipu_cod")
	uo, uoOK, _ := codeValues(df, "uo_cod")

	mask := make([]bool, df.Nrow())
	for i := range mask {
		fonteHit := hasFonte && fonteOK[i] && fonte[i] == 89
		ipuHit := !hasIPU || (ipuOK[i] && ipu[i] == 0)
		excluded := uoOK[i] && uo[i] == 1261
		mask[i] = (fonteHit || ipuHit) && !excluded
	}
	return mask
}

// RestrictUnit keeps only the rows of one UO. Zero means no restriction.
func RestrictUnit(df dataframe.DataFrame, uo int) dataframe.DataFrame {
	if uo <= 0 {
		return df
	}
	units := intValues(df, "uo_cod")
	keep := make([]int, 0, df.Nrow())
	for i, u := range units {
		if u == uo {
			keep = append(keep, i)
		}
	}
	return df.Subset(keep)
}

// ExecutionView builds the denormalized budget-execution table: the filtered
// fact rows joined with the UO, action and element-item classifiers, typed
// per the view registry. restrictUO > 0 additionally narrows to one unit.
func (b *ViewBuilder) ExecutionView(restrictUO int) (dataframe.DataFrame, error) {
	const component = "ExecutionView"

	fact, err := ReadFactFile(b.src.Execution)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	fact = ApplyGlobalFilter(fact)
	fact = RestrictUnit(fact, restrictUO)
	b.log.Debug(component, "Fact rows after filter: %d (restrictUO=%d)", fact.Nrow(), restrictUO)

	dims := b.loadDimensions()
	view := b.assembleView(fact, schema.ExecutionView, dims, nil)
	b.log.Info(component, "Built execution view: rows=%d cols=%d", view.Nrow(), view.Ncol())
	return view, view.Error()
}

// ArrearsView builds the restos-a-pagar table with the nine derived RPP/RPNP
// metrics in place of the raw vlr_ columns.
func (b *ViewBuilder) ArrearsView(restrictUO int) (dataframe.DataFrame, error) {
	const component = "ArrearsView"

	fact, err := ReadFactFile(b.src.Arrears)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	fact = ApplyGlobalFilter(fact)
	fact = RestrictUnit(fact, restrictUO)
	b.log.Debug(component, "Fact rows after filter: %d (restrictUO=%d)", fact.Nrow(), restrictUO)

	dims := b.loadDimensions()
	derived := DeriveArrearsMetrics(fact)
	view := b.assembleView(fact, schema.ArrearsView, dims, derived)
	b.log.Info(component, "Built arrears view: rows=%d cols=%d", view.Nrow(), view.Ncol())
	return view, view.Error()
}

// dimensions maps a (year, code) key to a description, one map per joined
// classifier column.
type dimensions map[string]map[string]string

// dimJoins binds each description column of the views to its classifier file
// and join code column.
var dimJoins = map[string]struct{ codCol string }{
	"uo_sigla":           {codCol: "uo_cod"},
	"acao_desc":          {codCol: "acao_cod"},
	"elemento_item_desc": {codCol: "elemento_item_cod"},
}

func (b *ViewBuilder) loadDimensions() dimensions {
	const component = "Dimensions"

	dims := dimensions{}
	load := func(path, codCol, descCol string) {
		df, err := ReadDimensionFile(path)
		if err != nil {
			// A missing classifier degrades to empty descriptions, it
			// never blocks the view.
			b.log.Error(component, "Classifier unavailable, descriptions will be empty: %v", err)
			dims[descCol] = map[string]string{}
			return
		}
		dims[descCol] = buildDimension(df, codCol, descCol)
		b.log.Debug(component, "Loaded classifier %s: %d keys", descCol, len(dims[descCol]))
	}

	load(b.src.Units, "uo_cod", "uo_sigla")
	load(b.src.Actions, "acao_cod", "acao_desc")
	load(b.src.Items, "elemento_item_cod", "elemento_item_desc")
	return dims
}

// buildDimension indexes a classifier by (ano, code) with both keys coerced
// to integers, so "1021.0" in one file still matches "1021" in the other.
// The first occurrence of a key wins.
func buildDimension(df dataframe.DataFrame, codCol, descCol string) map[string]string {
	years, _ := columnRecords(df, "ano")
	codes, _ := columnRecords(df, codCol)
	descs, _ := columnRecords(df, descCol)

	out := make(map[string]string, len(codes))
	for i := range codes {
		if i >= len(years) || i >= len(descs) {
			break
		}
		year, okY := planning.ParseUnitCode(years[i])
		code, okC := planning.ParseUnitCode(codes[i])
		if !okY || !okC {
			continue
		}
		k := dimKey(year, code)
		if _, dup := out[k]; !dup {
			out[k] = cleanCell(descs[i])
		}
	}
	return out
}

func dimKey(year, code int) string {
	return strconv.Itoa(year) + "\x1f" + strconv.Itoa(code)
}

// assembleView projects the fact table onto a view registry: join columns are
// resolved against the classifiers, derived measures come from the derived
// map, everything else is coerced from the fact records. A description with
// no classifier match stays empty.
func (b *ViewBuilder) assembleView(fact dataframe.DataFrame, spec schema.ViewSpec, dims dimensions, derived map[string][]float64) dataframe.DataFrame {
	nrow := fact.Nrow()
	years, _ := columnRecords(fact, "ano")

	cols := make([]series.Series, 0, len(spec.Columns))
	for _, c := range spec.Columns {
		if join, isJoin := dimJoins[c.Name]; isJoin {
			cols = append(cols, joinedSeries(c.Name, fact, years, dims[c.Name], join.codCol, nrow))
			continue
		}
		if vals, isDerived := derived[c.Name]; isDerived {
			cols = append(cols, series.New(vals, series.Float, c.Name))
			continue
		}
		raw, _ := columnRecords(fact, c.Name)
		switch c.Type {
		case schema.TypeFloat:
			vals := make([]float64, nrow)
			for i := range vals {
				if i < len(raw) {
					vals[i] = planning.ParseAmount(raw[i])
				}
			}
			cols = append(cols, series.New(vals, series.Float, c.Name))
		case schema.TypeInt:
			vals := make([]string, nrow)
			for i := range vals {
				if i < len(raw) {
					if v, ok := planning.ParseUnitCode(raw[i]); ok {
						vals[i] = strconv.Itoa(v)
					}
				}
			}
			cols = append(cols, series.New(vals, series.Int, c.Name))
		default:
			vals := make([]string, nrow)
			for i := range vals {
				if i < len(raw) {
					vals[i] = cleanCell(raw[i])
				}
			}
			cols = append(cols, series.New(vals, series.String, c.Name))
		}
	}
	return dataframe.New(cols...)
}

func joinedSeries(name string, fact dataframe.DataFrame, years []string, dim map[string]string, codCol string, nrow int) series.Series {
	codes, _ := columnRecords(fact, codCol)
	vals := make([]string, nrow)
	for i := range vals {
		if i >= len(years) || i >= len(codes) {
			continue
		}
		year, okY := planning.ParseUnitCode(years[i])
		code, okC := planning.ParseUnitCode(codes[i])
		if okY && okC {
			vals[i] = dim[dimKey(year, code)]
		}
	}
	return series.New(vals, series.String, name)
}

func columnRecords(df dataframe.DataFrame, name string) ([]string, bool) {
	for _, n := range df.Names() {
		if n == name {
			return df.Col(name).Records(), true
		}
	}
	return nil, false
}

// intValues coerces a code column numerically, unparsable or missing cells
// degrading to 0.
func intValues(df dataframe.DataFrame, name string) []int {
	vals := make([]int, df.Nrow())
	raw, present := columnRecords(df, name)
	if !present {
		return vals
	}
	for i, r := range raw {
		if v, ok := planning.ParseUnitCode(r); ok {
			vals[i] = v
		}
	}
	return vals
}

// codeValues parses a code column keeping nullability: ok[i] is false for
// cells that do not parse, present is false when the column is absent.
func codeValues(df dataframe.DataFrame, name string) ([]int, []bool, bool) {
	vals := make([]int, df.Nrow())
	ok := make([]bool, df.Nrow())
	raw, present := columnRecords(df, name)
	if !present {
		return vals, ok, false
	}
	for i, r := range raw {
		if v, parsed := planning.ParseUnitCode(r); parsed {
			vals[i], ok[i] = v, true
		}
	}
	return vals, ok, true
}

func cleanCell(raw string) string {
	if raw == "NaN" || raw == "<NA>" {
		return ""
	}
	return raw
}

// floatValues coerces a monetary column, unparsable or missing cells
// degrading to 0.0.
func floatValues(df dataframe.DataFrame, name string) []float64 {
	vals := make([]float64, df.Nrow())
	raw, present := columnRecords(df, name)
	if !present {
		return vals
	}
	for i, r := range raw {
		vals[i] = planning.ParseAmount(r)
	}
	return vals
}
