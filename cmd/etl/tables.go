package main

import (
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/logger"
	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/pivot"
	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/planning"
	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/siafi"
)

var overviewKeys = []string{"ano", "uo_cod", "fonte_cod", "ipu_cod"}

// buildOverviewTable joins the aggregated limits, execution and arrears
// facts on (ano, uo, fonte, ipu) and derives the liquidated total and the
// remaining limit per group. Groups present on either side survive the join.
func buildOverviewTable(src siafi.Sources, log *logger.Logger) (dataframe.DataFrame, error) {
	const component = "Overview"

	limits, err := siafi.ReadLatin1File(src.Limits)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	limits = ensureCurrencyColumn(limits, "limite_propag", "valor_limite")
	limits = siafi.ApplyGlobalFilter(limits)

	exec, err := siafi.ReadFactFile(src.Execution)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	exec = siafi.ApplyGlobalFilter(exec)
	exec = ensureCurrencyColumn(exec, "vlr_liquidado", "vlr_liquidado")

	arrears, err := siafi.ReadFactFile(src.Arrears)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	arrears = siafi.ApplyGlobalFilter(arrears)
	derived := siafi.DeriveArrearsMetrics(arrears)
	arrears = arrears.Mutate(series.New(derived["calc_liquidado_rpnp"], series.Float, "vlr_liquidado_rp_total"))

	// The limit file may omit some of the classifier keys; the join runs on
	// whatever subset it carries.
	keys := presentKeys(limits, overviewKeys)
	log.Debug(component, "Join keys: %v", keys)

	aggLimits, err := pivot.Aggregate(limits, keys, []string{"valor_limite"})
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	aggExec, err := pivot.Aggregate(exec, keys, []string{"vlr_liquidado"})
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	aggArrears, err := pivot.Aggregate(arrears, keys, []string{"vlr_liquidado_rp_total"})
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	merged := newMergeTable(keys, []string{"valor_limite", "vlr_liquidado", "vlr_liquidado_rp_total"})
	merged.absorb(aggLimits, "valor_limite")
	merged.absorb(aggExec, "vlr_liquidado")
	merged.absorb(aggArrears, "vlr_liquidado_rp_total")

	siglas := loadCodeMap(src.Units, "uo_cod", "uo_sigla", log)

	out := merged.sorted()
	nrow := len(out)
	liqTotal := make([]float64, nrow)
	saldo := make([]float64, nrow)
	sigla := make([]string, nrow)
	uoIdx := indexOf(keys, "uo_cod")
	for i, row := range out {
		liqTotal[i] = row.measures[1] + row.measures[2]
		saldo[i] = row.measures[0] - liqTotal[i]
		if uoIdx >= 0 {
			sigla[i] = siglas[row.fields[uoIdx]]
		}
	}

	cols := merged.outputColumns(out)
	cols = append(cols,
		series.New(column(out, 0), series.Float, "valor_limite"),
		series.New(column(out, 1), series.Float, "vlr_liquidado"),
		series.New(column(out, 2), series.Float, "vlr_liquidado_rp_total"),
		series.New(liqTotal, series.Float, "vlr_liquidado_total"),
		series.New(saldo, series.Float, "saldo_limite"),
		series.New(sigla, series.String, "uo_sigla"),
	)
	df := dataframe.New(cols...)
	log.Info(component, "Overview table built: rows=%d", df.Nrow())
	return df, df.Error()
}

// buildInterventionTable compares the intervention plan against the mapped
// execution and arrears, per (ano, uo, acao, intervention).
func buildInterventionTable(src siafi.Sources, log *logger.Logger) (dataframe.DataFrame, error) {
	const component = "Interventions"

	exec, err := siafi.ReadFactFile(src.Execution)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	exec = siafi.ApplyGlobalFilter(exec)
	exec = ensureCurrencyColumn(exec, "vlr_liquidado", "vlr_liquidado")
	exec = siafi.AnnotateInterventions(exec)

	arrears, err := siafi.ReadFactFile(src.Arrears)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	arrears = siafi.ApplyGlobalFilter(arrears)
	derived := siafi.DeriveArrearsMetrics(arrears)
	arrears = arrears.Mutate(series.New(derived["calc_liquidado_rpnp"], series.Float, "vlr_liquidado_rp_total"))
	arrears = siafi.AnnotateInterventions(arrears)

	keys := []string{"ano", "uo_cod", "acao_cod", siafi.InterventionCol}
	aggExec, err := pivot.Aggregate(exec, keys, []string{"vlr_liquidado"})
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	aggArrears, err := pivot.Aggregate(arrears, keys, []string{"vlr_liquidado_rp_total"})
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	plan, err := siafi.ReadLatin1File(src.Interventions)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	plan = ensureCurrencyColumn(plan, "valor_plano", "valor_plano")
	plan = renameInterventionKey(plan)
	aggPlan, err := pivot.Aggregate(plan, keys, []string{"valor_plano"})
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	merged := newMergeTable(keys, []string{"valor_plano", "vlr_liquidado", "vlr_liquidado_rp_total"})
	merged.absorb(aggPlan, "valor_plano")
	merged.absorb(aggExec, "vlr_liquidado")
	merged.absorb(aggArrears, "vlr_liquidado_rp_total")

	siglas := loadCodeMap(src.Units, "uo_cod", "uo_sigla", log)
	acoes := loadCodeMap(src.Actions, "acao_cod", "acao_desc", log)

	out := merged.sorted()
	nrow := len(out)
	liqFinal := make([]float64, nrow)
	saldo := make([]float64, nrow)
	sigla := make([]string, nrow)
	desc := make([]string, nrow)
	for i, row := range out {
		liqFinal[i] = row.measures[1] + row.measures[2]
		saldo[i] = row.measures[0] - liqFinal[i]
		sigla[i] = siglas[row.fields[1]]
		desc[i] = acoes[row.fields[2]]
	}

	cols := []series.Series{
		series.New(fieldColumn(out, 0), series.String, "ano"),
		series.New(fieldColumn(out, 1), series.String, "uo_cod"),
		series.New(sigla, series.String, "uo_sigla"),
		series.New(fieldColumn(out, 2), series.String, "acao_cod"),
		series.New(desc, series.String, "acao_desc"),
		series.New(fieldColumn(out, 3), series.String, "cod_intervencao"),
		series.New(column(out, 0), series.Float, "valor_plano"),
		series.New(liqFinal, series.Float, "liquidado_final"),
		series.New(saldo, series.Float, "saldo_plano"),
	}
	df := dataframe.New(cols...)
	log.Info(component, "Intervention table built: rows=%d", df.Nrow())
	return df, df.Error()
}

// mergeTable is an outer join accumulator over a shared dimension key.
type mergeTable struct {
	keys     []string
	measures []string
	index    map[string]*mergeRow
}

type mergeRow struct {
	fields   []string
	measures []float64
}

func newMergeTable(keys, measures []string) *mergeTable {
	return &mergeTable{keys: keys, measures: measures, index: make(map[string]*mergeRow)}
}

// absorb folds one aggregated table into the accumulator, filling the named
// measure. Key cells are normalized numerically so "1251.0" and "1251" land
// in the same group.
func (t *mergeTable) absorb(df dataframe.DataFrame, measure string) {
	m := indexOf(t.measures, measure)
	if m < 0 {
		return
	}
	dimRecs := make([][]string, len(t.keys))
	for j, k := range t.keys {
		dimRecs[j] = df.Col(k).Records()
	}
	vals := df.Col(measure).Float()

	for i := range vals {
		fields := make([]string, len(t.keys))
		for j := range t.keys {
			fields[j] = normalizeCode(dimRecs[j][i])
		}
		key := strings.Join(fields, "\x1f")
		row, ok := t.index[key]
		if !ok {
			row = &mergeRow{fields: fields, measures: make([]float64, len(t.measures))}
			t.index[key] = row
		}
		row.measures[m] += vals[i]
	}
}

func (t *mergeTable) sorted() []*mergeRow {
	rows := make([]*mergeRow, 0, len(t.index))
	for _, r := range t.index {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(a, b int) bool {
		for j := range rows[a].fields {
			if c := compareCodes(rows[a].fields[j], rows[b].fields[j]); c != 0 {
				return c < 0
			}
		}
		return false
	})
	return rows
}

func (t *mergeTable) outputColumns(rows []*mergeRow) []series.Series {
	cols := make([]series.Series, len(t.keys))
	for j, k := range t.keys {
		cols[j] = series.New(fieldColumn(rows, j), series.String, k)
	}
	return cols
}

func fieldColumn(rows []*mergeRow, j int) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.fields[j]
	}
	return out
}

func column(rows []*mergeRow, m int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.measures[m]
	}
	return out
}

// ensureCurrencyColumn guarantees a float column named dst built from the
// monetary cells of src, which may carry pt-BR renderings or be absent
// entirely.
func ensureCurrencyColumn(df dataframe.DataFrame, src, dst string) dataframe.DataFrame {
	vals := make([]float64, df.Nrow())
	for _, n := range df.Names() {
		if n == src {
			for i, r := range df.Col(src).Records() {
				r = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(r), "R$"))
				vals[i] = planning.ParseAmount(r)
			}
			break
		}
	}
	return df.Mutate(series.New(vals, series.Float, dst))
}

// renameInterventionKey aligns the plan file's intervention column with the
// mapped-intervention key used on the fact side, stripping Excel ".0"
// suffixes.
func renameInterventionKey(df dataframe.DataFrame) dataframe.DataFrame {
	vals := make([]string, df.Nrow())
	for _, n := range df.Names() {
		if n == "intervencao_cod" {
			for i, r := range df.Col(n).Records() {
				vals[i] = strings.TrimSuffix(strings.TrimSpace(r), ".0")
			}
			break
		}
	}
	return df.Mutate(series.New(vals, series.String, siafi.InterventionCol))
}

func loadCodeMap(path, codCol, descCol string, log *logger.Logger) map[string]string {
	df, err := siafi.ReadDimensionFile(path)
	if err != nil {
		log.Warn("CodeMap", "Classifier unavailable: %v", err)
		return map[string]string{}
	}
	codes := df.Col(codCol).Records()
	descs := df.Col(descCol).Records()
	out := make(map[string]string, len(codes))
	for i := range codes {
		if i >= len(descs) {
			break
		}
		k := normalizeCode(codes[i])
		if _, dup := out[k]; !dup {
			out[k] = descs[i]
		}
	}
	return out
}

func normalizeCode(raw string) string {
	if v, ok := planning.ParseUnitCode(raw); ok {
		return strconv.Itoa(v)
	}
	s := strings.TrimSpace(raw)
	if s == "NaN" {
		return ""
	}
	return s
}

func compareCodes(a, b string) int {
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

func presentKeys(df dataframe.DataFrame, keys []string) []string {
	var out []string
	for _, k := range keys {
		for _, n := range df.Names() {
			if n == k {
				out = append(out, k)
				break
			}
		}
	}
	return out
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
