package siafi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/logger"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testSources(t *testing.T) Sources {
	t.Helper()
	dir := t.TempDir()
	return Sources{
		Execution: writeFile(t, dir, "execucao.csv",
			"ano,uo_cod,acao_cod,elemento_item_cod,grupo_cod,fonte_cod,ipu_cod,num_obra,vlr_empenhado,vlr_liquidado,vlr_pago_orcamentario\n"+
				"2026,1251,4365,5201,4,89,1,,100.5,80,70\n"+
				"2026,1301,1037,1122,4,12,0,12221,50,40,30\n"+
				"2026,1261,2000,1122,4,89,0,,10,10,10\n"+
				"2026,1541,2000,1122,4,12,5,,10,10,10\n"),
		Arrears: writeFile(t, dir, "restos_pagar.csv",
			"ano,ano_rp,uo_cod,acao_cod,fonte_cod,ipu_cod,vlr_inscrito_rpp,vlr_saldo_rpp,vlr_despesa_liquidada_rpnp,vlr_despesa_liquidada_pagar\n"+
				"2026,2025,1251,4365,89,1,300,120,25,5\n"+
				"2025,2024,1251,4365,89,1,100,0,100,0\n"),
		Units: writeFile(t, dir, "uo.csv",
			"ano,uo_cod,uo_sigla\n2026,1251,DER\n2026,1301,SES\n"),
		Actions: writeFile(t, dir, "acao.csv",
			"ano,acao_cod,acao_desc\n2026,4365,Rodovias\n"),
		Items: writeFile(t, dir, "elemento_item.csv",
			"ano,elemento_item_cod,elemento_item_desc\n2026,5201,Obras\n"),
		Limits: writeFile(t, dir, "limites.csv",
			"uo_cod;limite_propag\n1251;1.000,50\n1301;R$ 500,50\n"),
		Interventions: writeFile(t, dir, "intervencoes.csv",
			"ano;uo_cod;acao_cod;intervencao_cod;valor_plano\n2026;1251;4365;125101;2.000,00\n"),
	}
}

func quietLogger() *logger.Logger {
	return logger.New(logger.LevelError)
}

func TestApplyGlobalFilter(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"89", "12", "12", "89"}, series.String, "fonte_cod"),
		series.New([]string{"1", "0", "5", "0"}, series.String, "ipu_cod"),
		series.New([]string{"1251", "1301", "1251", "1261"}, series.String, "uo_cod"),
	)

	out := ApplyGlobalFilter(df)
	require.Equal(t, 2, out.Nrow())
	assert.Equal(t, []string{"1251", "1301"}, out.Col("uo_cod").Records())
}

func TestApplyGlobalFilterUnparsableCodesDoNotQualify(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"12", "89"}, series.String, "fonte_cod"),
		series.New([]string{"", "x"}, series.String, "ipu_cod"),
		series.New([]string{"1251", "1301"}, series.String, "uo_cod"),
	)

	out := ApplyGlobalFilter(df)
	require.Equal(t, 1, out.Nrow(), "a blank ipu_cod is not ipu 0")
	assert.Equal(t, []string{"1301"}, out.Col("uo_cod").Records())
}

func TestApplyGlobalFilterWithoutPerimeterColumns(t *testing.T) {
	// Hand-maintained limit files carry no fonte/ipu columns; only the UO
	// exclusion applies.
	df := dataframe.New(
		series.New([]string{"1251", "1261"}, series.String, "uo_cod"),
		series.New([]string{"10", "20"}, series.String, "limite_propag"),
	)

	out := ApplyGlobalFilter(df)
	require.Equal(t, 1, out.Nrow())
	assert.Equal(t, []string{"1251"}, out.Col("uo_cod").Records())
}

func TestExecutionViewJoinsAndTypes(t *testing.T) {
	b := NewViewBuilder(testSources(t), quietLogger())

	view, err := b.ExecutionView(0)
	require.NoError(t, err)
	require.Equal(t, 2, view.Nrow(), "global filter drops SEE and out-of-perimeter rows")

	assert.Equal(t, []string{"DER", "SES"}, view.Col("uo_sigla").Records())
	assert.Equal(t, []string{"Rodovias", ""}, view.Col("acao_desc").Records(),
		"unmatched classifier keys yield empty descriptions")
	assert.Equal(t, []string{"Obras", ""}, view.Col("elemento_item_desc").Records())

	liq := view.Col("vlr_liquidado").Float()
	assert.InDelta(t, 80, liq[0], 1e-9)
	assert.InDelta(t, 40, liq[1], 1e-9)

	assert.Equal(t, []string{"1251", "1301"}, view.Col("uo_cod").Records())
}

func TestExecutionViewRestrictsUnit(t *testing.T) {
	b := NewViewBuilder(testSources(t), quietLogger())

	view, err := b.ExecutionView(1301)
	require.NoError(t, err)
	require.Equal(t, 1, view.Nrow())
	assert.Equal(t, []string{"1301"}, view.Col("uo_cod").Records())
}

func TestArrearsViewCarriesDerivedMeasures(t *testing.T) {
	b := NewViewBuilder(testSources(t), quietLogger())

	view, err := b.ArrearsView(0)
	require.NoError(t, err)
	require.Equal(t, 2, view.Nrow())

	pago := view.Col("calc_pago_rpnp").Float()
	// saldo_rpp + liquidada_rpnp - liquidada_pagar
	assert.InDelta(t, 140, pago[0], 1e-9)
	assert.InDelta(t, 100, pago[1], 1e-9)
}

func TestExecutionViewMissingFactFile(t *testing.T) {
	src := testSources(t)
	src.Execution = filepath.Join(t.TempDir(), "missing.csv")
	b := NewViewBuilder(src, quietLogger())

	_, err := b.ExecutionView(0)
	require.Error(t, err)
}

func TestMetrics(t *testing.T) {
	b := NewViewBuilder(testSources(t), quietLogger())

	m, err := b.Metrics(2026)
	require.NoError(t, err)

	assert.InDelta(t, 1501.00, m.PlanTotal, 1e-6)
	// Execution 80+40 within 2026 and the perimeter, arrears 25 (the 2025
	// row is outside the exercise year).
	assert.InDelta(t, 145, m.LiquidatedTotal, 1e-6)
	assert.InDelta(t, 1356.00, m.Balance, 1e-6)
}

func TestMetricsMissingFileReportsZeros(t *testing.T) {
	src := testSources(t)
	src.Limits = filepath.Join(t.TempDir(), "missing.csv")
	b := NewViewBuilder(src, quietLogger())

	m, err := b.Metrics(2026)
	require.NoError(t, err)
	assert.Zero(t, m.PlanTotal)
	assert.Zero(t, m.LiquidatedTotal)
	assert.Zero(t, m.Balance)
}
