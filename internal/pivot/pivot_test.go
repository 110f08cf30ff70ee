package pivot

import (
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleView() dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{"DER", "DER", "SEE", "DER"}, series.String, "uo_sigla"),
		series.New([]string{"4365", "4365", "2000", "1037"}, series.String, "acao_cod"),
		series.New([]float64{100, 50, 30, 20}, series.Float, "vlr_liquidado"),
		series.New([]float64{10, 5, 3, 2}, series.Float, "vlr_empenhado"),
	)
}

func TestAggregateGroupsAndSums(t *testing.T) {
	out, err := Aggregate(sampleView(), []string{"uo_sigla"}, []string{"vlr_liquidado"})
	require.NoError(t, err)
	require.Equal(t, 2, out.Nrow())

	assert.Equal(t, []string{"DER", "SEE"}, out.Col("uo_sigla").Records())
	vals := out.Col("vlr_liquidado").Float()
	assert.InDelta(t, 170, vals[0], 1e-9)
	assert.InDelta(t, 30, vals[1], 1e-9)
}

func TestAggregateMultipleDimsAndMeasures(t *testing.T) {
	out, err := Aggregate(sampleView(), []string{"uo_sigla", "acao_cod"}, []string{"vlr_liquidado", "vlr_empenhado"})
	require.NoError(t, err)
	require.Equal(t, 3, out.Nrow())

	// acao_cod sorts numerically inside each uo_sigla group.
	assert.Equal(t, []string{"DER", "DER", "SEE"}, out.Col("uo_sigla").Records())
	assert.Equal(t, []string{"1037", "4365", "2000"}, out.Col("acao_cod").Records())

	liq := out.Col("vlr_liquidado").Float()
	assert.InDelta(t, 20, liq[0], 1e-9)
	assert.InDelta(t, 150, liq[1], 1e-9)
	assert.InDelta(t, 30, liq[2], 1e-9)
}

func TestAggregateNoDimsIsGrandTotal(t *testing.T) {
	out, err := Aggregate(sampleView(), nil, []string{"vlr_liquidado"})
	require.NoError(t, err)
	require.Equal(t, 1, out.Nrow())
	assert.InDelta(t, 200, out.Col("vlr_liquidado").Float()[0], 1e-9)
}

func TestAggregateNoMeasuresIsDistinct(t *testing.T) {
	out, err := Aggregate(sampleView(), []string{"uo_sigla"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"DER", "SEE"}, out.Col("uo_sigla").Records())
}

func TestAggregateEmptySelection(t *testing.T) {
	_, err := Aggregate(sampleView(), nil, nil)
	require.ErrorIs(t, err, ErrNothingSelected)
}

func TestAggregateUnknownColumn(t *testing.T) {
	_, err := Aggregate(sampleView(), []string{"nope"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown column")
}

func TestAggregateNullMeasureCountsAsZero(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"A", "A"}, series.String, "dim"),
		series.New([]string{"10", "NaN"}, series.Float, "val"),
	)
	out, err := Aggregate(df, []string{"dim"}, []string{"val"})
	require.NoError(t, err)
	assert.InDelta(t, 10, out.Col("val").Float()[0], 1e-9)
}

func TestAggregateOrdering(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"10", "2", "", "2"}, series.String, "cod"),
		series.New([]float64{1, 1, 1, 1}, series.Float, "val"),
	)
	out, err := Aggregate(df, []string{"cod"}, []string{"val"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "10", ""}, out.Col("cod").Records(),
		"numeric order, empty cells last")
}
