package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruthy(t *testing.T) {
	for _, tok := range []string{"TRUE", "true", " Sim ", "1", "x", "V", "ok", "YES"} {
		assert.True(t, Truthy(tok), "token %q", tok)
	}
	for _, tok := range []string{"", "0", "false", "nao", "Não", "NaN", "2"} {
		assert.False(t, Truthy(tok), "token %q", tok)
	}
}

func TestColumnClassification(t *testing.T) {
	assert.True(t, IsNumeric("3_bimestre_realizado"))
	assert.False(t, IsNumeric("3_bimestre_planejado"))
	assert.True(t, IsBool("3_bimestre_planejado"))
	assert.False(t, IsBool("uo_sigla"))
	assert.True(t, IsRequiredOnNew("valor_previsto_total"))
	assert.False(t, IsRequiredOnNew("novo_marco"))
}

func TestCanonicalColumnsCoverDeclaredSets(t *testing.T) {
	set := make(map[string]bool, len(AllCols))
	for _, c := range AllCols {
		set[c] = true
	}
	for _, c := range NumericCols {
		assert.True(t, set[c], "numeric column %s must be canonical", c)
	}
	for _, c := range BoolCols {
		assert.True(t, set[c], "bool column %s must be canonical", c)
	}
	for _, c := range RequiredOnNew {
		assert.True(t, set[c], "required column %s must be canonical", c)
	}
	for _, c := range KeyCols {
		assert.True(t, set[c], "key column %s must be canonical", c)
	}
}

func TestViewRegistry(t *testing.T) {
	c, ok := ExecutionView.Column("vlr_liquidado")
	require.True(t, ok)
	assert.Equal(t, KindMeasure, c.Kind)
	assert.Equal(t, TypeFloat, c.Type)

	_, ok = ExecutionView.Column("calc_pago_rpp")
	assert.False(t, ok, "arrears measure must not leak into the execution view")

	dims := ExecutionView.Names(KindDimension)
	measures := ExecutionView.Names(KindMeasure)
	assert.Len(t, ExecutionView.Columns, len(dims)+len(measures))
	assert.Contains(t, measures, "vlr_empenhado")
	assert.NotContains(t, dims, "vlr_empenhado")

	assert.Equal(t, "Liquidado", ExecutionView.LabelFor("vlr_liquidado"))
	assert.Equal(t, "whatever", ExecutionView.LabelFor("whatever"))
}

func TestArrearsViewCarriesDerivedMeasures(t *testing.T) {
	derived := []string{
		"calc_inscrito_rpp", "calc_cancelado_rpp", "calc_pago_rpp", "calc_saldo_rpp",
		"calc_inscrito_rpnp", "calc_cancelado_rpnp", "calc_liquidado_rpnp",
		"calc_saldo_rpnp", "calc_pago_rpnp",
	}
	for _, name := range derived {
		c, ok := ArrearsView.Column(name)
		require.True(t, ok, "missing %s", name)
		assert.Equal(t, KindMeasure, c.Kind)
	}
}
