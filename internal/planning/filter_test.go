package planning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/access"
	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/schema"
)

func TestFilterByUnitAdminSeesEverything(t *testing.T) {
	df := loadStrings([][]string{
		{"uo_cod", "acao_cod"},
		{"1251", "4365"},
		{"1301", "1037"},
		{"", "2000"},
	})

	snap := FilterByUnit(df, schema.UnitCol, access.Scope{Username: "root", Admin: true}, 0)
	assert.Equal(t, 3, snap.Table.Nrow())
	assert.Equal(t, []int{0, 1, 2}, snap.Indices)
}

func TestFilterByUnitMembership(t *testing.T) {
	df := loadStrings([][]string{
		{"uo_cod", "acao_cod"},
		{"1251", "4365"},
		{"1301", "1037"},
		{"1541", "2000"},
		{"garbage", "2001"},
	})
	scope := access.Scope{Username: "bob", AllowedUnits: []int{1251, 1541}}

	snap := FilterByUnit(df, schema.UnitCol, scope, 0)
	require.Equal(t, 2, snap.Table.Nrow())
	assert.Equal(t, []int{0, 2}, snap.Indices)
	assert.Equal(t, []string{"1251", "1541"}, snap.Table.Col("uo_cod").Records())
}

func TestFilterByUnitWorkingUnitPin(t *testing.T) {
	df := loadStrings([][]string{
		{"uo_cod"},
		{"1251"},
		{"1541"},
		{"1251"},
	})
	scope := access.Scope{Username: "bob", AllowedUnits: []int{1251, 1541}}

	snap := FilterByUnit(df, schema.UnitCol, scope, 1251)
	assert.Equal(t, []int{0, 2}, snap.Indices)
}

func TestFilterByUnitUnparsableRowsNeverMatch(t *testing.T) {
	df := loadStrings([][]string{
		{"uo_cod"},
		{""},
		{"NaN"},
		{"DER"},
	})
	scope := access.Scope{Username: "bob", AllowedUnits: []int{1251}}

	snap := FilterByUnit(df, schema.UnitCol, scope, 0)
	assert.Equal(t, 0, snap.Table.Nrow())
	assert.Empty(t, snap.Indices)
}

func TestRefinePreservesOriginalIndices(t *testing.T) {
	df := loadStrings([][]string{
		{"uo_cod", "acao_cod"},
		{"1251", "4365"},
		{"1301", "4365"},
		{"1251", "1037"},
	})
	scope := access.Scope{Username: "bob", AllowedUnits: []int{1251}}

	snap := FilterByUnit(df, schema.UnitCol, scope, 0)
	require.Equal(t, []int{0, 2}, snap.Indices)

	refined := snap.Refine("acao_cod", "1037")
	assert.Equal(t, []int{2}, refined.Indices)
	assert.Equal(t, 1, refined.Table.Nrow())

	// Empty value and unknown column are no-ops.
	assert.Equal(t, snap.Indices, snap.Refine("acao_cod", "").Indices)
	assert.Equal(t, snap.Indices, snap.Refine("no_such_col", "x").Indices)
}
