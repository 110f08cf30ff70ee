// Package schema declares the canonical column sets of the planning table
// (cronograma) and of the execution/arrears views. Column names are the wire
// format shared with the spreadsheet store and the SIAFI extracts.
package schema

import "strings"

// AllCols is the canonical planning schema, in canonical order. The table
// carries one row per milestone, keyed by (uo_cod, acao_cod, intervencao_cod,
// marcos_principais), with three value tracks per bimester.
var AllCols = []string{
	"uo_cod", "uo_sigla", "acao_cod", "acao_desc", "intervencao_cod", "intervencao_desc",
	"marcos_principais", "novo_marco", "valor_previsto_total", "valor_replanejado_total",
	"1_bimestre_planejado", "1_bimestre_replanejado", "1_bimestre_realizado",
	"2_bimestre_planejado", "2_bimestre_replanejado", "2_bimestre_realizado",
	"3_bimestre_planejado", "3_bimestre_replanejado", "3_bimestre_realizado",
	"4_bimestre_planejado", "4_bimestre_replanejado", "4_bimestre_realizado",
	"5_bimestre_planejado", "5_bimestre_replanejado", "5_bimestre_realizado",
	"6_bimestre_planejado", "6_bimestre_replanejado", "6_bimestre_realizado",
}

// NumericCols hold monetary values; unparsable input degrades to 0.0.
var NumericCols = []string{
	"valor_replanejado_total",
	"1_bimestre_replanejado", "1_bimestre_realizado",
	"2_bimestre_replanejado", "2_bimestre_realizado",
	"3_bimestre_replanejado", "3_bimestre_realizado",
	"4_bimestre_replanejado", "4_bimestre_realizado",
	"5_bimestre_replanejado", "5_bimestre_realizado",
	"6_bimestre_replanejado", "6_bimestre_realizado",
}

// BoolCols are the original plan markers. They are immutable once set.
var BoolCols = []string{
	"1_bimestre_planejado", "2_bimestre_planejado", "3_bimestre_planejado",
	"4_bimestre_planejado", "5_bimestre_planejado", "6_bimestre_planejado",
}

// EditableCols are the only columns a user may change in place.
var EditableCols = NumericCols

// RequiredOnNew must all be filled when a row is inserted.
var RequiredOnNew = []string{
	"uo_cod", "uo_sigla", "acao_cod", "acao_desc", "intervencao_cod",
	"intervencao_desc", "marcos_principais", "valor_previsto_total",
}

// KeyCols form the composite natural key of a planning row.
var KeyCols = []string{"uo_cod", "acao_cod", "intervencao_cod", "marcos_principais"}

// UnitCol is the row-level-security dimension of the planning table.
const UnitCol = "uo_cod"

// NewMilestoneCol is derived by the insertion validator, never user-settable.
const NewMilestoneCol = "novo_marco"

// NewMilestoneYes and NewMilestoneNo are the wire values of NewMilestoneCol.
const (
	NewMilestoneYes = "Sim"
	NewMilestoneNo  = "Não"
)

// truthyTokens is the single token set recognized as boolean true, shared by
// every coercion site. Everything outside it is false.
var truthyTokens = map[string]struct{}{
	"TRUE": {}, "1": {}, "SIM": {}, "YES": {}, "X": {}, "V": {}, "OK": {},
}

// Truthy reports whether a raw cell value represents boolean true.
func Truthy(raw string) bool {
	_, ok := truthyTokens[strings.ToUpper(strings.TrimSpace(raw))]
	return ok
}

// IsNumeric reports whether col is a declared numeric planning column.
func IsNumeric(col string) bool { return containsString(NumericCols, col) }

// IsBool reports whether col is a declared boolean planning column.
func IsBool(col string) bool { return containsString(BoolCols, col) }

// IsRequiredOnNew reports whether col must be filled on inserted rows.
func IsRequiredOnNew(col string) bool { return containsString(RequiredOnNew, col) }

func containsString(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
