package siafi

import (
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// InterventionCol is the mapped-intervention column added by
// AnnotateInterventions.
const InterventionCol = "intervencao_map"

// UnmappedIntervention marks rows no mapping rule matched, so they survive
// grouping instead of being dropped.
const UnmappedIntervention = "SEM_REF"

// obraInterventions maps specific health-department works (UO 1301, action
// 1037) to their plan intervention codes.
var obraInterventions = map[string]string{
	"12221": "130109",
	"12533": "130108",
	"12507": "130112",
	"8025":  "130107",
	"12219": "130110",
	"11527": "130111",
}

// MapIntervention classifies one expense row into a plan intervention code.
// Two rule families exist: the roads department (UO 1251, action 4365) splits
// by element item, and the health department (UO 1301, action 1037) maps by
// work number. Everything else returns "".
func MapIntervention(uo, acao, item, obra string) string {
	uo = strings.TrimSpace(uo)
	acao = strings.TrimSpace(acao)
	item = strings.TrimSpace(item)
	obra = strings.TrimSpace(obra)

	// Excel float renderings ("12221.0") must match the integer code.
	obra = strings.TrimSuffix(obra, ".0")

	if uo == "1251" && acao == "4365" {
		if item == "5201" {
			return "125102"
		}
		return "125101"
	}

	if uo == "1301" && acao == "1037" {
		if code, ok := obraInterventions[obra]; ok {
			return code
		}
	}
	return ""
}

// AnnotateInterventions adds the intervention column to a fact table,
// applying MapIntervention row by row and marking unmatched rows SEM_REF.
func AnnotateInterventions(fact dataframe.DataFrame) dataframe.DataFrame {
	uos, _ := columnRecords(fact, "uo_cod")
	acoes, _ := columnRecords(fact, "acao_cod")
	items, _ := columnRecords(fact, "elemento_item_cod")
	obras, _ := columnRecords(fact, "num_obra")

	cell := func(recs []string, i int) string {
		if i < len(recs) {
			return recs[i]
		}
		return ""
	}

	vals := make([]string, fact.Nrow())
	for i := range vals {
		code := MapIntervention(cell(uos, i), cell(acoes, i), cell(items, i), cell(obras, i))
		if code == "" {
			code = UnmappedIntervention
		}
		vals[i] = code
	}
	return fact.Mutate(series.New(vals, series.String, InterventionCol))
}
