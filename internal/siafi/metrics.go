package siafi

import (
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/planning"
)

// Metrics are the three headline numbers of the panel, all under the global
// business filter.
type Metrics struct {
	PlanTotal       float64 `json:"valor_total_plano"`
	LiquidatedTotal float64 `json:"valor_total_liquidado"`
	Balance         float64 `json:"saldo_a_liquidar"`
}

// Metrics computes the plan total from the limit file and the liquidated
// total from both facts for the given exercise year. If any source file is
// missing, everything is zero; an incomplete drop must not break the panel.
func (b *ViewBuilder) Metrics(year int) (Metrics, error) {
	const component = "Metrics"

	for _, path := range []string{b.src.Limits, b.src.Execution, b.src.Arrears} {
		if _, err := os.Stat(path); err != nil {
			b.log.Info(component, "Source file missing, reporting zeros: %s", path)
			return Metrics{}, nil
		}
	}

	limits, err := ReadLatin1File(b.src.Limits)
	if err != nil {
		return Metrics{}, err
	}
	planTotal := sumCurrencyColumn(limits, "limite_propag")

	exec, err := ReadFactFile(b.src.Execution)
	if err != nil {
		return Metrics{}, err
	}
	execTotal := sumFiltered(exec, "vlr_liquidado", year)

	arrears, err := ReadFactFile(b.src.Arrears)
	if err != nil {
		return Metrics{}, err
	}
	arrearsTotal := sumFiltered(arrears, "vlr_despesa_liquidada_rpnp", year)

	m := Metrics{
		PlanTotal:       planTotal,
		LiquidatedTotal: execTotal + arrearsTotal,
	}
	m.Balance = m.PlanTotal - m.LiquidatedTotal
	b.log.Info(component, "Computed metrics: plan=%.2f liquidated=%.2f balance=%.2f", m.PlanTotal, m.LiquidatedTotal, m.Balance)
	return m, nil
}

// sumFiltered totals one measure over the rows of the given year that pass
// the global business filter.
func sumFiltered(fact dataframe.DataFrame, measure string, year int) float64 {
	years := intValues(fact, "ano")
	mask := perimeterMask(fact)
	vals := floatValues(fact, measure)

	total := 0.0
	for i := range vals {
		if years[i] == year && mask[i] {
			total += vals[i]
		}
	}
	return total
}

// sumCurrencyColumn totals a monetary column that may carry "R$ 1.234,56"
// renderings.
func sumCurrencyColumn(df dataframe.DataFrame, name string) float64 {
	raw, present := columnRecords(df, name)
	if !present {
		return 0.0
	}
	total := 0.0
	for _, r := range raw {
		r = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(r), "R$"))
		total += planning.ParseAmount(r)
	}
	return total
}
