package siafi

import "github.com/go-gota/gota/dataframe"

// DeriveArrearsMetrics computes the nine derived restos-a-pagar measures from
// the raw vlr_ columns of the arrears fact. Missing base columns count as
// zero, so a partial extract still yields every calc_ column.
//
// Processed arrears (RPP) net out discounts, reinstatements, payment
// annulments and retentions; unprocessed arrears (RPNP) net reinstatements
// and track the liquidated-but-unpaid residue.
func DeriveArrearsMetrics(fact dataframe.DataFrame) map[string][]float64 {
	inscRPP := floatValues(fact, "vlr_inscrito_rpp")
	cancRPP := floatValues(fact, "vlr_cancelado_rpp")
	descRPP := floatValues(fact, "vlr_desconto_rpp")
	restRPP := floatValues(fact, "vlr_restabelecido_rpp")
	pagoRPP := floatValues(fact, "vlr_pago_rpp")
	anulPagRPP := floatValues(fact, "vlr_anulacao_pagamento_rpp")
	retRPP := floatValues(fact, "vlr_retencao_rpp")
	anulRetRPP := floatValues(fact, "vlr_anulacao_retencao_rpp")
	saldoRPP := floatValues(fact, "vlr_saldo_rpp")

	inscRPNP := floatValues(fact, "vlr_inscrito_rpnp")
	cancRPNP := floatValues(fact, "vlr_cancelado_rpnp")
	restRPNP := floatValues(fact, "vlr_restabelecido_rpnp")
	liqRPNP := floatValues(fact, "vlr_despesa_liquidada_rpnp")
	saldoRPNP := floatValues(fact, "vlr_saldo_rpnp")
	liqPagar := floatValues(fact, "vlr_despesa_liquidada_pagar")

	n := fact.Nrow()
	out := map[string][]float64{
		"calc_inscrito_rpp":   make([]float64, n),
		"calc_cancelado_rpp":  make([]float64, n),
		"calc_pago_rpp":       make([]float64, n),
		"calc_saldo_rpp":      make([]float64, n),
		"calc_inscrito_rpnp":  make([]float64, n),
		"calc_cancelado_rpnp": make([]float64, n),
		"calc_liquidado_rpnp": make([]float64, n),
		"calc_saldo_rpnp":     make([]float64, n),
		"calc_pago_rpnp":      make([]float64, n),
	}

	for i := 0; i < n; i++ {
		out["calc_inscrito_rpp"][i] = inscRPP[i]
		out["calc_cancelado_rpp"][i] = cancRPP[i] + descRPP[i] - restRPP[i]
		out["calc_pago_rpp"][i] = pagoRPP[i] - anulPagRPP[i] + retRPP[i] - anulRetRPP[i]
		out["calc_saldo_rpp"][i] = saldoRPP[i]

		out["calc_inscrito_rpnp"][i] = inscRPNP[i]
		out["calc_cancelado_rpnp"][i] = cancRPNP[i] - restRPNP[i]
		out["calc_liquidado_rpnp"][i] = liqRPNP[i]
		out["calc_saldo_rpnp"][i] = saldoRPNP[i]
		out["calc_pago_rpnp"][i] = saldoRPP[i] + liqRPNP[i] - liqPagar[i]
	}
	return out
}

// ArrearsLiquidatedTotal sums the liquidated measure over both arrears
// tracks, the number the panel reports as "liquidated from previous years".
func ArrearsLiquidatedTotal(derived map[string][]float64) float64 {
	total := 0.0
	for _, v := range derived["calc_liquidado_rpnp"] {
		total += v
	}
	return total
}
