package main

import (
	"net/http"
	"strconv"

	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/response"
	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/siafi"
)

type GetMetricsResponse = response.APIResponse[siafi.Metrics]

// handleGetMetrics serves the three headline numbers of the panel. They are
// global figures under the business filter, identical for every user.
func (app *application) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	year := app.config.exerciseYear
	if raw := r.URL.Query().Get("ano"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid ano parameter")
			return
		}
		year = v
	}

	metrics, err := app.builder.Metrics(year)
	if err != nil {
		app.log.Error("Metrics", "Failed to compute metrics: %v", err)
		writeJSONError(w, http.StatusBadGateway, "source extracts unavailable")
		return
	}

	resp := &GetMetricsResponse{
		Success: true,
		Data:    metrics,
		Message: "Metrics computed",
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
