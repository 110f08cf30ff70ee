package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/format"
	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/pivot"
	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/planning"
	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/response"
	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/schema"
)

type PivotResponse = response.APIResponse[[]map[string]interface{}]

func (app *application) handleExecutionPivot(w http.ResponseWriter, r *http.Request) {
	app.handlePivot(w, r, schema.ExecutionView, app.builder.ExecutionView)
}

func (app *application) handleArrearsPivot(w http.ResponseWriter, r *http.Request) {
	app.handlePivot(w, r, schema.ArrearsView, app.builder.ArrearsView)
}

// handlePivot serves one pivot request: resolve the UO restriction from the
// scope, get the wide view (cached), aggregate by the requested dimensions
// and measures, and optionally render labels and pt-BR currency.
func (app *application) handlePivot(w http.ResponseWriter, r *http.Request, view schema.ViewSpec, build func(int) (dataframe.DataFrame, error)) {
	scope := scopeFrom(r)
	unit, err := workingUnit(r, scope)
	if err != nil {
		writeJSONError(w, http.StatusForbidden, err.Error())
		return
	}

	dims := splitParam(r.URL.Query().Get("dims"))
	measures := splitParam(r.URL.Query().Get("measures"))
	if msg := validateSelection(view, dims, measures); msg != "" {
		writeJSONError(w, http.StatusBadRequest, msg)
		return
	}

	// Admins and pinned users restrict at build time; a multi-UO user with no
	// pin gets the unrestricted view narrowed to their permitted set.
	restrict := 0
	if !scope.Admin && unit > 0 {
		restrict = unit
	}

	key := fmt.Sprintf("%s:%d", view.Name, restrict)
	wide, err := app.cache.Get(key, func() (dataframe.DataFrame, error) {
		return build(restrict)
	})
	if err != nil {
		app.log.Error("Pivot", "Failed to build view %s: %v", view.Name, err)
		writeJSONError(w, http.StatusBadGateway, "source extracts unavailable")
		return
	}
	if !scope.Admin && restrict == 0 {
		wide = planning.FilterByUnit(wide, "uo_cod", scope, 0).Table
	}

	agg, err := pivot.Aggregate(wide, dims, measures)
	if err != nil {
		if errors.Is(err, pivot.ErrNothingSelected) {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		app.log.Error("Pivot", "Aggregation failed for %s: %v", view.Name, err)
		writeJSONError(w, http.StatusInternalServerError, "aggregation failed")
		return
	}

	if r.URL.Query().Get("format") == "brl" {
		agg = format.FormatMeasures(agg, measures)
	}
	if r.URL.Query().Get("labels") == "true" {
		agg = format.ApplyLabels(agg, view)
	}

	resp := &PivotResponse{
		Success: true,
		Data:    agg.Maps(),
		Message: "Pivot computed",
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, tok := range strings.Split(raw, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// validateSelection checks every requested column against the view registry:
// it must exist and be used on the right side of the pivot.
func validateSelection(view schema.ViewSpec, dims, measures []string) string {
	for _, d := range dims {
		c, ok := view.Column(d)
		if !ok {
			return "unknown dimension: " + d
		}
		if c.Kind != schema.KindDimension {
			return d + " is a measure, not a dimension"
		}
	}
	for _, m := range measures {
		c, ok := view.Column(m)
		if !ok {
			return "unknown measure: " + m
		}
		if c.Kind != schema.KindMeasure {
			return m + " is a dimension, not a measure"
		}
	}
	return ""
}
