package main

import (
	"net/http"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/planning"
	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/response"
	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/schema"
	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/store"
)

type GetPlanningResponse = response.APIResponse[[]map[string]interface{}]
type SavePlanningResponse = response.APIResponse[map[string]int]

// handleGetPlanning returns the planning rows the requesting user may see,
// normalized to the canonical schema and optionally refined by one column.
func (app *application) handleGetPlanning(w http.ResponseWriter, r *http.Request) {
	scope := scopeFrom(r)
	unit, err := workingUnit(r, scope)
	if err != nil {
		writeJSONError(w, http.StatusForbidden, err.Error())
		return
	}

	full, err := app.store.Read(r.Context())
	if err != nil {
		app.log.Error("Planning", "Failed to read planning table: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to read planning table")
		return
	}
	full = planning.Normalize(full)

	snap := planning.FilterByUnit(full, schema.UnitCol, scope, unit)

	refineCol := r.URL.Query().Get("refine_col")
	if refineCol != "" {
		if !containsName(schema.AllCols, refineCol) {
			writeJSONError(w, http.StatusBadRequest, "unknown refine column: "+refineCol)
			return
		}
		snap = snap.Refine(refineCol, r.URL.Query().Get("refine_value"))
	}

	resp := &GetPlanningResponse{
		Success: true,
		Data:    snap.Table.Maps(),
		Message: "Planning rows retrieved",
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

type savePlanningRequest struct {
	Rows []map[string]interface{} `json:"rows"`
}

// handleSavePlanning replaces the user's visible slice of the planning table
// with the submitted rows. The untouched remainder of the table is preserved,
// inserted rows pass the required-field and ownership gate, and the result is
// persisted as a whole-table write.
func (app *application) handleSavePlanning(w http.ResponseWriter, r *http.Request) {
	scope := scopeFrom(r)
	unit, err := workingUnit(r, scope)
	if err != nil {
		writeJSONError(w, http.StatusForbidden, err.Error())
		return
	}
	// Browsing across permitted UOs is fine, writing is not: a non-admin
	// save must be pinned to exactly one unit.
	if !scope.Admin && unit == 0 {
		writeJSONError(w, http.StatusForbidden, "select a working UO before saving")
		return
	}

	var req savePlanningRequest
	if err := readJSON(w, r, &req); err != nil {
		return
	}

	full, err := app.store.Read(r.Context())
	if err != nil {
		app.log.Error("Planning", "Failed to read planning table: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to read planning table")
		return
	}
	full = planning.Normalize(full)
	snap := planning.FilterByUnit(full, schema.UnitCol, scope, unit)

	var after dataframe.DataFrame
	if len(req.Rows) == 0 {
		after = store.EmptyTable()
	} else {
		after = dataframe.LoadMaps(req.Rows,
			dataframe.DetectTypes(false),
			dataframe.DefaultType(series.String),
		)
		if after.Error() != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid rows payload: "+after.Error().Error())
			return
		}
	}
	after = planning.Normalize(after)

	validated, err := planning.ValidateNewRows(snap.Table, after, scope, unit)
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	merged, err := planning.Reconcile(full, snap, validated)
	if err != nil {
		app.log.Error("Planning", "Failed to merge edited rows: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to merge edited rows")
		return
	}

	if err := app.store.Write(r.Context(), merged); err != nil {
		app.log.Error("Planning", "Failed to persist planning table: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to persist planning table")
		return
	}
	app.log.Info("Planning", "Planning table saved by %s: %d visible rows, %d total", scope.Username, validated.Nrow(), merged.Nrow())

	resp := &SavePlanningResponse{
		Success: true,
		Data:    map[string]int{"saved_rows": validated.Nrow(), "total_rows": merged.Nrow()},
		Message: "Planning table saved",
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
