package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/access"
)

type contextKey string

const scopeKey contextKey = "scope"

// authHeader carries the username asserted by the authenticating reverse
// proxy. This service does not verify credentials; it only maps identity to
// visibility.
const authHeader = "X-Auth-User"

// withScope resolves the request identity into an authorization scope and
// stores it on the context. Unknown users and users with an empty permitted
// set are blocked here, before any handler runs.
func (app *application) withScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username := r.Header.Get(authHeader)
		if username == "" {
			writeJSONError(w, http.StatusUnauthorized, "missing "+authHeader+" header")
			return
		}

		scope, err := app.resolver.Resolve(username)
		if err != nil {
			switch {
			case errors.Is(err, access.ErrUnknownUser), errors.Is(err, access.ErrNoUnits):
				writeJSONError(w, http.StatusForbidden, err.Error())
			default:
				app.log.Error("Auth", "Failed to resolve scope for %s: %v", username, err)
				writeJSONError(w, http.StatusInternalServerError, "failed to resolve access scope")
			}
			return
		}

		ctx := context.WithValue(r.Context(), scopeKey, scope)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func scopeFrom(r *http.Request) access.Scope {
	scope, _ := r.Context().Value(scopeKey).(access.Scope)
	return scope
}

// workingUnit resolves the UO the request operates under. Single-UO users are
// pinned to their only unit regardless of the parameter; multi-UO users may
// pick one with ?uo=, validated against their permitted set. Zero means no
// pin (admins, or multi-UO users browsing everything).
func workingUnit(r *http.Request, scope access.Scope) (int, error) {
	if unit, ok := scope.SingleUnit(); ok {
		return unit, nil
	}

	raw := r.URL.Query().Get("uo")
	if raw == "" {
		return 0, nil
	}
	unit, err := strconv.Atoi(raw)
	if err != nil || unit <= 0 {
		return 0, errors.New("invalid uo parameter")
	}
	if err := scope.PinWorkingUnit(unit); err != nil {
		return 0, err
	}
	return unit, nil
}
