package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/access"
	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/logger"
	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/siafi"
	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/store"
)

func testApplication(t *testing.T, mapping string) *application {
	t.Helper()
	quiet := logger.New(logger.LevelError)
	return &application{
		config:   config{exerciseYear: 2026},
		log:      quiet,
		store:    store.NewCSVFileStore(filepath.Join(t.TempDir(), "cronograma.csv")),
		resolver: access.NewResolver(access.ParseInlineMapping(mapping), ""),
		builder:  siafi.NewViewBuilder(siafi.Sources{}, quiet),
		cache:    siafi.NewCache(2),
	}
}

func planningRow(uo, sigla, acao, marco string) map[string]interface{} {
	return map[string]interface{}{
		"uo_cod":               uo,
		"uo_sigla":             sigla,
		"acao_cod":             acao,
		"acao_desc":            "Acao " + acao,
		"intervencao_cod":      uo + "01",
		"intervencao_desc":     "Intervencao",
		"marcos_principais":    marco,
		"valor_previsto_total": "1000",
	}
}

func postSave(t *testing.T, h http.Handler, user, query string, rows []map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{"rows": rows})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/planning/save"+query, bytes.NewReader(body))
	req.Header.Set(authHeader, user)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSavePlanningRejectsUnpinnedMultiUnitUser(t *testing.T) {
	app := testApplication(t, "bob:1251,1301")
	h := app.mount()

	rows := []map[string]interface{}{
		planningRow("1251", "DER", "4365", "Marco A"),
		planningRow("1301", "SES", "1037", "Marco B"),
	}
	rec := postSave(t, h, "bob", "", rows)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	df, err := app.store.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, df.Nrow(), "nothing may be persisted without a pinned UO")
}

func TestSavePlanningPinnedUnitPersists(t *testing.T) {
	app := testApplication(t, "bob:1251,1301")
	h := app.mount()

	rec := postSave(t, h, "bob", "?uo=1251", []map[string]interface{}{
		planningRow("1251", "DER", "4365", "Marco A"),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	df, err := app.store.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, df.Nrow())
	assert.Equal(t, []string{"1251"}, df.Col("uo_cod").Records())
}

func TestSavePlanningSingleUnitUserIsAutoPinned(t *testing.T) {
	app := testApplication(t, "carla:1301")
	h := app.mount()

	rec := postSave(t, h, "carla", "", []map[string]interface{}{
		planningRow("1301", "SES", "1037", "Marco B"),
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestSavePlanningAdminNeedsNoPin(t *testing.T) {
	app := testApplication(t, "alice:*")
	h := app.mount()

	rows := []map[string]interface{}{
		planningRow("1251", "DER", "4365", "Marco A"),
		planningRow("1301", "SES", "1037", "Marco B"),
	}
	rec := postSave(t, h, "alice", "", rows)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	df, err := app.store.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, df.Nrow())
}
