package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/access"
	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/logger"
	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/siafi"
	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/store"
)

type application struct {
	config   config
	log      *logger.Logger
	store    store.PlanningStore
	resolver *access.Resolver
	builder  *siafi.ViewBuilder
	cache    *siafi.Cache
}

type config struct {
	addr         string
	storeBackend string
	planningCSV  string
	planningTbl  string
	exerciseYear int
	cacheSize    int
	accessInline string
	accessFile   string
	db           dbConfig
	siafi        siafi.Sources
}

type dbConfig struct {
	addr         string
	maxOpenConns int
	maxIdleConns int
	maxIdleTime  string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)

		r.Group(func(r chi.Router) {
			r.Use(app.withScope)

			r.Route("/planning", func(r chi.Router) {
				r.Get("/", app.handleGetPlanning)
				r.Post("/save", app.handleSavePlanning)
			})
			r.Get("/execution/pivot", app.handleExecutionPivot)
			r.Get("/arrears/pivot", app.handleArrearsPivot)
			r.Get("/metrics", app.handleGetMetrics)
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 120,
		ReadTimeout:  time.Second * 40,
		IdleTimeout:  time.Minute,
	}

	log.Printf("Server started on %s", app.config.addr)
	return srv.ListenAndServe()
}
