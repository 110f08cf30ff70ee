package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/joho/godotenv"

	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/env"
	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/logger"
	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/siafi"
)

func writeTable(df dataframe.DataFrame, path string, appLogger *logger.Logger) error {
	const component = "Writer"

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file %s: %w", path, err)
	}
	defer f.Close()

	if err := df.WriteCSV(f); err != nil {
		return fmt.Errorf("writing output file %s: %w", path, err)
	}
	appLogger.Info(component, "Table written: path=%s rows=%d", path, df.Nrow())
	return nil
}

func main() {
	const component = "Main"
	_ = godotenv.Load()

	var appLogger = &logger.Logger{MinLevel: logger.LevelInfo}
	log.SetFlags(0) // Remove default timestamp since we add our own

	startingTime := time.Now()
	appLogger.Info(component, "Batch starting: startTime=%s", startingTime.Format(time.RFC3339))

	outDirPtr := flag.String("out", "processed_data", "Output directory for the generated tables")
	logLevelPtr := flag.String("loglevel", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	switch strings.ToLower(*logLevelPtr) {
	case "debug":
		appLogger.SetLogLevel(logger.LevelDebug)
	case "info":
		appLogger.SetLogLevel(logger.LevelInfo)
	case "warn":
		appLogger.SetLogLevel(logger.LevelWarn)
	case "error":
		appLogger.SetLogLevel(logger.LevelError)
	default:
		appLogger.SetLogLevel(logger.LevelInfo)
	}

	src := siafi.Sources{
		Execution:     env.GetString("SIAFI_EXECUTION", "datapackages/siafi-2026/data/execucao.csv.gz"),
		Arrears:       env.GetString("SIAFI_ARREARS", "datapackages/siafi-2026/data/restos_pagar.csv.gz"),
		Units:         env.GetString("AUX_UO", "datapackages/aux-classificadores/data/uo.csv"),
		Actions:       env.GetString("AUX_ACAO", "datapackages/aux-classificadores/data/acao.csv"),
		Items:         env.GetString("AUX_ELEMENTO_ITEM", "datapackages/aux-classificadores/data/elemento_item.csv"),
		Limits:        env.GetString("RAW_LIMITS", "data-raw/propag_investimentos_limite_2026.csv"),
		Interventions: env.GetString("RAW_INTERVENTIONS", "data-raw/propag_investimentos_intervencoes_plano_2026.csv"),
	}

	if err := os.MkdirAll(*outDirPtr, os.ModePerm); err != nil {
		appLogger.Fatal(component, "Failed to create output directory: error=%v", err)
		return
	}

	overview, err := buildOverviewTable(src, appLogger)
	if err != nil {
		appLogger.Fatal(component, "Overview table failed: error=%v", err)
		return
	}
	if err := writeTable(overview, filepath.Join(*outDirPtr, "tabela_visao_geral.csv"), appLogger); err != nil {
		appLogger.Fatal(component, "Failed to write overview table: error=%v", err)
		return
	}

	interventions, err := buildInterventionTable(src, appLogger)
	if err != nil {
		appLogger.Fatal(component, "Intervention table failed: error=%v", err)
		return
	}
	if err := writeTable(interventions, filepath.Join(*outDirPtr, "tabela_intervencoes.csv"), appLogger); err != nil {
		appLogger.Fatal(component, "Failed to write intervention table: error=%v", err)
		return
	}

	timeTaken := time.Since(startingTime)
	appLogger.Info(component, "Batch completed successfully: duration=%.2f seconds", timeTaken.Seconds())
}
