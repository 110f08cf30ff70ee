package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/schema"
)

// CSVFileStore keeps the planning table in a single CSV file. It is the
// zero-infrastructure backend for local runs and tests; the Postgres store is
// the deployed one.
type CSVFileStore struct {
	path string
}

func NewCSVFileStore(path string) *CSVFileStore {
	return &CSVFileStore{path: path}
}

// Read loads the file, or returns an empty canonical table when the file does
// not exist yet. A store that has never been written to is a valid, empty
// plan, not an error.
func (cs *CSVFileStore) Read(ctx context.Context) (dataframe.DataFrame, error) {
	raw, err := os.ReadFile(cs.path)
	if os.IsNotExist(err) {
		return EmptyTable(), nil
	}
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("opening planning file %s: %w", cs.path, err)
	}
	// A header-only file is a previously saved empty plan; gota's reader
	// rejects it.
	if !strings.Contains(strings.TrimRight(string(raw), "\r\n"), "\n") {
		return EmptyTable(), nil
	}

	df := dataframe.ReadCSV(bytes.NewReader(raw),
		dataframe.WithLazyQuotes(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Error() != nil {
		return dataframe.DataFrame{}, fmt.Errorf("reading planning file %s: %w", cs.path, df.Error())
	}
	return df, nil
}

// Write replaces the file atomically: write a sibling temp file, then rename
// over the target. Readers never observe a half-written table.
func (cs *CSVFileStore) Write(ctx context.Context, df dataframe.DataFrame) error {
	dir := filepath.Dir(cs.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating planning directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(cs.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp planning file: %w", err)
	}
	tmpName := tmp.Name()

	if err := df.WriteCSV(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing planning file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp planning file: %w", err)
	}
	if err := os.Rename(tmpName, cs.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing planning file %s: %w", cs.path, err)
	}
	return nil
}

// EmptyTable builds a zero-row table carrying every canonical column.
func EmptyTable() dataframe.DataFrame {
	cols := make([]series.Series, len(schema.AllCols))
	for i, name := range schema.AllCols {
		cols[i] = series.New([]string{}, series.String, name)
	}
	return dataframe.New(cols...)
}
