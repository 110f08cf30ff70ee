// Package siafi builds the denormalized execution and arrears views from the
// SIAFI extract files, applying the Propag business filter and the row-level
// UO restriction before anything reaches the pivot layer.
package siafi

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/encoding/charmap"
)

// readCSVFlexible loads a CSV whose delimiter may be ';' (pt-BR exports) or
// ','. The semicolon attempt is kept only when it actually split the header;
// a single-column result means the delimiter guess was wrong.
func readCSVFlexible(r io.Reader) (dataframe.DataFrame, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("reading csv payload: %w", err)
	}

	df := dataframe.ReadCSV(bytes.NewReader(raw),
		dataframe.WithDelimiter(';'),
		dataframe.WithLazyQuotes(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Error() != nil || df.Ncol() <= 1 {
		df = dataframe.ReadCSV(bytes.NewReader(raw),
			dataframe.WithDelimiter(','),
			dataframe.WithLazyQuotes(true),
			dataframe.DetectTypes(false),
			dataframe.DefaultType(series.String),
		)
	}
	if df.Error() != nil {
		return dataframe.DataFrame{}, df.Error()
	}
	return normalizeHeaders(df), nil
}

// normalizeHeaders lowercases and trims every column name so the extract
// files match the canonical names regardless of how they were exported.
func normalizeHeaders(df dataframe.DataFrame) dataframe.DataFrame {
	names := df.Names()
	clean := make([]string, len(names))
	for i, n := range names {
		clean[i] = strings.ToLower(strings.TrimSpace(n))
	}
	if err := df.SetNames(clean...); err != nil {
		return df
	}
	return df
}

// ReadFactFile loads a SIAFI fact extract. Files ending in .gz are
// decompressed transparently.
func ReadFactFile(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("opening fact file %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("decompressing fact file %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	df, err := readCSVFlexible(r)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("reading fact file %s: %w", path, err)
	}
	return df, nil
}

// ReadDimensionFile loads an auxiliary classifier table (uo, acao,
// elemento_item).
func ReadDimensionFile(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("opening dimension file %s: %w", path, err)
	}
	defer f.Close()

	df, err := readCSVFlexible(f)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("reading dimension file %s: %w", path, err)
	}
	return df, nil
}

// ReadLatin1File loads a hand-maintained extract saved by Excel in
// Windows-1252, the encoding the limit and intervention plan files arrive in.
func ReadLatin1File(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer f.Close()

	decoded := charmap.Windows1252.NewDecoder().Reader(f)
	df, err := readCSVFlexible(decoded)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("reading file %s: %w", path, err)
	}
	return df, nil
}
