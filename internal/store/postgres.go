package store

import (
	"context"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/schema"
)

// PostgresStore keeps the planning table in a single Postgres table whose
// columns are exactly the canonical schema, all text. Typing is the
// normalizer's job, not the database's; the store enforces no constraints.
type PostgresStore struct {
	db    *sqlx.DB
	table string
}

func NewPostgresStore(db *sqlx.DB, table string) *PostgresStore {
	return &PostgresStore{db: db, table: table}
}

func (ps *PostgresStore) Read(ctx context.Context) (dataframe.DataFrame, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", joinIdentifiers(schema.AllCols), pq.QuoteIdentifier(ps.table))

	rows, err := ps.db.QueryxContext(ctx, query)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("reading planning table %s: %w", ps.table, err)
	}
	defer rows.Close()

	records := [][]string{schema.AllCols}
	for rows.Next() {
		raw, err := rows.SliceScan()
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("scanning planning row: %w", err)
		}
		rec := make([]string, len(raw))
		for i, v := range raw {
			rec[i] = asString(v)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("iterating planning rows: %w", err)
	}
	// LoadRecords rejects a header-only slice.
	if len(records) == 1 {
		return EmptyTable(), nil
	}

	df := dataframe.LoadRecords(records, dataframe.DetectTypes(false), dataframe.DefaultType(series.String))
	return df, df.Error()
}

// Write replaces the whole table inside one transaction: delete everything,
// then bulk-copy the new rows. Concurrent writers are last-writer-wins.
func (ps *PostgresStore) Write(ctx context.Context, df dataframe.DataFrame) error {
	tx, err := ps.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting planning write: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", pq.QuoteIdentifier(ps.table))); err != nil {
		return fmt.Errorf("clearing planning table %s: %w", ps.table, err)
	}

	stmt, err := tx.PreparexContext(ctx, pq.CopyIn(ps.table, schema.AllCols...))
	if err != nil {
		return fmt.Errorf("preparing planning copy: %w", err)
	}

	records := df.Records()
	for _, rec := range records[1:] {
		args := make([]interface{}, len(rec))
		for i, v := range rec {
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			stmt.Close()
			return fmt.Errorf("copying planning row: %w", err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("flushing planning copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("closing planning copy: %w", err)
	}

	return tx.Commit()
}

func joinIdentifiers(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += pq.QuoteIdentifier(c)
	}
	return out
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
