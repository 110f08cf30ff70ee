// Package store persists the shared planning table. The canonical schema is
// the wire format; every write is a whole-table replace and the most recent
// write wins. Reads reflect the latest committed write after a bounded
// staleness window; there is no row-level transactionality.
package store

import (
	"context"

	"github.com/go-gota/gota/dataframe"
)

// PlanningStore is the spreadsheet-collaborator contract.
type PlanningStore interface {
	Read(ctx context.Context) (dataframe.DataFrame, error)
	Write(ctx context.Context, df dataframe.DataFrame) error
}
