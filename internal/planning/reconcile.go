package planning

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
)

// Reconcile recombines an edited, filtered subset with the untouched
// remainder of the full table before writing back. The rows the snapshot
// covered are removed from the full table by original position and the
// edited subset is appended in their place.
//
// Rows outside the snapshot are preserved exactly; rows inside it are
// replaced by whatever edited contains: edited survivors, new rows, and
// deletions (a snapshot row absent from edited simply does not come back).
// A row not present in the snapshot's index set is purely additive and is
// never treated as a replacement, even if its natural key collides with a
// filtered-out row. The persisted result is a whole-table replace; the store
// offers no row-level transactionality, so concurrent editors on overlapping
// filters are last-writer-wins.
func Reconcile(full dataframe.DataFrame, snap Snapshot, edited dataframe.DataFrame) (dataframe.DataFrame, error) {
	nrow := full.Nrow()
	drop := make(map[int]struct{}, len(snap.Indices))
	for _, idx := range snap.Indices {
		if idx < 0 || idx >= nrow {
			return dataframe.DataFrame{}, fmt.Errorf("snapshot index %d out of range for table of %d rows", idx, nrow)
		}
		drop[idx] = struct{}{}
	}

	keep := make([]int, 0, nrow-len(drop))
	for i := 0; i < nrow; i++ {
		if _, gone := drop[i]; !gone {
			keep = append(keep, i)
		}
	}

	remainder := full.Subset(keep)
	switch {
	case remainder.Nrow() == 0:
		return edited, edited.Error()
	case edited.Nrow() == 0:
		return remainder, remainder.Error()
	}

	merged := remainder.Concat(edited)
	if merged.Error() != nil {
		return dataframe.DataFrame{}, fmt.Errorf("merging edited subset back: %w", merged.Error())
	}
	return merged, nil
}
