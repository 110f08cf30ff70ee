package planning

import (
	"github.com/go-gota/gota/dataframe"

	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/access"
)

// Snapshot pairs a filtered view of a table with the positions those rows
// occupy in the full table. The merge-back reconciler removes rows by these
// original positions, never by natural key, so a snapshot must always travel
// with the table it was cut from.
type Snapshot struct {
	Table   dataframe.DataFrame
	Indices []int
}

// FilterByUnit applies the resolved scope to the unit-code column of a table.
// Admins see everything. Non-admins see the pinned working unit when one is
// set (workingUnit > 0), otherwise every unit in their permitted set. Rows
// whose unit code is missing or unparsable never match.
//
// The same predicate serves the planning table and the fact-table wide views;
// only the column differs.
func FilterByUnit(df dataframe.DataFrame, unitCol string, scope access.Scope, workingUnit int) Snapshot {
	nrow := df.Nrow()
	if scope.Admin {
		all := make([]int, nrow)
		for i := range all {
			all[i] = i
		}
		return Snapshot{Table: df, Indices: all}
	}

	raw, present := columnRecords(df, unitCol)
	keep := make([]int, 0, nrow)
	if present {
		for i, r := range raw {
			unit, ok := ParseUnitCode(r)
			if !ok {
				continue
			}
			if workingUnit > 0 {
				if unit == workingUnit {
					keep = append(keep, i)
				}
			} else if scope.Allows(unit) {
				keep = append(keep, i)
			}
		}
	}
	return Snapshot{Table: df.Subset(keep), Indices: keep}
}

// Refine narrows a snapshot to the rows where col equals value, preserving
// the original-table indices. An empty value keeps the snapshot unchanged.
func (s Snapshot) Refine(col, value string) Snapshot {
	if value == "" {
		return s
	}
	raw, present := columnRecords(s.Table, col)
	if !present {
		return s
	}
	var sub []int
	var orig []int
	for i, r := range raw {
		if r == value {
			sub = append(sub, i)
			orig = append(orig, s.Indices[i])
		}
	}
	if sub == nil {
		sub = []int{}
	}
	return Snapshot{Table: s.Table.Subset(sub), Indices: orig}
}
