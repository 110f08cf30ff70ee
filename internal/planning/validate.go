package planning

import (
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/access"
	"github.com/vivigoncalvesportonascimento/propag-monitoramento/internal/schema"
)

// ValidationError carries the human-readable reason a save was rejected.
// Validation stops at the first violated rule: no partially valid state is
// ever accepted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func rejected(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ValidateNewRows is the sole gate between the edit surface and the shared
// store; the store itself enforces nothing. It diffs before/after by the
// composite natural key, enforces required fields and ownership on inserted
// rows, stamps the derived novo_marco flag, and re-checks the UO constraints
// of non-admin users. On success it returns the (flag-adjusted) after table.
//
// Both tables must already be in canonical form (see Normalize); keys are
// string-coerced so numeric-vs-string drift cannot produce false mismatches.
func ValidateNewRows(before, after dataframe.DataFrame, scope access.Scope, workingUnit int) (dataframe.DataFrame, error) {
	beforeKeys := keySet(before)
	afterRowKeys := rowKeys(after)

	isNew := make([]bool, after.Nrow())
	anyNew := false
	for i, k := range afterRowKeys {
		if _, existed := beforeKeys[k]; !existed {
			isNew[i] = true
			anyNew = true
		}
	}

	// Required fields, checked before anything is stamped. One invalid new
	// row rejects the whole batch.
	if anyNew {
		for i, neu := range isNew {
			if !neu {
				continue
			}
			for _, col := range schema.RequiredOnNew {
				if isBlank(cellRecord(after, col, i)) {
					return after, rejected("all fields of a new row must be filled")
				}
			}
		}
		after = stampNewMilestones(after, isNew)
	}

	if !scope.Admin {
		units := make(map[int]struct{})
		raw, present := columnRecords(after, schema.UnitCol)
		if !present {
			return after, rejected("there are rows without a UO set")
		}
		for _, r := range raw {
			unit, ok := ParseUnitCode(r)
			if !ok {
				return after, rejected("there are rows without a UO set")
			}
			units[unit] = struct{}{}
		}
		for unit := range units {
			if !scope.Allows(unit) {
				return after, rejected("you may only view or edit your authorized UO(s)")
			}
		}
		if workingUnit > 0 {
			for unit := range units {
				if unit != workingUnit {
					return after, rejected("rows must stay in UO %d", workingUnit)
				}
			}
		}
	}

	return after, nil
}

// rowKeys string-coerces the composite key of every row.
func rowKeys(df dataframe.DataFrame) []string {
	nrow := df.Nrow()
	parts := make([][]string, len(schema.KeyCols))
	for j, col := range schema.KeyCols {
		recs, present := columnRecords(df, col)
		if !present {
			recs = make([]string, nrow)
		}
		parts[j] = recs
	}
	keys := make([]string, nrow)
	for i := 0; i < nrow; i++ {
		fields := make([]string, len(parts))
		for j := range parts {
			fields[j] = strings.TrimSpace(parts[j][i])
		}
		keys[i] = strings.Join(fields, "\x1f")
	}
	return keys
}

func keySet(df dataframe.DataFrame) map[string]struct{} {
	set := make(map[string]struct{}, df.Nrow())
	for _, k := range rowKeys(df) {
		set[k] = struct{}{}
	}
	return set
}

func cellRecord(df dataframe.DataFrame, col string, row int) string {
	recs, present := columnRecords(df, col)
	if !present || row >= len(recs) {
		return ""
	}
	return recs[row]
}

func isBlank(raw string) bool {
	s := strings.TrimSpace(raw)
	return s == "" || s == "NaN"
}

// stampNewMilestones overwrites novo_marco on inserted rows. The flag is
// derived here and nowhere else; whatever the editor supplied is discarded.
func stampNewMilestones(df dataframe.DataFrame, isNew []bool) dataframe.DataFrame {
	vals, present := columnRecords(df, schema.NewMilestoneCol)
	if !present {
		vals = make([]string, df.Nrow())
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		switch {
		case isNew[i]:
			out[i] = schema.NewMilestoneYes
		case isBlank(v):
			out[i] = schema.NewMilestoneNo
		default:
			out[i] = v
		}
	}
	return df.Mutate(series.New(out, series.String, schema.NewMilestoneCol))
}
