package priority

import (
	"sort"

	"github.com/PinjariAbdul/smart-task-analyser/internal/dag"
)

// Rank orders results, which must be in input order, by descending score.
// Ties go to the earlier due date, then the earlier position in the
// topological order, then the earlier input position, so the result is a
// single deterministic total order. The input slice is not modified.
func Rank(results []Result, order []string) []Result {
	pos := dag.Positions(order)
	idx := make([]int, len(results))
	for i := range idx {
		idx[i] = i
	}

	sort.Slice(idx, func(a, b int) bool {
		ra, rb := results[idx[a]], results[idx[b]]
		if ra.PriorityScore != rb.PriorityScore {
			return ra.PriorityScore > rb.PriorityScore
		}
		if !ra.DueDate.Equal(rb.DueDate.Time) {
			return ra.DueDate.Before(rb.DueDate)
		}
		if pa, pb := pos[ra.ID], pos[rb.ID]; pa != pb {
			return pa < pb
		}
		return idx[a] < idx[b]
	})

	ranked := make([]Result, len(results))
	for i, j := range idx {
		ranked[i] = results[j]
	}
	return ranked
}
