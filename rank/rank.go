// Package rank orders partial-schedule states for layer-width pruning: a
// width-bounded compiler keeps the best-ranked states exactly and merges
// the rest, so the ranking decides which partial schedules are worth
// keeping exact.
package rank

import "github.com/vcoppe/rcpsp/rcpsp"

// Ranking orders rcpsp.State values by search depth: a state further
// along in the schedule is preferred over one that has committed fewer
// jobs, since it carries more information for the same layer width.
type Ranking struct{}

// Compare returns a negative number if a ranks below b, zero if equal,
// and a positive number if a ranks above b.
func (Ranking) Compare(a, b *rcpsp.State) int {
	return a.Depth - b.Depth
}
