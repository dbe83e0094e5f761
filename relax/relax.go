// Package relax implements the optimistic merge operator a width-bounded
// decision-diagram compiler uses to collapse several states in the same
// layer into one relaxed state, and the identity edge-cost adjustment
// that merge requires.
package relax

import (
	"math"

	"github.com/vcoppe/rcpsp/bitset"
	"github.com/vcoppe/rcpsp/profile"
	"github.com/vcoppe/rcpsp/rcpsp"
)

// Relaxation merges a layer of rcpsp.State values into one optimistic
// over-approximation and reports the (identity) cost adjustment for an
// edge that now lands on a merged node instead of its original
// destination.
type Relaxation struct {
	Instance *rcpsp.Instance
}

// New returns a Relaxation bound to inst.
func New(inst *rcpsp.Instance) *Relaxation {
	return &Relaxation{Instance: inst}
}

// Merge collapses states into a single relaxed state:
//
//   - Done is the intersection of every input's Done — a job is certainly
//     scheduled in the merged state only if it was scheduled in all of them.
//   - MaybeDone is the union of every input's Done and MaybeDone, minus
//     Done — a job might be scheduled if any input thought so, but a job
//     already certain stays out of the "maybe" set.
//   - Profile is the per-resource pointwise-maximum merge across inputs
//     (profile.Merge), the cheapest consumption consistent with every input.
//   - Earliest[i] is the minimum, over inputs where job i is not done, of
//     that input's Earliest[i]; a job done in every input keeps the
//     sentinel (it never gets scheduled again, so its estimate is moot).
//   - Depth is the maximum depth among inputs.
//
// Merge panics if states is empty; a decision-diagram compiler never
// merges an empty layer.
func Merge(states []*rcpsp.State) *rcpsp.State {
	if len(states) == 0 {
		panic("relax: Merge requires at least one state")
	}

	nJobs := states[0].Done.Len()
	nResources := len(states[0].Profile)

	done := states[0].Done.Clone()
	for _, s := range states[1:] {
		done.Intersect(s.Done)
	}

	maybeDone := bitsetUnionOfDoneAndMaybe(states, nJobs)
	maybeDone.Subtract(done)

	earliest := make([]int64, nJobs)
	for i := range earliest {
		earliest[i] = math.MaxInt64
	}
	for _, s := range states {
		for i := 0; i < nJobs; i++ {
			if s.Done.Test(i) {
				continue
			}
			if s.Earliest[i] < earliest[i] {
				earliest[i] = s.Earliest[i]
			}
		}
	}

	mergedProfile := make([]*profile.ConsumptionProfile, nResources)
	for r := 0; r < nResources; r++ {
		mergedProfile[r] = states[0].Profile[r].Clone()
	}
	for _, s := range states[1:] {
		for r := 0; r < nResources; r++ {
			mergedProfile[r] = profile.Merge(mergedProfile[r], s.Profile[r])
		}
	}

	depth := 0
	for _, s := range states {
		if s.Depth > depth {
			depth = s.Depth
		}
	}

	return &rcpsp.State{
		Done:      done,
		MaybeDone: maybeDone,
		Profile:   mergedProfile,
		Earliest:  earliest,
		Depth:     depth,
	}
}

func bitsetUnionOfDoneAndMaybe(states []*rcpsp.State, nJobs int) *bitset.BitSet {
	out := bitset.New(nJobs)
	for _, s := range states {
		out.Union(s.Done)
		if s.MaybeDone != nil {
			out.Union(s.MaybeDone)
		}
	}
	return out
}

// Relax reports the edge cost a decision-diagram compiler should record
// when a transition that originally produced dest instead lands on
// merged: the RCPSP relaxation never tightens or loosens an edge cost on
// merge, so it returns cost unchanged.
func (r *Relaxation) Relax(src, dest, merged *rcpsp.State, job int, cost int64) int64 {
	return cost
}
