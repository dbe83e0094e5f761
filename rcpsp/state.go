package rcpsp

import (
	"fmt"

	"github.com/vcoppe/rcpsp/bitset"
	"github.com/vcoppe/rcpsp/profile"
)

// State is a partial schedule: which jobs are (certainly, and possibly)
// scheduled, the current per-resource consumption profile, a per-job
// earliest-start estimate, and the search depth. MaybeDone is nil for
// an exact state produced by CombinedTransition; it is populated only
// by relax.Merge, which builds it disjoint from Done, and is carried
// over by transitions out of a relaxed state. Such a transition adds the
// scheduled job to Done without removing it from MaybeDone.
type State struct {
	Done      *bitset.BitSet
	MaybeDone *bitset.BitSet // nil for exact states
	Profile   []*profile.ConsumptionProfile
	Earliest  []int64
	Depth     int
}

// Clone returns a deep copy of s, safe to mutate independently.
func (s *State) Clone() *State {
	out := &State{
		Done:     s.Done.Clone(),
		Profile:  make([]*profile.ConsumptionProfile, len(s.Profile)),
		Earliest: make([]int64, len(s.Earliest)),
		Depth:    s.Depth,
	}
	if s.MaybeDone != nil {
		out.MaybeDone = s.MaybeDone.Clone()
	}
	for r, p := range s.Profile {
		out.Profile[r] = p.Clone()
	}
	copy(out.Earliest, s.Earliest)

	return out
}

// IsExact reports whether s carries no relaxation overlay.
func (s *State) IsExact() bool {
	return s.MaybeDone == nil
}

// Propagate refines Earliest in topological order: for every not-done
// job i, it tightens Earliest[i] via the profile's earliest-placement
// query, then — unless i is only maybe-done — pushes i's completion
// time forward onto its not-done successors. The maybe-done skip is
// load-bearing: a job that is possibly already scheduled must not
// contribute its duration a second time to its successors.
func (s *State) Propagate(topoOrder []int, successors []*bitset.BitSet, duration []int64, consumption [][]int64) {
	for _, i := range topoOrder {
		if s.Done.Test(i) {
			continue
		}

		s.Earliest[i] = profile.EarliestPlacement(s.Profile, s.Earliest[i], duration[i], consumption[i])

		if s.MaybeDone != nil && s.MaybeDone.Test(i) {
			continue
		}

		for _, j := range successors[i].Ones() {
			if s.Done.Test(j) {
				continue
			}
			candidate := s.Earliest[i] + duration[i]
			if candidate > s.Earliest[j] {
				s.Earliest[j] = candidate
			}
		}
	}
}

// AddConsumption applies profile.ConsumptionProfile.AddConsumption to
// every resource the job actually consumes.
func (s *State) AddConsumption(start, duration int64, consumption []int64) {
	if duration <= 0 {
		return
	}
	for r, c := range consumption {
		if c > 0 {
			s.Profile[r].AddConsumption(start, duration, c)
		}
	}
}

// ForwardToEarliest slides every profile's time origin forward by the
// minimum Earliest among not-done jobs, keeping profiles from growing
// without bound as the search progresses.
func (s *State) ForwardToEarliest() {
	var minEarliest int64
	found := false
	for i, e := range s.Earliest {
		if s.Done.Test(i) {
			continue
		}
		if !found || e < minEarliest {
			minEarliest = e
			found = true
		}
	}

	if !found || minEarliest <= 0 {
		return
	}

	for _, p := range s.Profile {
		p.ForwardBy(minEarliest)
	}
	for i := range s.Earliest {
		if !s.Done.Test(i) {
			s.Earliest[i] -= minEarliest
		}
	}
}

// MergeConsumptionProfile replaces each of s's profiles with its
// pointwise-maximum merge against the corresponding profile of other.
func (s *State) MergeConsumptionProfile(other []*profile.ConsumptionProfile) {
	for r := range s.Profile {
		s.Profile[r] = profile.Merge(s.Profile[r], other[r])
	}
}

// String renders Done/MaybeDone and per-resource profiles for debug
// logging.
func (s *State) String() string {
	out := fmt.Sprintf("done: %v\n", s.Done.Ones())
	if s.MaybeDone != nil {
		out += fmt.Sprintf("maybe_done: %v\n", s.MaybeDone.Ones())
	}
	for r, p := range s.Profile {
		out += fmt.Sprintf("%d: %s\n", r, p.String())
	}

	return out
}
