package rcpsp

import (
	"github.com/vcoppe/rcpsp/bitset"
	"github.com/vcoppe/rcpsp/profile"
)

// Decision selects the job to schedule next at a given depth.
type Decision struct {
	Depth int
	Job   int
}

// Problem wraps an Instance with the four operations an exact
// decision-diagram search driver needs: the initial state, the
// variable to branch on at a given depth, feasible-decision
// enumeration, and the combined transition.
type Problem struct {
	Instance *Instance
	initial  *State
}

// NewProblem builds the initial state (one full-capacity profile per
// resource, empty Done, zero Earliest) and propagates it once against
// the precedence DAG.
func NewProblem(inst *Instance) *Problem {
	profiles := make([]*profile.ConsumptionProfile, inst.NResources)
	for r := 0; r < inst.NResources; r++ {
		profiles[r] = profile.New(inst.Capacity[r])
	}

	initial := &State{
		Done:     bitset.New(inst.NJobs),
		Profile:  profiles,
		Earliest: make([]int64, inst.NJobs),
		Depth:    0,
	}
	initial.Propagate(inst.topoOrder, inst.Successor, inst.Duration, inst.Consumption)

	return &Problem{Instance: inst, initial: initial}
}

// NbVariables returns the number of decision variables (one per job).
func (p *Problem) NbVariables() int {
	return p.Instance.NJobs
}

// InitialState returns a fresh copy of the problem's initial state.
func (p *Problem) InitialState() *State {
	return p.initial.Clone()
}

// InitialValue is the negative of the sink's earliest start. The
// driver maximizes this value; at a terminal state it equals the
// negated makespan exactly when the sink job itself has zero
// duration, the conventional shape for the last job in an instance
// (every real unit of work precedes it). A caller whose sink carries
// its own duration must add Instance.Duration[NJobs-1] back in when
// reporting the makespan.
func (p *Problem) InitialValue() int64 {
	return -p.initial.Earliest[p.Instance.NJobs-1]
}

// NextVariable returns the variable to branch on at the given depth,
// or (0, false) once every job has been assigned.
func (p *Problem) NextVariable(depth int) (int, bool) {
	if depth < p.Instance.NJobs {
		return depth, true
	}

	return 0, false
}

// ForEachInDomain invokes f once for every job index that is a feasible
// decision at state s: a not-yet-done job whose precedence is
// satisfied. On an exact state (|Done| == Depth) this requires
// Predecessor(i) subset of Done; on a relaxed state it requires
// Predecessor(i) subset of Done union MaybeDone, since the true set of
// already-scheduled predecessors lies somewhere between the two and
// using the larger set keeps the relaxation from excluding a feasible
// decision.
func (p *Problem) ForEachInDomain(s *State, f func(job int)) {
	exact := s.Done.Count() == s.Depth

	var scheduled *bitset.BitSet
	if exact {
		scheduled = s.Done
	} else if s.MaybeDone != nil {
		scheduled = bitset.Union2(s.Done, s.MaybeDone)
	} else {
		scheduled = s.Done
	}

	for i := 0; i < p.Instance.NJobs; i++ {
		if s.Done.Test(i) {
			continue
		}
		if p.Instance.Predecessor[i].SubsetOf(scheduled) {
			f(i)
		}
	}
}

// CombinedTransition applies decision job to state s: clones s,
// schedules job, inserts its consumption into the profile, re-
// propagates earliest times, computes the edge cost (negated sink-
// earliest delta, so the search maximizes), clears the newly-scheduled
// job's own earliest estimate, and forward-shifts the clone's profiles
// to keep them compact.
func (p *Problem) CombinedTransition(s *State, job int) (*State, int64) {
	successor := s.Clone()
	successor.Depth++
	successor.Done.Set(job)

	successor.AddConsumption(s.Earliest[job], p.Instance.Duration[job], p.Instance.Consumption[job])
	successor.Propagate(p.Instance.topoOrder, p.Instance.Successor, p.Instance.Duration, p.Instance.Consumption)

	sink := p.Instance.NJobs - 1
	delta := successor.Earliest[sink] - s.Earliest[sink]

	successor.Earliest[job] = 0
	successor.ForwardToEarliest()

	return successor, -delta
}

// TerminalValue reports whether s is terminal (Depth == NJobs). At that
// point the edge costs accumulated from InitialValue telescope down to
// -s.Earliest[sink]; see InitialValue for the zero-sink-duration caveat.
func (p *Problem) TerminalValue(s *State) bool {
	return s.Depth == p.Instance.NJobs
}
