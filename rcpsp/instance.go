// Package rcpsp implements the Resource-Constrained Project Scheduling
// Problem's data model and transition semantics: a read-only Instance,
// the partial-schedule State it admits, and the Problem wrapper exposing
// the four operations an exact decision-diagram search driver needs
// (initial state, per-layer variable, feasible-decision enumeration, and
// the combined transition/cost). See the profile package for the
// per-resource consumption timeline these operations manipulate.
package rcpsp

import (
	"errors"

	"github.com/vcoppe/rcpsp/bitset"
)

// Sentinel errors for Instance construction and validation.
var (
	// ErrTooFewJobs indicates n_jobs < 2: an instance needs at least a source and a sink.
	ErrTooFewJobs = errors.New("rcpsp: instance must have at least 2 jobs")

	// ErrNegativeCapacity indicates a resource capacity below zero.
	ErrNegativeCapacity = errors.New("rcpsp: negative resource capacity")

	// ErrConsumptionExceedsCapacity indicates a job's consumption of some resource exceeds that resource's capacity.
	ErrConsumptionExceedsCapacity = errors.New("rcpsp: job consumption exceeds resource capacity")

	// ErrPrecedenceCycle indicates the precedence graph is not a DAG.
	ErrPrecedenceCycle = errors.New("rcpsp: precedence graph has a cycle")
)

// Instance is the read-only input to the problem: job durations and
// resource consumption, the precedence DAG (as per-job predecessor and
// successor bitsets), and per-resource capacity.
type Instance struct {
	NJobs       int
	NResources  int
	Duration    []int64     // Duration[i]
	Consumption [][]int64   // Consumption[i][r]
	Predecessor []*bitset.BitSet // Predecessor[i]: jobs that must finish before i
	Successor   []*bitset.BitSet // Successor[i]: jobs that must start after i
	Capacity    []int64     // Capacity[r]

	topoOrder []int // computed once at construction
}

// NewInstance validates and wraps the given data into an Instance,
// precomputing a topological order of jobs over the precedence DAG.
func NewInstance(duration []int64, consumption [][]int64, predecessor, successor []*bitset.BitSet, capacity []int64) (*Instance, error) {
	nJobs := len(duration)
	if nJobs < 2 {
		return nil, ErrTooFewJobs
	}
	nResources := len(capacity)

	for _, c := range capacity {
		if c < 0 {
			return nil, ErrNegativeCapacity
		}
	}
	for i := 0; i < nJobs; i++ {
		for r := 0; r < nResources; r++ {
			if consumption[i][r] < 0 || consumption[i][r] > capacity[r] {
				return nil, ErrConsumptionExceedsCapacity
			}
		}
	}

	inst := &Instance{
		NJobs:       nJobs,
		NResources:  nResources,
		Duration:    duration,
		Consumption: consumption,
		Predecessor: predecessor,
		Successor:   successor,
		Capacity:    capacity,
	}

	order, err := topoSort(inst)
	if err != nil {
		return nil, err
	}
	inst.topoOrder = order

	return inst, nil
}

// TopoOrder returns the precomputed topological order of jobs (a
// permutation of [0, NJobs) such that every predecessor precedes every
// one of its successors).
func (inst *Instance) TopoOrder() []int {
	return inst.topoOrder
}

// topoSort computes a topological order via Kahn's algorithm, mirroring
// the queue-based approach of the original Rcpsp::toposort: each job's
// remaining-predecessor count is decremented as predecessors are
// emitted, and a job is queued the instant that count reaches zero.
func topoSort(inst *Instance) ([]int, error) {
	remaining := make([]int, inst.NJobs)
	for i := 0; i < inst.NJobs; i++ {
		remaining[i] = inst.Predecessor[i].Count()
	}

	queue := make([]int, 0, inst.NJobs)
	for i := 0; i < inst.NJobs; i++ {
		if remaining[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]int, 0, inst.NJobs)
	for len(queue) > 0 {
		i := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		order = append(order, i)

		for _, j := range inst.Successor[i].Ones() {
			remaining[j]--
			if remaining[j] == 0 {
				queue = append(queue, j)
			}
		}
	}

	if len(order) != inst.NJobs {
		return nil, ErrPrecedenceCycle
	}

	return order, nil
}
