// Package solve provides a width-bounded layered decision-diagram
// compiler over an rcpsp.Problem: a single top-down pass that expands
// one layer of jobs at a time, fans work out across a worker pool, and
// falls back to relax.Merge whenever a layer grows past its width
// budget. It is a minimal reference driver — a production system would
// replace it with a full branch-and-bound frontier search — but it is
// enough to compile an instance end to end and report whether the
// result is provably optimal.
package solve

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vcoppe/rcpsp/rank"
	"github.com/vcoppe/rcpsp/rcpsp"
	"github.com/vcoppe/rcpsp/relax"
)

// ErrInvalidWidth indicates a non-positive layer width.
var ErrInvalidWidth = errors.New("solve: width must be positive")

// Options configures a single compilation run.
type Options struct {
	Width     int           // max exact nodes kept per layer before merging
	TimeLimit time.Duration // 0 disables the deadline
	Threads   int           // worker-pool size; 0 defaults to 1
	Metrics   *Metrics      // nil disables metrics recording
}

// Result reports the outcome of a compilation. A time budget running out
// mid-compilation is not an error: Solve returns the best incumbent found
// so far with Optimal set to false, the same way a merge-forced run does.
type Result struct {
	BestValue int64 // the core's raw objective (see rcpsp.Problem.InitialValue)
	Makespan  int64 // BestValue negated, with the sink's own duration added back
	Optimal   bool  // true iff no layer ever required a merge and the time budget was not exceeded
}

// node pairs a reached state with the accumulated objective value of
// the best path found to it so far.
type node struct {
	state *rcpsp.State
	value int64
}

// engine holds all compilation data and policy in a dedicated struct:
// explicit fields instead of closures over loop variables, and a sparse
// deadline check instead of checking the clock on every node.
type engine struct {
	problem *rcpsp.Problem
	relax   *relax.Relaxation
	rank    rank.Ranking

	width   int
	threads int

	useDeadline bool
	deadline    time.Time
	steps       int

	metrics *Metrics

	anyMerge bool
}

// deadlineExceeded performs a rare deadline check (every 256 node
// events) so the check itself never dominates the hot loop.
func (e *engine) deadlineExceeded() bool {
	e.steps++
	if !e.useDeadline || e.steps&255 != 0 {
		return false
	}

	return time.Now().After(e.deadline)
}

// Solve compiles p under opts and returns the best terminal value found.
func Solve(ctx context.Context, p *rcpsp.Problem, rlx *relax.Relaxation, opts Options) (Result, error) {
	if opts.Width <= 0 {
		return Result{}, ErrInvalidWidth
	}
	threads := opts.Threads
	if threads <= 0 {
		threads = 1
	}

	e := &engine{
		problem: p,
		relax:   rlx,
		width:   opts.Width,
		threads: threads,
		metrics: opts.Metrics,
	}
	if opts.TimeLimit > 0 {
		e.useDeadline = true
		e.deadline = time.Now().Add(opts.TimeLimit)
	}

	layer := []node{{state: p.InitialState(), value: p.InitialValue()}}

	depth := 0
	for {
		d, ok := p.NextVariable(depth)
		if !ok {
			break
		}
		_ = d // NextVariable degenerates to the loop's own depth counter in this model

		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		// A budget that has already run out before this layer starts is
		// reported the same way as one that runs out mid-layer: the last
		// fully-compiled layer stands as the best incumbent, not an error.
		if e.deadlineExceeded() {
			return e.finalize(layer, false), nil
		}

		next, timedOut, err := e.expandLayer(ctx, layer)
		if err != nil {
			return Result{}, err
		}
		if timedOut {
			return e.finalize(layer, false), nil
		}

		before := len(next)
		layer = e.restrictToWidth(next)

		log.Debug().Int("depth", depth).Int("expanded", before).Int("kept", len(layer)).Bool("merged", before > e.width).Msg("layer compiled")

		if e.metrics != nil {
			e.metrics.layersCompiled.Inc()
		}

		depth++
	}

	// The loop only exits here once every job has been scheduled: layer is
	// a terminal, fully-compiled result, so no further deadline check
	// applies — a correct, already-optimal answer must not be discarded
	// just because the clock happened to cross the deadline while
	// assembling it.
	return e.finalize(layer, !e.anyMerge), nil
}

// finalize reduces the current layer to its best value and reports the
// makespan, correcting for a sink job that carries its own duration (see
// rcpsp.Problem.InitialValue).
func (e *engine) finalize(layer []node, optimal bool) Result {
	best := layer[0].value
	for _, n := range layer[1:] {
		if n.value > best {
			best = n.value
		}
	}

	sink := e.problem.Instance.NJobs - 1
	makespan := -best + e.problem.Instance.Duration[sink]

	if e.metrics != nil {
		e.metrics.lastMakespan.Set(float64(makespan))
	}

	return Result{BestValue: best, Makespan: makespan, Optimal: optimal}
}

// expandLayer applies every feasible decision to every node in layer,
// fanning the (state, job) pairs out across a bounded worker pool. If the
// deadline fires partway through, it waits for the already-dispatched
// goroutines to finish (so none are left running past this call) and
// reports timedOut instead of returning the partial layer: the caller
// falls back to the last fully-compiled layer rather than an incomplete
// one.
func (e *engine) expandLayer(ctx context.Context, layer []node) (result []node, timedOut bool, err error) {
	type work struct {
		parent node
		job    int
	}

	var items []work
	for _, n := range layer {
		e.problem.ForEachInDomain(n.state, func(j int) {
			items = append(items, work{parent: n, job: j})
		})
	}

	results := make([]node, len(items))
	sem := make(chan struct{}, e.threads)
	var wg sync.WaitGroup

	for i, it := range items {
		if e.deadlineExceeded() {
			timedOut = true
			break
		}
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, false, ctx.Err()
		default:
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, it work) {
			defer wg.Done()
			defer func() { <-sem }()

			successor, cost := e.problem.CombinedTransition(it.parent.state, it.job)
			results[i] = node{state: successor, value: it.parent.value + cost}
		}(i, it)
	}
	wg.Wait()

	if timedOut {
		return nil, true, nil
	}

	if e.metrics != nil {
		e.metrics.nodesExpanded.Add(float64(len(results)))
	}

	return results, false, nil
}

// restrictToWidth keeps the width-1 best-valued nodes exact and merges
// the remainder into a single relaxed node when the layer overflows, so
// the restricted layer holds exactly width nodes.
// Ties are broken by rank.Ranking, which in this model compares search
// depth — a no-op within a single layer, since every node in it shares
// the same depth, but meaningful once relaxed nodes of differing
// provenance coexist.
func (e *engine) restrictToWidth(layer []node) []node {
	if len(layer) <= e.width {
		return layer
	}

	sort.Slice(layer, func(i, j int) bool {
		if layer[i].value != layer[j].value {
			return layer[i].value > layer[j].value
		}
		return e.rank.Compare(layer[i].state, layer[j].state) > 0
	})

	kept := layer[:e.width-1]
	overflow := layer[e.width-1:]

	states := make([]*rcpsp.State, len(overflow))
	mergedValue := overflow[0].value
	for i, n := range overflow {
		states[i] = n.state
		if n.value > mergedValue {
			mergedValue = n.value
		}
	}

	merged := relax.Merge(states)
	e.anyMerge = true
	if e.metrics != nil {
		e.metrics.mergesPerformed.Inc()
	}

	return append(append([]node{}, kept...), node{state: merged, value: mergedValue})
}
