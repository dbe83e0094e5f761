package rcpsp_test

import (
	"github.com/vcoppe/rcpsp/bitset"
	"github.com/vcoppe/rcpsp/rcpsp"
)

// job describes one job's static data for buildInstance, mirroring the
// line shape of the on-disk instance format but in-memory for tests.
type job struct {
	duration    int64
	consumption []int64
	successors  []int // 0-based job indices
}

// buildInstance wires precedence bitsets from each job's successor
// list and constructs an rcpsp.Instance, the way instance.Parse does
// for the text format.
func buildInstance(nResources int, capacity []int64, jobs []job) (*rcpsp.Instance, error) {
	n := len(jobs)
	pred := make([]*bitset.BitSet, n)
	succ := make([]*bitset.BitSet, n)
	for i := range jobs {
		pred[i] = bitset.New(n)
		succ[i] = bitset.New(n)
	}
	duration := make([]int64, n)
	consumption := make([][]int64, n)
	for i, j := range jobs {
		duration[i] = j.duration
		consumption[i] = j.consumption
		for _, s := range j.successors {
			succ[i].Set(s)
			pred[s].Set(i)
		}
	}

	return rcpsp.NewInstance(duration, consumption, pred, succ, capacity)
}
