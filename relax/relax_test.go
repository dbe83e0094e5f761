package relax_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcoppe/rcpsp/bitset"
	"github.com/vcoppe/rcpsp/profile"
	"github.com/vcoppe/rcpsp/rcpsp"
	"github.com/vcoppe/rcpsp/relax"
)

func exactState(nJobs int, done []int, earliest []int64, depth int, profiles ...*profile.ConsumptionProfile) *rcpsp.State {
	d := bitset.New(nJobs)
	for _, i := range done {
		d.Set(i)
	}
	return &rcpsp.State{
		Done:     d,
		Profile:  profiles,
		Earliest: earliest,
		Depth:    depth,
	}
}

func TestMergeDoneIsIntersection(t *testing.T) {
	a := exactState(3, []int{0, 1}, []int64{0, 0, 5}, 2, profile.New(2))
	b := exactState(3, []int{0, 2}, []int64{0, 7, 0}, 2, profile.New(2))

	merged := relax.Merge([]*rcpsp.State{a, b})

	assert.True(t, merged.Done.Test(0))
	assert.False(t, merged.Done.Test(1))
	assert.False(t, merged.Done.Test(2))
}

func TestMergeMaybeDoneIsUnionMinusDone(t *testing.T) {
	a := exactState(3, []int{0, 1}, []int64{0, 0, 5}, 2, profile.New(2))
	b := exactState(3, []int{0, 2}, []int64{0, 7, 0}, 2, profile.New(2))

	merged := relax.Merge([]*rcpsp.State{a, b})

	require.NotNil(t, merged.MaybeDone)
	assert.False(t, merged.MaybeDone.Test(0)) // certain in both, so not "maybe"
	assert.True(t, merged.MaybeDone.Test(1))  // done in a, not in b
	assert.True(t, merged.MaybeDone.Test(2))  // done in b, not in a
}

func TestMergeEarliestIsMinOverNotDoneInputs(t *testing.T) {
	a := exactState(3, []int{0}, []int64{0, 3, 9}, 1, profile.New(2))
	b := exactState(3, []int{0}, []int64{0, 6, 2}, 1, profile.New(2))

	merged := relax.Merge([]*rcpsp.State{a, b})

	assert.Equal(t, int64(3), merged.Earliest[1])
	assert.Equal(t, int64(2), merged.Earliest[2])
}

func TestMergeEarliestSkipsJobDoneInThatInput(t *testing.T) {
	// job 1 is done in a (so a's earliest[1] must not count), but only
	// pending in b; the merged minimum must come from b alone.
	a := exactState(2, []int{0, 1}, []int64{0, 0}, 2, profile.New(2))
	b := exactState(2, []int{0}, []int64{0, 100}, 1, profile.New(2))

	merged := relax.Merge([]*rcpsp.State{a, b})

	assert.Equal(t, int64(100), merged.Earliest[1])
}

func TestMergeDepthIsMax(t *testing.T) {
	a := exactState(2, []int{0}, []int64{0, 0}, 1, profile.New(2))
	b := exactState(2, []int{0, 1}, []int64{0, 0}, 2, profile.New(2))

	merged := relax.Merge([]*rcpsp.State{a, b})

	assert.Equal(t, 2, merged.Depth)
}

func TestMergeProfileIsPointwiseMax(t *testing.T) {
	pa := profile.New(5)
	pa.AddConsumption(0, 4, 3) // [0,4) rem=2, [4,inf) rem=5

	pb := profile.New(5)
	pb.AddConsumption(0, 4, 1) // [0,4) rem=4, [4,inf) rem=5

	a := exactState(1, nil, []int64{0}, 0, pa)
	b := exactState(1, nil, []int64{0}, 0, pb)

	merged := relax.Merge([]*rcpsp.State{a, b})

	rem, err := merged.Profile[0].RemCapacityAt(2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), rem) // max(2,4) — optimistic, the less-constrained input wins
}

func TestRelaxReturnsCostUnchanged(t *testing.T) {
	r := &relax.Relaxation{}
	assert.Equal(t, int64(-7), r.Relax(nil, nil, nil, 0, -7))
}
