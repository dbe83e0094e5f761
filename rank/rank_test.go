package rank_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vcoppe/rcpsp/bitset"
	"github.com/vcoppe/rcpsp/rcpsp"
	"github.com/vcoppe/rcpsp/rank"
)

func stateAtDepth(depth int) *rcpsp.State {
	return &rcpsp.State{Done: bitset.New(1), Depth: depth}
}

func TestCompareOrdersByDepthAscending(t *testing.T) {
	r := rank.Ranking{}

	assert.Negative(t, r.Compare(stateAtDepth(1), stateAtDepth(3)))
	assert.Positive(t, r.Compare(stateAtDepth(5), stateAtDepth(2)))
	assert.Zero(t, r.Compare(stateAtDepth(4), stateAtDepth(4)))
}
