package constraints_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradualgo/typecore/internal/constraints"
	"github.com/gradualgo/typecore/internal/testsupport"
	"github.com/gradualgo/typecore/internal/types"
)

func newOwnedTypeVar(scope ...interface{}) *types.TypeVar {
	return &types.TypeVar{Name: "T", ScopeID: types.NewScopeID()}
}

// TestSolverWidening exercises spec.md §8 scenario 1: assign(T, int) then
// assign(T, str) in covariant context with no declared bound should widen
// the lower bound to int | str.
func TestSolverWidening(t *testing.T) {
	ev := testsupport.New()
	tv := newOwnedTypeVar()
	tracker := constraints.NewTracker(tv.ScopeID)

	ok, err := constraints.Assign(ev, tv, types.ClassType{Name: "int"}, 0, tracker, 0)
	require.Nil(t, err)
	require.True(t, ok)

	ok, err = constraints.Assign(ev, tv, types.ClassType{Name: "str"}, 0, tracker, 0)
	require.Nil(t, err)
	require.True(t, ok)

	bounds := tracker.GetBounds(tv)
	require.NotNil(t, bounds)
	assert.Equal(t, "int | str", bounds.Lower.String())
}

// TestConstrainedTVRejection exercises spec.md §8 scenario 2.
func TestConstrainedTVRejection(t *testing.T) {
	ev := testsupport.New()
	tv := newOwnedTypeVar()
	tv.Constraints = []types.Type{types.ClassType{Name: "str"}, types.ClassType{Name: "bytes"}}
	tracker := constraints.NewTracker(tv.ScopeID)

	ok, err := constraints.Assign(ev, tv, types.ClassType{Name: "int"}, 0, tracker, 0)
	assert.False(t, ok)
	assert.NotNil(t, err)
	assert.Nil(t, tracker.GetBounds(tv))
}

// TestConstrainedTVUnionRejected exercises spec.md §8 scenario 3: a union of
// two differently-matching constraints is rejected.
func TestConstrainedTVUnionRejected(t *testing.T) {
	ev := testsupport.New()
	tv := newOwnedTypeVar()
	tv.Constraints = []types.Type{types.ClassType{Name: "str"}, types.ClassType{Name: "bytes"}}
	tracker := constraints.NewTracker(tv.ScopeID)

	union := types.UnionOf(types.ClassType{Name: "str"}, types.ClassType{Name: "bytes"})
	ok, _ := constraints.Assign(ev, tv, union, 0, tracker, 0)
	assert.False(t, ok)
}

// TestAnyAbsorption exercises spec.md §8 invariant 3.
func TestAnyAbsorption(t *testing.T) {
	ev := testsupport.New()
	tv := newOwnedTypeVar()
	tracker := constraints.NewTracker(tv.ScopeID)

	ok, err := constraints.Assign(ev, tv, types.Any(), 0, tracker, 0)
	require.True(t, ok)
	require.Nil(t, err)
	assert.Nil(t, tracker.GetBounds(tv))
}

// TestNeverBottom exercises spec.md §8 invariant 2.
func TestNeverBottom(t *testing.T) {
	ev := testsupport.New()
	tv := newOwnedTypeVar()
	tracker := constraints.NewTracker(tv.ScopeID)

	ok, _ := constraints.Assign(ev, tv, types.Never(), 0, tracker, 0)
	assert.True(t, ok)
	assert.Nil(t, tracker.GetBounds(tv))
}

// TestLiteralStrippingIdempotence exercises spec.md §8 invariant 4.
func TestLiteralStrippingIdempotence(t *testing.T) {
	ev := testsupport.New()
	tv := newOwnedTypeVar()
	tracker := constraints.NewTracker(tv.ScopeID)

	lit := types.ClassType{Name: "int", Literal: &types.LiteralValue{Kind: "int", Int: types.FromInt64(5)}}
	ok, err := constraints.Assign(ev, tv, lit, 0, tracker, 0)
	require.True(t, ok)
	require.Nil(t, err)

	bounds := tracker.GetBounds(tv)
	require.NotNil(t, bounds.LowerNoLiterals)

	upperTV := newOwnedTypeVar()
	upperTracker := constraints.NewTracker(upperTV.ScopeID)
	ok2, _ := constraints.Assign(ev, upperTV, bounds.LowerNoLiterals, 0, upperTracker, 0)
	assert.True(t, ok2)
}

// TestUnionCap exercises spec.md §8 invariant 5: widening many distinct
// classes never exceeds MaxUnionSubtypes.
func TestUnionCap(t *testing.T) {
	ev := testsupport.New()
	tv := newOwnedTypeVar()
	tracker := constraints.NewTracker(tv.ScopeID)

	for i := 0; i < types.MaxUnionSubtypes+10; i++ {
		name := "C" + string(rune('a'+(i%26))) + string(rune('A'+((i/26)%26)))
		ok, _ := constraints.Assign(ev, tv, types.ClassType{Name: name}, 0, tracker, 0)
		require.True(t, ok)
	}
	bounds := tracker.GetBounds(tv)
	members := types.Subtypes(bounds.Lower)
	assert.LessOrEqual(t, len(members), types.MaxUnionSubtypes)
}

// TestAssignabilityReflexivity exercises spec.md §8 invariant 1 at the FakeEvaluator level.
func TestAssignabilityReflexivity(t *testing.T) {
	ev := testsupport.New()
	intCls := types.ClassType{Name: "int"}
	assert.True(t, ev.AssignType(intCls, intCls, nil, nil, nil, 0, 0))
}

