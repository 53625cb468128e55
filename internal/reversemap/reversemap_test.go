package reversemap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradualgo/typecore/internal/constraints"
	"github.com/gradualgo/typecore/internal/reversemap"
	"github.com/gradualgo/typecore/internal/testsupport"
	"github.com/gradualgo/typecore/internal/types"
)

func newGenericListLike(name string, variance types.Variance) (types.ClassType, *types.TypeVar) {
	scope := types.NewScopeID()
	tv := &types.TypeVar{Name: "T", ScopeID: scope}
	return types.ClassType{
		Name:          name,
		TypeParams:    []*types.TypeVar{tv},
		ParamVariance: []types.Variance{variance},
	}, tv
}

// TestMapAnyPopulatesEveryParam exercises spec.md §4.C's first bullet.
func TestMapAnyPopulatesEveryParam(t *testing.T) {
	ev := testsupport.New()
	derived, tv := newGenericListLike("List", types.Covariant)
	scope := types.NewScopeID()
	tracker := constraints.NewTracker(scope)

	ok := reversemap.Map(ev, derived, types.Any(), tracker, 0)
	require.True(t, ok)

	bounds := tracker.GetBounds(tv)
	require.NotNil(t, bounds)
	assert.True(t, types.IsAny(bounds.Lower))
}

// TestMapSameClassFastPath exercises spec.md §4.C's same-generic-class fast path.
func TestMapSameClassFastPath(t *testing.T) {
	ev := testsupport.New()
	derived, tv := newGenericListLike("List", types.Covariant)
	scope := types.NewScopeID()
	tracker := constraints.NewTracker(scope)

	expected := derived.WithTypeArgs([]types.Type{types.ClassType{Name: "int"}})
	ok := reversemap.Map(ev, derived, expected, tracker, 0)
	require.True(t, ok)

	bounds := tracker.GetBounds(tv)
	require.NotNil(t, bounds)
	assert.Equal(t, "int", bounds.Upper.String())
}

// TestMapGenericNoArgsFallback exercises spec.md §4.C's "generic class, no
// arguments" fallback to a normal assignability check.
func TestMapGenericNoArgsFallback(t *testing.T) {
	ev := testsupport.New()
	derived, _ := newGenericListLike("List", types.Covariant)
	scope := types.NewScopeID()
	tracker := constraints.NewTracker(scope)

	expected := types.ClassType{Name: "List"}
	ok := reversemap.Map(ev, derived, expected, tracker, 0)
	assert.True(t, ok)
}

// TestMapGeneralDifferentClass exercises the general case: derived (MyList)
// is a distinct class from the expected base (Sequence), related through a
// matching MRO, and its single type parameter should resolve to the
// expected's matching argument.
func TestMapGeneralDifferentClass(t *testing.T) {
	ev := testsupport.New()
	scope := types.NewScopeID()
	tv := &types.TypeVar{Name: "T", ScopeID: scope}
	derived := types.ClassType{
		Name:          "MyList",
		MRO:           []string{"MyList", "Sequence", "object"},
		TypeParams:    []*types.TypeVar{tv},
		ParamVariance: []types.Variance{types.Covariant},
	}

	expected := types.ClassType{
		Name:     "Sequence",
		TypeArgs: []types.Type{types.ClassType{Name: "int"}},
	}

	tracker := constraints.NewTracker(scope)
	ok := reversemap.Map(ev, derived, expected, tracker, 0)
	require.True(t, ok)

	bounds := tracker.GetBounds(tv)
	require.NotNil(t, bounds)
}

// TestMapReverseIdempotence exercises spec.md §8 scenario 7: re-running the
// mapper on the arguments it already produced yields the same arguments.
func TestMapReverseIdempotence(t *testing.T) {
	ev := testsupport.New()
	derived, tv := newGenericListLike("List", types.Covariant)
	scope := types.NewScopeID()
	tracker := constraints.NewTracker(scope)

	expected := derived.WithTypeArgs([]types.Type{types.ClassType{Name: "int"}})
	require.True(t, reversemap.Map(ev, derived, expected, tracker, 0))
	firstBounds := tracker.GetBounds(tv)
	require.NotNil(t, firstBounds)

	specialized := derived.WithTypeArgs([]types.Type{firstBounds.Upper})
	tracker2 := constraints.NewTracker(scope)
	require.True(t, reversemap.Map(ev, derived, specialized, tracker2, 0))
	secondBounds := tracker2.GetBounds(tv)
	require.NotNil(t, secondBounds)

	assert.Equal(t, firstBounds.Upper.String(), secondBounds.Upper.String())
}
