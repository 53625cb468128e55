package dataclass_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradualgo/typecore/internal/dataclass"
	"github.com/gradualgo/typecore/internal/diagnostics"
	"github.com/gradualgo/typecore/internal/testsupport"
	"github.com/gradualgo/typecore/internal/types"
)

func decl(name string, typ types.Type, shape dataclass.FieldShape) dataclass.FieldDecl {
	return dataclass.FieldDecl{Name: name, Type: typ, Shape: shape}
}

func TestSynthesizeOrdersPositionalThenDefaulted(t *testing.T) {
	ev := testsupport.New()
	in := dataclass.ClassInput{
		Name: "Point",
		LocalFields: []dataclass.FieldDecl{
			decl("x", types.ClassType{Name: "int"}, dataclass.ShapeBareAnnotation),
			decl("y", types.ClassType{Name: "int"}, dataclass.ShapeBareAnnotation),
			decl("label", types.ClassType{Name: "str"}, dataclass.ShapeAnnotatedWithDefault),
		},
	}

	result, err := dataclass.Synthesize(ev, in)
	require.Nil(t, err)
	require.NotNil(t, result.Init)
	require.Len(t, result.Init.Params, 4) // self, x, y, label
	assert.Equal(t, "x", result.Init.Params[1].Name)
	assert.Equal(t, "y", result.Init.Params[2].Name)
	assert.Equal(t, "label", result.Init.Params[3].Name)
	assert.True(t, result.Init.Params[3].HasDefault)
	assert.Equal(t, []string{"x", "y", "label"}, result.MatchArgs)
}

// TestSynthesizeFieldOrderingDiagnostic exercises spec.md §8 invariant 6: a
// non-default field after a defaulted one is rejected.
func TestSynthesizeFieldOrderingDiagnostic(t *testing.T) {
	ev := testsupport.New()
	in := dataclass.ClassInput{
		Name: "Bad",
		LocalFields: []dataclass.FieldDecl{
			decl("a", types.ClassType{Name: "int"}, dataclass.ShapeAnnotatedWithDefault),
			decl("b", types.ClassType{Name: "int"}, dataclass.ShapeBareAnnotation),
		},
	}

	_, err := dataclass.Synthesize(ev, in)
	require.NotNil(t, err)
	assert.Equal(t, diagnostics.CodeFieldOrdering, err.Code)
}

func TestSynthesizeKWOnlySentinelSplitsParams(t *testing.T) {
	ev := testsupport.New()
	in := dataclass.ClassInput{
		Name: "Config",
		LocalFields: []dataclass.FieldDecl{
			decl("name", types.ClassType{Name: "str"}, dataclass.ShapeBareAnnotation),
			{KWOnlySentinel: true},
			decl("debug", types.ClassType{Name: "bool"}, dataclass.ShapeAnnotatedWithDefault),
		},
	}

	result, err := dataclass.Synthesize(ev, in)
	require.Nil(t, err)
	var sawMarker bool
	for _, p := range result.Init.Params {
		if p.Category == types.ParamKeywordOnlyMarker {
			sawMarker = true
		}
	}
	assert.True(t, sawMarker)
}

func TestSynthesizeClassVarExcludedUnlessFinal(t *testing.T) {
	ev := testsupport.New()
	in := dataclass.ClassInput{
		Name: "Counter",
		LocalFields: []dataclass.FieldDecl{
			decl("count", types.ClassType{Name: "int"}, dataclass.ShapeBareAnnotation),
			{Name: "total_created", Type: types.ClassType{Name: "int"}, Shape: dataclass.ShapeAnnotatedWithDefault, IsClassVar: true},
			{Name: "VERSION", Type: types.ClassType{Name: "int"}, Shape: dataclass.ShapeAnnotatedWithDefault, IsClassVar: true, IsFinal: true},
		},
	}

	result, err := dataclass.Synthesize(ev, in)
	require.Nil(t, err)
	var names []string
	for _, f := range result.Fields {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "count")
	assert.Contains(t, names, "VERSION")
	assert.NotContains(t, names, "total_created")
}

func TestSynthesizeFrozenInheritanceDiagnostic(t *testing.T) {
	ev := testsupport.New()
	in := dataclass.ClassInput{
		Name:              "FrozenChild",
		Frozen:            true,
		DirectBasesFrozen: []bool{false},
		LocalFields: []dataclass.FieldDecl{
			decl("x", types.ClassType{Name: "int"}, dataclass.ShapeBareAnnotation),
		},
	}

	_, err := dataclass.Synthesize(ev, in)
	require.NotNil(t, err)
	assert.Equal(t, diagnostics.CodeFrozenInheritance, err.Code)
}

func TestSynthesizeFrozenPropagatesFromBase(t *testing.T) {
	ev := testsupport.New()
	in := dataclass.ClassInput{
		Name:              "Child",
		Frozen:            false,
		DirectBasesFrozen: []bool{true},
		LocalFields: []dataclass.FieldDecl{
			decl("x", types.ClassType{Name: "int"}, dataclass.ShapeBareAnnotation),
		},
	}

	result, err := dataclass.Synthesize(ev, in)
	require.Nil(t, err)
	assert.True(t, result.EffectiveFrozen)
}

func TestSynthesizeUnknownAncestorFallsBackToGradualConstructor(t *testing.T) {
	ev := testsupport.New()
	in := dataclass.ClassInput{
		Name: "Derived",
		Ancestors: []dataclass.AncestorFields{
			{Unknown: true},
		},
		LocalFields: []dataclass.FieldDecl{
			decl("x", types.ClassType{Name: "int"}, dataclass.ShapeBareAnnotation),
		},
	}

	result, err := dataclass.Synthesize(ev, in)
	require.Nil(t, err)
	assert.True(t, result.Init.Flags.GradualCallable == false) // still a plain (*args, **kwargs) signature, not the flag form
	require.Len(t, result.Init.Params, 3)
}

func TestSynthesizeEqAndOrderingGenerated(t *testing.T) {
	ev := testsupport.New()
	in := dataclass.ClassInput{
		Name:          "Money",
		GenerateEq:    true,
		GenerateOrder: true,
		LocalFields: []dataclass.FieldDecl{
			decl("cents", types.ClassType{Name: "int"}, dataclass.ShapeBareAnnotation),
		},
	}

	result, err := dataclass.Synthesize(ev, in)
	require.Nil(t, err)
	require.NotNil(t, result.Eq)
	require.Len(t, result.Ordering, 4)
}

func TestSynthesizeSlotsFromLocalFields(t *testing.T) {
	ev := testsupport.New()
	in := dataclass.ClassInput{
		Name:          "Slim",
		GenerateSlots: true,
		LocalFields: []dataclass.FieldDecl{
			decl("a", types.ClassType{Name: "int"}, dataclass.ShapeBareAnnotation),
			decl("b", types.ClassType{Name: "int"}, dataclass.ShapeBareAnnotation),
		},
	}

	result, err := dataclass.Synthesize(ev, in)
	require.Nil(t, err)
	assert.Equal(t, []string{"a", "b"}, result.Slots)
}

// TestSynthesizeSlotsAlreadyDeclaredDiagnostic exercises spec.md §4.E's
// "emit a diagnostic if slots were already declared" case: synthesis still
// succeeds (no synthesized slots are added on top of the explicit ones) but
// surfaces a non-fatal CodeSlotsAlreadyDeclared diagnostic.
func TestSynthesizeSlotsAlreadyDeclaredDiagnostic(t *testing.T) {
	ev := testsupport.New()
	in := dataclass.ClassInput{
		Name:          "Slim",
		GenerateSlots: true,
		ExplicitSlots: true,
		LocalFields: []dataclass.FieldDecl{
			decl("a", types.ClassType{Name: "int"}, dataclass.ShapeBareAnnotation),
		},
	}

	result, err := dataclass.Synthesize(ev, in)
	require.Nil(t, err)
	assert.Nil(t, result.Slots)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, diagnostics.CodeSlotsAlreadyDeclared, result.Diagnostics[0].Code)
}

func TestSynthesizeInheritsAncestorFields(t *testing.T) {
	ev := testsupport.New()
	in := dataclass.ClassInput{
		Name: "Child",
		Ancestors: []dataclass.AncestorFields{
			{Fields: []dataclass.Field{{Name: "base_id", Type: types.ClassType{Name: "int"}, Init: true}}},
		},
		LocalFields: []dataclass.FieldDecl{
			decl("extra", types.ClassType{Name: "str"}, dataclass.ShapeBareAnnotation),
		},
	}

	result, err := dataclass.Synthesize(ev, in)
	require.Nil(t, err)
	require.Len(t, result.Init.Params, 3) // self, base_id, extra
	assert.Equal(t, "base_id", result.Init.Params[1].Name)
	assert.Equal(t, "extra", result.Init.Params[2].Name)
}

// TestSynthesizeFieldTableMergesAncestorAndLocal uses go-cmp rather than
// testify's Equal because a mismatch here should print a structural diff of
// the whole field table, not just "not equal".
func TestSynthesizeFieldTableMergesAncestorAndLocal(t *testing.T) {
	ev := testsupport.New()
	in := dataclass.ClassInput{
		Name: "Employee",
		Ancestors: []dataclass.AncestorFields{
			{Fields: []dataclass.Field{{Name: "id", Alias: "id", Type: types.ClassType{Name: "int"}, Init: true}}},
		},
		LocalFields: []dataclass.FieldDecl{
			decl("name", types.ClassType{Name: "str"}, dataclass.ShapeBareAnnotation),
		},
	}

	result, err := dataclass.Synthesize(ev, in)
	require.Nil(t, err)

	want := []dataclass.Field{
		{Name: "id", Alias: "id", Type: types.ClassType{Name: "int"}, Init: true},
		{Name: "name", Alias: "name", Type: types.ClassType{Name: "str"}, Init: true},
	}
	if diff := cmp.Diff(want, result.Fields); diff != "" {
		t.Fatalf("field table mismatch (-want +got):\n%s", diff)
	}
}

func TestSynthesizeFieldConstructorAliasAndKWOnly(t *testing.T) {
	ev := testsupport.New()
	in := dataclass.ClassInput{
		Name: "Widget",
		LocalFields: []dataclass.FieldDecl{
			{
				Name:  "internal_name",
				Type:  types.ClassType{Name: "str"},
				Shape: dataclass.ShapeBareAnnotation,
				FieldConstructorCall: &dataclass.FieldConstructorArgs{
					KWOnlySet: true,
					KWOnly:    true,
					Alias:     "name",
				},
			},
		},
	}

	result, err := dataclass.Synthesize(ev, in)
	require.Nil(t, err)
	require.Len(t, result.Fields, 1)
	assert.Equal(t, "name", result.Fields[0].Alias)
	assert.True(t, result.Fields[0].KWOnly)
}
