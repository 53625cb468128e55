package decorators_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradualgo/typecore/internal/dataclass"
	"github.com/gradualgo/typecore/internal/decorators"
	"github.com/gradualgo/typecore/internal/diagnostics"
	"github.com/gradualgo/typecore/internal/testsupport"
	"github.com/gradualgo/typecore/internal/types"
)

func plainFunc() types.FunctionType {
	return types.FunctionType{
		Params: []types.Param{
			{Category: types.ParamPositional, Name: "self"},
			{Category: types.ParamPositional, Name: "x", Type: types.ClassType{Name: "int"}},
		},
		ReturnType: types.ClassType{Name: "int"},
	}
}

func TestApplyFunctionDecoratorsAbstractAndFinal(t *testing.T) {
	ev := testsupport.New()
	result, err := decorators.ApplyFunctionDecorators(ev, plainFunc(), []decorators.Decorator{
		{Kind: decorators.KindAbstractMethod},
		{Kind: decorators.KindFinal},
	})
	require.Nil(t, err)
	require.NotNil(t, result.Function)
	assert.True(t, result.Function.Flags.Abstract)
	assert.True(t, result.Function.Flags.Final)
}

func TestApplyFunctionDecoratorsOutermostLast(t *testing.T) {
	ev := testsupport.New()
	// Written top-to-bottom as @staticmethod / @override, override (the
	// innermost, closest to the def) must apply first; staticmethod applies
	// last but neither mutates the other's flag so order is only observable
	// via the combination surviving.
	result, err := decorators.ApplyFunctionDecorators(ev, plainFunc(), []decorators.Decorator{
		{Kind: decorators.KindStaticMethod},
		{Kind: decorators.KindOverride},
	})
	require.Nil(t, err)
	assert.True(t, result.Function.Flags.StaticMethod)
	assert.True(t, result.Function.Flags.Overridden)
}

func TestApplyFunctionDecoratorsStaticMethodIdempotent(t *testing.T) {
	ev := testsupport.New()
	fn := plainFunc()
	fn.Flags.StaticMethod = true
	result, err := decorators.ApplyFunctionDecorators(ev, fn, []decorators.Decorator{
		{Kind: decorators.KindStaticMethod},
	})
	require.Nil(t, err)
	assert.True(t, result.Function.Flags.StaticMethod)
}

func TestApplyFunctionDecoratorsPropertyGetter(t *testing.T) {
	ev := testsupport.New()
	getter := plainFunc()

	result, err := decorators.ApplyFunctionDecorators(ev, getter, []decorators.Decorator{
		{Kind: decorators.KindProperty},
	})
	require.Nil(t, err)
	require.NotNil(t, result.Property)
	assert.Equal(t, types.ClassType{Name: "int"}, result.Property.Type())
}

func TestApplyFunctionDecoratorsPropertySetterWithoutExistingPropertyErrors(t *testing.T) {
	ev := testsupport.New()
	setter := plainFunc()
	setter.ReturnType = types.None()

	_, err := decorators.ApplyFunctionDecorators(ev, setter, []decorators.Decorator{
		{Kind: decorators.KindPropertySetter},
	})
	require.NotNil(t, err)
}

func TestApplyFunctionDecoratorsPropertySetterChained(t *testing.T) {
	ev := testsupport.New()
	getter := plainFunc()
	afterGetter, err := decorators.ApplyFunctionDecorators(ev, getter, []decorators.Decorator{
		{Kind: decorators.KindProperty},
	})
	require.Nil(t, err)
	require.NotNil(t, afterGetter.Property)

	// `@x.setter` applied to the setter's own def: the host resolved `x` to
	// the getter-built property object and threads it in as
	// Decorator.ExistingProperty.
	setter := plainFunc()
	setter.ReturnType = types.None()
	afterSetter, err := decorators.ApplyFunctionDecorators(ev, setter, []decorators.Decorator{
		{Kind: decorators.KindPropertySetter, ExistingProperty: afterGetter.Property},
	})
	require.Nil(t, err)
	require.NotNil(t, afterSetter.Property)
	assert.NotNil(t, afterSetter.Property.Getter)
	assert.NotNil(t, afterSetter.Property.Setter)
}

func TestApplyFunctionDecoratorsOverload(t *testing.T) {
	ev := testsupport.New()
	result, err := decorators.ApplyFunctionDecorators(ev, plainFunc(), []decorators.Decorator{
		{Kind: decorators.KindOverload},
	})
	require.Nil(t, err)
	assert.True(t, result.Function.Flags.Overloaded)
}

func TestApplyFunctionDecoratorsDeprecated(t *testing.T) {
	ev := testsupport.New()
	result, err := decorators.ApplyFunctionDecorators(ev, plainFunc(), []decorators.Decorator{
		{Kind: decorators.KindDeprecated, DeprecatedMessage: "use new_func instead"},
	})
	require.Nil(t, err)
	assert.Equal(t, "use new_func instead", result.Function.Deprecated)
}

func TestApplyFunctionDecoratorsGenericCallableIdentityHeuristic(t *testing.T) {
	ev := testsupport.New()
	// An unannotated, gradual-callable decorator whose call result is
	// Unknown preserves the input function's type unchanged (spec.md §4.F).
	result, err := decorators.ApplyFunctionDecorators(ev, plainFunc(), []decorators.Decorator{
		{Kind: decorators.KindUnknownCallable, CalleeType: types.FunctionType{Flags: types.FunctionFlags{GradualCallable: true}}},
	})
	require.Nil(t, err)
	require.NotNil(t, result.Function)
	assert.Equal(t, "int", result.Function.ReturnType.String())
}

func TestOverloadAccumulatorOrderAndPropagation(t *testing.T) {
	acc := decorators.NewOverloadAccumulator()
	o1 := plainFunc()
	o1.Flags.Overloaded = true
	o2 := plainFunc()
	o2.Flags.Overloaded = true
	impl := plainFunc()
	impl.Docstring = "the real one"
	impl.Deprecated = "soon"

	acc.Add("f", o1)
	acc.Add("f", o2)
	acc.Add("f", impl)

	assert.Equal(t, []string{"f"}, acc.Symbols())

	out, err := acc.Finalize("f")
	require.Nil(t, err)
	require.Len(t, out.Overloads, 2)
	assert.Equal(t, "the real one", out.Overloads[0].Docstring)
	assert.Equal(t, "soon", out.Overloads[1].Deprecated)
	assert.NotNil(t, out.Implementation)
}

func TestOverloadAccumulatorInconsistentAbstractDiagnostic(t *testing.T) {
	acc := decorators.NewOverloadAccumulator()
	o1 := plainFunc()
	o1.Flags.Overloaded = true
	o1.Flags.Abstract = true
	o2 := plainFunc()
	o2.Flags.Overloaded = true

	acc.Add("g", o1)
	acc.Add("g", o2)

	_, err := acc.Finalize("g")
	require.NotNil(t, err)
	assert.Equal(t, diagnostics.CodeInconsistentOverload, err.Code)
}

func TestOverloadAccumulatorNoOverloadsReturnsNil(t *testing.T) {
	acc := decorators.NewOverloadAccumulator()
	acc.Add("h", plainFunc())
	out, err := acc.Finalize("h")
	assert.Nil(t, out)
	assert.Nil(t, err)
}

func TestApplyClassDecoratorsDataclass(t *testing.T) {
	ev := testsupport.New()
	cls := types.ClassType{Name: "Point"}
	fields := dataclass.ClassInput{
		Name: "Point",
		LocalFields: []dataclass.FieldDecl{
			{Name: "x", Type: types.ClassType{Name: "int"}, Shape: dataclass.ShapeBareAnnotation},
			{Name: "y", Type: types.ClassType{Name: "int"}, Shape: dataclass.ShapeBareAnnotation},
		},
	}

	result, err := decorators.ApplyClassDecorators(ev, cls, []decorators.Decorator{
		{Kind: decorators.KindDataclass, ClassArgs: dataclass.CallArgs{
			Order: dataclass.StaticBool{Set: true, Value: true},
		}},
	}, fields)

	require.Nil(t, err)
	require.NotNil(t, result.Synthesis)
	assert.True(t, result.Class.Flags.DataClass)
	assert.Len(t, result.Synthesis.Ordering, 4)
	require.NotNil(t, result.Synthesis.Eq)
}

// TestApplyClassDecoratorsSurfacesSlotsAlreadyDeclaredDiagnostic exercises
// the non-fatal CodeSlotsAlreadyDeclared diagnostic dataclass.Synthesize
// attaches to its result: the class decorator pipeline is responsible for
// routing it through host.Evaluator.AddDiagnostic rather than dropping it.
func TestApplyClassDecoratorsSurfacesSlotsAlreadyDeclaredDiagnostic(t *testing.T) {
	ev := testsupport.New()
	cls := types.ClassType{Name: "Slim"}
	fields := dataclass.ClassInput{
		Name:          "Slim",
		GenerateSlots: true,
		ExplicitSlots: true,
		LocalFields: []dataclass.FieldDecl{
			{Name: "a", Type: types.ClassType{Name: "int"}, Shape: dataclass.ShapeBareAnnotation},
		},
	}

	_, err := decorators.ApplyClassDecorators(ev, cls, []decorators.Decorator{
		{Kind: decorators.KindDataclass},
	}, fields)

	require.Nil(t, err)
	require.Len(t, ev.Diagnostics, 1)
	assert.Equal(t, string(diagnostics.CodeSlotsAlreadyDeclared), ev.Diagnostics[0].Rule)
}

func TestApplyClassDecoratorsFrozenFromCallSite(t *testing.T) {
	ev := testsupport.New()
	cls := types.ClassType{Name: "Money"}
	fields := dataclass.ClassInput{
		Name: "Money",
		LocalFields: []dataclass.FieldDecl{
			{Name: "cents", Type: types.ClassType{Name: "int"}, Shape: dataclass.ShapeBareAnnotation},
		},
	}

	result, err := decorators.ApplyClassDecorators(ev, cls, []decorators.Decorator{
		{Kind: decorators.KindDataclass, ClassArgs: dataclass.CallArgs{
			Frozen: dataclass.StaticBool{Set: true, Value: true},
		}},
	}, fields)

	require.Nil(t, err)
	assert.True(t, result.Class.Flags.Frozen)
	assert.True(t, result.Synthesis.EffectiveFrozen)
}

func TestApplyClassDecoratorsCustomTransformDecoratorSuppliesDefaults(t *testing.T) {
	ev := testsupport.New()
	cls := types.ClassType{Name: "Model"}
	fields := dataclass.ClassInput{
		Name: "Model",
		LocalFields: []dataclass.FieldDecl{
			{Name: "id", Type: types.ClassType{Name: "int"}, Shape: dataclass.ShapeBareAnnotation},
		},
	}

	// `@my_dataclass` where my_dataclass was itself defined as
	// `@dataclass_transform(order_default=True) def my_dataclass(cls): ...`:
	// its callee type carries the configured behaviors, which the bare call
	// (no order= argument of its own) inherits.
	behaviors := dataclass.ValidateDataClassTransform(
		dataclass.StaticBool{}, dataclass.StaticBool{},
		dataclass.StaticBool{Set: true, Value: true}, nil,
	)
	calleeType := types.FunctionType{TransformBehaviors: &behaviors}

	result, err := decorators.ApplyClassDecorators(ev, cls, []decorators.Decorator{
		{Kind: decorators.KindDataclass, CalleeType: calleeType},
	}, fields)

	require.Nil(t, err)
	require.NotNil(t, result.Synthesis)
	assert.Len(t, result.Synthesis.Ordering, 4)
}

func TestApplyClassDecoratorsKWOnlyDefaultFromTransform(t *testing.T) {
	ev := testsupport.New()
	cls := types.ClassType{Name: "Config"}
	fields := dataclass.ClassInput{
		Name: "Config",
		LocalFields: []dataclass.FieldDecl{
			{Name: "name", Type: types.ClassType{Name: "str"}, Shape: dataclass.ShapeBareAnnotation},
		},
	}

	behaviors := dataclass.ValidateDataClassTransform(
		dataclass.StaticBool{Set: true, Value: true}, dataclass.StaticBool{}, dataclass.StaticBool{}, nil,
	)
	calleeType := types.FunctionType{TransformBehaviors: &behaviors}

	result, err := decorators.ApplyClassDecorators(ev, cls, []decorators.Decorator{
		{Kind: decorators.KindDataclass, CalleeType: calleeType},
	}, fields)

	require.Nil(t, err)
	require.NotNil(t, result.Synthesis)
	require.Len(t, result.Synthesis.Init.Params, 3) // self, '*' marker, name
	assert.Equal(t, types.ParamKeywordOnlyMarker, result.Synthesis.Init.Params[1].Category)
	assert.Equal(t, "name", result.Synthesis.Init.Params[2].Name)
}

func TestDecoratorInfoForFunctionSummarizesFlags(t *testing.T) {
	info := decorators.DecoratorInfoForFunction([]decorators.Decorator{
		{Kind: decorators.KindAbstractMethod},
		{Kind: decorators.KindDeprecated, DeprecatedMessage: "gone soon"},
		{Kind: decorators.KindStaticMethod},
	}, true)

	assert.True(t, info.Flags.Abstract)
	assert.True(t, info.Flags.StaticMethod)
	assert.Equal(t, "gone soon", info.DeprecationMessage)
}

func TestDecoratorInfoForFunctionStaticMethodIgnoredOutsideClass(t *testing.T) {
	info := decorators.DecoratorInfoForFunction([]decorators.Decorator{
		{Kind: decorators.KindStaticMethod},
	}, false)
	assert.False(t, info.Flags.StaticMethod)
}
