// Package decorators implements the decorator application pipeline
// (spec.md §4.F): it resolves the effect of built-in, property,
// data-class-transform, overload, and deprecation decorators on function and
// class types. It is grounded on the sibling funxy analyzer's flag
// accumulation style for function declarations
// (internal/analyzer/declarations_functions.go builds up a FunctionType's
// flags field by field as it walks a declaration) and on internal/ext's
// option-function pattern (internal/ext/builder.go's BuilderOption) for
// composing independent decorator effects onto one value, generalized here
// from Go struct options to Python-style decorator expressions.
package decorators

import (
	"github.com/gradualgo/typecore/internal/dataclass"
	"github.com/gradualgo/typecore/internal/diagnostics"
	"github.com/gradualgo/typecore/internal/host"
	"github.com/gradualgo/typecore/internal/types"
)

// Kind identifies what a single decorator expression resolves to, once the
// host has matched it against a fully-qualified name (spec.md §4.F
// "Recognize built-in decorators by fully-qualified name"). Name resolution
// itself is the host's job (non-goal: name binding); the core only acts on
// the already-classified Kind.
type Kind int

const (
	// KindUnknownCallable is any decorator the core doesn't special-case: a
	// plain callable applied via the "generic callable decorators" rule.
	KindUnknownCallable Kind = iota
	KindAbstractMethod
	KindFinal
	KindOverride
	KindTypeCheckOnly
	KindNoTypeCheck
	KindOverload
	KindStaticMethod
	KindClassMethod
	KindProperty
	KindPropertySetter
	KindPropertyDeleter
	KindDeprecated
	KindDataclassTransform
	KindDataclass
)

// Decorator is one decorator expression, already resolved by the host down
// to the shape this package needs (lexing, parsing, and name binding are
// non-goals, spec.md §1).
type Decorator struct {
	Kind Kind

	// CalleeType is the decorator expression's own type, consulted for the
	// generic "callable decorator" case (spec.md §4.F) and for
	// KindUnknownCallable's identity heuristic.
	CalleeType types.Type
	Node       host.Node

	// DeprecatedMessage is set when Kind == KindDeprecated.
	DeprecatedMessage string

	// Transform is set when Kind == KindDataclassTransform.
	Transform TransformArgs

	// ClassArgs is set when Kind == KindDataclass: the decorator call site's
	// own keyword arguments (spec.md §4.F "Class decorators").
	ClassArgs dataclass.CallArgs

	// ExistingProperty is set when Kind is KindPropertySetter or
	// KindPropertyDeleter: the host resolved the decorator expression
	// (e.g. `x.setter`) back to the property object `x` already holds, since
	// that lookup is name binding (non-goal, spec.md §1) the core doesn't do
	// itself.
	ExistingProperty *Property
}

// TransformArgs is a dataclass_transform decorator's keyword arguments
// (spec.md §4.F, §6 "Configuration options").
type TransformArgs struct {
	KWOnlyDefault    dataclass.StaticBool
	EqDefault        dataclass.StaticBool
	OrderDefault     dataclass.StaticBool
	FieldDescriptors []types.Type
}

// FunctionResult is the outcome of applying a chain of function decorators.
// At most one of Function, Overloaded, or Property is non-nil once the
// chain completes; a property-family decorator (@property, @x.setter,
// @x.deleter) produces a Property instead of a plain Function.
type FunctionResult struct {
	Function   *types.FunctionType
	Overloaded *types.OverloadedType
	Property   *Property
}

// Property is a synthesized property object (spec.md §4.F "Property-family
// decorators"). Host-side symbol table attachment of the resulting object
// back onto the class is outside this package's scope (non-goal: name
// binding); this package only computes its shape.
type Property struct {
	Getter  *types.FunctionType
	Setter  *types.FunctionType
	Deleter *types.FunctionType
}

// Type is the type an attribute access through this property observes: the
// getter's declared return type.
func (p *Property) Type() types.Type {
	if p.Getter != nil {
		return p.Getter.ReturnType
	}
	return types.Unknown()
}

// ApplyFunctionDecorators implements spec.md §4.F's function-decorator
// paragraph end to end: "Function decorators are applied outermost-last."
// decorators is given in written (top-to-bottom, outer-to-inner) source
// order; the outermost one must see the result of every inner one, so this
// applies the list back to front.
func ApplyFunctionDecorators(ev host.Evaluator, fn types.FunctionType, decorators []Decorator) (FunctionResult, *diagnostics.DiagnosticError) {
	result := FunctionResult{Function: &fn}
	for i := len(decorators) - 1; i >= 0; i-- {
		next, err := applyOneFunctionDecorator(ev, result, decorators[i])
		if err != nil {
			return FunctionResult{}, err
		}
		result = next
	}
	return result, nil
}

func applyOneFunctionDecorator(ev host.Evaluator, in FunctionResult, d Decorator) (FunctionResult, *diagnostics.DiagnosticError) {
	switch d.Kind {
	case KindAbstractMethod:
		return withFunction(in, d, func(f types.FunctionType) types.FunctionType {
			f.Flags.Abstract = true
			return f
		})
	case KindFinal:
		return withFunction(in, d, func(f types.FunctionType) types.FunctionType {
			f.Flags.Final = true
			return f
		})
	case KindOverride:
		return withFunction(in, d, func(f types.FunctionType) types.FunctionType {
			f.Flags.Overridden = true
			return f
		})
	case KindTypeCheckOnly:
		return withFunction(in, d, func(f types.FunctionType) types.FunctionType {
			f.Flags.TypeCheckOnly = true
			return f
		})
	case KindNoTypeCheck:
		return withFunction(in, d, func(f types.FunctionType) types.FunctionType {
			f.Flags.NoTypeCheck = true
			return f
		})
	case KindDeprecated:
		return withFunction(in, d, func(f types.FunctionType) types.FunctionType {
			f.Deprecated = d.DeprecatedMessage
			return f
		})
	case KindOverload:
		// "marks the signature as overloaded and returns it unchanged; the
		// collected sequence ... is assembled into an Overloaded type when the
		// symbol's definition list is finalized" (spec.md §4.F). The host's
		// OverloadAccumulator (see overloads.go) does the finalizing; this
		// decorator only stamps the flag.
		return withFunction(in, d, func(f types.FunctionType) types.FunctionType {
			f.Flags.Overloaded = true
			return f
		})
	case KindStaticMethod:
		return withFunction(in, d, func(f types.FunctionType) types.FunctionType {
			if f.Flags.StaticMethod {
				return f
			}
			f.Flags.StaticMethod = true
			return f
		})
	case KindClassMethod:
		return withFunction(in, d, func(f types.FunctionType) types.FunctionType {
			if f.Flags.ClassMethod {
				return f
			}
			f.Flags.ClassMethod = true
			return f
		})
	case KindProperty:
		if in.Function == nil {
			return FunctionResult{}, diagnostics.Internal(diagnostics.CodeAssignabilityMismatch, "a plain function", "property decorator target")
		}
		getter := *in.Function
		return FunctionResult{Property: &Property{Getter: &getter}}, nil
	case KindPropertySetter:
		existing := in.Property
		if existing == nil {
			existing = d.ExistingProperty
		}
		if existing == nil {
			return FunctionResult{}, diagnostics.Internal(diagnostics.CodeAssignabilityMismatch, "an existing property", "setter decorator target")
		}
		prop := *existing
		if in.Function != nil {
			setter := *in.Function
			prop.Setter = &setter
		}
		return FunctionResult{Property: &prop}, nil
	case KindPropertyDeleter:
		existing := in.Property
		if existing == nil {
			existing = d.ExistingProperty
		}
		if existing == nil {
			return FunctionResult{}, diagnostics.Internal(diagnostics.CodeAssignabilityMismatch, "an existing property", "deleter decorator target")
		}
		prop := *existing
		if in.Function != nil {
			deleter := *in.Function
			prop.Deleter = &deleter
		}
		return FunctionResult{Property: &prop}, nil
	case KindDataclassTransform:
		return withFunction(in, d, func(f types.FunctionType) types.FunctionType {
			behaviors := dataclass.ValidateDataClassTransform(d.Transform.KWOnlyDefault, d.Transform.EqDefault, d.Transform.OrderDefault, d.Transform.FieldDescriptors)
			f.TransformBehaviors = &behaviors
			return f
		})
	default: // KindUnknownCallable
		return applyGenericCallableDecorator(ev, in, d)
	}
}

func withFunction(in FunctionResult, d Decorator, f func(types.FunctionType) types.FunctionType) (FunctionResult, *diagnostics.DiagnosticError) {
	if in.Function == nil {
		return FunctionResult{}, diagnostics.Internal(diagnostics.CodeAssignabilityMismatch, "a function result", "decorator target")
	}
	updated := f(*in.Function)
	return FunctionResult{Function: &updated}, nil
}

// applyGenericCallableDecorator implements spec.md §4.F's "Generic
// 'callable' decorators" paragraph: invoke the host to type-check the
// decorator call, and fall back to the identity heuristic when the
// decorator is itself unannotated and its return type is partly Unknown.
func applyGenericCallableDecorator(ev host.Evaluator, in FunctionResult, d Decorator) (FunctionResult, *diagnostics.DiagnosticError) {
	if in.Function == nil {
		return in, nil
	}
	callResult := ev.ValidateCallArgs(d.Node, []types.Type{*in.Function}, d.CalleeType, nil, false, nil)
	if !callResult.Ok {
		return in, nil
	}
	if isUnannotatedIdentityDecorator(d.CalleeType, callResult.ReturnType) {
		return in, nil
	}
	if fn, ok := callResult.ReturnType.(types.FunctionType); ok {
		return FunctionResult{Function: &fn}, nil
	}
	// A decorator call that doesn't return a function (e.g. a class-shaped
	// wrapper) leaves the input result unchanged: the original function
	// signature and the flags accumulated so far are kept, since there is no
	// FunctionType to carry the new shape. The host is responsible for any
	// further symbol-table bookkeeping.
	return in, nil
}

// isUnannotatedIdentityDecorator implements the heuristic spec.md §4.F
// names: "if the decorator is completely unannotated and its return type is
// partly Unknown, preserve the input function's type".
func isUnannotatedIdentityDecorator(calleeType, returnType types.Type) bool {
	if calleeType == nil {
		return true
	}
	fn, ok := calleeType.(types.FunctionType)
	if !ok {
		if types.IsAnyOrUnknown(calleeType) {
			return true
		}
		return false
	}
	if !fn.Flags.GradualCallable {
		return false
	}
	return types.IsUnknown(returnType) || containsUnknown(returnType)
}

func containsUnknown(t types.Type) bool {
	if types.IsUnknown(t) {
		return true
	}
	u, ok := t.(types.UnionType)
	if !ok {
		return false
	}
	for _, m := range u.Members {
		if types.IsUnknown(m) {
			return true
		}
	}
	return false
}

// Info is decoratorInfoForFunction's result (spec.md §6): a quick summary of
// the flags and deprecation message a decorator chain contributes, without
// needing to apply them against a concrete FunctionType. Useful to the host
// before the function's own signature has finished being built.
type Info struct {
	Flags              types.FunctionFlags
	DeprecationMessage string
}

// DecoratorInfoForFunction implements the core-exposed
// decoratorInfoForFunction(function_node, in_class) operation: it scans a
// decorator list for the built-in flags and deprecation message without
// fully applying them, mirroring the lightweight pre-pass the teacher's
// declarations_functions.go runs before building a function's full type.
// inClass only affects KindStaticMethod/KindClassMethod, which are no-ops
// outside a class body (spec.md §4.F doesn't special-case this further, but
// a bare-module function cannot be made a class/static method).
func DecoratorInfoForFunction(decorators []Decorator, inClass bool) Info {
	var info Info
	for _, d := range decorators {
		switch d.Kind {
		case KindAbstractMethod:
			info.Flags.Abstract = true
		case KindFinal:
			info.Flags.Final = true
		case KindOverride:
			info.Flags.Overridden = true
		case KindTypeCheckOnly:
			info.Flags.TypeCheckOnly = true
		case KindNoTypeCheck:
			info.Flags.NoTypeCheck = true
		case KindOverload:
			info.Flags.Overloaded = true
		case KindDeprecated:
			info.DeprecationMessage = d.DeprecatedMessage
		case KindStaticMethod:
			if inClass {
				info.Flags.StaticMethod = true
			}
		case KindClassMethod:
			if inClass {
				info.Flags.ClassMethod = true
			}
		}
	}
	return info
}
