// Package testsupport provides a minimal, deterministic fake implementation
// of host.Evaluator for exercising the core's components in isolation, the
// same role the teacher's own test helpers (e.g. tests/functional_test.go
// building a throwaway binary) play for end-to-end checks — except here the
// "host" being faked is a Go interface, not a compiled program.
//
// It lives in its own package (rather than inside internal/host) so that
// internal/constraints can depend on internal/host without also pulling in
// a concrete Evaluator, avoiding an import cycle between the solver and its
// own test fixtures.
package testsupport

import (
	"fmt"

	"github.com/gradualgo/typecore/internal/constraints"
	"github.com/gradualgo/typecore/internal/diagnostics"
	"github.com/gradualgo/typecore/internal/host"
	"github.com/gradualgo/typecore/internal/types"
)

// FakeEvaluator implements host.Evaluator with a small, nominal-subtyping
// model: classes are assignable when they share a name or when the
// candidate supertype's name appears in the source's declared MRO. It is
// intentionally literal and unoptimized — it exists to drive tests, not to
// be a real checker.
type FakeEvaluator struct {
	Object types.Type

	// Diagnostics records every AddDiagnostic/AddError call this evaluator
	// has seen, in order, so tests can assert that a component actually
	// surfaced a non-fatal diagnostic rather than silently dropping it.
	Diagnostics []RecordedDiagnostic
}

// RecordedDiagnostic is one AddDiagnostic/AddError call captured by
// FakeEvaluator, for test assertions.
type RecordedDiagnostic struct {
	Rule    string
	Message string
	Node    host.Node
}

func New() *FakeEvaluator {
	return &FakeEvaluator{Object: types.ClassType{Name: "object"}}
}

func (f *FakeEvaluator) AssignType(dest, src types.Type, diag *diagnostics.DiagnosticError, destTracker, srcTracker host.Tracker, flags types.AssignFlags, depth int) bool {
	if depth > 200 {
		return true // recursion guard (spec.md §9): assume compatible.
	}
	tracker, _ := destTracker.(*constraints.Tracker)
	return f.isAssignable(dest, src, tracker, flags, depth)
}

// isAssignable is a recursive structural comparison. When tracker is
// non-nil and a nested destination TypeVar's scope belongs to it, the
// comparison is driven through constraints.Assign instead of the bare
// Bound-only check, so a nested type variable inside a class's type
// arguments gets its bounds recorded — the same tracker-threading the
// package doc promises real Evaluator implementations provide, needed for
// internal/reversemap's general case to be exercisable under test.
func (f *FakeEvaluator) isAssignable(dest, src types.Type, tracker *constraints.Tracker, flags types.AssignFlags, depth int) bool {
	if types.IsAnyOrUnknown(dest) || types.IsAnyOrUnknown(src) {
		return true
	}
	if types.IsNever(src) {
		return true
	}
	if types.IsNever(dest) {
		return false
	}
	if destTV, ok := dest.(*types.TypeVar); ok {
		if tracker != nil && tracker.Owns(destTV.ScopeID) {
			ok, _ := constraints.Assign(f, destTV, src, flags, tracker, depth+1)
			return ok
		}
		if destTV.Bound != nil {
			return f.isAssignable(destTV.Bound, src, tracker, flags, depth+1)
		}
		return true
	}
	if srcTV, ok := src.(*types.TypeVar); ok {
		if srcTV.Bound != nil {
			return f.isAssignable(dest, srcTV.Bound, tracker, flags, depth+1)
		}
		return true
	}
	if destUnion, ok := dest.(types.UnionType); ok {
		for _, m := range destUnion.Members {
			if f.isAssignable(m, src, tracker, flags, depth+1) {
				return true
			}
		}
		return false
	}
	if srcUnion, ok := src.(types.UnionType); ok {
		for _, m := range srcUnion.Members {
			if !f.isAssignable(dest, m, tracker, flags, depth+1) {
				return false
			}
		}
		return true
	}
	if _, ok := dest.(types.NoneType); ok {
		_, ok2 := src.(types.NoneType)
		return ok2
	}
	if destCls, ok := dest.(types.ClassType); ok {
		srcCls, ok2 := src.(types.ClassType)
		if !ok2 {
			return false
		}
		if destCls.Literal != nil {
			return srcCls.Literal != nil && destCls.Literal.Equal(srcCls.Literal) && destCls.Name == srcCls.Name
		}
		if destCls.Name != srcCls.Name {
			if destCls.Name == "object" {
				return true
			}
			found := false
			for _, anc := range srcCls.MRO {
				if anc == destCls.Name {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		if destCls.HasTupleArgs || srcCls.HasTupleArgs {
			if len(destCls.TupleArgs) != len(srcCls.TupleArgs) {
				return false
			}
			for i := range destCls.TupleArgs {
				if !f.isAssignable(destCls.TupleArgs[i].Type, srcCls.TupleArgs[i].Type, tracker, flags, depth+1) {
					return false
				}
			}
			return true
		}
		if len(destCls.TypeArgs) != len(srcCls.TypeArgs) {
			return len(destCls.TypeArgs) == 0 || len(srcCls.TypeArgs) == 0
		}
		for i := range destCls.TypeArgs {
			variance := types.Invariant
			if i < len(destCls.ParamVariance) {
				variance = destCls.ParamVariance[i]
			}
			switch variance {
			case types.Covariant:
				if !f.isAssignable(destCls.TypeArgs[i], srcCls.TypeArgs[i], tracker, flags, depth+1) {
					return false
				}
			case types.Contravariant:
				if !f.isAssignable(srcCls.TypeArgs[i], destCls.TypeArgs[i], tracker, flags, depth+1) {
					return false
				}
			default:
				if !f.isAssignable(destCls.TypeArgs[i], srcCls.TypeArgs[i], tracker, flags, depth+1) ||
					!f.isAssignable(srcCls.TypeArgs[i], destCls.TypeArgs[i], tracker, flags, depth+1) {
					return false
				}
			}
		}
		return true
	}
	if destFn, ok := dest.(types.FunctionType); ok {
		srcFn, ok2 := src.(types.FunctionType)
		if !ok2 {
			return false
		}
		if destFn.Flags.GradualCallable || srcFn.Flags.GradualCallable {
			return true
		}
		if len(destFn.Params) != len(srcFn.Params) {
			return false
		}
		for i := range destFn.Params {
			if destFn.Params[i].Type != nil && srcFn.Params[i].Type != nil {
				// Parameters are contravariant.
				if !f.isAssignable(srcFn.Params[i].Type, destFn.Params[i].Type, tracker, flags, depth+1) {
					return false
				}
			}
		}
		if destFn.ReturnType != nil && srcFn.ReturnType != nil {
			if !f.isAssignable(destFn.ReturnType, srcFn.ReturnType, tracker, flags, depth+1) {
				return false
			}
		}
		return true
	}
	return dest.String() == src.String()
}

func (f *FakeEvaluator) MakeTopLevelTypeVarsConcrete(t types.Type, makeParamSpecsConcrete bool) types.Type {
	if tv, ok := t.(*types.TypeVar); ok {
		if tv.Bound != nil {
			return tv.Bound
		}
		return types.Unknown()
	}
	return t
}

func (f *FakeEvaluator) StripLiteralValue(t types.Type) types.Type {
	if cls, ok := t.(types.ClassType); ok && cls.Literal != nil {
		cls.Literal = nil
		return cls
	}
	return t
}

func (f *FakeEvaluator) PrintType(t types.Type) string { return t.String() }
func (f *FakeEvaluator) PrintSrcDestTypes(src, dest types.Type) (string, string) {
	return src.String(), dest.String()
}

func (f *FakeEvaluator) GetBuiltInObject(ctx host.Node, name string) types.Type {
	return types.ClassType{Name: name}
}
func (f *FakeEvaluator) GetBuiltInType(ctx host.Node, name string) types.Type {
	return types.ClassType{Name: name, Instantiable: true}
}
func (f *FakeEvaluator) GetObjectType() types.Type { return f.Object }
func (f *FakeEvaluator) GetTupleClassType() (types.Type, bool) {
	return types.ClassType{Name: "tuple", HasTupleArgs: true}, true
}
func (f *FakeEvaluator) GetNoneType() types.Type { return types.None() }
func (f *FakeEvaluator) GetUnionClassType() (types.Type, bool) {
	return types.ClassType{Name: "UnionType"}, true
}

func (f *FakeEvaluator) GetTypeOfExpression(node host.Node, flags int, inferenceContext types.Type) host.TypeResult {
	return host.TypeResult{Type: types.Unknown()}
}
func (f *FakeEvaluator) GetTypeOfAnnotation(node host.Node, options host.AnnotationOptions) types.Type {
	return types.Unknown()
}
func (f *FakeEvaluator) GetTypeOfMagicMethodCall(receiver types.Type, name string, args []types.Type, errorNode host.Node, inferenceContext types.Type) (host.TypeResult, bool) {
	return host.TypeResult{}, false
}
func (f *FakeEvaluator) GetTypeOfIterator(result host.TypeResult, async bool, errorNode host.Node, emitError bool) (host.TypeResult, bool) {
	return host.TypeResult{}, false
}

func (f *FakeEvaluator) ValidateCallArgs(expr host.Node, args []types.Type, callee types.Type, tracker host.Tracker, skipUnknownArgCheck bool, inferenceContext types.Type) host.CallResult {
	return host.CallResult{ReturnType: types.Unknown(), Ok: true}
}

func (f *FakeEvaluator) LookUpSymbolRecursive(ctx host.Node, name string, honorCodeFlow bool) (host.SymbolWithScope, bool) {
	return host.SymbolWithScope{}, false
}
func (f *FakeEvaluator) GetBoundMagicMethod(obj types.Type, name string) (types.Type, bool) {
	return nil, false
}

func (f *FakeEvaluator) InferVarianceForClass(class *types.ClassType) {}

func (f *FakeEvaluator) AddDiagnostic(rule string, message string, node host.Node) {
	f.Diagnostics = append(f.Diagnostics, RecordedDiagnostic{Rule: rule, Message: message, Node: node})
}
func (f *FakeEvaluator) AddError(message string, node host.Node) {
	f.Diagnostics = append(f.Diagnostics, RecordedDiagnostic{Message: message, Node: node})
}
func (f *FakeEvaluator) SetTypeResultForNode(node host.Node, result host.TypeResult) {}

func (f *FakeEvaluator) IsSpecialFormClass(class *types.ClassType, flags int) bool { return false }
func (f *FakeEvaluator) CanBeTruthy(t types.Type) bool                             { return true }
func (f *FakeEvaluator) CanBeFalsy(t types.Type) bool                              { return true }
func (f *FakeEvaluator) RemoveTruthinessFromType(t types.Type) types.Type          { return t }
func (f *FakeEvaluator) RemoveFalsinessFromType(t types.Type) types.Type           { return t }

var _ host.Evaluator = (*FakeEvaluator)(nil)

// Sprint is a tiny helper so test files that build diagnostic expectations
// don't need to import fmt directly.
func Sprint(a ...interface{}) string { return fmt.Sprint(a...) }
