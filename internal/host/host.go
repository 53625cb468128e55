// Package host declares the contract the type-reasoning core consumes from
// its external evaluator (spec.md §6). The core never implements these
// operations itself — lexing, parsing, name binding, module resolution, and
// diagnostic sinks are explicit non-goals (spec.md §1) owned by the host.
// This mirrors the teacher's own separation between internal/typesystem
// (pure algebra) and internal/symbols.SymbolTable / the analyzer's `walker`
// (the host-side services that drive it).
package host

import (
	"github.com/gradualgo/typecore/internal/diagnostics"
	"github.com/gradualgo/typecore/internal/types"
)

// Node stands in for whatever AST node type the host's parser produces.
// The core never inspects a Node's shape; it only threads it through for
// diagnostic positioning and re-entrant calls back into the host.
type Node interface{}

// Tracker stands in for the constraint solver's tracker (constraints.Tracker
// in this module). It is declared here as an opaque type rather than a
// concrete import to avoid a host<->constraints import cycle: the solver
// implements Evaluator's tracker-shaped parameters by passing itself, and a
// concrete Evaluator implementation type-asserts back to *constraints.Tracker
// when it needs to drive a nested solve.
type Tracker interface{}

// TypeResult is the outcome of evaluating an expression: a type, plus the
// incomplete flag spec.md §7 requires ("the caller must retry later").
type TypeResult struct {
	Type       types.Type
	Incomplete bool
}

// CallResult is the outcome of validating a call's arguments against a
// callee, including a possibly-specialized return type.
type CallResult struct {
	ReturnType types.Type
	Ok         bool
	Incomplete bool
}

// SymbolWithScope is a name resolved in some enclosing scope.
type SymbolWithScope struct {
	Name string
	Type types.Type
}

// AnnotationOptions configures getTypeOfAnnotation (spec.md §6).
type AnnotationOptions struct {
	AllowForwardReference bool
}

// Evaluator is the full set of host services spec.md §6 requires. Every
// core component (constraints, reversemap, operators, dataclass, decorators)
// depends only on this interface, never on a concrete host implementation —
// the same shape as the teacher's analyzer depending on symbols.SymbolTable
// through its own narrow accessor methods rather than reaching into module
// loading or the parser directly.
type Evaluator interface {
	AssignType(dest, src types.Type, diag *diagnostics.DiagnosticError, destTracker, srcTracker Tracker, flags types.AssignFlags, depth int) bool

	MakeTopLevelTypeVarsConcrete(t types.Type, makeParamSpecsConcrete bool) types.Type
	StripLiteralValue(t types.Type) types.Type

	PrintType(t types.Type) string
	PrintSrcDestTypes(src, dest types.Type) (string, string)

	GetBuiltInObject(ctx Node, name string) types.Type
	GetBuiltInType(ctx Node, name string) types.Type
	GetObjectType() types.Type
	GetTupleClassType() (types.Type, bool)
	GetNoneType() types.Type
	GetUnionClassType() (types.Type, bool)

	GetTypeOfExpression(node Node, flags int, inferenceContext types.Type) TypeResult
	GetTypeOfAnnotation(node Node, options AnnotationOptions) types.Type
	GetTypeOfMagicMethodCall(receiver types.Type, name string, args []types.Type, errorNode Node, inferenceContext types.Type) (TypeResult, bool)
	GetTypeOfIterator(result TypeResult, async bool, errorNode Node, emitError bool) (TypeResult, bool)

	ValidateCallArgs(expr Node, args []types.Type, callee types.Type, tracker Tracker, skipUnknownArgCheck bool, inferenceContext types.Type) CallResult

	LookUpSymbolRecursive(ctx Node, name string, honorCodeFlow bool) (SymbolWithScope, bool)
	GetBoundMagicMethod(obj types.Type, name string) (types.Type, bool)

	InferVarianceForClass(class *types.ClassType)

	AddDiagnostic(rule string, message string, node Node)
	AddError(message string, node Node)
	SetTypeResultForNode(node Node, result TypeResult)

	IsSpecialFormClass(class *types.ClassType, flags int) bool
	CanBeTruthy(t types.Type) bool
	CanBeFalsy(t types.Type) bool
	RemoveTruthinessFromType(t types.Type) types.Type
	RemoveFalsinessFromType(t types.Type) types.Type
}
