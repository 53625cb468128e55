// Package operators implements the operator evaluator (spec.md §4.D):
// binary, augmented, unary, and ternary operator type inference, dispatched
// through the host's magic-method machinery. It is grounded on the sibling
// funxy evaluator's own binary-operation handling (operator dispatch tables
// keyed by magic-method pairs) generalized from concrete runtime values to
// gradual types, plus internal/types.BigOrMachineInt for the literal-math
// step and internal/boolfold for ternary folding.
package operators

import (
	"github.com/gradualgo/typecore/internal/boolfold"
	"github.com/gradualgo/typecore/internal/config"
	"github.com/gradualgo/typecore/internal/diagnostics"
	"github.com/gradualgo/typecore/internal/host"
	"github.com/gradualgo/typecore/internal/types"
)

// MagicPair names the forward/reverse magic-method pair a binary operator
// dispatches through (spec.md §4.D "dispatch table").
type MagicPair struct {
	Forward string
	Reverse string
}

// binaryDispatch is the operator dispatch table (spec.md §4.D first bullet).
var binaryDispatch = map[string]MagicPair{
	"+":  {"__add__", "__radd__"},
	"-":  {"__sub__", "__rsub__"},
	"*":  {"__mul__", "__rmul__"},
	"/":  {"__truediv__", "__rtruediv__"},
	"//": {"__floordiv__", "__rfloordiv__"},
	"%":  {"__mod__", "__rmod__"},
	"**": {"__pow__", "__rpow__"},
	"<<": {"__lshift__", "__rlshift__"},
	">>": {"__rshift__", "__rrshift__"},
	"&":  {"__and__", "__rand__"},
	"|":  {"__or__", "__ror__"},
	"^":  {"__xor__", "__rxor__"},
	"==": {"__eq__", "__eq__"},
	"!=": {"__ne__", "__ne__"},
	"<":  {"__lt__", "__gt__"},
	"<=": {"__le__", "__ge__"},
	">":  {"__gt__", "__lt__"},
	">=": {"__ge__", "__le__"},
}

// inPlaceDispatch maps an augmented assignment operator to its in-place
// magic method (spec.md §4.D "Augmented op=").
var inPlaceDispatch = map[string]string{
	"+=":  "__iadd__",
	"-=":  "__isub__",
	"*=":  "__imul__",
	"/=":  "__itruediv__",
	"//=": "__ifloordiv__",
	"%=":  "__imod__",
	"**=": "__ipow__",
	"<<=": "__ilshift__",
	">>=": "__irshift__",
	"&=":  "__iand__",
	"|=":  "__ior__",
	"^=":  "__ixor__",
}

// LiteralContext tells the evaluator whether the current expression sits
// inside a loop or closure body, where literal folding is disabled (spec.md
// §4.D step 5 and "Augmented op=").
type LiteralContext struct {
	InLoopOrClosure bool
	// IsLocalVariable is consulted only for augmented assignment: literal
	// math there is allowed only when the destination is a local variable.
	IsLocalVariable bool
	// InStubFile marks that this `|` expression is being evaluated inside a
	// stub file, which exempts the union-at-type-position case from the
	// target-version gate (spec.md §4.D step 2: "unless inside a stub").
	InStubFile bool
	// ForwardRefPositionAllowed is set by the host when the syntactic
	// position of this `|` expression is one where a stringified forward
	// reference operand is permitted (spec.md §4.D step 2: "stringified
	// forward references are used only in permitted positions"). Position
	// classification is the host's job (non-goal: parsing); this package
	// only enforces the resulting bool.
	ForwardRefPositionAllowed bool
}

// pep604UnionVersion is the target-language version that introduced the
// `X | Y` union-at-type-position syntax (PEP 604, Python 3.10), encoded the
// same way config.ExecutionEnvironment.PythonVersion is.
var pep604UnionVersion = config.EncodeVersion(3, 10)

// isStringForwardRef reports whether t is a bare string literal standing in
// for a quoted forward reference (e.g. the right operand of `int | "Foo"`),
// as opposed to a class type named "str".
func isStringForwardRef(t types.Type) bool {
	cls, ok := t.(types.ClassType)
	return ok && cls.Literal != nil && cls.Literal.Kind == "str"
}

// checkUnionAtTypePosition implements spec.md §4.D step 2's two validations
// once both operands are known unionable with no __or__/__ror__ override:
// a stringified forward reference operand must be in a permitted position,
// and the target version must be at least the one that introduced the
// syntax unless the expression is inside a stub.
func checkUnionAtTypePosition(ev host.Evaluator, left, right types.Type, ctx LiteralContext, env *config.ExecutionEnvironment) *diagnostics.DiagnosticError {
	if !ctx.ForwardRefPositionAllowed {
		if isStringForwardRef(left) {
			return diagnostics.New(diagnostics.CodeUnionAtTypePosition, ev.PrintType(left))
		}
		if isStringForwardRef(right) {
			return diagnostics.New(diagnostics.CodeUnionAtTypePosition, ev.PrintType(right))
		}
	}
	if !ctx.InStubFile && env != nil && env.PythonVersion < pep604UnionVersion {
		return diagnostics.New(diagnostics.CodeUnionAtTypePosition, ev.PrintType(types.UnionOf(left, right)))
	}
	return nil
}

// Binary implements spec.md §4.D's binary-operation algorithm.
func Binary(ev host.Evaluator, op string, left, right types.Type, node host.Node, ctx LiteralContext, env *config.ExecutionEnvironment) (host.TypeResult, *diagnostics.DiagnosticError) {
	// Step 1: Never propagation.
	if op != "and" && op != "or" {
		if types.IsNever(left) || types.IsNever(right) {
			return host.TypeResult{Type: types.Never()}, nil
		}
	}

	switch op {
	case "and", "or":
		return shortCircuit(ev, op, left, right), nil
	case "in", "not in":
		return containment(ev, op, left, right, node), nil
	}

	if op == "|" && isUnionable(left) && isUnionable(right) && !hasOrMagic(ev, left) && !hasOrMagic(ev, right) {
		if diag := checkUnionAtTypePosition(ev, left, right, ctx, env); diag != nil {
			return host.TypeResult{Type: types.Unknown()}, diag
		}
		return host.TypeResult{Type: types.UnionOf(left, right)}, nil
	}

	// Step 5: literal math.
	if !ctx.InLoopOrClosure {
		if result, ok, err := literalMath(op, left, right); ok {
			return host.TypeResult{Type: result}, err
		}
	}

	// Step 7: tuple + fast path.
	if op == "+" {
		if result, ok := tupleConcat(left, right); ok {
			return host.TypeResult{Type: result}, nil
		}
	}

	// Step 6: magic-method dispatch.
	pair, known := binaryDispatch[op]
	if known {
		if result, ok := dispatchMagic(ev, pair, left, right, node); ok {
			return result, nil
		}
	}

	return host.TypeResult{Type: types.Unknown()}, unsupportedOperatorDiagnostic(ev, op, left, right)
}

func unsupportedOperatorDiagnostic(ev host.Evaluator, op string, left, right types.Type) *diagnostics.DiagnosticError {
	if isOptional(left) {
		return diagnostics.New(diagnostics.CodeOptionalOperand, ev.PrintType(left), op)
	}
	return diagnostics.New(diagnostics.CodeUnsupportedOperator, op, ev.PrintType(left), ev.PrintType(right))
}

func isOptional(t types.Type) bool {
	u, ok := t.(types.UnionType)
	if !ok {
		return false
	}
	for _, m := range u.Members {
		if types.IsNever(m) {
			continue
		}
		if _, isNone := m.(types.NoneType); isNone {
			return true
		}
	}
	return false
}

// shortCircuit implements spec.md §4.D step 3.
func shortCircuit(ev host.Evaluator, op string, left, right types.Type) host.TypeResult {
	if op == "and" {
		if !ev.CanBeTruthy(left) {
			return host.TypeResult{Type: left}
		}
		if !ev.CanBeFalsy(left) {
			return host.TypeResult{Type: right}
		}
		narrowed := ev.RemoveFalsinessFromType(left)
		return host.TypeResult{Type: types.UnionOf(narrowed, right)}
	}
	// "or"
	if !ev.CanBeFalsy(left) {
		return host.TypeResult{Type: left}
	}
	if !ev.CanBeTruthy(left) {
		return host.TypeResult{Type: right}
	}
	narrowed := ev.RemoveTruthinessFromType(left)
	return host.TypeResult{Type: types.UnionOf(narrowed, right)}
}

// containment implements spec.md §4.D step 4. The result is always bool;
// the host's own diagnostic sink (via AssignType/AddDiagnostic, not this
// package) is responsible for flagging a left operand that isn't assignable
// to the discovered yield type.
func containment(ev host.Evaluator, op string, left, right types.Type, node host.Node) host.TypeResult {
	if _, ok := ev.GetBoundMagicMethod(right, "__contains__"); ok {
		ev.GetTypeOfMagicMethodCall(right, "__contains__", []types.Type{left}, node, nil)
	} else {
		ev.GetTypeOfIterator(host.TypeResult{Type: right}, false, node, false)
	}
	return host.TypeResult{Type: boolResult(ev)}
}

func boolResult(ev host.Evaluator) types.Type {
	return ev.GetBuiltInObject(nil, "bool")
}

func isUnionable(t types.Type) bool {
	switch t.(type) {
	case types.ClassType, types.NoneType, types.UnionType:
		return true
	default:
		return false
	}
}

func hasOrMagic(ev host.Evaluator, t types.Type) bool {
	if _, ok := ev.GetBoundMagicMethod(t, "__or__"); ok {
		return true
	}
	_, ok := ev.GetBoundMagicMethod(t, "__ror__")
	return ok
}

// literalMath implements spec.md §4.D step 5. Returns (type, attempted, err);
// attempted is false when the operands weren't both same-kind literals, in
// which case the caller falls through to magic-method dispatch.
func literalMath(op string, left, right types.Type) (types.Type, bool, *diagnostics.DiagnosticError) {
	leftSubs := types.Subtypes(left)
	rightSubs := types.Subtypes(right)
	if len(leftSubs)*len(rightSubs) > types.MaxUnionSubtypes {
		// Cap: abort literal folding once the cross product exceeds 64
		// (spec.md §4.D step 5 cap). Caller falls through to magic dispatch.
		return nil, false, nil
	}

	var results []types.Type
	any := false
	for _, l := range leftSubs {
		lc, lok := l.(types.ClassType)
		if !lok || lc.Literal == nil {
			return nil, false, nil
		}
		for _, r := range rightSubs {
			rc, rok := r.(types.ClassType)
			if !rok || rc.Literal == nil || rc.Literal.Kind != lc.Literal.Kind {
				return nil, false, nil
			}
			result, err := literalBinary(op, lc, rc)
			if err != nil {
				return nil, true, err
			}
			if result == nil {
				return nil, false, nil
			}
			any = true
			results = append(results, result)
		}
	}
	if !any {
		return nil, false, nil
	}
	return types.UnionOf(results...), true, nil
}

func literalBinary(op string, l, r types.ClassType) (types.Type, *diagnostics.DiagnosticError) {
	switch l.Literal.Kind {
	case "str":
		if op == "+" {
			return strLiteral(l.Literal.Str + r.Literal.Str), nil
		}
		return nil, nil
	case "bytes":
		if op == "+" {
			return bytesLiteral(append(append([]byte{}, l.Literal.Byte...), r.Literal.Byte...)), nil
		}
		return nil, nil
	case "int":
		return intLiteralBinary(op, l.Literal.Int, r.Literal.Int)
	default:
		return nil, nil
	}
}

func strLiteral(s string) types.Type {
	return types.ClassType{Name: "str", Literal: &types.LiteralValue{Kind: "str", Str: s}}
}
func bytesLiteral(b []byte) types.Type {
	return types.ClassType{Name: "bytes", Literal: &types.LiteralValue{Kind: "bytes", Byte: b}}
}
func intLiteral(v *types.BigOrMachineInt) types.Type {
	return types.ClassType{Name: "int", Literal: &types.LiteralValue{Kind: "int", Int: v}}
}

// intLiteralBinary implements spec.md §4.D step 5's integer arithmetic,
// including its floor-division/modulo sign rules.
func intLiteralBinary(op string, l, r *types.BigOrMachineInt) (types.Type, *diagnostics.DiagnosticError) {
	switch op {
	case "+":
		return intLiteral(l.Add(r)), nil
	case "-":
		return intLiteral(l.Sub(r)), nil
	case "*":
		return intLiteral(l.Mul(r)), nil
	case "//":
		if r.IsZero() {
			return nil, diagnostics.New(diagnostics.CodeUnsupportedOperator, "//", "int", "int")
		}
		return intLiteral(l.FloorDiv(r)), nil
	case "%":
		if r.IsZero() {
			return nil, diagnostics.New(diagnostics.CodeUnsupportedOperator, "%", "int", "int")
		}
		return intLiteral(l.Mod(r)), nil
	case "**":
		if r.Sign() < 0 {
			// A negative int exponent produces a float at runtime, which is
			// outside literal-math folding's scope (spec.md §4.D step 5
			// covers only str/bytes concatenation and the listed int ops);
			// decline to fold and let the caller fall through to magic
			// dispatch instead.
			return nil, nil
		}
		return intLiteral(l.Pow(r)), nil
	case "<<":
		return intLiteral(l.Lsh(r)), nil
	case ">>":
		return intLiteral(l.Rsh(r)), nil
	case "&":
		return intLiteral(l.And(r)), nil
	case "|":
		return intLiteral(l.Or(r)), nil
	case "^":
		return intLiteral(l.Xor(r)), nil
	default:
		return nil, nil
	}
}

// tupleConcat implements spec.md §4.D step 7.
func tupleConcat(left, right types.Type) (types.Type, bool) {
	if _, isUnion := left.(types.UnionType); isUnion {
		return nil, false
	}
	lc, lok := left.(types.ClassType)
	rc, rok := right.(types.ClassType)
	if !lok || !rok || !lc.HasTupleArgs || !rc.HasTupleArgs {
		return nil, false
	}
	leftUnbounded := anyUnbounded(lc.TupleArgs)
	rightUnbounded := anyUnbounded(rc.TupleArgs)
	if leftUnbounded && rightUnbounded {
		return nil, false
	}
	combined := append(append([]types.TupleElement{}, lc.TupleArgs...), rc.TupleArgs...)
	return types.ClassType{Name: "tuple", HasTupleArgs: true, TupleArgs: combined}, true
}

func anyUnbounded(elems []types.TupleElement) bool {
	for _, e := range elems {
		if e.Unbounded {
			return true
		}
	}
	return false
}

// magicAttempt is one (method name, receiver, argument) candidate in the
// dispatch order spec.md §4.D step 6 lays out.
type magicAttempt struct {
	name        string
	left, right types.Type
}

// dispatchMagic implements spec.md §4.D step 6: try forward-magic on
// (unexpanded, unexpanded), (expanded, unexpanded), (expanded, expanded),
// then reverse-magic the same way. "Expanded" here means each subtype of a
// union operand, tried in turn.
func dispatchMagic(ev host.Evaluator, pair MagicPair, left, right types.Type, node host.Node) (host.TypeResult, bool) {
	left = coerceFunctionOperand(ev, left)
	right = coerceFunctionOperand(ev, right)

	attempts := []magicAttempt{{pair.Forward, left, right}}
	for _, l := range types.Subtypes(left) {
		attempts = append(attempts, magicAttempt{pair.Forward, l, right})
	}
	for _, l := range types.Subtypes(left) {
		for _, r := range types.Subtypes(right) {
			attempts = append(attempts, magicAttempt{pair.Forward, l, r})
		}
	}
	attempts = append(attempts, magicAttempt{pair.Reverse, right, left})
	for _, r := range types.Subtypes(right) {
		attempts = append(attempts, magicAttempt{pair.Reverse, r, left})
	}
	for _, r := range types.Subtypes(right) {
		for _, l := range types.Subtypes(left) {
			attempts = append(attempts, magicAttempt{pair.Reverse, r, l})
		}
	}

	for _, a := range attempts {
		if res, ok := ev.GetTypeOfMagicMethodCall(a.left, a.name, []types.Type{a.right}, node, nil); ok {
			return res, true
		}
	}
	return host.TypeResult{}, false
}

func coerceFunctionOperand(ev host.Evaluator, t types.Type) types.Type {
	if _, ok := t.(types.FunctionType); ok {
		return ev.GetObjectType()
	}
	return t
}

// Augmented implements spec.md §4.D's "Augmented op=" algorithm.
func Augmented(ev host.Evaluator, op string, dest, right types.Type, node host.Node, ctx LiteralContext, env *config.ExecutionEnvironment) (host.TypeResult, *diagnostics.DiagnosticError) {
	inPlace, known := inPlaceDispatch[op]
	if known {
		if res, ok := ev.GetTypeOfMagicMethodCall(dest, inPlace, []types.Type{right}, node, nil); ok {
			return res, nil
		}
	}
	plainOp := op[:len(op)-1] // "+=" -> "+"
	plainCtx := ctx
	if !ctx.IsLocalVariable {
		plainCtx.InLoopOrClosure = true // disables literal math per spec.md's destination rule
	}
	return Binary(ev, plainOp, dest, right, node, plainCtx, env)
}

// Unary implements spec.md §4.D's unary algorithm.
func Unary(ev host.Evaluator, op string, operand types.Type, node host.Node, ctx LiteralContext) (host.TypeResult, *diagnostics.DiagnosticError) {
	if types.IsNever(operand) {
		return host.TypeResult{Type: types.Never()}, nil
	}

	if !ctx.InLoopOrClosure {
		if result, ok := unaryLiteral(op, operand); ok {
			return host.TypeResult{Type: result}, nil
		}
	}

	magic, boolResultOnly := unaryMagic(op)
	if boolResultOnly {
		return host.TypeResult{Type: boolResult(ev)}, nil
	}
	if res, ok := ev.GetTypeOfMagicMethodCall(operand, magic, nil, node, nil); ok {
		return res, nil
	}
	return host.TypeResult{Type: types.Unknown()}, diagnostics.New(diagnostics.CodeUnsupportedOperator, op, ev.PrintType(operand), "")
}

func unaryMagic(op string) (name string, boolOnly bool) {
	switch op {
	case "+":
		return "__pos__", false
	case "-":
		return "__neg__", false
	case "~":
		return "__invert__", false
	case "not":
		return "__bool__", true
	default:
		return "", false
	}
}

func unaryLiteral(op string, operand types.Type) (types.Type, bool) {
	cls, ok := operand.(types.ClassType)
	if !ok || cls.Literal == nil {
		return nil, false
	}
	switch {
	case op == "-" && cls.Literal.Kind == "int":
		return intLiteral(cls.Literal.Int.Neg()), true
	case op == "~" && cls.Literal.Kind == "int":
		return intLiteral(cls.Literal.Int.Not()), true
	case op == "not" && cls.Literal.Kind == "bool":
		return types.ClassType{Name: "bool", Literal: &types.LiteralValue{Kind: "bool", Bool: !cls.Literal.Bool}}, true
	default:
		return nil, false
	}
}

// Ternary implements spec.md §4.D's ternary algorithm.
func Ternary(cond boolfold.Expr, env *config.ExecutionEnvironment, thenType, elseType types.Type) types.Type {
	if v, ok := boolfold.Fold(cond, env); ok {
		if v {
			return thenType
		}
		return elseType
	}
	return types.UnionOf(thenType, elseType)
}
