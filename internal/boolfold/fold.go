// Package boolfold implements the static-expression folder (spec.md §4.A):
// it evaluates version/platform guard expressions to true, false, or
// "cannot fold", the same purely-functional contract the analyzer's own
// declarations_imports.go drives conditional-import handling with, minus
// any lexing or parsing — callers build an Expr tree themselves (lexing and
// parsing are explicit non-goals, spec.md §1).
package boolfold

import (
	"math/big"

	"github.com/gradualgo/typecore/internal/config"
)

// Expr is the restricted expression grammar spec.md §4.A accepts: name
// constants, the TYPE_CHECKING sentinel, boolean and/or/not, and
// comparisons of a module attribute against a literal.
type Expr interface{ isExpr() }

// BoolLit is a literal true/false.
type BoolLit struct{ Value bool }

func (BoolLit) isExpr() {}

// TypeCheckingSentinel is the name TYPE_CHECKING, always true when folded.
type TypeCheckingSentinel struct{}

func (TypeCheckingSentinel) isExpr() {}

// LogicalOp is and/or/not.
type LogicalOp struct {
	Op          string // "and", "or", "not"
	Left, Right Expr   // Right is nil for "not"
}

func (LogicalOp) isExpr() {}

// Attr names a module attribute access such as sys.version_info, sys.platform,
// os.name, or sys.version_info[0].
type Attr struct {
	Module string // "sys" or "os" (resolved through env's alias tables)
	Name   string // "version_info", "platform", "name"
	Index  int    // for version_info[0]; Indexed must be true to use it
	Indexed bool
}

func (Attr) isExpr() {}

// Compare compares an Attr against a literal using one of
// "==","!=","<","<=",">",">=".
type Compare struct {
	Op    string
	Left  Attr
	Right Literal
}

func (Compare) isExpr() {}

// Literal is a version tuple, a bare integer, or a string.
type Literal struct {
	Ints   []int  // tuple-of-ints, or a single-element slice for a bare int
	Str    string
	IsStr  bool
}

// Fold evaluates expr against env, returning (value, true) if it could be
// folded, or (false, false) if it could not (spec.md §4.A: "never raises;
// None means cannot fold").
func Fold(expr Expr, env *config.ExecutionEnvironment) (bool, bool) {
	switch e := expr.(type) {
	case BoolLit:
		return e.Value, true
	case TypeCheckingSentinel:
		return true, true
	case LogicalOp:
		return foldLogical(e, env)
	case Compare:
		return foldCompare(e, env)
	default:
		return false, false
	}
}

func foldLogical(e LogicalOp, env *config.ExecutionEnvironment) (bool, bool) {
	switch e.Op {
	case "not":
		v, ok := Fold(e.Left, env)
		if !ok {
			return false, false
		}
		return !v, true
	case "and":
		l, lok := Fold(e.Left, env)
		if lok && !l {
			return false, true // short-circuit: false and X is false regardless of X
		}
		r, rok := Fold(e.Right, env)
		if !lok || !rok {
			return false, false
		}
		return l && r, true
	case "or":
		l, lok := Fold(e.Left, env)
		if lok && l {
			return true, true // short-circuit: true or X is true regardless of X
		}
		r, rok := Fold(e.Right, env)
		if !lok || !rok {
			return false, false
		}
		return l || r, true
	default:
		return false, false
	}
}

func foldCompare(e Compare, env *config.ExecutionEnvironment) (bool, bool) {
	if env.IsSysAlias(e.Left.Module) && (e.Left.Name == "version_info") {
		return foldVersionCompare(e, env)
	}
	if env.IsSysAlias(e.Left.Module) && e.Left.Name == "platform" {
		return foldStringCompare(e.Op, env.PythonPlatform.String(), e)
	}
	if env.IsOsAlias(e.Left.Module) && e.Left.Name == "name" {
		return foldStringCompare(e.Op, osNameFor(env.PythonPlatform), e)
	}
	return false, false
}

func osNameFor(p config.Platform) string {
	if p == config.PlatformWindows {
		return "nt"
	}
	return "posix"
}

func foldStringCompare(op string, actual string, e Compare) (bool, bool) {
	if !e.Right.IsStr {
		return false, false
	}
	switch op {
	case "==":
		return actual == e.Right.Str, true
	case "!=":
		return actual != e.Right.Str, true
	default:
		return false, false
	}
}

// foldVersionCompare implements sys.version_info comparisons using
// arbitrary-precision arithmetic (spec.md §4.A: "Version comparisons use
// big-integer arithmetic to avoid overflow on large minor versions"). The
// configured version is encoded as major*256+minor (config.EncodeVersion);
// we compare it against the literal's own encoding the same way, widened to
// *big.Int so an adversarially large minor component never overflows.
func foldVersionCompare(e Compare, env *config.ExecutionEnvironment) (bool, bool) {
	actual := big.NewInt(int64(env.PythonVersion))

	var want *big.Int
	if e.Left.Indexed {
		if len(e.Right.Ints) == 0 {
			return false, false
		}
		// Comparing a single component (e.g. version_info[0] >= 3): compare
		// only the requested component, not the packed encoding.
		var actualComponent int64
		if e.Left.Index == 0 {
			actualComponent = int64(env.PythonVersion >> 8)
		} else if e.Left.Index == 1 {
			actualComponent = int64(env.PythonVersion & 0xff)
		} else {
			return false, false
		}
		want = big.NewInt(int64(e.Right.Ints[0]))
		return compareBig(e.Op, big.NewInt(actualComponent), want)
	}

	switch len(e.Right.Ints) {
	case 1:
		want = big.NewInt(int64(e.Right.Ints[0]) << 8)
	case 2:
		major := big.NewInt(int64(e.Right.Ints[0]))
		minor := big.NewInt(int64(e.Right.Ints[1]))
		want = new(big.Int).Lsh(major, 8)
		want.Add(want, minor)
	default:
		return false, false
	}
	return compareBig(e.Op, actual, want)
}

func compareBig(op string, a, b *big.Int) (bool, bool) {
	cmp := a.Cmp(b)
	switch op {
	case "==":
		return cmp == 0, true
	case "!=":
		return cmp != 0, true
	case "<":
		return cmp < 0, true
	case "<=":
		return cmp <= 0, true
	case ">":
		return cmp > 0, true
	case ">=":
		return cmp >= 0, true
	default:
		return false, false
	}
}
