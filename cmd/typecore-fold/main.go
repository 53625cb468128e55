// Command typecore-fold is a tiny smoke-test harness for the
// static-expression folder (spec.md §4.A): it reads a guard-expression
// fixture and an environment fixture, folds the guard against that
// environment, and prints the result. It is not part of the core's public
// contract (spec.md §1 excludes file/IO and configuration loading from the
// core itself) — it exists only so §4.A can be exercised by hand without a
// full host evaluator wired up, the same role the teacher's cmd/funxy plays
// for its own pipeline, scaled down to one subsystem.
package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gradualgo/typecore/internal/boolfold"
	"github.com/gradualgo/typecore/internal/config"
)

// exprFixture is a YAML-friendly mirror of boolfold.Expr. toExpr uses the
// first set field in the order bool, type_checking, and, or, not, compare
// (and/or only with exactly two operands) and reports an error when none
// applies. Structured fixtures are
// used instead of a free-text guard expression string because writing and
// running an expression parser is explicitly out of scope for this module
// (spec.md §1 "lexing, parsing, AST construction" are non-goals) — even for
// this auxiliary CLI.
type exprFixture struct {
	Bool         *bool            `yaml:"bool"`
	TypeChecking bool             `yaml:"type_checking"`
	And          []exprFixture    `yaml:"and"`
	Or           []exprFixture    `yaml:"or"`
	Not          *exprFixture     `yaml:"not"`
	Compare      *compareFixture  `yaml:"compare"`
}

type compareFixture struct {
	Op    string         `yaml:"op"`
	Left  attrFixture    `yaml:"left"`
	Right literalFixture `yaml:"right"`
}

type attrFixture struct {
	Module  string `yaml:"module"`
	Name    string `yaml:"name"`
	Index   int    `yaml:"index"`
	Indexed bool   `yaml:"indexed"`
}

type literalFixture struct {
	Ints  []int  `yaml:"ints"`
	Str   string `yaml:"str"`
	IsStr bool   `yaml:"is_str"`
}

func (e exprFixture) toExpr() (boolfold.Expr, error) {
	switch {
	case e.Bool != nil:
		return boolfold.BoolLit{Value: *e.Bool}, nil
	case e.TypeChecking:
		return boolfold.TypeCheckingSentinel{}, nil
	case len(e.And) == 2:
		left, err := e.And[0].toExpr()
		if err != nil {
			return nil, err
		}
		right, err := e.And[1].toExpr()
		if err != nil {
			return nil, err
		}
		return boolfold.LogicalOp{Op: "and", Left: left, Right: right}, nil
	case len(e.Or) == 2:
		left, err := e.Or[0].toExpr()
		if err != nil {
			return nil, err
		}
		right, err := e.Or[1].toExpr()
		if err != nil {
			return nil, err
		}
		return boolfold.LogicalOp{Op: "or", Left: left, Right: right}, nil
	case e.Not != nil:
		inner, err := e.Not.toExpr()
		if err != nil {
			return nil, err
		}
		return boolfold.LogicalOp{Op: "not", Left: inner}, nil
	case e.Compare != nil:
		c := e.Compare
		return boolfold.Compare{
			Op: c.Op,
			Left: boolfold.Attr{
				Module:  c.Left.Module,
				Name:    c.Left.Name,
				Index:   c.Left.Index,
				Indexed: c.Left.Indexed,
			},
			Right: boolfold.Literal{Ints: c.Right.Ints, Str: c.Right.Str, IsStr: c.Right.IsStr},
		}, nil
	default:
		return nil, fmt.Errorf("expression fixture has no recognized field set")
	}
}

func main() {
	envPath := flag.String("env", "", "path to an environment YAML fixture (see internal/config/fixture.go)")
	exprPath := flag.String("expr", "", "path to a guard-expression YAML fixture")
	flag.Parse()

	if *envPath == "" || *exprPath == "" {
		fmt.Fprintln(os.Stderr, "usage: typecore-fold -env <environment.yaml> -expr <expr.yaml>")
		os.Exit(2)
	}

	env, err := config.LoadEnvironmentFixture(*envPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading environment: %v\n", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(*exprPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading expression fixture: %v\n", err)
		os.Exit(1)
	}
	var fixture exprFixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		fmt.Fprintf(os.Stderr, "parsing expression fixture: %v\n", err)
		os.Exit(1)
	}
	expr, err := fixture.toExpr()
	if err != nil {
		fmt.Fprintf(os.Stderr, "building expression: %v\n", err)
		os.Exit(1)
	}

	value, ok := boolfold.Fold(expr, env)
	if !ok {
		fmt.Println("cannot fold")
		return
	}
	fmt.Println(value)
}
