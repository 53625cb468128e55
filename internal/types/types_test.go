package types

import "testing"

func TestNormalizeUnionCollapsesSingleton(t *testing.T) {
	intCls := ClassType{Name: "int", Instantiable: false}
	got := NormalizeUnion([]Type{intCls, intCls})
	if got.String() != "int" {
		t.Fatalf("expected singleton collapse to int, got %s", got.String())
	}
}

func TestNormalizeUnionFlattensNested(t *testing.T) {
	a := ClassType{Name: "int"}
	b := ClassType{Name: "str"}
	c := ClassType{Name: "bytes"}
	inner := NormalizeUnion([]Type{a, b})
	got := NormalizeUnion([]Type{inner, c})
	u, ok := got.(UnionType)
	if !ok {
		t.Fatalf("expected UnionType, got %T", got)
	}
	if len(u.Members) != 3 {
		t.Fatalf("expected 3 flattened members, got %d: %s", len(u.Members), got.String())
	}
}

func TestNormalizeUnionDeduplicates(t *testing.T) {
	a := ClassType{Name: "int"}
	got := NormalizeUnion([]Type{a, a, a})
	if got.String() != "int" {
		t.Fatalf("expected dedup to single int, got %s", got.String())
	}
}

func TestApplySubstBreaksSelfCycle(t *testing.T) {
	scope := NewScopeID()
	tv := &TypeVar{Name: "T", ScopeID: scope}
	s := Bind(tv, tv)
	got := tv.Apply(s)
	if got != Type(tv) {
		t.Fatalf("expected self-reference to stay unchanged, got %v", got)
	}
}

func TestApplySubstChain(t *testing.T) {
	scope := NewScopeID()
	a := &TypeVar{Name: "A", ScopeID: scope}
	b := &TypeVar{Name: "B", ScopeID: scope}
	intCls := ClassType{Name: "int"}
	s := Subst{VarKey(a): b, VarKey(b): intCls}
	got := a.Apply(s)
	if got.String() != "int" {
		t.Fatalf("expected chained substitution to resolve to int, got %s", got.String())
	}
}

func TestLiteralValueEqual(t *testing.T) {
	l1 := &LiteralValue{Kind: "str", Str: "ok"}
	l2 := &LiteralValue{Kind: "str", Str: "ok"}
	l3 := &LiteralValue{Kind: "str", Str: "no"}
	if !l1.Equal(l2) {
		t.Fatal("expected equal literals to compare equal")
	}
	if l1.Equal(l3) {
		t.Fatal("expected different literals to compare unequal")
	}
}

func TestBigOrMachineIntFits(t *testing.T) {
	small := FromInt64(42)
	if !small.FitsMachineInt() {
		t.Fatal("expected small int to fit machine range")
	}
	huge := FromInt64(1)
	huge.big.Lsh(huge.big, 200)
	if huge.FitsMachineInt() {
		t.Fatal("expected 2^200 to exceed machine range")
	}
}
