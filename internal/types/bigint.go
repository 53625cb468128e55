package types

import "math/big"

// machineIntSafeBound is the boundary spec.md §4.A/§4.D call "the standard
// safe range": results of literal-math folding that fit within it collapse
// back to a machine integer; larger results stay as arbitrary-precision
// values. This mirrors the teacher's evaluator, which keeps a BigInt object
// only when the value no longer fits a native int64 (expressions_operators.go).
const machineIntSafeBound = int64(1) << 62

// BigOrMachineInt is an arbitrary-precision integer that prints and compares
// as a machine int whenever it is small enough to be one, matching spec.md
// §4.A's "Version comparisons use big-integer arithmetic to avoid overflow
// on large minor versions" and §4.D's literal int folding.
type BigOrMachineInt struct {
	big *big.Int
}

// FromInt64 builds a BigOrMachineInt from a native int64.
func FromInt64(v int64) *BigOrMachineInt {
	return &BigOrMachineInt{big: big.NewInt(v)}
}

// FromBigInt builds a BigOrMachineInt from a copy of an existing *big.Int.
// The value is always held as a *big.Int; FitsMachineInt reports whether it
// lies in the machine-int range.
func FromBigInt(v *big.Int) *BigOrMachineInt {
	return &BigOrMachineInt{big: new(big.Int).Set(v)}
}

// Big returns the arbitrary-precision value.
func (b *BigOrMachineInt) Big() *big.Int { return b.big }

// FitsMachineInt reports whether the value fits within the safe machine-int
// range, i.e. whether it should render/propagate as a plain int rather than
// an arbitrary-precision one.
func (b *BigOrMachineInt) FitsMachineInt() bool {
	return b.big.IsInt64() && b.big.Int64() > -machineIntSafeBound && b.big.Int64() < machineIntSafeBound
}

func (b *BigOrMachineInt) String() string {
	return b.big.String()
}

func (b *BigOrMachineInt) Equal(o *BigOrMachineInt) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.big.Cmp(o.big) == 0
}

func (b *BigOrMachineInt) Cmp(o *BigOrMachineInt) int {
	return b.big.Cmp(o.big)
}

// IsZero reports whether the value is exactly zero.
func (b *BigOrMachineInt) IsZero() bool { return b.big.Sign() == 0 }

func (b *BigOrMachineInt) Add(o *BigOrMachineInt) *BigOrMachineInt {
	return FromBigInt(new(big.Int).Add(b.big, o.big))
}
func (b *BigOrMachineInt) Sub(o *BigOrMachineInt) *BigOrMachineInt {
	return FromBigInt(new(big.Int).Sub(b.big, o.big))
}
func (b *BigOrMachineInt) Mul(o *BigOrMachineInt) *BigOrMachineInt {
	return FromBigInt(new(big.Int).Mul(b.big, o.big))
}

// FloorDiv rounds toward negative infinity, matching the host language's
// floor-division semantics rather than Go/C truncating division.
func (b *BigOrMachineInt) FloorDiv(o *BigOrMachineInt) *BigOrMachineInt {
	q := new(big.Int)
	m := new(big.Int)
	q.DivMod(b.big, o.big, m)
	if o.big.Sign() < 0 && m.Sign() != 0 {
		q.Sub(q, big.NewInt(1))
	}
	return FromBigInt(q)
}

// Mod follows the decided-in-DESIGN.md sign-follows-divisor convention: the
// result's sign matches the right operand's, mirroring the host language's
// "%" rather than Go's truncating "%" (which follows the left operand).
func (b *BigOrMachineInt) Mod(o *BigOrMachineInt) *BigOrMachineInt {
	m := new(big.Int).Mod(b.big, o.big)
	if m.Sign() != 0 && o.big.Sign() < 0 {
		m.Add(m, o.big)
	}
	return FromBigInt(m)
}

// Sign returns -1, 0, or 1 matching the value's sign, mirroring
// math/big.Int.Sign.
func (b *BigOrMachineInt) Sign() int { return b.big.Sign() }

// Pow computes b to the oth power. The caller is responsible for declining
// to fold when o is negative (the host language's "**" with a negative int
// exponent produces a float, which is outside literal-math folding's scope
// per spec.md §4.D) — Pow itself has no sentinel for that case.
func (b *BigOrMachineInt) Pow(o *BigOrMachineInt) *BigOrMachineInt {
	return FromBigInt(new(big.Int).Exp(b.big, o.big, nil))
}

func (b *BigOrMachineInt) Lsh(o *BigOrMachineInt) *BigOrMachineInt {
	return FromBigInt(new(big.Int).Lsh(b.big, uint(o.big.Uint64())))
}
func (b *BigOrMachineInt) Rsh(o *BigOrMachineInt) *BigOrMachineInt {
	return FromBigInt(new(big.Int).Rsh(b.big, uint(o.big.Uint64())))
}
func (b *BigOrMachineInt) And(o *BigOrMachineInt) *BigOrMachineInt {
	return FromBigInt(new(big.Int).And(b.big, o.big))
}
func (b *BigOrMachineInt) Or(o *BigOrMachineInt) *BigOrMachineInt {
	return FromBigInt(new(big.Int).Or(b.big, o.big))
}
func (b *BigOrMachineInt) Xor(o *BigOrMachineInt) *BigOrMachineInt {
	return FromBigInt(new(big.Int).Xor(b.big, o.big))
}
func (b *BigOrMachineInt) Neg() *BigOrMachineInt {
	return FromBigInt(new(big.Int).Neg(b.big))
}
func (b *BigOrMachineInt) Not() *BigOrMachineInt {
	return FromBigInt(new(big.Int).Not(b.big))
}
