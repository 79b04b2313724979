package fp8

// Flags reports the exceptional conditions an operation raised.
type Flags struct {
	// Overflow is set when the exponent saturated past the finite range
	// and the result was replaced by NaN.
	Overflow bool

	// Underflow is set when a nonzero exact result was flushed to zero.
	Underflow bool

	// NaN is set when the result is NaN, whether propagated from an
	// input or produced by saturation.
	NaN bool
}

// fracBits is the fraction width carried through normalization: the 3-bit
// mantissa plus three guard positions, enough to keep the round bit and a
// sticky region below it.
const fracBits = 6

// Mul returns the round-to-nearest-even product of a and b.
//
// NaN operands propagate as the canonical NaN. A zero operand (against a
// finite operand) yields a zero whose sign is the XOR of the input signs.
// A product whose exponent leaves the finite range saturates to NaN with
// the Overflow flag set; one that falls below the denormal range flushes
// to a signed zero with the Underflow flag set.
func Mul(a, b Float8) (Float8, Flags) {
	if a.IsNaN() || b.IsNaN() {
		return NaN, Flags{NaN: true}
	}
	neg := a.IsNegative() != b.IsNegative()
	if a.IsZero() || b.IsZero() {
		if neg {
			return NegativeZero, Flags{}
		}
		return PositiveZero, Flags{}
	}

	_, ae, asig := a.decompose()
	_, be, bsig := b.decompose()

	// 4x4-bit significand product on a 6-fraction-bit grid.
	return round(neg, ae+be, asig*bsig)
}

// Add returns the round-to-nearest-even sum of a and b.
//
// NaN operands propagate as the canonical NaN. A zero operand passes the
// other operand through bit-unchanged; when both are zero the first
// operand supplies the sign. Exact cancellation of nonzero operands
// yields +0. Exponent saturation behaves as in Mul.
func Add(a, b Float8) (Float8, Flags) {
	if a.IsNaN() || b.IsNaN() {
		return NaN, Flags{NaN: true}
	}
	if a.IsZero() {
		if b.IsZero() {
			return a, Flags{}
		}
		return b, Flags{}
	}
	if b.IsZero() {
		return a, Flags{}
	}

	aNeg, ae, asig := a.decompose()
	bNeg, be, bsig := b.decompose()

	// Rebase both significands to the smaller exponent with three guard
	// bits. The widest rebase shift is 13 bits on a 4-bit significand,
	// so the sums stay well inside uint32 and stay exact.
	exp := ae
	if be < exp {
		exp = be
	}
	x := asig << uint(fracBits-3+ae-exp)
	y := bsig << uint(fracBits-3+be-exp)

	neg := aNeg
	var sum uint32
	switch {
	case aNeg == bNeg:
		sum = x + y
	case x >= y:
		sum = x - y
	default:
		sum = y - x
		neg = bNeg
	}
	return round(neg, exp, sum)
}

// round normalizes a fixed-point significand carrying fracBits fraction
// bits (value = sig * 2^(exp-fracBits)), rounds half to even onto the
// 3-bit mantissa, and packs the result. A zero significand is exact
// cancellation and packs as +0.
func round(neg bool, exp int, sig uint32) (Float8, Flags) {
	if sig == 0 {
		return PositiveZero, Flags{}
	}

	// Right-normalize, jamming shifted-out bits into the sticky
	// position so rounding still sees them.
	for sig >= 1<<(fracBits+1) {
		sig = sig>>1 | sig&1
		exp++
	}
	// Left-normalize, stopping at the denormal boundary.
	for sig < 1<<fracBits && exp > DenormExponent {
		sig <<= 1
		exp--
	}
	// A value born below the denormal boundary shifts back up to it.
	for exp < DenormExponent {
		sig = sig>>1 | sig&1
		exp++
	}

	m := sig >> (fracBits - 3)
	roundBit := sig >> (fracBits - 4) & 1
	sticky := sig&(1<<(fracBits-4)-1) != 0

	if roundBit == 1 && (sticky || m&1 == 1) {
		m++
		if m == 16 {
			m = 8
			exp++
		}
	}

	if exp > MaxExponent {
		return NaN, Flags{Overflow: true, NaN: true}
	}
	if m == 0 {
		if neg {
			return NegativeZero, Flags{Underflow: true}
		}
		return PositiveZero, Flags{Underflow: true}
	}
	return pack(neg, exp, m), Flags{}
}
