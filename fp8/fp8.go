// Package fp8 implements the 8-bit E4M3 floating-point format used by the
// MAC datapath: 1 sign bit, 4 exponent bits (bias 7), 3 mantissa bits.
//
// The format has no infinity. Every pattern with an all-ones exponent field
// is NaN, so the largest finite magnitude is 240 and arithmetic that leaves
// the exponent range saturates to NaN rather than to a signed infinity.
package fp8

import "math"

// Float8 is a raw E4M3 bit pattern.
type Float8 uint8

// Bit layout.
const (
	SignMask     = 0x80
	ExponentMask = 0x78
	MantissaMask = 0x07

	ExponentShift = 3
	ExponentBias  = 7

	// DenormExponent is the effective exponent of values with a zero
	// exponent field (no implicit leading 1).
	DenormExponent = -6

	// MaxExponent is the largest effective exponent of a finite value;
	// a biased field of 15 encodes NaN.
	MaxExponent = 7
)

// Canonical values.
const (
	PositiveZero Float8 = 0x00
	NegativeZero Float8 = 0x80
	NaN          Float8 = 0x7F // the canonical NaN produced by all operations
	MaxFinite    Float8 = 0x77 // +240
	MinFinite    Float8 = 0xF7 // -240
	MinDenormal  Float8 = 0x01 // 2^-9
	One          Float8 = 0x38
)

// Sign returns the raw sign bit.
func (f Float8) Sign() uint8 { return uint8(f) >> 7 }

// Exponent returns the raw 4-bit exponent field.
func (f Float8) Exponent() uint8 { return (uint8(f) & ExponentMask) >> ExponentShift }

// Mantissa returns the raw 3-bit mantissa field.
func (f Float8) Mantissa() uint8 { return uint8(f) & MantissaMask }

// IsNaN reports whether f is NaN. Any pattern with an all-ones exponent
// field is NaN; the mantissa does not matter.
func (f Float8) IsNaN() bool { return f.Exponent() == 0x0F }

// IsZero reports whether f is positive or negative zero.
func (f Float8) IsZero() bool { return f&^SignMask == 0 }

// IsDenormal reports whether f is nonzero with a zero exponent field.
func (f Float8) IsDenormal() bool { return f.Exponent() == 0 && f.Mantissa() != 0 }

// IsNegative reports whether the sign bit is set.
func (f Float8) IsNegative() bool { return f&SignMask != 0 }

// decompose splits a finite value into sign, effective exponent, and the
// 4-bit significand with the implicit bit included for normals. Zero comes
// back as (sign, DenormExponent, 0).
func (f Float8) decompose() (neg bool, exp int, sig uint32) {
	neg = f.IsNegative()
	m := uint32(f.Mantissa())
	e := f.Exponent()
	if e == 0 {
		return neg, DenormExponent, m
	}
	return neg, int(e) - ExponentBias, m | 0x08
}

// pack assembles a value from sign, effective exponent, and final 4-bit
// significand. sig >= 8 encodes a normal value at exp; sig < 8 encodes a
// denormal, which is only valid at DenormExponent.
func pack(neg bool, exp int, sig uint32) Float8 {
	var f Float8
	if neg {
		f = SignMask
	}
	if sig >= 8 {
		f |= Float8(exp+ExponentBias) << ExponentShift
	}
	f |= Float8(sig & MantissaMask)
	return f
}

// Float32 returns the exact float32 value of f. NaN maps to float32 NaN,
// and the zeros keep their sign.
func (f Float8) Float32() float32 {
	if f.IsNaN() {
		return float32(math.NaN())
	}
	neg, exp, sig := f.decompose()
	v := math.Ldexp(float64(sig), exp-3)
	if neg {
		v = -v
	}
	return float32(v)
}

// FromFloat32 converts x to the nearest E4M3 value, rounding half to even.
// NaN and both infinities map to the canonical NaN (the format cannot
// distinguish them), magnitudes at or beyond 248 round out of the finite
// range and also become NaN, and magnitudes below half the smallest
// denormal flush to a signed zero.
func FromFloat32(x float32) Float8 {
	v := float64(x)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NaN
	}
	neg := math.Signbit(v)
	mag := math.Abs(v)
	if mag == 0 {
		if neg {
			return NegativeZero
		}
		return PositiveZero
	}

	_, e := math.Frexp(mag) // mag = fr * 2^e, fr in [0.5, 1)
	exp := e - 1            // exponent of the 1.xxx form
	if exp < DenormExponent {
		exp = DenormExponent
	}

	// Scale onto the 3-fraction-bit grid at exp and round to integer.
	sig := math.RoundToEven(math.Ldexp(mag, 3-exp))
	if sig >= 16 {
		sig /= 2
		exp++
	}
	if exp > MaxExponent {
		return NaN
	}
	if sig == 0 {
		if neg {
			return NegativeZero
		}
		return PositiveZero
	}
	return pack(neg, exp, uint32(sig))
}
