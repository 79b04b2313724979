// Package mac implements the signed integer multiply-accumulate unit.
//
// A Unit multiplies two 8-bit two's-complement operands at full 16-bit
// precision and adds the product into an accumulator of configurable
// width. Sums that leave the accumulator's range are clamped to the
// nearest representable bound and flagged, never wrapped.
package mac

import "fmt"

const (
	// MinWidth is the narrowest supported accumulator, leaving one
	// magnitude bit beside the sign.
	MinWidth = 2

	// MaxWidth keeps the widest true sum representable in the int64
	// the unit computes with, so clamping can never be preempted by
	// native wraparound.
	MaxWidth = 63
)

// Unit is a saturating multiply-accumulate unit. The zero value is not
// usable; construct with New.
type Unit struct {
	width uint
	max   int64
	min   int64
}

// New returns a Unit accumulating into width bits of two's-complement.
func New(width uint) (*Unit, error) {
	if width < MinWidth || width > MaxWidth {
		return nil, fmt.Errorf(
			"accumulator width %d out of range [%d, %d]",
			width, MinWidth, MaxWidth)
	}

	max := int64(1)<<(width-1) - 1
	return &Unit{
		width: width,
		max:   max,
		min:   -max - 1,
	}, nil
}

// Width returns the accumulator width in bits.
func (u *Unit) Width() uint {
	return u.width
}

// Max returns the largest representable accumulator value.
func (u *Unit) Max() int64 {
	return u.max
}

// Min returns the smallest representable accumulator value.
func (u *Unit) Min() int64 {
	return u.min
}

// MAC advances the accumulator by one step. When clear is asserted the
// operands are ignored and the reset state is returned. Otherwise the
// full-precision product a*b is added to acc; a sum outside the
// accumulator's range comes back clamped to the violated bound with the
// overflow flag set. The flag reports this step only; holding it sticky
// across steps is the caller's concern.
func (u *Unit) MAC(a, b int8, acc int64, clear bool) (int64, bool) {
	if clear {
		return 0, false
	}

	sum := acc + int64(a)*int64(b)
	switch {
	case sum > u.max:
		return u.max, true
	case sum < u.min:
		return u.min, true
	}
	return sum, false
}

// Accumulate folds one operand pair into acc, reinterpreting the bytes
// as signed two's-complement values. It adapts the unit to the lane
// contract shared with the floating-point domain.
func (u *Unit) Accumulate(acc int64, a, b uint8) (int64, bool) {
	return u.MAC(int8(a), int8(b), acc, false)
}
