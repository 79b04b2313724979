package fp8

// Unit is the FP8 lane strategy: multiply then accumulate within the
// format's own range, so the accumulator is itself an E4M3 value held in
// the low byte of the lane register.
type Unit struct{}

// Accumulate folds the product of the two raw operand bytes into the
// accumulator. The reported flag is exponent saturation raised by either
// the product or the accumulation; once an operation saturates, the NaN
// it produced keeps propagating through later sums.
func (Unit) Accumulate(acc int64, a, b uint8) (int64, bool) {
	p, pf := Mul(Float8(a), Float8(b))
	s, sf := Add(Float8(acc), p)
	return int64(s), pf.Overflow || sf.Overflow
}
