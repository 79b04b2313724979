// Package grid implements the per-lane control protocol and the
// broadcast processing array that replicates it.
//
// A lane (PE) owns one accumulator register and one arithmetic
// strategy. Lanes never exchange data: each step the array hands the
// same operand vectors and control triple to every lane, and each lane
// folds its assigned operand pair into its own register. Array-level
// status is a pure reduction over lane status.
package grid

// Unit is the arithmetic strategy a lane accumulates with. Accumulate
// folds one operand pair into acc and reports whether the step left
// the representable range. Operand bytes carry FP8-E4M3 patterns or
// signed two's-complement values, and acc carries the matching
// accumulator encoding, per the strategy's domain.
type Unit interface {
	Accumulate(acc int64, a, b uint8) (int64, bool)
}

// Control is the triple of broadcast control lines sampled by every
// lane each step.
type Control struct {
	// DataValid gates whether the lane runs its arithmetic unit and
	// commits the result this step.
	DataValid bool

	// ClearAcc synchronously zeroes the accumulator and status flags.
	// It dominates DataValid when both are asserted.
	ClearAcc bool

	// ReadEnable marks the lane's outputs as freshly sampled this
	// step. While deasserted the lane still accumulates internally,
	// but Done reports false to downstream consumers.
	ReadEnable bool
}
