package grid

import "errors"

// PE is one processing lane: an accumulator register, its status
// flags, and the arithmetic strategy that advances it. The zero value
// is not usable; construct with NewPE.
type PE struct {
	unit Unit

	// acc is the accumulator register, encoded per the unit's domain.
	acc int64

	// overflow is sticky from the first saturated step until the next
	// clear.
	overflow bool

	// done marks that an accept has committed since the last clear.
	done bool

	// busy is true only while an accept is committing.
	busy bool

	// visible latches ReadEnable from the most recent step.
	visible bool
}

// NewPE returns a lane wrapping the given arithmetic strategy.
func NewPE(unit Unit) (*PE, error) {
	if unit == nil {
		return nil, errors.New("nil arithmetic unit")
	}
	return &PE{unit: unit, visible: true}, nil
}

// Step advances the lane by one control-protocol step. At most one of
// clear and accept takes effect; clear dominates. With neither
// asserted the accumulator and status hold unchanged.
func (pe *PE) Step(a, b uint8, ctl Control) {
	pe.visible = ctl.ReadEnable

	if ctl.ClearAcc {
		pe.acc = 0
		pe.overflow = false
		pe.done = false
		return
	}
	if !ctl.DataValid {
		return
	}

	pe.busy = true
	var sat bool
	pe.acc, sat = pe.unit.Accumulate(pe.acc, a, b)
	pe.overflow = pe.overflow || sat
	pe.done = true
	pe.busy = false
}

// Result returns the current accumulator register.
func (pe *PE) Result() int64 {
	return pe.acc
}

// Done reports whether an accept has committed since the last clear
// and the most recent step exposed outputs. Steps with ReadEnable
// deasserted hide the flag without losing it.
func (pe *PE) Done() bool {
	return pe.done && pe.visible
}

// Ready reports whether the lane can take a new operand pair. The lane
// is single-stage: every accept commits within its own step, so
// between steps it is always ready.
func (pe *PE) Ready() bool {
	return !pe.busy
}

// Overflow reports the sticky saturation status since the last clear.
// ReadEnable gating does not apply; saturation is never masked.
func (pe *PE) Overflow() bool {
	return pe.overflow
}
