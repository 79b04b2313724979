package grid

import (
	"errors"
	"fmt"
)

// Array replicates lanes across a rows×cols grid behind two broadcast
// operand buses and a shared control triple. Every lane owns a private
// arithmetic unit; the array never shares one between lanes.
type Array struct {
	rows int
	cols int

	mapping Mapping
	alen    int
	blen    int

	lanes [][]*PE
}

// Option adjusts array construction.
type Option func(*Array)

// WithMapping selects the operand topology. The default is RowColumn.
func WithMapping(m Mapping) Option {
	return func(a *Array) {
		a.mapping = m
	}
}

// NewArray builds a rows×cols grid, calling newUnit once per lane so
// that each PE gets an arithmetic unit of its own.
func NewArray(
	rows, cols int,
	newUnit func() (Unit, error),
	opts ...Option,
) (*Array, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", rows, cols)
	}
	if newUnit == nil {
		return nil, errors.New("nil unit constructor")
	}

	a := &Array{
		rows:    rows,
		cols:    cols,
		mapping: RowColumn{},
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.mapping.Validate(rows, cols); err != nil {
		return nil, err
	}
	a.alen, a.blen = a.mapping.Extents(rows, cols)

	a.lanes = make([][]*PE, rows)
	for i := range a.lanes {
		a.lanes[i] = make([]*PE, cols)
		for j := range a.lanes[i] {
			unit, err := newUnit()
			if err != nil {
				return nil, fmt.Errorf("lane (%d,%d): %w", i, j, err)
			}
			pe, err := NewPE(unit)
			if err != nil {
				return nil, fmt.Errorf("lane (%d,%d): %w", i, j, err)
			}
			a.lanes[i][j] = pe
		}
	}
	return a, nil
}

// Rows returns the grid's row count.
func (a *Array) Rows() int {
	return a.rows
}

// Cols returns the grid's column count.
func (a *Array) Cols() int {
	return a.cols
}

// Extents returns the operand vector lengths Step expects.
func (a *Array) Extents() (alen, blen int) {
	return a.alen, a.blen
}

// Step advances every lane by one protocol step from the same operand
// snapshot. The vectors must match the extents the mapping declared at
// construction. Lanes share no state, so advancing them in sequence is
// indistinguishable from a simultaneous commit.
func (a *Array) Step(aVec, bVec []uint8, ctl Control) error {
	if len(aVec) != a.alen || len(bVec) != a.blen {
		return fmt.Errorf(
			"operand vector lengths (%d, %d) do not match grid extents (%d, %d)",
			len(aVec), len(bVec), a.alen, a.blen)
	}

	for i, row := range a.lanes {
		for j, pe := range row {
			ai, bi := a.mapping.Operands(i, j)
			pe.Step(aVec[ai], bVec[bi], ctl)
		}
	}
	return nil
}

// Read projects the current lane states into a result matrix plus the
// array-level reductions: done is the AND over every lane and overflow
// the OR. The projection is recomputed on each call and holds no state
// of its own.
func (a *Array) Read() (result [][]int64, done, overflow bool) {
	result = make([][]int64, a.rows)
	done = true
	for i, row := range a.lanes {
		result[i] = make([]int64, a.cols)
		for j, pe := range row {
			result[i][j] = pe.Result()
			done = done && pe.Done()
			overflow = overflow || pe.Overflow()
		}
	}
	return result, done, overflow
}

// Status reports the per-lane done and overflow flags without the
// array-level reduction, for consumers that trace individual lanes.
func (a *Array) Status() (done, overflow [][]bool) {
	done = make([][]bool, a.rows)
	overflow = make([][]bool, a.rows)
	for i, row := range a.lanes {
		done[i] = make([]bool, a.cols)
		overflow[i] = make([]bool, a.cols)
		for j, pe := range row {
			done[i][j] = pe.Done()
			overflow[i][j] = pe.Overflow()
		}
	}
	return done, overflow
}
