package grid

import "fmt"

// Mapping fixes how lane (row, col) selects its operand pair from the
// two broadcast vectors. A mapping is grid topology chosen at
// construction, not runtime state.
type Mapping interface {
	// Operands returns the indices into the a and b vectors for the
	// lane at (row, col).
	Operands(row, col int) (ai, bi int)

	// Extents returns the operand vector lengths a rows×cols grid
	// requires.
	Extents(rows, cols int) (alen, blen int)

	// Validate reports whether the mapping can serve a rows×cols grid.
	Validate(rows, cols int) error
}

// RowColumn broadcasts vector a across rows and vector b across
// columns: lane (i, j) multiplies a[i] by b[j]. This is the
// dot-product topology for matrix multiplication.
type RowColumn struct{}

func (RowColumn) Operands(row, col int) (ai, bi int) {
	return row, col
}

func (RowColumn) Extents(rows, cols int) (alen, blen int) {
	return rows, cols
}

func (RowColumn) Validate(rows, cols int) error {
	return nil
}

// Elementwise pairs the vectors lane by lane: lane i multiplies a[i]
// by b[i]. It serves 1-D grids laid out as a single row or column.
type Elementwise struct{}

func (Elementwise) Operands(row, col int) (ai, bi int) {
	i := row + col // one of the two is always zero
	return i, i
}

func (Elementwise) Extents(rows, cols int) (alen, blen int) {
	n := rows * cols
	return n, n
}

func (Elementwise) Validate(rows, cols int) error {
	if rows != 1 && cols != 1 {
		return fmt.Errorf(
			"elementwise mapping requires a 1-D grid, got %dx%d",
			rows, cols)
	}
	return nil
}
