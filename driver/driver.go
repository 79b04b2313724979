// Package driver runs matrix multiplications on the compute core. It
// tiles the output over the grid, streams operand vectors through the
// broadcast buses one step per inner-dimension element, and collects
// results and status from the array.
package driver

import (
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/macgrid/config"
	"github.com/sarchlab/macgrid/fp8"
	"github.com/sarchlab/macgrid/grid"
	"github.com/sarchlab/macgrid/mac"
	"github.com/sarchlab/macgrid/trace"
)

// Driver owns one array and the plumbing around it.
type Driver struct {
	array *grid.Array

	stagingCfg *config.StagingConfig
	traceOut   io.Writer
	tracer     *trace.Writer
}

// Option adjusts driver construction.
type Option func(*Driver)

// WithStaging routes operand fetches through a staging buffer with the
// given geometry. A fresh buffer is built per run.
func WithStaging(cfg config.StagingConfig) Option {
	return func(d *Driver) {
		c := cfg
		d.stagingCfg = &c
	}
}

// WithTrace records every control step as a VCD waveform into out.
func WithTrace(out io.Writer) Option {
	return func(d *Driver) {
		d.traceOut = out
	}
}

// New returns a driver over the given array. The array must use the
// row/column topology, which the tiling scheme relies on.
func New(array *grid.Array, opts ...Option) (*Driver, error) {
	if array == nil {
		return nil, errors.New("nil array")
	}
	alen, blen := array.Extents()
	if alen != array.Rows() || blen != array.Cols() {
		return nil, errors.New("driver requires a row/column-mapped array")
	}

	d := &Driver{array: array}
	for _, opt := range opts {
		opt(d)
	}

	if d.stagingCfg != nil {
		if err := d.stagingCfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid staging geometry: %w", err)
		}
	}
	if d.traceOut != nil {
		d.tracer = trace.NewWriter(d.traceOut, array.Rows(), array.Cols())
	}
	return d, nil
}

// BuildArray constructs the array a config describes.
func BuildArray(cfg *config.Config) (*grid.Array, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var newUnit func() (grid.Unit, error)
	switch cfg.Domain {
	case config.DomainInt8:
		width := cfg.AccWidth
		newUnit = func() (grid.Unit, error) {
			return mac.New(width)
		}
	case config.DomainFP8:
		newUnit = func() (grid.Unit, error) {
			return fp8.Unit{}, nil
		}
	default:
		return nil, fmt.Errorf("unknown domain %q", cfg.Domain)
	}

	var opts []grid.Option
	if cfg.Mapping == config.MappingElementwise {
		opts = append(opts, grid.WithMapping(grid.Elementwise{}))
	}
	return grid.NewArray(cfg.Rows, cfg.Cols, newUnit, opts...)
}

// RunStats counts the work one Run performed.
type RunStats struct {
	// Tiles is the number of output tiles computed.
	Tiles uint64
	// Steps is the total number of array steps issued, clears
	// included.
	Steps uint64
	// Clears is the number of clear steps.
	Clears uint64
	// MACs is the number of multiply-accumulates on real operands,
	// padding excluded.
	MACs uint64
	// LaneSteps is the lane capacity of the data steps: lanes times
	// non-clear steps.
	LaneSteps uint64
	// OverflowTiles is the number of tiles whose array-level overflow
	// was set when read.
	OverflowTiles uint64
	// Staging holds the staging buffer counters, all zero when no
	// staging buffer is configured.
	Staging StagingStats
}

// Utilization returns the fraction of lane-steps that performed a
// multiply-accumulate on real operands rather than padding.
func (s RunStats) Utilization() float64 {
	if s.LaneSteps == 0 {
		return 0
	}
	return float64(s.MACs) / float64(s.LaneSteps)
}

// Run multiplies a (M×K) by b (K×N) and returns the M×N result. Cells
// carry the lane accumulator encoding: true sums for the integer
// domain, FP8-E4M3 bit patterns widened to int64 for the
// floating-point domain. Lane overflow is reported through the stats,
// not as an error.
func (d *Driver) Run(a, b [][]uint8) ([][]int64, RunStats, error) {
	var stats RunStats

	m, k, n, err := problemDims(a, b)
	if err != nil {
		return nil, stats, err
	}

	rows := d.array.Rows()
	cols := d.array.Cols()

	sb, bBase, err := d.buildStaging(a, b, m, k, n)
	if err != nil {
		return nil, stats, err
	}

	out := make([][]int64, m)
	for i := range out {
		out[i] = make([]int64, n)
	}

	aVec := make([]uint8, rows)
	bVec := make([]uint8, cols)
	zeroA := make([]uint8, rows)
	zeroB := make([]uint8, cols)
	clearCtl := grid.Control{ClearAcc: true}

	for i0 := 0; i0 < m; i0 += rows {
		for j0 := 0; j0 < n; j0 += cols {
			stats.Tiles++

			realRows := rows
			if m-i0 < rows {
				realRows = m - i0
			}
			realCols := cols
			if n-j0 < cols {
				realCols = n - j0
			}

			if err := d.array.Step(zeroA, zeroB, clearCtl); err != nil {
				return nil, stats, fmt.Errorf("clear step: %w", err)
			}
			stats.Steps++
			stats.Clears++
			if err := d.record(clearCtl); err != nil {
				return nil, stats, fmt.Errorf("trace: %w", err)
			}

			for kk := 0; kk < k; kk++ {
				if sb != nil {
					sb.ReadVector(aVec[:realRows],
						uint64(i0*k+kk), uint64(k))
					sb.ReadVector(bVec[:realCols],
						bBase+uint64(kk*n+j0), 1)
				} else {
					for r := 0; r < realRows; r++ {
						aVec[r] = a[i0+r][kk]
					}
					for c := 0; c < realCols; c++ {
						bVec[c] = b[kk][j0+c]
					}
				}
				for r := realRows; r < rows; r++ {
					aVec[r] = 0
				}
				for c := realCols; c < cols; c++ {
					bVec[c] = 0
				}

				ctl := grid.Control{
					DataValid:  true,
					ReadEnable: kk == k-1,
				}
				if err := d.array.Step(aVec, bVec, ctl); err != nil {
					return nil, stats, fmt.Errorf("data step: %w", err)
				}
				stats.Steps++
				stats.MACs += uint64(realRows * realCols)
				if err := d.record(ctl); err != nil {
					return nil, stats, fmt.Errorf("trace: %w", err)
				}
			}

			result, done, overflow := d.array.Read()
			if !done {
				return nil, stats, errors.New(
					"array not done after final data step")
			}
			if overflow {
				stats.OverflowTiles++
			}
			for r := 0; r < realRows; r++ {
				for c := 0; c < realCols; c++ {
					out[i0+r][j0+c] = result[r][c]
				}
			}
		}
	}

	stats.LaneSteps = uint64(rows*cols) * (stats.Steps - stats.Clears)
	if sb != nil {
		stats.Staging = sb.Stats()
	}
	return out, stats, nil
}

// Close flushes the trace stream, if any.
func (d *Driver) Close() error {
	if d.tracer == nil {
		return nil
	}
	return d.tracer.Close()
}

func (d *Driver) record(ctl grid.Control) error {
	if d.tracer == nil {
		return nil
	}
	done, overflow := d.array.Status()
	return d.tracer.Record(ctl, done, overflow)
}

// buildStaging lays both matrices into one flat slab, a first, b
// aligned up to the next line boundary, and opens a staging buffer
// over it. It returns a nil buffer when staging is not configured.
func (d *Driver) buildStaging(
	a, b [][]uint8,
	m, k, n int,
) (*StagingBuffer, uint64, error) {
	if d.stagingCfg == nil {
		return nil, 0, nil
	}

	lineSize := d.stagingCfg.LineSize
	bBase := (m*k + lineSize - 1) / lineSize * lineSize

	data := make([]byte, bBase+k*n)
	for i := 0; i < m; i++ {
		copy(data[i*k:], a[i])
	}
	for i := 0; i < k; i++ {
		copy(data[bBase+i*n:], b[i])
	}

	sb, err := NewStagingBuffer(*d.stagingCfg, &slab{data: data})
	if err != nil {
		return nil, 0, err
	}
	return sb, uint64(bBase), nil
}

// slab is a flat in-memory backing store. Reads past the end fill with
// zeros.
type slab struct {
	data []byte
}

func (s *slab) ReadLine(addr uint64, buf []byte) {
	for i := range buf {
		pos := int(addr) + i
		if pos < len(s.data) {
			buf[i] = s.data[pos]
		} else {
			buf[i] = 0
		}
	}
}

func problemDims(a, b [][]uint8) (m, k, n int, err error) {
	if len(a) == 0 || len(a[0]) == 0 {
		return 0, 0, 0, errors.New("matrix a is empty")
	}
	if len(b) == 0 || len(b[0]) == 0 {
		return 0, 0, 0, errors.New("matrix b is empty")
	}

	m = len(a)
	k = len(a[0])
	n = len(b[0])

	for i, row := range a {
		if len(row) != k {
			return 0, 0, 0, fmt.Errorf(
				"matrix a row %d has %d values, want %d", i, len(row), k)
		}
	}
	if len(b) != k {
		return 0, 0, 0, fmt.Errorf(
			"inner dimensions disagree: a is %dx%d, b has %d rows",
			m, k, len(b))
	}
	for i, row := range b {
		if len(row) != n {
			return 0, 0, 0, fmt.Errorf(
				"matrix b row %d has %d values, want %d", i, len(row), n)
		}
	}
	return m, k, n, nil
}
