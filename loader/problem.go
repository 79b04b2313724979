// Package loader reads matrix-multiplication problems from JSON files
// and encodes their operands for the compute core's numeric domains.
package loader

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/sarchlab/macgrid/config"
	"github.com/sarchlab/macgrid/fp8"
)

// Problem is a pair of operand matrices encoded for one numeric
// domain, ready to stream into the compute core.
type Problem struct {
	// Domain is the numeric domain the operands are encoded for.
	Domain config.Domain
	// A is the left operand matrix, M rows by K columns. Bytes carry
	// FP8-E4M3 patterns or signed two's-complement values per Domain.
	A [][]uint8
	// B is the right operand matrix, K rows by N columns.
	B [][]uint8
}

// M returns A's row count.
func (p *Problem) M() int {
	return len(p.A)
}

// K returns the shared inner dimension.
func (p *Problem) K() int {
	return len(p.B)
}

// N returns B's column count.
func (p *Problem) N() int {
	return len(p.B[0])
}

// problemFile is the on-disk JSON shape. Operand values are plain
// numbers, converted per the declared domain.
type problemFile struct {
	Domain string      `json:"domain"`
	A      [][]float64 `json:"a"`
	B      [][]float64 `json:"b"`
}

// Load reads a problem file and encodes its operands. Integer-domain
// values must be whole numbers in [-128, 127]; floating-point values
// are rounded to the nearest FP8-E4M3 pattern and must stay inside the
// format's finite range.
func Load(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read problem file: %w", err)
	}

	var pf problemFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse problem file: %w", err)
	}

	domain := config.Domain(pf.Domain)
	if domain != config.DomainInt8 && domain != config.DomainFP8 {
		return nil, fmt.Errorf("unknown domain %q", pf.Domain)
	}

	a, err := encodeMatrix(pf.A, domain)
	if err != nil {
		return nil, fmt.Errorf("matrix a: %w", err)
	}
	b, err := encodeMatrix(pf.B, domain)
	if err != nil {
		return nil, fmt.Errorf("matrix b: %w", err)
	}

	if len(a[0]) != len(b) {
		return nil, fmt.Errorf(
			"inner dimensions disagree: a is %dx%d, b is %dx%d",
			len(a), len(a[0]), len(b), len(b[0]))
	}

	return &Problem{Domain: domain, A: a, B: b}, nil
}

func encodeMatrix(rows [][]float64, domain config.Domain) ([][]uint8, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("matrix is empty")
	}
	width := len(rows[0])

	out := make([][]uint8, len(rows))
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf(
				"row %d has %d values, want %d", i, len(row), width)
		}
		out[i] = make([]uint8, width)
		for j, v := range row {
			enc, err := encodeValue(v, domain)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %d: %w", i, j, err)
			}
			out[i][j] = enc
		}
	}
	return out, nil
}

func encodeValue(v float64, domain config.Domain) (uint8, error) {
	switch domain {
	case config.DomainInt8:
		if v != math.Trunc(v) || v < -128 || v > 127 {
			return 0, fmt.Errorf("value %g is not a signed 8-bit integer", v)
		}
		return uint8(int8(v)), nil

	case config.DomainFP8:
		f := fp8.FromFloat32(float32(v))
		// JSON numbers are always finite, so a NaN encoding can only
		// mean the magnitude fell outside the format's range.
		if f.IsNaN() {
			return 0, fmt.Errorf("value %g is outside the FP8-E4M3 range", v)
		}
		return uint8(f), nil
	}
	return 0, fmt.Errorf("unknown domain %q", domain)
}
