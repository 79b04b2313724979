// Package benchmarks provides workload infrastructure for exercising the
// compute core under representative matrix shapes.
package benchmarks

import "github.com/sarchlab/macgrid/config"

// Workload defines a single matrix-multiply workload.
type Workload struct {
	// Name identifies the workload
	Name string

	// Description explains what the workload exercises
	Description string

	// Core selects the array deployment the workload runs on
	Core *config.Config

	// Staged routes operand reads through the staging buffer
	Staged bool

	// A and B are the operand matrices, row-major, encoded for the
	// deployment's domain
	A, B [][]uint8

	// ExpectOverflow marks workloads whose tiles are supposed to
	// saturate
	ExpectOverflow bool
}

// GetWorkloads returns the standard workload set. Each workload targets a
// specific aspect of the array: operand routing, accumulation depth,
// saturation, tiling, staging reuse, and the floating-point domain.
func GetWorkloads() []Workload {
	return []Workload{
		identityRouting(),
		denseInt8(),
		alternatingSign(),
		saturationStress(),
		stagedTiles(),
		fp8Dense(),
		fp8Cancellation(),
	}
}

// GetCoreWorkloads returns a minimal set of 3 workloads for quick
// validation: dense integer, tiled with staging, and floating point.
func GetCoreWorkloads() []Workload {
	return []Workload{
		denseInt8(),
		stagedTiles(),
		fp8Dense(),
	}
}

// 1. Identity Routing - multiplying by the identity must reproduce B
// exactly, so any operand-routing defect shows up as a wrong cell.
func identityRouting() Workload {
	a := make([][]uint8, 4)
	for i := range a {
		a[i] = make([]uint8, 4)
		a[i][i] = 1
	}
	return Workload{
		Name:        "identity_routing",
		Description: "4x4 identity times a dense matrix - checks operand routing",
		Core:        config.DefaultIntArrayConfig(),
		A:           a,
		B:           intMat(4, 3, 1),
	}
}

// 2. Dense Int8 - a dense rectangular product over the full signed
// operand range.
func denseInt8() Workload {
	return Workload{
		Name:        "dense_int8",
		Description: "6x5 times 5x7 dense signed product - checks accumulation depth",
		Core:        config.DefaultIntArrayConfig(),
		A:           intMat(6, 5, 3),
		B:           intMat(5, 7, 11),
	}
}

// 3. Alternating Sign - partial sums cross zero on every feed, walking
// the accumulator through both signs.
func alternatingSign() Workload {
	a := make([][]uint8, 3)
	for i := range a {
		a[i] = make([]uint8, 8)
		for j := range a[i] {
			v := i + j + 1
			if j%2 == 1 {
				v = -v
			}
			a[i][j] = uint8(int8(v))
		}
	}
	return Workload{
		Name:        "alternating_sign",
		Description: "3x8 times 8x3 with sign-alternating operands - crosses zero repeatedly",
		Core:        config.DefaultIntArrayConfig(),
		A:           a,
		B:           intMat(8, 3, 7),
	}
}

// 4. Saturation Stress - an 8-bit accumulator under 100*100 products
// clamps on the first feed and must hold the rail.
func saturationStress() Workload {
	cfg := config.DefaultIntArrayConfig()
	cfg.AccWidth = 8
	return Workload{
		Name:           "saturation_stress",
		Description:    "3x6 times 6x3 of +-100 on an 8-bit accumulator - every tile saturates",
		Core:           cfg,
		A:              constMat(3, 6, 100),
		B:              constMat(6, 3, 100),
		ExpectOverflow: true,
	}
}

// 5. Staged Tiles - a product larger than the grid in both dimensions,
// with operand reads going through the staging buffer.
func stagedTiles() Workload {
	return Workload{
		Name:        "staged_tiles",
		Description: "7x9 times 9x8 on a 3x3 grid - 9 output tiles with staged operands",
		Core:        config.DefaultIntArrayConfig(),
		Staged:      true,
		A:           intMat(7, 9, 5),
		B:           intMat(9, 8, 13),
	}
}

// 6. FP8 Dense - a dense product in the floating-point domain with
// magnitudes kept small enough that no sum leaves the finite range.
func fp8Dense() Workload {
	return Workload{
		Name:        "fp8_dense",
		Description: "4x4 times 4x4 E4M3 product - checks rounding through the fold",
		Core:        config.DefaultFP8ArrayConfig(),
		A:           fp8Mat(4, 4, 0),
		B:           fp8Mat(4, 4, 2),
	}
}

// 7. FP8 Cancellation - operand rows pair +x with -x so partial sums
// collapse to +0 mid-fold.
func fp8Cancellation() Workload {
	return Workload{
		Name:        "fp8_cancellation",
		Description: "2x4 times 4x2 E4M3 product with cancelling pairs - exercises the +0 path",
		Core:        config.DefaultFP8ArrayConfig(),
		A: [][]uint8{
			{0x38, 0xB8, 0x3C, 0xBC}, // 1, -1, 1.5, -1.5
			{0x40, 0x38, 0xC0, 0xB8}, // 2, 1, -2, -1
		},
		B: [][]uint8{
			{0x38, 0x40},
			{0x38, 0x40},
			{0x38, 0x40},
			{0x38, 0x40},
		},
	}
}

// intMat fills an m x k matrix with small signed values encoded as
// two's-complement bytes.
func intMat(m, k, seed int) [][]uint8 {
	mat := make([][]uint8, m)
	for i := range mat {
		mat[i] = make([]uint8, k)
		for j := range mat[i] {
			v := (i*7+j*3+seed)%50 - 25
			mat[i][j] = uint8(int8(v))
		}
	}
	return mat
}

// constMat fills an m x k matrix with one operand byte.
func constMat(m, k int, v uint8) [][]uint8 {
	mat := make([][]uint8, m)
	for i := range mat {
		mat[i] = make([]uint8, k)
		for j := range mat[i] {
			mat[i][j] = v
		}
	}
	return mat
}

// fp8Mat cycles an m x k matrix through a palette of small E4M3 values
// whose products and sums stay well inside the finite range.
func fp8Mat(m, k, seed int) [][]uint8 {
	palette := []uint8{
		0x38, // 1.0
		0x3C, // 1.5
		0x30, // 0.5
		0xB8, // -1.0
		0x40, // 2.0
		0xBC, // -1.5
	}
	mat := make([][]uint8, m)
	for i := range mat {
		mat[i] = make([]uint8, k)
		for j := range mat[i] {
			mat[i][j] = palette[(i*3+j+seed)%len(palette)]
		}
	}
	return mat
}
