// Validate FP8 arithmetic - exhaustive sweep against a float64 reference
// plus an allocation check on the accumulate hot path
package main

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/sarchlab/macgrid/fp8"
)

// candidate is one representable nonnegative magnitude, or the sentinel
// one binade above the finite range.
type candidate struct {
	bits  fp8.Float8
	value float64
	over  bool
}

func (c candidate) evenMantissa() bool {
	if c.over {
		return true // 1.000 * 2^8
	}
	return c.bits.Mantissa()&1 == 0
}

func candidates() []candidate {
	cs := make([]candidate, 0, 0x79)
	for b := 0; b <= int(fp8.MaxFinite); b++ {
		f := fp8.Float8(b)
		cs = append(cs, candidate{bits: f, value: float64(f.Float32())})
	}
	return append(cs, candidate{value: 256, over: true})
}

// nearest picks the candidate closest to mag, breaking exact ties toward
// the even mantissa. Every magnitude in play is a small dyadic rational,
// so the float64 distances are exact.
func nearest(cs []candidate, mag float64) candidate {
	best := cs[0]
	bestDist := math.Abs(mag - best.value)
	for _, c := range cs[1:] {
		d := math.Abs(mag - c.value)
		switch {
		case d < bestDist:
			best, bestDist = c, d
		case d == bestDist && c.evenMantissa() && !best.evenMantissa():
			best = c
		}
	}
	return best
}

func zeroOf(neg bool) fp8.Float8 {
	if neg {
		return fp8.NegativeZero
	}
	return fp8.PositiveZero
}

func signed(c candidate, neg bool) fp8.Float8 {
	if neg {
		return c.bits | 0x80
	}
	return c.bits
}

// mulReference computes the expected product pattern and whether the
// overflow flag should be raised.
func mulReference(cs []candidate, a, b fp8.Float8) (fp8.Float8, bool) {
	if a.IsNaN() || b.IsNaN() {
		return fp8.NaN, false
	}
	neg := a.IsNegative() != b.IsNegative()
	if a.IsZero() || b.IsZero() {
		return zeroOf(neg), false
	}
	c := nearest(cs, math.Abs(float64(a.Float32())*float64(b.Float32())))
	switch {
	case c.over:
		return fp8.NaN, true
	case c.value == 0:
		return zeroOf(neg), false
	}
	return signed(c, neg), false
}

// addReference computes the expected sum pattern and whether the overflow
// flag should be raised.
func addReference(cs []candidate, a, b fp8.Float8) (fp8.Float8, bool) {
	if a.IsNaN() || b.IsNaN() {
		return fp8.NaN, false
	}
	if a.IsZero() {
		if b.IsZero() {
			return a, false
		}
		return b, false
	}
	if b.IsZero() {
		return a, false
	}
	sum := float64(a.Float32()) + float64(b.Float32())
	if sum == 0 {
		return fp8.PositiveZero, false
	}
	c := nearest(cs, math.Abs(sum))
	switch {
	case c.over:
		return fp8.NaN, true
	case c.value == 0:
		return zeroOf(sum < 0), false
	}
	return signed(c, sum < 0), false
}

func checkMul(cs []candidate) int {
	mismatches := 0
	for ai := 0; ai < 256; ai++ {
		for bi := 0; bi < 256; bi++ {
			a, b := fp8.Float8(ai), fp8.Float8(bi)
			got, flags := fp8.Mul(a, b)
			want, wantOver := mulReference(cs, a, b)
			if got != want || flags.Overflow != wantOver {
				if mismatches < 5 {
					fmt.Printf("❌ Mul(0x%02X, 0x%02X) = 0x%02X, want 0x%02X\n",
						ai, bi, uint8(got), uint8(want))
				}
				mismatches++
			}
		}
	}
	return mismatches
}

func checkAdd(cs []candidate) int {
	mismatches := 0
	for ai := 0; ai < 256; ai++ {
		for bi := 0; bi < 256; bi++ {
			a, b := fp8.Float8(ai), fp8.Float8(bi)
			got, flags := fp8.Add(a, b)
			want, wantOver := addReference(cs, a, b)
			if got != want || flags.Overflow != wantOver {
				if mismatches < 5 {
					fmt.Printf("❌ Add(0x%02X, 0x%02X) = 0x%02X, want 0x%02X\n",
						ai, bi, uint8(got), uint8(want))
				}
				mismatches++
			}
		}
	}
	return mismatches
}

// checkRoundTrip decodes every pattern to float32 and re-encodes it. All
// non-NaN patterns must survive unchanged; NaN patterns collapse to the
// canonical NaN.
func checkRoundTrip() int {
	mismatches := 0
	for i := 0; i < 256; i++ {
		f := fp8.Float8(i)
		got := fp8.FromFloat32(f.Float32())
		want := f
		if f.IsNaN() {
			want = fp8.NaN
		}
		if got != want {
			fmt.Printf("❌ Round trip 0x%02X -> %g -> 0x%02X, want 0x%02X\n",
				i, f.Float32(), uint8(got), uint8(want))
			mismatches++
		}
	}
	return mismatches
}

func main() {
	fmt.Println("FP8 E4M3 Arithmetic Validation")
	fmt.Println("========================================")

	cs := candidates()

	mulBad := checkMul(cs)
	fmt.Printf("Mul sweep: %d operand pairs, %d mismatches\n", 256*256, mulBad)

	addBad := checkAdd(cs)
	fmt.Printf("Add sweep: %d operand pairs, %d mismatches\n", 256*256, addBad)

	rtBad := checkRoundTrip()
	fmt.Printf("Round trip: 256 patterns, %d mismatches\n", rtBad)

	// Warm up the accumulate path before measuring.
	unit := fp8.Unit{}
	acc := int64(fp8.PositiveZero)
	for i := 0; i < 1000; i++ {
		acc, _ = unit.Accumulate(acc, uint8(fp8.One), uint8(fp8.One))
	}

	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	iterations := 1000000

	// Alternate +1 and -1 products so the accumulator keeps cycling
	// through the full add path instead of parking on a saturated value.
	acc = int64(fp8.PositiveZero)
	for i := 0; i < iterations; i++ {
		acc, _ = unit.Accumulate(acc, uint8(fp8.One), 0x38)
		acc, _ = unit.Accumulate(acc, uint8(fp8.One), 0xB8)
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	totalOps := iterations * 2
	allocations := m2.Mallocs - m1.Mallocs

	fmt.Printf("\nAccumulate Hot Path Results:\n")
	fmt.Printf("========================================\n")
	fmt.Printf("Total accumulate operations: %d\n", totalOps)
	fmt.Printf("Time elapsed: %v\n", elapsed)
	fmt.Printf("Operations per second: %.0f\n", float64(totalOps)/elapsed.Seconds())
	fmt.Printf("Allocations: %d\n", allocations)
	fmt.Printf("Allocations per operation: %.3f\n", float64(allocations)/float64(totalOps))

	if allocations == 0 {
		fmt.Printf("✅ Zero allocations on the accumulate path\n")
	} else {
		fmt.Printf("⚠️  Accumulate path allocates\n")
	}

	total := mulBad + addBad + rtBad
	if total == 0 {
		fmt.Printf("\n✅ SUCCESS: every pattern matches the float64 reference\n")
	} else {
		fmt.Printf("\n❌ FAILURE: %d mismatches against the float64 reference\n", total)
		os.Exit(1)
	}
}
