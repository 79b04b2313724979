// Package main provides accuracy validation for the MAC compute core.
// Ensures that the staged operand path preserves computational correctness.
package main

import (
	"fmt"
	"os"

	"github.com/sarchlab/macgrid/config"
	"github.com/sarchlab/macgrid/driver"
	"github.com/sarchlab/macgrid/grid"
	"github.com/sarchlab/macgrid/mac"
)

// testMACSaturation validates the saturating accumulator against
// hand-computed clamp bounds at several widths.
func testMACSaturation() bool {
	testCases := []struct {
		width   uint
		acc     int64
		a, b    int8
		want    int64
		wantSat bool
	}{
		{17, 0, 100, 100, 10000, false},
		{17, 65530, 100, 100, 65535, true},
		{17, -65530, -100, 100, -65536, true},
		{8, 0, 100, 100, 127, true},
		{8, 120, -100, 1, 20, false},
		{2, 0, 1, 1, 1, false},
		{2, 1, 1, 1, 1, true},
	}

	fmt.Println("Testing saturating MAC accuracy...")

	for i, tc := range testCases {
		unit, err := mac.New(tc.width)
		if err != nil {
			fmt.Printf("❌ Test case %d failed: %v\n", i, err)
			return false
		}

		got, sat := unit.MAC(tc.a, tc.b, tc.acc, false)
		if got != tc.want || sat != tc.wantSat {
			fmt.Printf("❌ Test case %d failed: MAC mismatch\n", i)
			fmt.Printf("  Width %d: %d + %d*%d\n", tc.width, tc.acc, tc.a, tc.b)
			fmt.Printf("  Expected: %d (saturated=%v), Got: %d (saturated=%v)\n",
				tc.want, tc.wantSat, got, sat)
			return false
		}

		fmt.Printf("✅ Test case %d: width %d: %d + %d*%d = %d (saturated=%v)\n",
			i, tc.width, tc.acc, tc.a, tc.b, got, sat)
	}

	return true
}

// testArrayBroadcast validates that every lane of a row/column grid sees
// the operand pair its position selects.
func testArrayBroadcast() bool {
	fmt.Println("\nTesting processing array broadcast accuracy...")

	arr, err := grid.NewArray(3, 3, func() (grid.Unit, error) {
		return mac.New(32)
	})
	if err != nil {
		fmt.Printf("❌ Failed to build array: %v\n", err)
		return false
	}

	testVectors := []struct {
		a, b []uint8
	}{
		{[]uint8{1, 2, 3}, []uint8{5, 7, 11}},
		{[]uint8{0xFF, 4, 0x80}, []uint8{2, 0xFE, 1}},
		{[]uint8{0, 25, 0x9C}, []uint8{0x7F, 1, 0xFF}},
	}

	for i, tv := range testVectors {
		// Clear every lane before the next operand set so no state
		// leaks between cases.
		if err := arr.Step(tv.a, tv.b, grid.Control{ClearAcc: true}); err != nil {
			fmt.Printf("❌ Test case %d failed: %v\n", i, err)
			return false
		}
		ctl := grid.Control{DataValid: true, ReadEnable: true}
		if err := arr.Step(tv.a, tv.b, ctl); err != nil {
			fmt.Printf("❌ Test case %d failed: %v\n", i, err)
			return false
		}

		result, done, overflow := arr.Read()
		if !done || overflow {
			fmt.Printf("❌ Test case %d failed: done=%v overflow=%v\n", i, done, overflow)
			return false
		}

		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				want := int64(int8(tv.a[r])) * int64(int8(tv.b[c]))
				if result[r][c] != want {
					fmt.Printf("❌ Test case %d failed at lane (%d,%d):\n", i, r, c)
					fmt.Printf("  Expected: %d, Got: %d\n", want, result[r][c])
					return false
				}
			}
		}

		fmt.Printf("✅ Test case %d: all 9 lane products match\n", i)
	}

	return true
}

// testStagedEquivalence validates that routing operands through the
// staging buffer produces results identical to direct feeds.
func testStagedEquivalence() bool {
	fmt.Println("\nTesting staged operand path accuracy...")

	cfg := config.DefaultIntArrayConfig()

	direct, err := newDriver(cfg)
	if err != nil {
		fmt.Printf("❌ Failed to build direct driver: %v\n", err)
		return false
	}
	staged, err := newDriver(cfg, driver.WithStaging(config.DefaultStagingConfig()))
	if err != nil {
		fmt.Printf("❌ Failed to build staged driver: %v\n", err)
		return false
	}

	a := testMatrix(5, 7, 3)
	b := testMatrix(7, 4, 11)

	directResult, directStats, err := direct.Run(a, b)
	if err != nil {
		fmt.Printf("❌ Direct run failed: %v\n", err)
		return false
	}
	stagedResult, stagedStats, err := staged.Run(a, b)
	if err != nil {
		fmt.Printf("❌ Staged run failed: %v\n", err)
		return false
	}

	want := naiveProduct(a, b)
	for i := range want {
		for j := range want[i] {
			if directResult[i][j] != want[i][j] || stagedResult[i][j] != want[i][j] {
				fmt.Printf("❌ Result mismatch at (%d,%d):\n", i, j)
				fmt.Printf("  Expected: %d, Direct: %d, Staged: %d\n",
					want[i][j], directResult[i][j], stagedResult[i][j])
				return false
			}
		}
	}

	if directStats.Steps != stagedStats.Steps {
		fmt.Printf("❌ Step count mismatch: direct %d, staged %d\n",
			directStats.Steps, stagedStats.Steps)
		return false
	}

	fmt.Printf("✅ Staged and direct results identical over %d steps (hit rate %.1f%%)\n",
		stagedStats.Steps, stagedStats.Staging.HitRate()*100)
	return true
}

func newDriver(cfg *config.Config, opts ...driver.Option) (*driver.Driver, error) {
	arr, err := driver.BuildArray(cfg)
	if err != nil {
		return nil, err
	}
	return driver.New(arr, opts...)
}

// testMatrix fills an m x k matrix with small signed values encoded as
// two's-complement bytes.
func testMatrix(m, k, seed int) [][]uint8 {
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

// naiveProduct is the scalar reference the array results are checked
// against.
func naiveProduct(a, b [][]uint8) [][]int64 {
	m, k, n := len(a), len(b), len(b[0])
	out := make([][]int64, m)
	for i := range out {
		out[i] = make([]int64, n)
		for j := 0; j < n; j++ {
			var sum int64
			for p := 0; p < k; p++ {
				sum += int64(int8(a[i][p])) * int64(int8(b[p][j]))
			}
			out[i][j] = sum
		}
	}
	return out
}

func main() {
	fmt.Println("MACGrid Accuracy Validation - Staged Operand Path")
	fmt.Println("=======================================================")

	allPassed := true

	// Test saturating MAC arithmetic
	if !testMACSaturation() {
		allPassed = false
	}

	// Test array operand broadcast
	if !testArrayBroadcast() {
		allPassed = false
	}

	// Test staging buffer equivalence
	if !testStagedEquivalence() {
		allPassed = false
	}

	fmt.Println("\n=======================================================")
	if allPassed {
		fmt.Println("🎉 ALL ACCURACY TESTS PASSED")
		fmt.Println("✅ The staged operand path preserves computational correctness")
		os.Exit(0)
	} else {
		fmt.Println("❌ ACCURACY TESTS FAILED")
		fmt.Println("🚨 The staged operand path may have introduced errors")
		os.Exit(1)
	}
}
