// Package main provides a profiling wrapper for MACGrid to identify
// performance bottlenecks in the array step path.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sarchlab/macgrid/config"
	"github.com/sarchlab/macgrid/driver"
)

var (
	domain     = flag.String("domain", "int8", "Operand domain to profile (int8 or fp8)")
	staged     = flag.Bool("staged", false, "Route operands through the staging buffer")
	rows       = flag.Int("rows", 3, "Grid row count")
	cols       = flag.Int("cols", 3, "Grid column count")
	dimM       = flag.Int("m", 96, "Output rows of the profiled product")
	dimK       = flag.Int("k", 96, "Shared dimension of the profiled product")
	dimN       = flag.Int("n", 96, "Output columns of the profiled product")
	iterations = flag.Int("iterations", 100, "Number of times to repeat the product")
	cpuProfile = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile = flag.String("memprofile", "", "write memory profile to file")
)

func main() {
	flag.Parse()

	// Start CPU profiling if requested
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	cfg := coreConfig()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	arr, err := driver.BuildArray(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building array: %v\n", err)
		os.Exit(1)
	}
	var opts []driver.Option
	if *staged {
		opts = append(opts, driver.WithStaging(cfg.Staging))
	}
	drv, err := driver.New(arr, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building driver: %v\n", err)
		os.Exit(1)
	}

	a, b := operands(cfg.Domain)

	fmt.Printf("Profiling %s %dx%d grid, %dx%d times %dx%d, %d iterations\n",
		cfg.Domain, cfg.Rows, cfg.Cols, *dimM, *dimK, *dimK, *dimN, *iterations)

	start := time.Now()

	var totalSteps, totalMACs uint64
	for i := 0; i < *iterations; i++ {
		_, stats, err := drv.Run(a, b)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running product: %v\n", err)
			os.Exit(1)
		}
		totalSteps += stats.Steps
		totalMACs += stats.MACs
	}

	elapsed := time.Since(start)

	// Write memory profile if requested
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Array steps: %d\n", totalSteps)
	fmt.Printf("MACs: %d\n", totalMACs)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if totalMACs > 0 {
		fmt.Printf("MACs/second: %.0f\n", float64(totalMACs)/elapsed.Seconds())
	}
}

// coreConfig builds the deployment selected by the flags.
func coreConfig() *config.Config {
	var cfg *config.Config
	if *domain == string(config.DomainFP8) {
		cfg = config.DefaultFP8ArrayConfig()
	} else {
		cfg = config.DefaultIntArrayConfig()
	}
	cfg.Rows = *rows
	cfg.Cols = *cols
	return cfg
}

// operands fills the profiled matrices with cycling values: small signed
// bytes for the integer domain, small E4M3 magnitudes for fp8 so the
// accumulators keep doing representative work across the whole walk.
func operands(d config.Domain) (a, b [][]uint8) {
	fill := func(m, k, seed int) [][]uint8 {
		palette := []uint8{0x30, 0x38, 0xB0, 0xB8} // 0.5, 1, -0.5, -1
		mat := make([][]uint8, m)
		for i := range mat {
			mat[i] = make([]uint8, k)
			for j := range mat[i] {
				if d == config.DomainFP8 {
					mat[i][j] = palette[(i+j+seed)%len(palette)]
					continue
				}
				mat[i][j] = uint8(int8((i*7+j*3+seed)%50 - 25))
			}
		}
		return mat
	}
	return fill(*dimM, *dimK, 3), fill(*dimK, *dimN, 11)
}
