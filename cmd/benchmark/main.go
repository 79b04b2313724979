// Command benchmark runs the MACGrid workload harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv   Output results in CSV format (default: human-readable)
//	-json  Output results as a JSON report
//	-core  Run only the minimal core workload set
//
// Example:
//
//	# Run all workloads with human-readable output
//	go run ./cmd/benchmark
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
//
// Every workload is checked against a scalar reference, so the harness
// doubles as an end-to-end correctness sweep over the array.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/macgrid/benchmarks"
)

func main() {
	// Parse flags
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results as a JSON report")
	coreOnly := flag.Bool("core", false, "Run only the minimal core workload set")
	flag.Parse()

	// Configure harness
	config := benchmarks.DefaultConfig()
	config.Output = os.Stdout

	// Create harness and add workloads
	harness := benchmarks.NewHarness(config)
	if *coreOnly {
		harness.AddWorkloads(benchmarks.GetCoreWorkloads())
	} else {
		harness.AddWorkloads(benchmarks.GetWorkloads())
	}

	// Print configuration
	if !*csvOutput && !*jsonOutput {
		fmt.Println("MACGrid Workload Harness")
		fmt.Println("========================")
		fmt.Printf("Core set only: %v\n", *coreOnly)
		fmt.Println("")
	}

	// Run workloads
	results := harness.RunAll()

	// Output results
	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON report: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)

		// Print summary
		fmt.Println("=== Summary ===")
		fmt.Println("")
		fmt.Println("Expected characteristics:")
		fmt.Println("- identity_routing: utilization matches the real-row fraction")
		fmt.Println("- dense_int8: multiple tiles, no overflow")
		fmt.Println("- alternating_sign: accumulators cross zero on every feed")
		fmt.Println("- saturation_stress: every tile reports overflow")
		fmt.Println("- staged_tiles: staging hit rate well above the miss rate")
		fmt.Println("- fp8_dense: results follow round-to-nearest-even")
		fmt.Println("- fp8_cancellation: lanes land back on +0")
	}

	failed := 0
	for _, r := range results {
		if !r.Passed {
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d workload(s) failed\n", failed)
		os.Exit(1)
	}
}
