// Package main provides the entry point for macgrid.
// Macgrid runs matrix multiplications on a broadcast MAC compute core.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/macgrid/config"
	"github.com/sarchlab/macgrid/driver"
	"github.com/sarchlab/macgrid/fp8"
	"github.com/sarchlab/macgrid/loader"
)

var (
	configPath = flag.String("config", "", "Path to core configuration JSON file")
	preset     = flag.String("preset", "", `Core preset: "lane", "int", or "fp8" (used when -config is absent)`)
	tracePath  = flag.String("trace", "", "Write a VCD waveform of every step to this file")
	staging    = flag.Bool("staging", false, "Route operand fetches through the staging buffer")
	demo       = flag.Bool("demo", false, "Run the built-in demo problem instead of a problem file")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if !*demo && flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: macgrid [options] <problem.json>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	problem, err := resolveProblem()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading problem: %v\n", err)
		os.Exit(1)
	}

	cfg, err := resolveConfig(problem.Domain)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if problem.Domain != cfg.Domain {
		fmt.Fprintf(os.Stderr, "Error: problem domain %q does not match core domain %q\n",
			problem.Domain, cfg.Domain)
		os.Exit(1)
	}

	array, err := driver.BuildArray(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building array: %v\n", err)
		os.Exit(1)
	}

	var opts []driver.Option
	if *staging {
		opts = append(opts, driver.WithStaging(cfg.Staging))
	}
	var traceFile *os.File
	if *tracePath != "" {
		traceFile, err = os.Create(*tracePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating trace file: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, driver.WithTrace(traceFile))
	}

	d, err := driver.New(array, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building driver: %v\n", err)
		os.Exit(1)
	}

	result, stats, err := d.Run(problem.A, problem.B)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running problem: %v\n", err)
		os.Exit(1)
	}
	if err := d.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error finishing trace: %v\n", err)
		os.Exit(1)
	}
	if traceFile != nil {
		if err := traceFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing trace file: %v\n", err)
			os.Exit(1)
		}
	}

	if *verbose {
		printOperands("Matrix A", problem.A, problem.Domain)
		printOperands("Matrix B", problem.B, problem.Domain)
		printResult("Result", result, problem.Domain)
	}

	printReport(problem, cfg, stats)
}

// resolveProblem loads the problem file or builds the demo problem.
func resolveProblem() (*loader.Problem, error) {
	if !*demo {
		return loader.Load(flag.Arg(0))
	}
	if *preset == "fp8" {
		return demoProblem(config.DomainFP8), nil
	}
	return demoProblem(config.DomainInt8), nil
}

// demoProblem returns the built-in problem for a domain.
func demoProblem(domain config.Domain) *loader.Problem {
	if domain == config.DomainFP8 {
		return &loader.Problem{
			Domain: config.DomainFP8,
			A: [][]uint8{
				{0x38, 0x3C, 0x40},
				{0xB8, 0x30, 0x44},
			},
			B: [][]uint8{
				{0x38, 0xBC},
				{0x40, 0x30},
				{0x3C, 0x38},
			},
		}
	}
	return &loader.Problem{
		Domain: config.DomainInt8,
		A: [][]uint8{
			{1, 2, 3, 4},
			{5, 6, 7, 8},
			{9, 0xF6, 11, 12},
		},
		B: [][]uint8{
			{1, 0xFF},
			{2, 3},
			{0xFB, 4},
			{5, 6},
		},
	}
}

// resolveConfig picks the core configuration: an explicit file, a
// named preset, or the preset matching the problem domain.
func resolveConfig(domain config.Domain) (*config.Config, error) {
	if *configPath != "" {
		cfg, err := config.LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
		return cfg, cfg.Validate()
	}

	switch *preset {
	case "lane":
		return config.DefaultLaneConfig(), nil
	case "int":
		return config.DefaultIntArrayConfig(), nil
	case "fp8":
		return config.DefaultFP8ArrayConfig(), nil
	case "":
	default:
		return nil, fmt.Errorf("unknown preset %q", *preset)
	}

	if domain == config.DomainFP8 {
		return config.DefaultFP8ArrayConfig(), nil
	}
	return config.DefaultIntArrayConfig(), nil
}

// printOperands prints an operand matrix decoded per its domain.
func printOperands(name string, m [][]uint8, domain config.Domain) {
	fmt.Printf("%s:\n", name)
	for _, row := range m {
		for _, v := range row {
			if domain == config.DomainFP8 {
				printFP8Cell(int64(v))
			} else {
				fmt.Printf(" %8d", int8(v))
			}
		}
		fmt.Printf("\n")
	}
	fmt.Printf("\n")
}

// printResult prints a result matrix decoded per its domain.
func printResult(name string, m [][]int64, domain config.Domain) {
	fmt.Printf("%s:\n", name)
	for _, row := range m {
		for _, v := range row {
			if domain == config.DomainFP8 {
				printFP8Cell(v)
			} else {
				fmt.Printf(" %8d", v)
			}
		}
		fmt.Printf("\n")
	}
	fmt.Printf("\n")
}

func printFP8Cell(v int64) {
	f := fp8.Float8(v)
	if f.IsNaN() {
		fmt.Printf("      NaN")
	} else {
		fmt.Printf(" %8.4f", f.Float32())
	}
}

// printReport prints the run statistics.
func printReport(problem *loader.Problem, cfg *config.Config, stats driver.RunStats) {
	totalSteps := stats.Steps
	if totalSteps == 0 {
		totalSteps = 1 // Avoid division by zero
	}
	dataSteps := stats.Steps - stats.Clears

	fmt.Printf("\n")
	fmt.Printf("Problem: %dx%d * %dx%d (%s)\n",
		problem.M(), problem.K(), problem.K(), problem.N(), problem.Domain)
	fmt.Printf("Grid: %dx%d, %s, acc width %d\n",
		cfg.Rows, cfg.Cols, cfg.Domain, cfg.AccWidth)
	fmt.Printf("Tiles: %d\n", stats.Tiles)
	fmt.Printf("Total Steps: %d\n", stats.Steps)
	fmt.Printf("\n")
	fmt.Printf("Breakdown:\n")
	fmt.Printf("  Clear steps: %4d (%5.1f%%)\n",
		stats.Clears, 100.0*float64(stats.Clears)/float64(totalSteps))
	fmt.Printf("  Data steps:  %4d (%5.1f%%)\n",
		dataSteps, 100.0*float64(dataSteps)/float64(totalSteps))
	fmt.Printf("  Lane MACs:   %4d\n", stats.MACs)
	fmt.Printf("  Utilization: %5.1f%%\n", 100.0*stats.Utilization())
	fmt.Printf("\n")
	fmt.Printf("Status:\n")
	fmt.Printf("  Overflow tiles: %d\n", stats.OverflowTiles)
	if stats.Staging.Fetches > 0 {
		fmt.Printf("  Staging: %d fetches, %.1f%% hit rate, %d evictions\n",
			stats.Staging.Fetches,
			100.0*stats.Staging.HitRate(),
			stats.Staging.Evictions)
	}
}
