package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/macgrid/config"
	"github.com/sarchlab/macgrid/driver"
	"github.com/sarchlab/macgrid/fp8"
)

// WorkloadResult holds the outcome of a single workload run.
type WorkloadResult struct {
	// Name identifies the workload
	Name string `json:"name"`

	// Description explains what the workload exercises
	Description string `json:"description"`

	// Passed is true when every output cell matched the scalar
	// reference and the overflow expectation held
	Passed bool `json:"passed"`

	// Error carries a build or run failure
	Error string `json:"error,omitempty"`

	// Mismatches is the number of output cells that differed from the
	// scalar reference
	Mismatches int `json:"mismatches"`

	// Tiles is the number of output tiles computed
	Tiles uint64 `json:"tiles"`

	// Steps is the total number of array steps, clears included
	Steps uint64 `json:"steps"`

	// Clears is the number of clear steps
	Clears uint64 `json:"clears"`

	// MACs is the number of multiply-accumulates on real operands
	MACs uint64 `json:"macs"`

	// LaneSteps is the lane capacity of the data steps
	LaneSteps uint64 `json:"lane_steps"`

	// Utilization is MACs over LaneSteps
	Utilization float64 `json:"utilization"`

	// OverflowTiles is the number of tiles that saturated
	OverflowTiles uint64 `json:"overflow_tiles"`

	// StagingHits/Misses (if staging enabled)
	StagingHits   uint64 `json:"staging_hits,omitempty"`
	StagingMisses uint64 `json:"staging_misses,omitempty"`

	// WallTime is the actual time taken to run the workload
	WallTime time.Duration `json:"wall_time_ns"`
}

// HarnessConfig configures the workload harness.
type HarnessConfig struct {
	// Staging is the buffer geometry used by staged workloads
	Staging config.StagingConfig

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Staging: config.DefaultStagingConfig(),
		Output:  os.Stdout,
		Verbose: false,
	}
}

// Harness runs workloads and reports results.
type Harness struct {
	config    HarnessConfig
	workloads []Workload
}

// NewHarness creates a new workload harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{
		config:    config,
		workloads: []Workload{},
	}
}

// AddWorkload adds a workload to the harness.
func (h *Harness) AddWorkload(w Workload) {
	h.workloads = append(h.workloads, w)
}

// AddWorkloads adds multiple workloads to the harness.
func (h *Harness) AddWorkloads(workloads []Workload) {
	h.workloads = append(h.workloads, workloads...)
}

// RunAll executes all workloads and returns results.
func (h *Harness) RunAll() []WorkloadResult {
	results := make([]WorkloadResult, 0, len(h.workloads))

	for _, w := range h.workloads {
		result := h.runWorkload(w)
		results = append(results, result)
	}

	return results
}

// runWorkload executes a single workload on a fresh driver and checks
// the output against the scalar reference.
func (h *Harness) runWorkload(w Workload) WorkloadResult {
	result := WorkloadResult{Name: w.Name, Description: w.Description}

	arr, err := driver.BuildArray(w.Core)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	var opts []driver.Option
	if w.Staged {
		opts = append(opts, driver.WithStaging(h.config.Staging))
	}
	drv, err := driver.New(arr, opts...)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	start := time.Now()
	out, stats, err := drv.Run(w.A, w.B)
	result.WallTime = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	want := reference(w.Core, w.A, w.B)
	for i := range want {
		for j := range want[i] {
			if out[i][j] != want[i][j] {
				result.Mismatches++
			}
		}
	}

	result.Tiles = stats.Tiles
	result.Steps = stats.Steps
	result.Clears = stats.Clears
	result.MACs = stats.MACs
	result.LaneSteps = stats.LaneSteps
	result.Utilization = stats.Utilization()
	result.OverflowTiles = stats.OverflowTiles
	result.StagingHits = stats.Staging.Hits
	result.StagingMisses = stats.Staging.Misses
	result.Passed = result.Mismatches == 0 &&
		(stats.OverflowTiles > 0) == w.ExpectOverflow
	return result
}

// reference computes the expected output with a scalar fold that mirrors
// the lane semantics: a clamped true sum for the integer domain, an
// E4M3 accumulator for the floating-point domain.
func reference(cfg *config.Config, a, b [][]uint8) [][]int64 {
	m, k, n := len(a), len(b), len(b[0])
	out := make([][]int64, m)
	for i := range out {
		out[i] = make([]int64, n)
		for j := 0; j < n; j++ {
			if cfg.Domain == config.DomainFP8 {
				acc := fp8.PositiveZero
				for p := 0; p < k; p++ {
					prod, _ := fp8.Mul(fp8.Float8(a[i][p]), fp8.Float8(b[p][j]))
					acc, _ = fp8.Add(acc, prod)
				}
				out[i][j] = int64(acc)
				continue
			}

			max := int64(1)<<(cfg.AccWidth-1) - 1
			min := -max - 1
			var acc int64
			for p := 0; p < k; p++ {
				acc += int64(int8(a[i][p])) * int64(int8(b[p][j]))
				if acc > max {
					acc = max
				}
				if acc < min {
					acc = min
				}
			}
			out[i][j] = acc
		}
	}
	return out
}

// PrintResults outputs workload results in a human-readable format.
func (h *Harness) PrintResults(results []WorkloadResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== MACGrid Workload Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Workload: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		if r.Error != "" {
			_, _ = fmt.Fprintf(h.config.Output, "  Error: %s\n", r.Error)
			_, _ = fmt.Fprintln(h.config.Output, "")
			continue
		}
		_, _ = fmt.Fprintf(h.config.Output, "  Passed: %v\n", r.Passed)
		_, _ = fmt.Fprintln(h.config.Output, "  --- Array ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Tiles:          %d\n", r.Tiles)
		_, _ = fmt.Fprintf(h.config.Output, "  Steps:          %d (%d clears)\n", r.Steps, r.Clears)
		_, _ = fmt.Fprintf(h.config.Output, "  MACs:           %d\n", r.MACs)
		_, _ = fmt.Fprintf(h.config.Output, "  Lane Steps:     %d\n", r.LaneSteps)
		_, _ = fmt.Fprintf(h.config.Output, "  Utilization:    %.1f%%\n", r.Utilization*100)
		_, _ = fmt.Fprintf(h.config.Output, "  Overflow Tiles: %d\n", r.OverflowTiles)

		if r.StagingHits > 0 || r.StagingMisses > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- Staging ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Hits:   %d\n", r.StagingHits)
			_, _ = fmt.Fprintf(h.config.Output, "  Misses: %d\n", r.StagingMisses)
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs workload results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []WorkloadResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,passed,mismatches,tiles,steps,clears,macs,lane_steps,utilization,overflow_tiles,staging_hits,staging_misses")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%v,%d,%d,%d,%d,%d,%d,%.3f,%d,%d,%d\n",
			r.Name,
			r.Passed,
			r.Mismatches,
			r.Tiles,
			r.Steps,
			r.Clears,
			r.MACs,
			r.LaneSteps,
			r.Utilization,
			r.OverflowTiles,
			r.StagingHits,
			r.StagingMisses,
		)
	}
}

// WorkloadReport is the complete output format for workload results.
type WorkloadReport struct {
	// Metadata about the workload run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual workload results
	Results []WorkloadResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the workload run.
type ReportMetadata struct {
	// Timestamp when the workloads were run
	Timestamp string `json:"timestamp"`

	// Version of the core model
	Version string `json:"version"`
}

// ReportSummary contains aggregate statistics across all workloads.
type ReportSummary struct {
	// TotalWorkloads is the number of workloads run
	TotalWorkloads int `json:"total_workloads"`

	// Passed is the number of workloads that passed
	Passed int `json:"passed"`

	// TotalSteps is the sum of all array steps
	TotalSteps uint64 `json:"total_steps"`

	// TotalMACs is the sum of all multiply-accumulates
	TotalMACs uint64 `json:"total_macs"`

	// AverageUtilization is MACs over lane-steps across all workloads
	AverageUtilization float64 `json:"average_utilization"`

	// TotalWallTime is the total wall clock time for all workloads
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// PrintJSON outputs workload results in JSON format for automated
// comparison.
func (h *Harness) PrintJSON(results []WorkloadResult) error {
	var totalSteps, totalMACs, totalLaneSteps uint64
	var totalWallTime time.Duration
	passed := 0
	for _, r := range results {
		totalSteps += r.Steps
		totalMACs += r.MACs
		totalLaneSteps += r.LaneSteps
		totalWallTime += r.WallTime
		if r.Passed {
			passed++
		}
	}

	avgUtil := float64(0)
	if totalLaneSteps > 0 {
		avgUtil = float64(totalMACs) / float64(totalLaneSteps)
	}

	report := WorkloadReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
		Results: results,
		Summary: ReportSummary{
			TotalWorkloads:     len(results),
			Passed:             passed,
			TotalSteps:         totalSteps,
			TotalMACs:          totalMACs,
			AverageUtilization: avgUtil,
			TotalWallTime:      totalWallTime,
		},
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
