// Package main provides the entry point for MACGrid.
// MACGrid is a convolution-accelerator compute core model with FP8-E4M3
// and saturating int8 MAC arithmetic.
//
// For the full CLI, use: go run ./cmd/macgrid
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("MACGrid - MAC Compute Core Model")
	fmt.Println("FP8-E4M3 and saturating int8 processing arrays")
	fmt.Println("")
	fmt.Println("Usage: macgrid [options] <problem.json>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config    Path to core configuration JSON file")
	fmt.Println("  -preset    Built-in configuration preset (lane, int, fp8)")
	fmt.Println("  -trace     Write a VCD trace of the run to the given file")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/macgrid' for the full CLI, or")
	fmt.Println("'go run ./cmd/fp8conv' for the E4M3 bit-pattern converter.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/macgrid' instead.")
	}
}
