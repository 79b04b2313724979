// Package main provides a CLI converter between decimal values and E4M3
// bit patterns.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/sarchlab/macgrid/fp8"
)

var (
	decode = flag.Bool("bits", false, "Treat arguments as raw bit patterns instead of decimal values")
	table  = flag.Bool("table", false, "Print every bit pattern with its decoded value and exit")
)

func main() {
	flag.Parse()

	if *table {
		printTable()
		return
	}

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: fp8conv [options] <value>...\n")
		fmt.Fprintf(os.Stderr, "\nConverts decimal values to E4M3 bit patterns. With -bits, arguments\n")
		fmt.Fprintf(os.Stderr, "are bit patterns (decimal, 0x.., or 0b..) decoded back to values.\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	for _, arg := range flag.Args() {
		var err error
		if *decode {
			err = decodeArg(arg)
		} else {
			err = encodeArg(arg)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

// encodeArg converts a decimal value to its nearest E4M3 pattern and
// prints the field breakdown.
func encodeArg(arg string) error {
	v, err := strconv.ParseFloat(arg, 32)
	if err != nil {
		return fmt.Errorf("failed to parse %q as a decimal value: %w", arg, err)
	}

	f := fp8.FromFloat32(float32(v))
	fmt.Printf("%s -> 0x%02X (0b%08b)\n", arg, uint8(f), uint8(f))
	describe(f)

	switch {
	case f.IsNaN() && !math.IsNaN(v):
		fmt.Printf("  note     magnitude %g is outside the finite range, saturated to NaN\n", math.Abs(v))
	case !f.IsNaN() && f.IsZero() && v != 0:
		fmt.Printf("  note     magnitude %g is below the denormal range, flushed to zero\n", math.Abs(v))
	case !f.IsNaN() && float64(f.Float32()) != v:
		fmt.Printf("  note     inexact, rounded half to even\n")
	}
	fmt.Println()
	return nil
}

// decodeArg parses a raw bit pattern and prints the value it encodes.
func decodeArg(arg string) error {
	bits, err := strconv.ParseUint(arg, 0, 8)
	if err != nil {
		return fmt.Errorf("failed to parse %q as an 8-bit pattern: %w", arg, err)
	}

	f := fp8.Float8(bits)
	fmt.Printf("0x%02X (0b%08b) -> %g\n", uint8(f), uint8(f), f.Float32())
	describe(f)
	fmt.Println()
	return nil
}

// describe prints the sign, exponent, and mantissa fields of a pattern.
func describe(f fp8.Float8) {
	fmt.Printf("  sign     %d (%s)\n", f.Sign(), signName(f))
	fmt.Printf("  exponent %04b (field %d)\n", f.Exponent(), f.Exponent())
	fmt.Printf("  mantissa %03b\n", f.Mantissa())
	fmt.Printf("  class    %s\n", className(f))
	if !f.IsNaN() {
		fmt.Printf("  value    %s\n", formula(f))
	}
}

// formula renders the (-1)^s x m x 2^e decomposition of a finite value.
func formula(f fp8.Float8) string {
	frac := float64(f.Mantissa()) / 8
	if f.Exponent() == 0 {
		return fmt.Sprintf("(-1)^%d x %.3f x 2^%d = %g",
			f.Sign(), frac, fp8.DenormExponent, f.Float32())
	}
	return fmt.Sprintf("(-1)^%d x %.3f x 2^%d = %g",
		f.Sign(), 1+frac, int(f.Exponent())-fp8.ExponentBias, f.Float32())
}

func signName(f fp8.Float8) string {
	if f.IsNegative() {
		return "negative"
	}
	return "positive"
}

func className(f fp8.Float8) string {
	switch {
	case f.IsNaN():
		return "NaN"
	case f.IsZero():
		return "zero"
	case f.IsDenormal():
		return "denormal"
	default:
		return "normal"
	}
}

// printTable dumps the decoded value of all 256 bit patterns.
func printTable() {
	fmt.Printf("%-4s  %-10s  %-8s  %s\n", "hex", "binary", "class", "value")
	for i := 0; i < 256; i++ {
		f := fp8.Float8(i)
		fmt.Printf("0x%02X  0b%08b  %-8s  %g\n", i, i, className(f), f.Float32())
	}
}
