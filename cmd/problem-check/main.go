// Package main provides a CLI tool to check problem file availability.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sarchlab/macgrid/loader"
)

func main() {
	dir := "."
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning %s: %v\n", dir, err)
		os.Exit(1)
	}
	sort.Strings(matches)

	if len(matches) == 0 {
		fmt.Fprintf(os.Stderr, "No problem files found in %s\n", dir)
		fmt.Println("0")
		os.Exit(0)
	}

	type failure struct {
		path string
		err  error
	}
	var loadable []string
	var broken []failure
	for _, path := range matches {
		p, err := loader.Load(path)
		if err != nil {
			broken = append(broken, failure{path: path, err: err})
			continue
		}
		loadable = append(loadable, fmt.Sprintf(
			"%s - %s %dx%d times %dx%d",
			filepath.Base(path), p.Domain, p.M(), p.K(), p.K(), p.N()))
	}

	fmt.Printf("%d\n", len(loadable))

	if len(loadable) > 0 {
		fmt.Fprintf(os.Stderr, "\nLoadable problems (%d):\n", len(loadable))
		for _, line := range loadable {
			fmt.Fprintf(os.Stderr, "  ✅ %s\n", line)
		}
	}

	if len(broken) > 0 {
		fmt.Fprintf(os.Stderr, "\nBroken problems (%d):\n", len(broken))
		for _, f := range broken {
			fmt.Fprintf(os.Stderr, "  ❌ %s - %v\n", filepath.Base(f.path), f.err)
		}
	}
}
