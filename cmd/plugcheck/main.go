// cmd/plugcheck/main.go
//
// Validates every view module in a widget directory: parses manifests,
// interprets each source file and calls the exported view function once.
// Exits non-zero if any module fails, so it slots into CI.

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/kingrea/lazyview/modplug"
)

func main() {
	dir := flag.String("dir", "", "widget directory to check (defaults to ./widgets)")
	width := flag.Int("width", 24, "width passed to each view when sampling it")
	flag.Parse()

	target := strings.TrimSpace(*dir)
	if target == "" {
		cwd, err := os.Getwd()
		if err != nil {
			die("determine working directory: %v", err)
		}
		target = filepath.Join(cwd, "widgets")
	}
	absolute, err := filepath.Abs(target)
	if err != nil {
		die("resolve widget dir: %v", err)
	}

	fsys := afero.NewOsFs()
	defs, err := modplug.LoadDir(fsys, absolute)
	if err != nil {
		die("load widgets: %v", err)
	}
	if len(defs) == 0 {
		fmt.Printf("No widgets found in %s\n", absolute)
		return
	}

	failures := 0
	for _, def := range defs {
		view, err := modplug.Interpret(fsys, filepath.Join(absolute, def.Source), def.Symbol)
		if err != nil {
			failures++
			fmt.Printf("✗ %s: %v\n", def.ID, err)
			continue
		}
		sample := view(*width)
		lines := strings.Count(sample, "\n") + 1
		fmt.Printf("✓ %s (%s · %s) renders %d line(s) at width %d\n",
			def.ID, def.Source, def.Symbol, lines, *width)
	}
	if failures > 0 {
		die("%d of %d widget(s) failed", failures, len(defs))
	}
	fmt.Printf("All %d widget(s) OK.\n", len(defs))
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
