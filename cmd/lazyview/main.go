// cmd/lazyview/main.go
//
// Entry point for the lazyview gallery.
//
// Flow:
// 1. Resolve the project directory (flag or cwd)
// 2. If stdout is not a terminal, render everything once and print it
// 3. Otherwise run the bubbletea TUI with lazy loading on scroll

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/lazyview"
	"github.com/kingrea/lazyview/internal/gallery"
	"github.com/kingrea/lazyview/termview"
)

func main() {
	projectDir := flag.String("project", "", "path to the gallery directory (defaults to cwd)")
	eager := flag.Bool("eager", false, "skip visibility tracking and load everything up front")
	width := flag.Int("width", 80, "render width for non-interactive output")
	flag.Parse()

	project := *projectDir
	if project == "" {
		var err error
		project, err = os.Getwd()
		if err != nil {
			die("determine working directory: %v", err)
		}
	}
	absoluteProject, err := filepath.Abs(project)
	if err != nil {
		die("resolve project dir: %v", err)
	}

	// Without a terminal there is no viewport to scroll, so the
	// degraded path loads everything and prints one frame.
	if *eager || !termview.Probe(os.Stdout) {
		renderEager(absoluteProject, *width)
		return
	}

	app, err := gallery.New(absoluteProject)
	if err != nil {
		die("open gallery: %v", err)
	}
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	app.SetSender(p.Send)
	if _, err := p.Run(); err != nil {
		die("run gallery: %v", err)
	}
}

func renderEager(projectDir string, width int) {
	app, err := gallery.New(projectDir,
		gallery.WithPlatform(lazyview.Unavailable()),
		gallery.WithExecutor(func(task func()) { task() }),
	)
	if err != nil {
		die("open gallery: %v", err)
	}
	defer app.Close()
	fmt.Println(app.RenderOnce(width))
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
