package gallery

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"

	"github.com/kingrea/lazyview"
	"github.com/kingrea/lazyview/internal/ansiart"
	"github.com/kingrea/lazyview/modplug"
)

const defaultWidgetRows = 6

// item is one entry in the scrolling gallery. The item pointer itself is
// the element registered with the platform, so bounds, tracker and
// registry all key off the same identity.
type item struct {
	id    string
	title string
	rows  int // body rows below the title line

	tracker *lazyview.Tracker
	img     *lazyview.ImageLoader
	widget  *lazyview.ViewLoader

	bounds lazyview.Box
}

func (it *item) status() lazyview.Status {
	switch {
	case it.img != nil:
		return it.img.Status()
	case it.widget != nil:
		return it.widget.Status()
	}
	return lazyview.StatusPending
}

func (it *item) loadErr() error {
	switch {
	case it.img != nil:
		return it.img.Err()
	case it.widget != nil:
		return it.widget.Err()
	}
	return nil
}

func (it *item) close() {
	if it.img != nil {
		it.img.Close()
	}
	if it.widget != nil {
		it.widget.Close()
	}
	it.tracker.Detach()
}

var (
	titlePendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	titleLoadingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	titleLoadedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	titleFailedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	bodyNoteStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// titleLine renders the header row above the item body.
func (it *item) titleLine() string {
	switch it.status() {
	case lazyview.StatusLoading:
		return titleLoadingStyle.Render("◐ " + it.title)
	case lazyview.StatusLoaded:
		return titleLoadedStyle.Render("● " + it.title)
	case lazyview.StatusFailed:
		return titleFailedStyle.Render("✗ " + it.title)
	}
	return titlePendingStyle.Render("○ " + it.title)
}

// bodyLines renders exactly it.rows lines so the layout never shifts.
func (it *item) bodyLines(width int) []string {
	var lines []string
	switch it.status() {
	case lazyview.StatusLoaded:
		lines = it.loadedLines(width)
	case lazyview.StatusLoading:
		lines = []string{bodyNoteStyle.Render("loading…")}
	case lazyview.StatusFailed:
		msg := "load failed"
		if err := it.loadErr(); err != nil {
			msg = err.Error()
		}
		lines = []string{titleFailedStyle.Render("⚠ " + msg)}
	default:
		lines = []string{bodyNoteStyle.Render("waiting to scroll into view")}
	}
	return padLines(lines, it.rows)
}

func (it *item) loadedLines(width int) []string {
	if it.img != nil {
		art := ansiart.Render(it.img.Payload(), width, it.rows)
		if art == "" {
			return nil
		}
		return strings.Split(art, "\n")
	}
	if it.widget != nil {
		view := it.widget.View()
		if view == nil {
			return nil
		}
		return strings.Split(view(width), "\n")
	}
	return nil
}

func padLines(lines []string, rows int) []string {
	if len(lines) > rows {
		lines = lines[:rows]
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return lines
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// discoverImages lists image files directly inside dir, sorted by name. A
// missing directory yields no items.
func discoverImages(fsys afero.Fs, dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	if ok, err := afero.DirExists(fsys, dir); err != nil || !ok {
		return nil, err
	}
	infos, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("gallery: read images dir: %w", err)
	}
	var names []string
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(info.Name()))] {
			names = append(names, info.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// buildItems assembles image items followed by widget items.
func (a *App) buildItems() error {
	names, err := discoverImages(a.fs, a.cfg.ImagesDir())
	if err != nil {
		return err
	}
	for _, name := range names {
		it := &item{
			id:    "image/" + name,
			title: name,
			rows:  a.cfg.ImageRows(),
		}
		it.tracker = a.newTracker(it.id)
		it.img = lazyview.NewImageLoader(it.tracker, a.fetch, lazyview.ImageConfig{
			Src:     name,
			Execute: a.exec,
		})
		it.tracker.Attach(it)
		a.items = append(a.items, it)
	}

	defs, err := modplug.LoadDir(a.fs, a.cfg.WidgetsDir())
	if err != nil {
		return fmt.Errorf("gallery: load widgets: %w", err)
	}
	for _, def := range defs {
		rows := def.Height
		if rows <= 0 {
			rows = defaultWidgetRows
		}
		it := &item{
			id:    "widget/" + def.ID,
			title: def.Title(),
			rows:  rows,
		}
		it.tracker = a.newTracker(it.id)
		it.widget = lazyview.NewViewLoader(it.tracker, def.Resolver(a.fs, a.cfg.WidgetsDir()), lazyview.ViewConfig{
			Execute: a.exec,
		})
		it.tracker.Attach(it)
		a.items = append(a.items, it)
	}
	return nil
}

func (a *App) newTracker(id string) *lazyview.Tracker {
	opts := append([]lazyview.TrackerOption{}, a.trackerOpts...)
	opts = append(opts,
		lazyview.WithLogger(a.log),
		lazyview.WithOnVisible(func() {
			a.log.Printf("gallery: %s entered view", id)
			a.book.Info("%s entered view", id)
		}),
	)
	return lazyview.NewTracker(a.platform, opts...)
}

// relayout recomputes every item's row bounds. Rows are fixed per item,
// so this only runs when the item set changes.
func (a *App) relayout() {
	top := 0
	for _, it := range a.items {
		it.bounds = lazyview.Box{Top: top, Height: it.rows + 1}
		if a.surface != nil {
			a.surface.SetBounds(it, it.bounds)
		}
		top += it.rows + 2
	}
}

// contentLines renders the full gallery content for the viewport.
func (a *App) contentLines() string {
	width := a.vp.Width
	if width <= 0 {
		width = 80
	}
	var b strings.Builder
	for i, it := range a.items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(it.titleLine())
		b.WriteString("\n")
		for _, line := range it.bodyLines(width) {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
