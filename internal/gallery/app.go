// Package gallery is the lazyview demo TUI. It scrolls a column of
// images and interpreted widgets inside a bubbletea viewport and lets
// the visibility pipeline decide when each one loads.
//
// The flow per frame is: key press -> viewport moves -> the surface
// recomputes intersections -> trackers flip -> loaders start fetching ->
// a LoadedMsg repaints the screen.
package gallery

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"

	"github.com/kingrea/lazyview"
	"github.com/kingrea/lazyview/imagesrc"
	"github.com/kingrea/lazyview/internal/config"
	"github.com/kingrea/lazyview/internal/logbook"
	"github.com/kingrea/lazyview/internal/logging"
	"github.com/kingrea/lazyview/termview"
)

// chromeRows is what the header, the log panel and the footer cost
// around the viewport.
const chromeRows = 8

// logPanelLines is how many journey entries the footer panel tails.
const logPanelLines = 3

// Option customizes App construction for tests and alternate runtimes.
type Option func(*App)

// WithPlatform overrides the visibility platform. Passing
// lazyview.Unavailable() exercises the eager-loading fallback.
func WithPlatform(p lazyview.Platform) Option {
	return func(a *App) {
		if p != nil {
			a.platform = p
		}
	}
}

// WithExecutor overrides how load work is scheduled. Tests pass a
// synchronous executor so loads finish inside Update.
func WithExecutor(exec func(func())) Option {
	return func(a *App) {
		if exec != nil {
			a.exec = exec
		}
	}
}

// WithFetch overrides the image fetcher.
func WithFetch(fetch lazyview.FetchFunc) Option {
	return func(a *App) {
		if fetch != nil {
			a.fetch = fetch
		}
	}
}

// WithFilesystem overrides the filesystem used for image and widget
// discovery.
func WithFilesystem(fsys afero.Fs) Option {
	return func(a *App) {
		if fsys != nil {
			a.fs = fsys
		}
	}
}

// App is the gallery application model. It holds the full state: the
// discovered items, their trackers and loaders, the shared surface, and
// the viewport that scrolls them.
type App struct {
	cfg     *config.Config
	log     *logging.Logger
	journey *logging.Logger
	book    *logbook.Logbook

	platform lazyview.Platform
	surface  *termview.Surface // non-nil when platform is the terminal surface
	fs       afero.Fs
	fetch    lazyview.FetchFunc
	exec     func(func())

	trackerOpts []lazyview.TrackerOption
	items       []*item
	reg         *lazyview.Registry

	// progress remembers the last status seen per item so journey
	// entries fire once per transition.
	progress map[string]lazyview.Status

	vp     viewport.Model
	spin   spinner.Model
	width  int
	height int
	ready  bool

	statusMsg string

	sendMu sync.Mutex
	send   func(tea.Msg)
}

// New builds the gallery for projectDir. The directory gains a
// .lazyview folder for config and logs on first run.
func New(projectDir string, opts ...Option) (*App, error) {
	if err := config.Init(projectDir); err != nil {
		return nil, err
	}
	cfg, err := config.New(projectDir)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(projectDir)
	if err != nil {
		log = nil
	}
	journey, err := logging.Open(projectDir, "journey.log")
	if err != nil {
		journey = nil
	}
	book := logbook.New(journey)

	a := &App{cfg: cfg, log: log, journey: journey, book: book, progress: map[string]lazyview.Status{}}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	if a.platform == nil {
		a.platform = termview.New()
	}
	if s, ok := a.platform.(*termview.Surface); ok {
		a.surface = s
	}
	if a.fs == nil {
		a.fs = afero.NewOsFs()
	}
	if a.exec == nil {
		a.exec = termview.Executor(a.dispatch)
	}
	if a.fetch == nil {
		a.fetch = imagesrc.Auto(a.fs, cfg.ImagesDir(), nil)
	}
	a.spin = spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(spinnerStyle))

	a.trackerOpts, err = cfg.TrackerOptions()
	if err != nil {
		return nil, err
	}

	if err := a.buildItems(); err != nil {
		return nil, err
	}
	a.relayout()

	a.reg = lazyview.NewRegistry(a.platform, lazyview.RegistryConfig{Logger: a.log})
	for _, it := range a.items {
		if err := a.reg.Register(it.id, it); err != nil {
			return nil, err
		}
	}

	if !a.platform.Available() {
		a.statusMsg = "no visibility data · loading everything eagerly"
	}
	a.log.Printf("gallery: opened %s with %d item(s)", projectDir, len(a.items))
	a.book.Info("session opened · %d item(s)", len(a.items))
	return a, nil
}

// SetSender wires the running program's Send so background loads can
// repaint the screen. Safe to call before loads begin.
func (a *App) SetSender(send func(tea.Msg)) {
	a.sendMu.Lock()
	a.send = send
	a.sendMu.Unlock()
}

func (a *App) dispatch(msg tea.Msg) {
	a.sendMu.Lock()
	send := a.send
	a.sendMu.Unlock()
	if send != nil {
		send(msg)
	}
}

// Close releases loaders, trackers and the log file.
func (a *App) Close() {
	for _, it := range a.items {
		it.close()
	}
	if a.reg != nil {
		a.reg.Close()
	}
	if a.log != nil {
		_ = a.log.Close()
	}
	if a.journey != nil {
		_ = a.journey.Close()
	}
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return a.spin.Tick
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if !a.ready {
			a.vp = viewport.New(msg.Width, max(1, msg.Height-chromeRows))
			a.ready = true
		} else {
			a.vp.Width = msg.Width
			a.vp.Height = max(1, msg.Height-chromeRows)
		}
		a.refreshVisibility()
		return a, nil

	case termview.LoadedMsg:
		if a.ready {
			a.refreshVisibility()
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		}
	}

	if !a.ready {
		return a, nil
	}
	var cmd tea.Cmd
	a.vp, cmd = a.vp.Update(msg)
	a.refreshVisibility()
	return a, cmd
}

// refreshVisibility feeds the current scroll window to the surface,
// recomputes intersections, records journey entries for finished loads
// and re-renders the content.
func (a *App) refreshVisibility() {
	if a.surface != nil {
		a.surface.SetViewport(termview.ViewportBox(a.vp))
		a.surface.Recompute()
	}
	a.noteProgress()
	a.vp.SetContent(a.contentLines())
}

// loadingCount is how many items have a fetch or resolve in flight.
func (a *App) loadingCount() int {
	n := 0
	for _, it := range a.items {
		if it.status() == lazyview.StatusLoading {
			n++
		}
	}
	return n
}

// noteProgress writes one journey entry per status transition.
func (a *App) noteProgress() {
	for _, it := range a.items {
		now := it.status()
		if a.progress[it.id] == now {
			continue
		}
		a.progress[it.id] = now
		switch now {
		case lazyview.StatusLoaded:
			a.book.Info("%s loaded", it.id)
		case lazyview.StatusFailed:
			if err := it.loadErr(); err != nil {
				a.book.Error("%s failed: %v", it.id, err)
			} else {
				a.book.Error("%s failed", it.id)
			}
		}
	}
}

// RenderOnce returns the gallery content rendered at the given width
// without running the program. Used for non-interactive output, where
// everything has loaded eagerly.
func (a *App) RenderOnce(width int) string {
	if width <= 0 {
		width = 80
	}
	a.vp.Width = width
	a.noteProgress()
	return a.contentLines()
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))
	logTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	logBodyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
)

// renderLogPanel tails the journey log. Always logPanelLines+1 rows so
// the viewport height stays stable.
func (a *App) renderLogPanel() string {
	title := logTitleStyle.Render(fmt.Sprintf("LOG · %d event(s)", a.book.Len()))
	lines := a.book.Tail(logPanelLines)
	if len(lines) == 0 {
		lines = []string{"no events yet"}
	}
	for len(lines) < logPanelLines {
		lines = append(lines, "")
	}
	return title + "\n" + logBodyStyle.Render(strings.Join(lines, "\n"))
}

// View renders the current state to a string.
func (a *App) View() string {
	header := headerStyle.Render("▣ LAZYVIEW")
	if !a.ready {
		return header + "\nMeasuring terminal..."
	}

	visible := 0
	for _, on := range a.reg.Snapshot() {
		if on {
			visible++
		}
	}
	loaded := 0
	for _, it := range a.items {
		if it.status() == lazyview.StatusLoaded {
			loaded++
		}
	}
	status := fmt.Sprintf(
		"%d/%d on screen · %d loaded · %3.0f%%",
		visible, len(a.items), loaded, a.vp.ScrollPercent()*100,
	)
	if n := a.loadingCount(); n > 0 {
		status = fmt.Sprintf("%s loading %d · %s", a.spin.View(), n, status)
	}
	if a.statusMsg != "" {
		status += " · " + a.statusMsg
	}

	hint := hintStyle.Render("↑/↓ scroll · pgup/pgdn jump · q quit")
	return header + "\n" + a.vp.View() + "\n" + a.renderLogPanel() + "\n" +
		statusStyle.Render(status) + "\n" + hint
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
