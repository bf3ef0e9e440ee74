package lazyview

import (
	"context"
	"fmt"
	"sync"
)

// View renders widget content for a given width. It is the shape every
// dynamically resolved view module must provide.
type View func(width int) string

// Export wraps a view the way bundled modules hand them out. Resolvers may
// return a View directly or an Export whose Default carries it; both
// normalize to the same thing.
type Export struct {
	Default View
}

// ResolveFunc produces a view module on demand. Package modplug builds
// resolvers that interpret plugin source; tests return views directly.
type ResolveFunc func(ctx context.Context) (any, error)

// ViewConfig carries the optional pieces of a view loader. The zero value
// runs resolution on its own goroutine.
type ViewConfig struct {
	Execute func(func())
}

// ViewLoader resolves a view module the first time its tracker reports the
// element visible or prefetching. Resolution runs at most once per loader:
// success keeps the view for good, failure is recorded and never retried.
type ViewLoader struct {
	tracker *Tracker
	resolve ResolveFunc
	execute func(func())
	ctx     context.Context
	stop    context.CancelFunc
	unsub   func()

	mu     sync.Mutex
	status Status
	view   View
	err    error
}

// NewViewLoader wires a loader to an existing tracker. As with image
// loaders, a tracker that is already visible triggers resolution
// immediately.
func NewViewLoader(t *Tracker, resolve ResolveFunc, cfg ViewConfig) *ViewLoader {
	ctx, stop := context.WithCancel(context.Background())
	l := &ViewLoader{
		tracker: t,
		resolve: resolve,
		execute: cfg.Execute,
		ctx:     ctx,
		stop:    stop,
		status:  StatusPending,
	}
	if l.execute == nil {
		l.execute = func(task func()) { go task() }
	}
	l.unsub = t.Subscribe(func(st State) { l.maybeStart(st) })
	l.maybeStart(t.State())
	return l
}

// Tracker returns the loader's visibility tracker.
func (l *ViewLoader) Tracker() *Tracker { return l.tracker }

// Attach forwards to the tracker.
func (l *ViewLoader) Attach(el Element) { l.tracker.Attach(el) }

// Detach forwards to the tracker.
func (l *ViewLoader) Detach() { l.tracker.Detach() }

// Status returns the lifecycle status of the resolution.
func (l *ViewLoader) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// Err returns the resolution error, if any.
func (l *ViewLoader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// View returns the resolved view, or nil before resolution commits.
func (l *ViewLoader) View() View {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.view
}

// Loaded reports whether the view resolved successfully.
func (l *ViewLoader) Loaded() bool { return l.Status() == StatusLoaded }

// Close cancels resolution and detaches from the tracker.
func (l *ViewLoader) Close() {
	l.unsub()
	l.stop()
}

func (l *ViewLoader) maybeStart(st State) {
	if !st.Visible && !st.Prefetching {
		return
	}
	l.mu.Lock()
	if l.status != StatusPending {
		l.mu.Unlock()
		return
	}
	l.status = StatusLoading
	resolve := l.resolve
	l.mu.Unlock()

	l.execute(func() {
		if resolve == nil {
			l.finish(nil, ErrNoResolver)
			return
		}
		result, err := resolve(l.ctx)
		if err != nil {
			l.finish(nil, err)
			return
		}
		view, err := NormalizeView(result)
		l.finish(view, err)
	})
}

func (l *ViewLoader) finish(view View, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.status != StatusLoading {
		return
	}
	if err != nil {
		l.status = StatusFailed
		l.err = err
		l.tracker.log.Printf("view: resolve failed: %v", err)
		return
	}
	l.status = StatusLoaded
	l.view = view
}

// NormalizeView unifies the shapes a resolver may produce: a View, a bare
// func(int) string, an Export, or a pointer to one.
func NormalizeView(v any) (View, error) {
	switch m := v.(type) {
	case nil:
		return nil, fmt.Errorf("lazyview: resolver returned nothing")
	case View:
		if m == nil {
			return nil, fmt.Errorf("lazyview: resolver returned nil view")
		}
		return m, nil
	case func(width int) string:
		if m == nil {
			return nil, fmt.Errorf("lazyview: resolver returned nil view")
		}
		return View(m), nil
	case Export:
		if m.Default == nil {
			return nil, fmt.Errorf("lazyview: export has no default view")
		}
		return m.Default, nil
	case *Export:
		if m == nil || m.Default == nil {
			return nil, fmt.Errorf("lazyview: export has no default view")
		}
		return m.Default, nil
	default:
		return nil, fmt.Errorf("lazyview: resolver returned %T, want View or Export", v)
	}
}
