package lazyview

import (
	"context"
	"image"
	"sync"
)

// Status describes where a loader is in its lifecycle. Transitions only run
// forward: Pending -> Loading -> Loaded or Failed. Changing an image
// loader's source starts a fresh lifecycle for the new source.
type Status string

const (
	StatusPending Status = "pending"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusFailed  Status = "failed"
)

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool { return s == StatusLoaded || s == StatusFailed }

// FetchFunc retrieves the image a source key names. Implementations live in
// package imagesrc; tests supply their own.
type FetchFunc func(ctx context.Context, src string) (image.Image, error)

// ImageConfig carries the optional pieces of an image loader. The zero
// value is usable: no placeholder, no fallback, fetches run on their own
// goroutine.
type ImageConfig struct {
	// Src is the initial source key. Empty means wait for SetSrc.
	Src string
	// Placeholder is returned by Payload until a fetch commits.
	Placeholder image.Image
	// Fallback is substituted as the payload when a fetch fails, so the
	// caller still has something to draw.
	Fallback image.Image
	// Execute runs a fetch task. The default runs it on a new goroutine;
	// tests pass a synchronous executor.
	Execute func(func())
}

// ImageLoader fetches an image once its tracker reports the element visible
// or prefetching. The zero source is inert. Completions carry the source
// they were started for; a completion whose source no longer matches is
// dropped, so switching sources mid-flight cannot clobber the new
// lifecycle.
type ImageLoader struct {
	tracker *Tracker
	fetch   FetchFunc
	execute func(func())
	ctx     context.Context
	stop    context.CancelFunc
	unsub   func()

	mu          sync.Mutex
	src         string
	status      Status
	payload     image.Image
	placeholder image.Image
	fallback    image.Image
	err         error
}

// NewImageLoader wires a loader to an existing tracker. The loader
// subscribes to the tracker's state changes; if the tracker is already
// visible, for example because it is degraded and pinned, the first fetch
// starts immediately.
func NewImageLoader(t *Tracker, fetch FetchFunc, cfg ImageConfig) *ImageLoader {
	ctx, stop := context.WithCancel(context.Background())
	l := &ImageLoader{
		tracker:     t,
		fetch:       fetch,
		execute:     cfg.Execute,
		ctx:         ctx,
		stop:        stop,
		src:         cfg.Src,
		status:      StatusPending,
		placeholder: cfg.Placeholder,
		fallback:    cfg.Fallback,
	}
	if l.execute == nil {
		l.execute = func(task func()) { go task() }
	}
	l.unsub = t.Subscribe(func(st State) { l.maybeStart(st) })
	l.maybeStart(t.State())
	return l
}

// Tracker returns the visibility tracker the loader is wired to, so callers
// can attach elements and read visibility through one handle.
func (l *ImageLoader) Tracker() *Tracker { return l.tracker }

// Attach forwards to the tracker.
func (l *ImageLoader) Attach(el Element) { l.tracker.Attach(el) }

// Detach forwards to the tracker.
func (l *ImageLoader) Detach() { l.tracker.Detach() }

// SetSrc changes the source key. A different key resets the lifecycle to
// Pending, clears payload and error, and starts loading at once when the
// tracker is already visible or prefetching. Setting the same key is a
// no-op; setting the empty key only resets.
func (l *ImageLoader) SetSrc(src string) {
	l.mu.Lock()
	if src == l.src {
		l.mu.Unlock()
		return
	}
	l.src = src
	l.status = StatusPending
	l.payload = nil
	l.err = nil
	l.mu.Unlock()
	l.maybeStart(l.tracker.State())
}

// Src returns the current source key.
func (l *ImageLoader) Src() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src
}

// Status returns the lifecycle status for the current source.
func (l *ImageLoader) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// Err returns the fetch error for the current source, if any.
func (l *ImageLoader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Payload returns the best image available right now: the fetched image,
// the fallback after a failure, or the placeholder.
func (l *ImageLoader) Payload() image.Image {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.payload != nil {
		return l.payload
	}
	return l.placeholder
}

// Loading reports whether a fetch is in flight.
func (l *ImageLoader) Loading() bool { return l.Status() == StatusLoading }

// Loaded reports whether the current source fetched successfully.
func (l *ImageLoader) Loaded() bool { return l.Status() == StatusLoaded }

// Errored reports whether the current source's fetch failed.
func (l *ImageLoader) Errored() bool { return l.Status() == StatusFailed }

// Close cancels the fetch context and detaches from the tracker. The
// tracker itself is left alone; its owner detaches it.
func (l *ImageLoader) Close() {
	l.unsub()
	l.stop()
}

// maybeStart begins a fetch when the tracker state warrants one and the
// current source is still Pending. Loading, Loaded and Failed sources are
// left alone; only a new source starts a new lifecycle.
func (l *ImageLoader) maybeStart(st State) {
	if !st.Visible && !st.Prefetching {
		return
	}
	l.mu.Lock()
	if l.src == "" || l.status != StatusPending || l.fetch == nil {
		l.mu.Unlock()
		return
	}
	src := l.src
	l.status = StatusLoading
	l.mu.Unlock()

	l.execute(func() {
		img, err := l.fetch(l.ctx, src)
		l.finish(src, img, err)
	})
}

// finish commits a fetch result. The source captured at start acts as the
// completion's claim ticket: if it no longer matches the current source the
// result is stale and dropped.
func (l *ImageLoader) finish(src string, img image.Image, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if src != l.src {
		return
	}
	if err != nil {
		l.status = StatusFailed
		l.err = err
		if l.fallback != nil {
			l.payload = l.fallback
		}
		l.tracker.log.Printf("image %s: fetch failed: %v", src, err)
		return
	}
	l.status = StatusLoaded
	l.payload = img
	l.err = nil
}
