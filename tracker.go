package lazyview

import "sync"

// DefaultThreshold is the intersection ratio a tracker requires before it
// reports an element visible, unless WithThreshold overrides it.
const DefaultThreshold = 0.1

// DefaultPrefetchMargin is the viewport inflation used for the prefetch
// signal when a caller enables prefetch without choosing a margin.
var DefaultPrefetchMargin = Cells(200)

// State is a tracker's externally visible position in its lifecycle.
type State struct {
	// Visible reports whether the element currently meets the threshold.
	// Once pinned by trigger-once it stays true regardless of later
	// signals.
	Visible bool
	// EverVisible latches the first time Visible becomes true and is
	// cleared only by Reset.
	EverVisible bool
	// Prefetching reports whether the element is inside the wider
	// prefetch margin. It is independent of Visible and never pinned.
	Prefetching bool
}

// Tracker follows one element's visibility on a platform. All methods are
// safe for concurrent use. Edge callbacks and subscriber notifications run
// with no internal locks held, in signal order.
type Tracker struct {
	platform Platform

	threshold      float64
	margin         Margin
	triggerOnce    bool
	prefetch       bool
	prefetchMargin Margin
	onVisible      func()
	onHidden       func()
	log            Logger

	mu       sync.Mutex
	el       Element
	obs      Observer
	preObs   Observer
	st       State
	degraded bool
	subs     map[int]func(State)
	nextSub  int
}

// TrackerOption adjusts tracker construction.
type TrackerOption func(*Tracker)

// WithThreshold sets the minimum intersection ratio that counts as visible.
// Values are clamped to [0, 1]. The default is DefaultThreshold.
func WithThreshold(v float64) TrackerOption {
	return func(t *Tracker) {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		t.threshold = v
	}
}

// WithMargin inflates the viewport for the visibility measurement. The
// default is no margin.
func WithMargin(m Margin) TrackerOption {
	return func(t *Tracker) { t.margin = m }
}

// WithTriggerOnce controls pinning. When enabled, the default, the tracker
// stays visible forever after the element is first seen.
func WithTriggerOnce(v bool) TrackerOption {
	return func(t *Tracker) { t.triggerOnce = v }
}

// WithPrefetch enables the prefetch signal with the given margin. The
// margin replaces, rather than adds to, the one set by WithMargin; the two
// measurements are independent.
func WithPrefetch(m Margin) TrackerOption {
	return func(t *Tracker) {
		t.prefetch = true
		t.prefetchMargin = m
	}
}

// WithOnVisible registers a callback fired each time the tracker moves from
// hidden to visible.
func WithOnVisible(fn func()) TrackerOption {
	return func(t *Tracker) { t.onVisible = fn }
}

// WithOnHidden registers a callback fired each time the tracker moves from
// visible to hidden. Once a trigger-once tracker is pinned it never fires.
func WithOnHidden(fn func()) TrackerOption {
	return func(t *Tracker) { t.onHidden = fn }
}

// WithLogger routes tracker diagnostics to log.
func WithLogger(log Logger) TrackerOption {
	return func(t *Tracker) {
		if log != nil {
			t.log = log
		}
	}
}

// NewTracker builds a tracker on the given platform. The platform is probed
// exactly once: if it is nil or unavailable the tracker starts pinned
// visible and ever-visible, no observers are created, and no edge callbacks
// fire for that initial state.
func NewTracker(p Platform, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		platform:       p,
		threshold:      DefaultThreshold,
		triggerOnce:    true,
		prefetchMargin: DefaultPrefetchMargin,
		log:            nopLogger{},
		subs:           map[int]func(State){},
	}
	for _, opt := range opts {
		opt(t)
	}
	if p == nil || !p.Available() {
		t.degraded = true
		t.st = State{Visible: true, EverVisible: true}
		t.log.Printf("tracker: platform unavailable, starting pinned visible")
	}
	return t
}

// Attach starts observing el. Attaching a new element replaces the previous
// observation but keeps accumulated state; use Reset to clear it. A nil
// element is equivalent to Detach. On a degraded tracker Attach only records
// the element.
func (t *Tracker) Attach(el Element) {
	if el == nil {
		t.Detach()
		return
	}
	t.mu.Lock()
	if t.degraded {
		t.el = el
		t.mu.Unlock()
		return
	}
	if t.el == el && t.obs != nil {
		t.mu.Unlock()
		return
	}
	oldEl, oldObs, oldPre := t.el, t.obs, t.preObs
	t.el = el
	obs := t.platform.NewObserver(ObserverConfig{Threshold: t.threshold, Margin: t.margin}, t.applyVisibility)
	var pre Observer
	if t.prefetch {
		pre = t.platform.NewObserver(ObserverConfig{Margin: t.prefetchMargin}, t.applyPrefetch)
	}
	t.obs, t.preObs = obs, pre
	t.mu.Unlock()

	releaseObservation(oldEl, oldObs)
	releaseObservation(oldEl, oldPre)
	obs.Observe(el)
	if pre != nil {
		pre.Observe(el)
	}
}

// Detach stops observing the current element. State is kept, so a pinned
// tracker stays visible after its element leaves the screen for good.
func (t *Tracker) Detach() {
	t.mu.Lock()
	el, obs, pre := t.el, t.obs, t.preObs
	t.el, t.obs, t.preObs = nil, nil, nil
	t.mu.Unlock()
	releaseObservation(el, obs)
	releaseObservation(el, pre)
}

func releaseObservation(el Element, obs Observer) {
	if obs == nil {
		return
	}
	if el != nil {
		obs.Unobserve(el)
	}
	obs.Disconnect()
}

// Check measures the attached element synchronously and folds the result
// through the same transition rules the asynchronous path uses, then
// returns the resulting state. On a degraded or detached tracker it is a
// plain state read.
func (t *Tracker) Check() State {
	t.mu.Lock()
	el, degraded := t.el, t.degraded
	t.mu.Unlock()
	if degraded || el == nil {
		return t.State()
	}
	e, ok := t.platform.Intersect(el, t.margin)
	if !ok {
		return t.State()
	}
	intersecting := e.Intersecting
	if t.threshold > 0 {
		intersecting = e.Ratio >= t.threshold
	}
	t.applyVisibility([]Entry{{Element: el, Ratio: e.Ratio, Intersecting: intersecting}})
	return t.State()
}

// Reset returns the tracker to its initial state: everything cleared, or
// pinned visible again when the tracker is degraded. Subscribers are
// notified if the state changed; edge callbacks do not fire.
func (t *Tracker) Reset() {
	t.mu.Lock()
	init := State{}
	if t.degraded {
		init = State{Visible: true, EverVisible: true}
	}
	changed := t.st != init
	t.st = init
	notify := t.notifyLocked(changed)
	t.mu.Unlock()
	for _, fn := range notify {
		fn(init)
	}
}

// Subscribe registers fn to run after every state change, with the state
// that resulted. The returned cancel removes the subscription; it is safe
// to call more than once.
func (t *Tracker) Subscribe(fn func(State)) (cancel func()) {
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}

// State returns the current lifecycle state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st
}

// Visible reports whether the element currently counts as visible.
func (t *Tracker) Visible() bool { return t.State().Visible }

// EverVisible reports whether the element has ever been visible.
func (t *Tracker) EverVisible() bool { return t.State().EverVisible }

// Prefetching reports whether the element is inside the prefetch margin.
func (t *Tracker) Prefetching() bool { return t.State().Prefetching }

// Degraded reports whether the tracker was built without a usable platform.
func (t *Tracker) Degraded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.degraded
}

func (t *Tracker) applyVisibility(entries []Entry) { t.apply(entries, false) }

func (t *Tracker) applyPrefetch(entries []Entry) { t.apply(entries, true) }

// apply is the transition function. It folds a batch of measurements into
// the state in order, collects the edge callbacks those transitions imply,
// and runs callbacks and subscriber notifications after releasing the lock.
func (t *Tracker) apply(entries []Entry, prefetch bool) {
	t.mu.Lock()
	el := t.el
	if el == nil {
		t.mu.Unlock()
		return
	}
	var fire []func()
	changed := false
	for _, e := range entries {
		if e.Element != el {
			continue
		}
		if prefetch {
			if t.st.Prefetching != e.Intersecting {
				t.st.Prefetching = e.Intersecting
				changed = true
			}
			continue
		}
		pinned := t.triggerOnce && t.st.EverVisible
		if e.Intersecting && !t.st.EverVisible {
			t.st.EverVisible = true
			changed = true
		}
		if pinned {
			continue
		}
		if e.Intersecting == t.st.Visible {
			continue
		}
		t.st.Visible = e.Intersecting
		changed = true
		switch {
		case e.Intersecting && t.onVisible != nil:
			fire = append(fire, t.onVisible)
		case !e.Intersecting && t.onHidden != nil:
			fire = append(fire, t.onHidden)
		}
	}
	st := t.st
	notify := t.notifyLocked(changed)
	t.mu.Unlock()

	for _, fn := range fire {
		fn()
	}
	for _, fn := range notify {
		fn(st)
	}
}

// notifyLocked snapshots the subscriber list while t.mu is held so the
// callbacks can run after unlock.
func (t *Tracker) notifyLocked(changed bool) []func(State) {
	if !changed || len(t.subs) == 0 {
		return nil
	}
	out := make([]func(State), 0, len(t.subs))
	for _, fn := range t.subs {
		out = append(out, fn)
	}
	return out
}
