package lazyview

import "testing"

func TestTrackerInitialState(t *testing.T) {
	p := newFakePlatform()
	tr := NewTracker(p)
	tr.Attach("row")

	st := tr.State()
	if st.Visible || st.EverVisible || st.Prefetching {
		t.Fatalf("expected zero state before any signal, got %+v", st)
	}
	if tr.Degraded() {
		t.Fatalf("tracker should not degrade on an available platform")
	}
}

func TestTrackerFollowsSignals(t *testing.T) {
	p := newFakePlatform()
	var log []string
	tr := NewTracker(p,
		WithTriggerOnce(false),
		WithOnVisible(func() { log = append(log, "visible") }),
		WithOnHidden(func() { log = append(log, "hidden") }),
	)
	tr.Attach("row")
	obs := p.observer(0)

	obs.emit(gone("row"))
	if tr.Visible() {
		t.Fatalf("non-intersecting initial entry must not mark visible")
	}
	if len(log) != 0 {
		t.Fatalf("no edge callbacks expected for hidden -> hidden, got %v", log)
	}

	obs.emit(seen("row", 0.5))
	if !tr.Visible() || !tr.EverVisible() {
		t.Fatalf("expected visible and ever-visible after intersecting entry, got %+v", tr.State())
	}

	obs.emit(gone("row"))
	if tr.Visible() {
		t.Fatalf("expected hidden again without trigger-once")
	}
	if !tr.EverVisible() {
		t.Fatalf("ever-visible must latch")
	}

	want := []string{"visible", "hidden"}
	if len(log) != len(want) || log[0] != want[0] || log[1] != want[1] {
		t.Fatalf("edge callbacks = %v, want %v", log, want)
	}
}

func TestTrackerTriggerOncePins(t *testing.T) {
	p := newFakePlatform()
	hiddenCalls := 0
	tr := NewTracker(p, WithOnHidden(func() { hiddenCalls++ }))
	tr.Attach("row")
	obs := p.observer(0)

	obs.emit(gone("row"))
	obs.emit(seen("row", 1))
	obs.emit(gone("row"))
	obs.emit(seen("row", 1))
	obs.emit(gone("row"))

	st := tr.State()
	if !st.Visible || !st.EverVisible {
		t.Fatalf("trigger-once tracker must stay pinned visible, got %+v", st)
	}
	if hiddenCalls != 0 {
		t.Fatalf("onHidden fired %d times on a pinned tracker", hiddenCalls)
	}
}

func TestTrackerPinsWithinOneBatch(t *testing.T) {
	p := newFakePlatform()
	tr := NewTracker(p)
	tr.Attach("row")

	p.observer(0).emit(seen("row", 1), gone("row"))
	if !tr.Visible() {
		t.Fatalf("later entries in a batch must not unpin a trigger-once tracker")
	}
}

func TestTrackerBatchOrderWins(t *testing.T) {
	p := newFakePlatform()
	tr := NewTracker(p, WithTriggerOnce(false))
	tr.Attach("row")

	p.observer(0).emit(seen("row", 1), gone("row"))
	if tr.Visible() {
		t.Fatalf("the last entry in a batch is authoritative")
	}
	if !tr.EverVisible() {
		t.Fatalf("ever-visible latches even when the batch ends hidden")
	}
}

func TestTrackerPrefetchIndependent(t *testing.T) {
	p := newFakePlatform()
	tr := NewTracker(p, WithPrefetch(Cells(40)))
	tr.Attach("row")
	if p.observerCount() != 2 {
		t.Fatalf("expected visibility and prefetch observers, got %d", p.observerCount())
	}

	pre := p.observer(1)
	if pre.cfg.Margin != Cells(40) {
		t.Fatalf("prefetch observer margin = %v, want %v", pre.cfg.Margin, Cells(40))
	}

	pre.emit(seen("row", 0.01))
	st := tr.State()
	if !st.Prefetching {
		t.Fatalf("prefetch entry must set Prefetching")
	}
	if st.Visible || st.EverVisible {
		t.Fatalf("prefetch must not touch visibility, got %+v", st)
	}

	pre.emit(gone("row"))
	if tr.Prefetching() {
		t.Fatalf("prefetching is never pinned")
	}
}

func TestTrackerIgnoresStaleElements(t *testing.T) {
	p := newFakePlatform()
	tr := NewTracker(p, WithTriggerOnce(false))
	tr.Attach("a")
	oldObs := p.observer(0)

	tr.Attach("b")
	if oldObs.observing("a") {
		t.Fatalf("replacing the element must unobserve the old one")
	}

	oldObs.emit(seen("a", 1))
	if tr.Visible() {
		t.Fatalf("entries for a detached element must be ignored")
	}

	p.observer(1).emit(seen("b", 1))
	if !tr.Visible() {
		t.Fatalf("entries for the current element must apply")
	}
}

func TestTrackerDetachKeepsState(t *testing.T) {
	p := newFakePlatform()
	tr := NewTracker(p)
	tr.Attach("row")
	obs := p.observer(0)
	obs.emit(seen("row", 1))

	tr.Detach()
	if !obs.disconnected {
		t.Fatalf("detach must disconnect the observer")
	}
	if !tr.Visible() || !tr.EverVisible() {
		t.Fatalf("detach must keep accumulated state, got %+v", tr.State())
	}

	obs.emit(gone("row"))
	if !tr.Visible() {
		t.Fatalf("signals after detach must be ignored")
	}
}

func TestTrackerDegradedPinsImmediately(t *testing.T) {
	visibleCalls := 0
	tr := NewTracker(Unavailable(), WithOnVisible(func() { visibleCalls++ }))

	st := tr.State()
	if !st.Visible || !st.EverVisible {
		t.Fatalf("degraded tracker must start pinned visible, got %+v", st)
	}
	if st.Prefetching {
		t.Fatalf("degraded tracker never prefetches")
	}
	if visibleCalls != 0 {
		t.Fatalf("degraded pinning must not fire edge callbacks")
	}
	if !tr.Degraded() {
		t.Fatalf("Degraded() = false, want true")
	}

	tr.Attach("row")
	if got := tr.Check(); !got.Visible {
		t.Fatalf("Check on a degraded tracker returns the pinned state, got %+v", got)
	}
}

func TestTrackerNilPlatformDegrades(t *testing.T) {
	tr := NewTracker(nil)
	if !tr.Degraded() || !tr.Visible() {
		t.Fatalf("nil platform must degrade to pinned visible")
	}
}

func TestTrackerCheckCommits(t *testing.T) {
	p := newFakePlatform()
	tr := NewTracker(p, WithThreshold(0.5), WithTriggerOnce(false))
	tr.Attach("row")

	p.setGeometry("row", 0.4, true)
	if st := tr.Check(); st.Visible {
		t.Fatalf("ratio below threshold must not count as visible, got %+v", st)
	}

	p.setGeometry("row", 0.5, true)
	st := tr.Check()
	if !st.Visible || !st.EverVisible {
		t.Fatalf("ratio at threshold must commit visibility, got %+v", st)
	}

	p.setGeometry("row", 0, false)
	if st := tr.Check(); st.Visible {
		t.Fatalf("Check must follow the element back out of view, got %+v", st)
	}
	if !tr.EverVisible() {
		t.Fatalf("Check commits ever-visible like the asynchronous path")
	}
}

func TestTrackerCheckUnknownElement(t *testing.T) {
	p := newFakePlatform()
	tr := NewTracker(p)
	tr.Attach("row")

	if st := tr.Check(); st.Visible {
		t.Fatalf("no geometry means no state change, got %+v", st)
	}
}

func TestTrackerCheckRespectsPin(t *testing.T) {
	p := newFakePlatform()
	tr := NewTracker(p)
	tr.Attach("row")
	p.observer(0).emit(seen("row", 1))

	p.setGeometry("row", 0, false)
	if st := tr.Check(); !st.Visible {
		t.Fatalf("Check must not unpin a trigger-once tracker, got %+v", st)
	}
}

func TestTrackerReset(t *testing.T) {
	p := newFakePlatform()
	tr := NewTracker(p, WithPrefetch(Cells(10)))
	tr.Attach("row")
	p.observer(0).emit(seen("row", 1))
	p.observer(1).emit(seen("row", 1))

	tr.Reset()
	st := tr.State()
	if st.Visible || st.EverVisible || st.Prefetching {
		t.Fatalf("reset must clear every latch, got %+v", st)
	}

	p.observer(0).emit(seen("row", 1))
	if !tr.Visible() {
		t.Fatalf("tracker must run a fresh lifecycle after reset")
	}
}

func TestTrackerResetDegraded(t *testing.T) {
	tr := NewTracker(Unavailable())
	tr.Reset()
	if st := tr.State(); !st.Visible || !st.EverVisible {
		t.Fatalf("reset on a degraded tracker re-pins, got %+v", st)
	}
}

func TestTrackerSubscribe(t *testing.T) {
	p := newFakePlatform()
	tr := NewTracker(p, WithTriggerOnce(false))
	tr.Attach("row")

	var states []State
	cancel := tr.Subscribe(func(st State) { states = append(states, st) })

	obs := p.observer(0)
	obs.emit(seen("row", 1))
	obs.emit(seen("row", 1))
	obs.emit(gone("row"))

	if len(states) != 2 {
		t.Fatalf("subscribers run only on change, got %d notifications", len(states))
	}
	if !states[0].Visible || states[1].Visible {
		t.Fatalf("notifications carry the resulting state, got %+v", states)
	}

	cancel()
	cancel()
	obs.emit(seen("row", 1))
	if len(states) != 2 {
		t.Fatalf("cancelled subscriber must not run again")
	}
}

func TestTrackerThresholdClamped(t *testing.T) {
	p := newFakePlatform()
	tr := NewTracker(p, WithThreshold(4))
	tr.Attach("row")
	if got := p.observer(0).cfg.Threshold; got != 1 {
		t.Fatalf("threshold clamped to 1, got %v", got)
	}

	tr2 := NewTracker(p, WithThreshold(-1))
	tr2.Attach("row2")
	if got := p.observer(1).cfg.Threshold; got != 0 {
		t.Fatalf("threshold clamped to 0, got %v", got)
	}
}
