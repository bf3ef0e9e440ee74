// Package termview hosts lazyview on a scrolling terminal viewport. The UI
// owns all geometry: it records each element's row bounds while laying
// content out, moves the viewport box on scroll and resize, and calls
// Recompute, which measures every observation and delivers entries for the
// elements whose intersection state changed. Until the first Recompute after
// Observe, an element has not been measured at all; the first measurement is
// always delivered, intersecting or not.
package termview

import (
	"sync"

	"github.com/kingrea/lazyview"
)

// Surface implements lazyview.Platform for one scrollable region.
type Surface struct {
	mu     sync.Mutex
	view   lazyview.Box
	bounds map[lazyview.Element]lazyview.Box
	obs    map[*surfaceObserver]struct{}
}

// New returns an empty surface. It reports Available until the process
// exits; callers decide with Probe whether to build one at all.
func New() *Surface {
	return &Surface{
		bounds: map[lazyview.Element]lazyview.Box{},
		obs:    map[*surfaceObserver]struct{}{},
	}
}

// Available implements lazyview.Platform.
func (s *Surface) Available() bool { return true }

// SetViewport moves the visible box. Callers follow up with Recompute once
// the whole layout pass is done.
func (s *Surface) SetViewport(b lazyview.Box) {
	s.mu.Lock()
	s.view = b
	s.mu.Unlock()
}

// Viewport returns the current visible box.
func (s *Surface) Viewport() lazyview.Box {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetBounds records where an element currently sits in content coordinates.
func (s *Surface) SetBounds(el lazyview.Element, b lazyview.Box) {
	s.mu.Lock()
	s.bounds[el] = b
	s.mu.Unlock()
}

// RemoveBounds forgets an element's geometry. Observations of the element
// stay registered but receive no further entries until bounds return.
func (s *Surface) RemoveBounds(el lazyview.Element) {
	s.mu.Lock()
	delete(s.bounds, el)
	s.mu.Unlock()
}

// NewObserver implements lazyview.Platform.
func (s *Surface) NewObserver(cfg lazyview.ObserverConfig, deliver lazyview.DeliverFunc) lazyview.Observer {
	o := &surfaceObserver{
		surface:  s,
		cfg:      cfg,
		deliver:  deliver,
		elems:    map[lazyview.Element]struct{}{},
		reported: map[lazyview.Element]bool{},
	}
	s.mu.Lock()
	s.obs[o] = struct{}{}
	s.mu.Unlock()
	return o
}

// Intersect implements lazyview.Platform. The entry reports any overlap;
// callers apply their own thresholds.
func (s *Surface) Intersect(el lazyview.Element, m lazyview.Margin) (lazyview.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bounds[el]
	if !ok {
		return lazyview.Entry{}, false
	}
	view := s.view.Inflate(m)
	return lazyview.Entry{
		Element:      el,
		Ratio:        lazyview.Ratio(b, view),
		Intersecting: lazyview.Overlap(b, view) > 0,
	}, true
}

// Recompute measures every observed element against the current viewport
// and delivers one batch per observer holding the entries that changed.
// Deliveries run after the surface lock is released, so observers may call
// back into the surface.
func (s *Surface) Recompute() {
	type delivery struct {
		deliver lazyview.DeliverFunc
		batch   []lazyview.Entry
	}
	var out []delivery

	s.mu.Lock()
	for o := range s.obs {
		batch := o.measureLocked(s)
		if len(batch) > 0 {
			out = append(out, delivery{deliver: o.deliver, batch: batch})
		}
	}
	s.mu.Unlock()

	for _, d := range out {
		d.deliver(d.batch)
	}
}

type surfaceObserver struct {
	surface *Surface
	cfg     lazyview.ObserverConfig
	deliver lazyview.DeliverFunc

	// Guarded by surface.mu.
	elems    map[lazyview.Element]struct{}
	reported map[lazyview.Element]bool
	done     bool
}

// measureLocked computes entries for the observer's elements. The caller
// holds surface.mu.
func (o *surfaceObserver) measureLocked(s *Surface) []lazyview.Entry {
	if o.done || len(o.elems) == 0 {
		return nil
	}
	view := s.view.Inflate(o.cfg.Margin)
	var batch []lazyview.Entry
	for el := range o.elems {
		b, ok := s.bounds[el]
		if !ok {
			continue
		}
		ratio := lazyview.Ratio(b, view)
		intersecting := lazyview.Overlap(b, view) > 0
		if o.cfg.Threshold > 0 {
			intersecting = ratio >= o.cfg.Threshold
		}
		last, seen := o.reported[el]
		if seen && last == intersecting {
			continue
		}
		o.reported[el] = intersecting
		batch = append(batch, lazyview.Entry{Element: el, Ratio: ratio, Intersecting: intersecting})
	}
	return batch
}

// Observe implements lazyview.Observer. The element is measured on the next
// Recompute.
func (o *surfaceObserver) Observe(el lazyview.Element) {
	s := o.surface
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.done || el == nil {
		return
	}
	o.elems[el] = struct{}{}
}

// Unobserve implements lazyview.Observer.
func (o *surfaceObserver) Unobserve(el lazyview.Element) {
	s := o.surface
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(o.elems, el)
	delete(o.reported, el)
}

// Disconnect implements lazyview.Observer. It drops the observation from
// the surface; further calls are no-ops.
func (o *surfaceObserver) Disconnect() {
	s := o.surface
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.done {
		return
	}
	o.done = true
	o.elems = map[lazyview.Element]struct{}{}
	o.reported = map[lazyview.Element]bool{}
	delete(s.obs, o)
}
