package lazyview

// Element identifies something whose on-screen geometry a Platform can
// measure. The core never inspects it; hosts decide what the concrete type
// is (a widget pointer, a DOM node handle, a plain string in tests). It must
// be comparable, because trackers and registries key tables by element.
type Element any

// Entry is a single intersection measurement for one element. Intersecting
// reports whether the element met the measurement's threshold; Ratio is the
// fraction of the element inside the margin-inflated viewport.
type Entry struct {
	Element      Element
	Ratio        float64
	Intersecting bool
}

// DeliverFunc receives a batch of measurements. Batches preserve signal
// order: when a batch carries several entries for the same element, later
// entries supersede earlier ones.
type DeliverFunc func([]Entry)

// ObserverConfig fixes the measurement parameters for one observation.
type ObserverConfig struct {
	// Threshold is the minimum ratio an element must reach to count as
	// intersecting, in [0, 1]. Zero means any overlap counts.
	Threshold float64
	// Margin inflates the viewport before measurement.
	Margin Margin
}

// Observer is a live observation registered with a platform. Platforms
// deliver an initial entry for every observed element and stay quiet until
// its intersecting flag changes.
type Observer interface {
	Observe(el Element)
	Unobserve(el Element)
	Disconnect()
}

// Platform measures element visibility for some host surface: a terminal
// viewport, a browser document, or a synthetic surface in tests.
type Platform interface {
	// Available reports whether the platform can deliver intersection
	// signals. Trackers probe once at construction and degrade to
	// always-visible when it returns false.
	Available() bool
	// NewObserver registers an observation. Platforms call deliver without
	// holding internal locks, from whatever goroutine recomputes geometry.
	NewObserver(cfg ObserverConfig, deliver DeliverFunc) Observer
	// Intersect measures one element on demand against the viewport
	// inflated by m. The entry uses a zero threshold, so Intersecting
	// reports any overlap; callers apply their own thresholds to Ratio.
	// ok is false when the platform has no geometry for el.
	Intersect(el Element, m Margin) (e Entry, ok bool)
}

// Unavailable returns the platform used when no real surface exists, for
// example when stdout is not a terminal. Available reports false and every
// observation is a no-op.
func Unavailable() Platform { return unavailablePlatform{} }

type unavailablePlatform struct{}

func (unavailablePlatform) Available() bool { return false }

func (unavailablePlatform) NewObserver(ObserverConfig, DeliverFunc) Observer { return nopObserver{} }

func (unavailablePlatform) Intersect(Element, Margin) (Entry, bool) { return Entry{}, false }

type nopObserver struct{}

func (nopObserver) Observe(Element)   {}
func (nopObserver) Unobserve(Element) {}
func (nopObserver) Disconnect()       {}
