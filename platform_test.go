package lazyview

import "sync"

// fakePlatform drives trackers and registries by hand. Observers are kept
// in creation order, so a tracker's visibility observer is index 0 and its
// prefetch observer, when enabled, index 1.
type fakePlatform struct {
	available bool

	mu        sync.Mutex
	observers []*fakeObserver
	geometry  map[Element]Entry
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{available: true, geometry: map[Element]Entry{}}
}

func (p *fakePlatform) Available() bool { return p.available }

func (p *fakePlatform) NewObserver(cfg ObserverConfig, deliver DeliverFunc) Observer {
	o := &fakeObserver{cfg: cfg, deliver: deliver, observed: map[Element]bool{}}
	p.mu.Lock()
	p.observers = append(p.observers, o)
	p.mu.Unlock()
	return o
}

func (p *fakePlatform) Intersect(el Element, _ Margin) (Entry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.geometry[el]
	return e, ok
}

func (p *fakePlatform) setGeometry(el Element, ratio float64, overlap bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.geometry[el] = Entry{Element: el, Ratio: ratio, Intersecting: overlap}
}

func (p *fakePlatform) observer(i int) *fakeObserver {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.observers[i]
}

func (p *fakePlatform) observerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.observers)
}

type fakeObserver struct {
	cfg     ObserverConfig
	deliver DeliverFunc

	mu           sync.Mutex
	observed     map[Element]bool
	disconnected bool
}

func (o *fakeObserver) Observe(el Element) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observed[el] = true
}

func (o *fakeObserver) Unobserve(el Element) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.observed, el)
}

func (o *fakeObserver) Disconnect() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.disconnected = true
}

func (o *fakeObserver) observing(el Element) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.observed[el]
}

// emit delivers one batch the way a platform would, outside any lock.
func (o *fakeObserver) emit(entries ...Entry) {
	o.deliver(entries)
}

// seen builds an intersecting entry for el.
func seen(el Element, ratio float64) Entry {
	return Entry{Element: el, Ratio: ratio, Intersecting: true}
}

// gone builds a non-intersecting entry for el.
func gone(el Element) Entry {
	return Entry{Element: el}
}

// manualExec queues loader tasks so tests decide when completions land.
type manualExec struct {
	tasks []func()
}

func (m *manualExec) run(task func()) {
	m.tasks = append(m.tasks, task)
}

func (m *manualExec) flush() {
	tasks := m.tasks
	m.tasks = nil
	for _, task := range tasks {
		task()
	}
}

// syncExec runs loader tasks inline.
func syncExec(task func()) { task() }
