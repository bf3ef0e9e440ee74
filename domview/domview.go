//go:build js && wasm

// Package domview binds the lazyview platform seam to the browser's
// IntersectionObserver API for WebAssembly builds.
//
// DOM nodes are wrapped in *Node rather than passed as raw js.Value:
// js.Value is not comparable, and elements key tracker and registry
// tables. Create one Node per DOM node and reuse it for every Attach.
package domview

import (
	"math"
	"sync"
	"syscall/js"

	"github.com/kingrea/lazyview"
)

// Node is the comparable element handle for one DOM node.
type Node struct {
	value js.Value
}

// NodeOf wraps a DOM node. Wrapping the same node twice yields two
// distinct elements; callers keep the pointer alongside the node.
func NodeOf(v js.Value) *Node { return &Node{value: v} }

// Value returns the underlying DOM node.
func (n *Node) Value() js.Value { return n.value }

// DOM implements lazyview.Platform on top of window.IntersectionObserver.
type DOM struct{}

// New returns the browser platform.
func New() DOM { return DOM{} }

// Available reports whether the page exposes IntersectionObserver. Old
// engines without it degrade trackers to eager loading.
func (DOM) Available() bool {
	return js.Global().Get("IntersectionObserver").Truthy()
}

// NewObserver creates a native IntersectionObserver. Margin.String renders
// the rootMargin shorthand. The native isIntersecting flag means any
// overlap, so when a threshold is set the entry is re-derived from the
// intersection ratio; callbacks fire at both the zero and the threshold
// crossing.
func (DOM) NewObserver(cfg lazyview.ObserverConfig, deliver lazyview.DeliverFunc) lazyview.Observer {
	o := &domObserver{}
	o.callback = js.FuncOf(func(this js.Value, args []js.Value) any {
		if deliver == nil || len(args) == 0 {
			return nil
		}
		raw := args[0]
		n := raw.Length()
		entries := make([]lazyview.Entry, 0, n)
		for i := 0; i < n; i++ {
			e := raw.Index(i)
			node := o.lookup(e.Get("target"))
			if node == nil {
				continue
			}
			ratio := e.Get("intersectionRatio").Float()
			intersecting := e.Get("isIntersecting").Bool()
			if cfg.Threshold > 0 {
				intersecting = ratio >= cfg.Threshold
			}
			entries = append(entries, lazyview.Entry{
				Element:      node,
				Ratio:        ratio,
				Intersecting: intersecting,
			})
		}
		if len(entries) > 0 {
			deliver(entries)
		}
		return nil
	})

	thresholds := []any{0.0}
	if cfg.Threshold > 0 {
		thresholds = append(thresholds, cfg.Threshold)
	}
	opts := js.Global().Get("Object").New()
	opts.Set("threshold", js.ValueOf(thresholds))
	opts.Set("rootMargin", cfg.Margin.String())
	o.value = js.Global().Get("IntersectionObserver").New(o.callback, opts)
	return o
}

// Intersect measures el against the viewport right now. The DOM has no
// synchronous observer query, so this compares bounding rectangles the
// way the observer would, inflating the viewport by m.
func (DOM) Intersect(el lazyview.Element, m lazyview.Margin) (lazyview.Entry, bool) {
	node, ok := el.(*Node)
	if !ok || !node.value.Truthy() {
		return lazyview.Entry{}, false
	}

	rect := node.value.Call("getBoundingClientRect")
	top := rect.Get("top").Float()
	bottom := rect.Get("bottom").Float()
	height := bottom - top

	lo := -float64(m.Top)
	hi := js.Global().Get("innerHeight").Float() + float64(m.Bottom)

	entry := lazyview.Entry{Element: el}
	overlap := math.Min(bottom, hi) - math.Max(top, lo)
	if height <= 0 || overlap <= 0 {
		return entry, true
	}
	entry.Intersecting = true
	entry.Ratio = math.Min(overlap/height, 1)
	return entry, true
}

// domObserver keeps the observed nodes so callback targets, which arrive
// as fresh js.Value handles, can be mapped back to their elements.
type domObserver struct {
	value    js.Value
	callback js.Func

	mu    sync.Mutex
	nodes []*Node
	done  bool
}

// lookup finds the Node whose DOM value equals target.
func (o *domObserver) lookup(target js.Value) *Node {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, n := range o.nodes {
		if n.value.Equal(target) {
			return n
		}
	}
	return nil
}

func (o *domObserver) Observe(el lazyview.Element) {
	node, ok := el.(*Node)
	if !ok || !node.value.Truthy() {
		return
	}
	o.mu.Lock()
	if o.done {
		o.mu.Unlock()
		return
	}
	o.nodes = append(o.nodes, node)
	o.mu.Unlock()
	o.value.Call("observe", node.value)
}

func (o *domObserver) Unobserve(el lazyview.Element) {
	node, ok := el.(*Node)
	if !ok {
		return
	}
	o.mu.Lock()
	if o.done {
		o.mu.Unlock()
		return
	}
	for i, n := range o.nodes {
		if n == node {
			o.nodes = append(o.nodes[:i], o.nodes[i+1:]...)
			break
		}
	}
	o.mu.Unlock()
	if node.value.Truthy() {
		o.value.Call("unobserve", node.value)
	}
}

// Disconnect stops the native observer and releases the callback func.
// Further calls are no-ops.
func (o *domObserver) Disconnect() {
	o.mu.Lock()
	if o.done {
		o.mu.Unlock()
		return
	}
	o.done = true
	o.nodes = nil
	o.mu.Unlock()
	o.value.Call("disconnect")
	o.callback.Release()
}
