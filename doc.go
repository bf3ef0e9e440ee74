// Package lazyview defers work until a viewport can actually see the thing
// the work is for. It grew out of terminal UIs that decode images and
// interpret plugin widgets for rows far below the fold; deferring both
// until the row scrolls near keeps startup instant and memory flat.
//
// The package is split along a narrow seam. A Platform measures geometry
// and pushes intersection Entry batches; package termview implements it for
// terminal viewports and package domview for browser documents, while tests
// drive a synthetic platform by hand. Everything above the seam is plain
// state machinery with no host dependencies.
//
// A Tracker follows one element:
//
//	t := lazyview.NewTracker(surface,
//		lazyview.WithThreshold(0.25),
//		lazyview.WithPrefetch(lazyview.Cells(40)),
//	)
//	t.Attach(rowID)
//
// Trackers latch EverVisible on first sight, optionally pin Visible after
// it (trigger-once), and expose an independent Prefetching signal measured
// with a wider margin. When the platform reports itself unavailable the
// tracker starts pinned visible, so content still appears, just eagerly.
//
// ImageLoader and ViewLoader ride on a tracker and start their fetch or
// module resolution the moment the tracker goes visible or prefetching.
// Completions are committed only if the source they were started for is
// still current, which makes switching sources mid-flight safe. Registry
// covers the many-elements case with one shared observation and a string id
// table.
package lazyview
