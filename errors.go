package lazyview

import "errors"

var (
	// ErrClosed is returned by registry operations after Close.
	ErrClosed = errors.New("lazyview: registry closed")

	// ErrNoResolver marks a view loader that was triggered without a
	// resolver to call.
	ErrNoResolver = errors.New("lazyview: no resolver")
)
