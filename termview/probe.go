package termview

import (
	"os"

	"github.com/mattn/go-isatty"
)

// Probe reports whether f is an interactive terminal that can host a
// surface. Redirected and piped output has no viewport to scroll, so
// callers fall back to lazyview.Unavailable and content loads eagerly.
func Probe(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
