package termview

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/lazyview"
)

// ViewportBox converts a bubbles viewport into the box a surface measures
// against: YOffset is the first visible content row, Height the number of
// rows on screen.
func ViewportBox(m viewport.Model) lazyview.Box {
	return lazyview.Box{Top: m.YOffset, Height: m.Height}
}

// LoadedMsg wakes a bubbletea program after a loader commits a result, so
// lazily loaded content appears without waiting for the next key press.
type LoadedMsg struct{}

// Executor builds a loader executor for bubbletea programs: each task runs
// on its own goroutine and the program receives a LoadedMsg when it
// finishes. Pass p.Send for a running program.
func Executor(send func(tea.Msg)) func(func()) {
	return func(task func()) {
		go func() {
			task()
			send(LoadedMsg{})
		}()
	}
}
