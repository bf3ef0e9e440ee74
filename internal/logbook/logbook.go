// Package logbook keeps a short, user-facing history of gallery events:
// items entering view, loads finishing, loads failing. Lines land in an
// in-memory ring the TUI tails every frame, and pass through to a sink,
// in practice the journey file internal/logging holds open, so the
// session can be inspected after exit.
package logbook

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// ringSize bounds the in-memory history; the sink keeps everything.
const ringSize = 64

// Sink receives every formatted entry. *logging.Logger satisfies it.
type Sink interface {
	WriteLine(string)
}

// Logbook records gallery progress. A nil Logbook is inert; a nil sink
// keeps the history in memory only.
type Logbook struct {
	sink Sink

	mu    sync.Mutex
	ring  []string
	total int
}

// New creates a logbook writing through sink.
func New(sink Sink) *Logbook {
	return &Logbook{sink: sink}
}

// Append records a single entry.
func (l *Logbook) Append(level Level, message string) {
	if l == nil {
		return
	}
	line := fmt.Sprintf("%s %-5s %s",
		time.Now().Format("15:04:05"),
		string(level),
		strings.TrimSpace(message),
	)

	l.mu.Lock()
	l.ring = append(l.ring, line)
	if len(l.ring) > ringSize {
		l.ring = l.ring[len(l.ring)-ringSize:]
	}
	l.total++
	l.mu.Unlock()

	if l.sink != nil {
		l.sink.WriteLine(line)
	}
}

// Tail returns up to maxLines of the most recent entries, oldest first.
func (l *Logbook) Tail(maxLines int) []string {
	if l == nil || maxLines <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.ring) == 0 {
		return nil
	}
	start := 0
	if len(l.ring) > maxLines {
		start = len(l.ring) - maxLines
	}
	out := make([]string, len(l.ring)-start)
	copy(out, l.ring[start:])
	return out
}

// Len returns how many entries were ever appended.
func (l *Logbook) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// Info appends an informational entry.
func (l *Logbook) Info(format string, args ...any) {
	l.Append(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn appends a warning entry.
func (l *Logbook) Warn(format string, args ...any) {
	l.Append(LevelWarn, fmt.Sprintf(format, args...))
}

// Error appends an error entry.
func (l *Logbook) Error(format string, args ...any) {
	l.Append(LevelError, fmt.Sprintf(format, args...))
}
