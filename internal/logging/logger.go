// Package logging owns the files under a project's .lazyview/logs
// directory. Two live there in practice: lazyview.log, the diagnostic
// log the scheduler types write through their Logger seam, and
// journey.log, the logbook's write-through target.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kingrea/lazyview/internal/config"
)

// DiagnosticLog is the file New opens.
const DiagnosticLog = "lazyview.log"

// Logger appends lines to one file under the project's logs directory.
// A nil Logger discards everything, so callers can hold the result of a
// failed Open without guarding every call.
type Logger struct {
	path string

	mu   sync.Mutex
	file *os.File
}

// New opens the diagnostic log for projectDir.
func New(projectDir string) (*Logger, error) {
	return Open(projectDir, DiagnosticLog)
}

// Open appends to the named file under projectDir's logs directory,
// creating the directory on first use. The handle stays open until
// Close, so per-line writers like the logbook need no file handling of
// their own.
func Open(projectDir, name string) (*Logger, error) {
	dir := filepath.Join(projectDir, config.AppDir, "logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open %s: %w", name, err)
	}
	return &Logger{path: path, file: f}, nil
}

// Path returns the file this logger appends to.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Printf writes one timestamped line.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil {
		return
	}
	line := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	l.WriteLine(fmt.Sprintf("[%s] %s", time.Now().Format(time.RFC3339), line))
}

// WriteLine appends one already-formatted line. Sinks that stamp and
// shape their own entries, like the logbook, write through here.
func (l *Logger) WriteLine(line string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}
	fmt.Fprintln(l.file, line)
}

// Close releases the file handle. Lines written afterwards are
// discarded; closing again is a no-op.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
