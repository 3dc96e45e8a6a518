package log

import (
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileLoggerOption configures a FileLogger.
type FileLoggerOption func(*FileLogger)

// WithKinds restricts the logger to the given kinds. A long countdown
// writes one TICK per interval; WithKinds(KindStart, KindStop) keeps only
// run outcomes.
func WithKinds(kinds ...Kind) FileLoggerOption {
	return func(l *FileLogger) {
		l.kinds = make(map[Kind]bool, len(kinds))
		for _, k := range kinds {
			l.kinds[k] = true
		}
	}
}

// WithSyncOnStop flushes the file to disk after every STOP event, so the
// outcome of each run survives a crash.
func WithSyncOnStop() FileLoggerOption {
	return func(l *FileLogger) {
		l.syncOnStop = true
	}
}

// FileLogger appends countdown events to a .clog file.
// It is safe for concurrent use; runs tick on their own goroutines.
type FileLogger struct {
	path       string
	kinds      map[Kind]bool // nil records every kind
	syncOnStop bool

	mu      sync.Mutex
	file    *os.File
	encoder *cbor.Encoder
	closed  bool
}

// NewFileLogger opens path for appending, creating it with permissions 0644
// if needed. Events from earlier processes are kept, so one file can span
// several countdown sessions.
func NewFileLogger(path string, opts ...FileLoggerOption) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	l := &FileLogger{
		path:    path,
		file:    f,
		encoder: NewEncoder(f),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Path returns the file the logger writes to.
func (l *FileLogger) Path() string {
	return l.path
}

// Log appends an event. Events of unknown or filtered kinds are skipped.
func (l *FileLogger) Log(event Event) {
	if !event.Kind.Valid() || (l.kinds != nil && !l.kinds[event.Kind]) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	// Write errors are dropped; a full disk must not stop the countdown.
	if err := l.encoder.Encode(event); err != nil {
		return
	}
	if l.syncOnStop && event.Kind == KindStop {
		_ = l.file.Sync()
	}
}

// Close closes the log file. It is safe to call Close multiple times.
// Later Log calls are silently ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	return l.file.Close()
}

// Compile-time interface satisfaction check.
var _ Logger = (*FileLogger)(nil)
