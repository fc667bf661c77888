// Package processlog builds the structured logger for the kvsvcd
// process itself — request handling, storage errors, lifecycle events
// — as distinct from internal/txnlog's durable mutation audit log.
package processlog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// defaultMaxBytes bounds the active log file before it rotates to a
// single ".1" backup.
const defaultMaxBytes = 10 << 20

// New builds a slog.Logger writing JSON lines to dir/kvsvcd.log (with
// size-based rotation) if dir is nonempty, or to stderr otherwise.
// verbose raises the level from Info to Debug.
func New(dir string, verbose bool) *slog.Logger {
	var w io.Writer = os.Stderr
	if dir != "" {
		w = NewRotatingWriter(filepath.Join(dir, "kvsvcd.log"), defaultMaxBytes)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// RotatingWriter is an io.Writer over a single active file that
// rotates to one "<path>.1" backup once the active file would exceed
// maxBytes, overwriting any previous backup. Grounded in txnlog's own
// active-file/rotate-then-reopen pattern, simplified from day-keyed to
// size-keyed since a process log has no natural calendar boundary.
type RotatingWriter struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	file     *os.File
}

// NewRotatingWriter returns a writer targeting path; the file and its
// parent directory are created lazily on first write.
func NewRotatingWriter(path string, maxBytes int64) *RotatingWriter {
	return &RotatingWriter{path: path, maxBytes: maxBytes}
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.ensureOpen(); err != nil {
		return 0, err
	}

	if w.maxBytes > 0 {
		info, err := w.file.Stat()
		if err == nil && info.Size()+int64(len(p)) > w.maxBytes {
			if err := w.rotate(); err != nil {
				return 0, err
			}
			if err := w.ensureOpen(); err != nil {
				return 0, err
			}
		}
	}

	return w.file.Write(p)
}

// Close releases the active file handle, if one is open.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *RotatingWriter) ensureOpen() error {
	if w.file != nil {
		return nil
	}
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return err
	}
	w.file = f
	return nil
}

func (w *RotatingWriter) rotate() error {
	if w.file != nil {
		_ = w.file.Close()
		w.file = nil
	}
	backup := w.path + ".1"
	_ = os.Remove(backup)
	if err := os.Rename(w.path, backup); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
