package txnlog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const dayLayout = "2006-01-02"

// Logger is the interface KVStore drives to record before/after images
// of its mutations. It has three realizations: JSONLLogger (the
// production file-backed logger), Discard (a no-op) and txnlogtest.Spy
// (a recording test double). No logger returns an error: per the log's advisory,
// audit-only contract, a log write failure must never affect the
// caller's view of the mutation it describes.
type Logger interface {
	LogInsertAfter(typ, key string, ts, updatedAt float64, txid string, value []byte)
	LogUpdateBefore(typ, key string, ts, updatedAt float64, txid string, value []byte)
	LogUpdateAfter(typ, key string, ts, updatedAt float64, txid string, value []byte)
	LogDeleteBefore(typ, key string, ts, updatedAt float64, txid string, value []byte)
	LogDeleteBeforeMissing(typ, key string, ts, updatedAt float64, txid string)
}

// JSONLLogger appends one JSON object per line to an active log file,
// rotating to a dated file whenever the local calendar day of an
// incoming event differs from the active file's last-modified day.
//
// A JSONLLogger owns its active file handle exclusively. Pointing two
// instances at the same active path is undefined behavior.
type JSONLLogger struct {
	mu         sync.Mutex
	basePath   string // db path without its extension
	activePath string
	file       *os.File
	errSink    io.Writer
}

// NewJSONLLogger creates a logger whose active log file lives beside
// dbPath, named "<dbPath-without-extension>.txn.log". The file and its
// parent directory are created lazily on first write.
func NewJSONLLogger(dbPath string) *JSONLLogger {
	base := strings.TrimSuffix(dbPath, filepath.Ext(dbPath))
	return &JSONLLogger{
		basePath:   base,
		activePath: base + ".txn.log",
		errSink:    os.Stderr,
	}
}

// Close releases the active file handle, if one is open. Safe to call
// on a logger that has never written anything.
func (l *JSONLLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *JSONLLogger) LogInsertAfter(typ, key string, ts, updatedAt float64, txid string, value []byte) {
	l.append(newRecord(OpInsertAfter, typ, key, ts, updatedAt, txid, value))
}

func (l *JSONLLogger) LogUpdateBefore(typ, key string, ts, updatedAt float64, txid string, value []byte) {
	l.append(newRecord(OpUpdateBefore, typ, key, ts, updatedAt, txid, value))
}

func (l *JSONLLogger) LogUpdateAfter(typ, key string, ts, updatedAt float64, txid string, value []byte) {
	l.append(newRecord(OpUpdateAfter, typ, key, ts, updatedAt, txid, value))
}

func (l *JSONLLogger) LogDeleteBefore(typ, key string, ts, updatedAt float64, txid string, value []byte) {
	l.append(newRecord(OpDeleteBefore, typ, key, ts, updatedAt, txid, value))
}

func (l *JSONLLogger) LogDeleteBeforeMissing(typ, key string, ts, updatedAt float64, txid string) {
	l.append(newRecord(OpDeleteBeforeMissing, typ, key, ts, updatedAt, txid, nil))
}

// append serializes rec and appends it to the active file, rotating
// first if the event's local day differs from the active file's last
// write day. All failures are reported to errSink and swallowed: the
// log is advisory audit, not a redo log.
func (l *JSONLLogger) append(rec Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.rotateIfNeeded(rec.Ts); err != nil {
		l.reportError("rotate", err)
	}
	if err := l.ensureOpen(); err != nil {
		l.reportError("open", err)
		return
	}

	line, err := marshalLine(rec)
	if err != nil {
		l.reportError("marshal", err)
		return
	}
	if _, err := l.file.Write(line); err != nil {
		l.reportError("write", err)
		return
	}
	if err := l.file.Sync(); err != nil {
		l.reportError("sync", err)
	}

	// Stamp the active file's mtime with the event's logical time so the
	// next rotation check compares against the day of the last *logged*
	// event rather than the day the write syscall happened to land on.
	// This is what makes rotation track ts under replay of backdated or
	// clock-skewed events (see package doc).
	eventTime := unixTime(rec.Ts)
	if err := os.Chtimes(l.activePath, eventTime, eventTime); err != nil {
		l.reportError("touch mtime", err)
	}
}

// rotateIfNeeded compares the local-calendar day of ts against the
// active file's last-modified day and rotates the active file to a
// dated name (with numeric collision suffixing) if they differ. A
// missing or empty active file needs no rotation.
func (l *JSONLLogger) rotateIfNeeded(ts float64) error {
	info, err := os.Stat(l.activePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return nil
	}

	activeDay := info.ModTime().Local().Format(dayLayout)
	if activeDay == dayOf(ts) {
		return nil
	}

	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}

	datedPath := l.basePath + "." + activeDay + ".txn.log"
	if _, err := os.Stat(datedPath); errors.Is(err, os.ErrNotExist) {
		return os.Rename(l.activePath, datedPath)
	} else if err != nil {
		return err
	}

	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s.%d", datedPath, n)
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return os.Rename(l.activePath, candidate)
		} else if err != nil {
			return err
		}
	}
}

// ensureOpen opens (creating if necessary) the active file handle,
// along with its parent directory, if one isn't already held.
func (l *JSONLLogger) ensureOpen() error {
	if l.file != nil {
		return nil
	}
	if dir := filepath.Dir(l.activePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(l.activePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return fmt.Errorf("open active log: %w", err)
	}
	l.file = f
	return nil
}

func (l *JSONLLogger) reportError(stage string, err error) {
	fmt.Fprintf(l.errSink, "txnlog: %s failed: %v\n", stage, err)
}

// unixTime converts seconds-since-epoch (double) to a time.Time.
func unixTime(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

// dayOf formats ts (seconds since epoch) as its local calendar day.
func dayOf(ts float64) string {
	return unixTime(ts).Local().Format(dayLayout)
}

var _ Logger = (*JSONLLogger)(nil)

// discardLogger implements Logger by dropping every call. Used where a
// Logger is structurally required but no mutation is expected to flow
// through it, such as a schema-only migration run.
type discardLogger struct{}

// Discard is the Logger that records nothing.
var Discard Logger = discardLogger{}

func (discardLogger) LogInsertAfter(typ, key string, ts, updatedAt float64, txid string, value []byte) {
}
func (discardLogger) LogUpdateBefore(typ, key string, ts, updatedAt float64, txid string, value []byte) {
}
func (discardLogger) LogUpdateAfter(typ, key string, ts, updatedAt float64, txid string, value []byte) {
}
func (discardLogger) LogDeleteBefore(typ, key string, ts, updatedAt float64, txid string, value []byte) {
}
func (discardLogger) LogDeleteBeforeMissing(typ, key string, ts, updatedAt float64, txid string) {}
