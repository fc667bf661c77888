// Package txnlog provides the durable, human-readable audit trail of
// every KVStore mutation: one JSON object per line, size-truncated,
// SHA-256 digested, rotated daily by local calendar day.
//
// # Wire format
//
// Each record is a single-line JSON object terminated by a bare '\n'.
// No BOM, no pretty-printing, UTF-8 throughout. See Record for the
// field set.
//
// # Rotation
//
// The active file is compared, on each write, against the local
// calendar day of the event being written. A day change rotates the
// active file to a dated name, picking a numeric collision suffix if
// that dated name is already taken (e.g. two rotations landing on the
// same day because of a backdated event). After every successful
// append, the active file's mtime is stamped to the event's ts, so the
// "physical day of the last write" tracked by later rotation checks is
// actually the logical day of the last *logged* event, not whatever
// wall-clock instant the write syscall happened to land on. This keeps
// rotation correct under replay of backdated records.
//
// # Failure handling
//
// All I/O failures are reported to a side channel (stderr by default)
// and never surfaced to the caller: the log is best-effort audit, not
// a redo log, and losing a line must never roll back a committed row.
package txnlog
