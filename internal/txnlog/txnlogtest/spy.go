// Package txnlogtest provides a recording test double for txnlog.Logger.
package txnlogtest

import (
	"sync"

	"github.com/typedkv/kvsvc/internal/txnlog"
)

// Call records one invocation of a Logger method, tagged by the
// operation it represents. Value is nil for delete-before-missing.
type Call struct {
	Op        txnlog.Op
	Type      string
	Key       string
	Ts        float64
	UpdatedAt float64
	TxID      string
	Value     []byte
}

// Spy is a txnlog.Logger that records every call instead of writing
// to disk, for use in KVStore unit tests that assert on log call
// shape (order, op kind, shared txid) without filesystem I/O.
//
// Safe for concurrent use.
type Spy struct {
	mu    sync.Mutex
	calls []Call
}

// New creates an empty Spy.
func New() *Spy {
	return &Spy{}
}

// Calls returns a snapshot of the calls recorded so far, in order.
func (s *Spy) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Reset discards every call recorded so far.
func (s *Spy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *Spy) record(c Call) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
}

func (s *Spy) LogInsertAfter(typ, key string, ts, updatedAt float64, txid string, value []byte) {
	s.record(Call{Op: txnlog.OpInsertAfter, Type: typ, Key: key, Ts: ts, UpdatedAt: updatedAt, TxID: txid, Value: value})
}

func (s *Spy) LogUpdateBefore(typ, key string, ts, updatedAt float64, txid string, value []byte) {
	s.record(Call{Op: txnlog.OpUpdateBefore, Type: typ, Key: key, Ts: ts, UpdatedAt: updatedAt, TxID: txid, Value: value})
}

func (s *Spy) LogUpdateAfter(typ, key string, ts, updatedAt float64, txid string, value []byte) {
	s.record(Call{Op: txnlog.OpUpdateAfter, Type: typ, Key: key, Ts: ts, UpdatedAt: updatedAt, TxID: txid, Value: value})
}

func (s *Spy) LogDeleteBefore(typ, key string, ts, updatedAt float64, txid string, value []byte) {
	s.record(Call{Op: txnlog.OpDeleteBefore, Type: typ, Key: key, Ts: ts, UpdatedAt: updatedAt, TxID: txid, Value: value})
}

func (s *Spy) LogDeleteBeforeMissing(typ, key string, ts, updatedAt float64, txid string) {
	s.record(Call{Op: txnlog.OpDeleteBeforeMissing, Type: typ, Key: key, Ts: ts, UpdatedAt: updatedAt, TxID: txid})
}

var _ txnlog.Logger = (*Spy)(nil)
