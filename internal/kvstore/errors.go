package kvstore

import "errors"

// ErrInvalidArgument is wrapped around precondition violations at the
// KVStore boundary (empty type, key, or value). Surfaced to the
// caller per the error taxonomy: invalid arguments are the caller's
// mistake, not a storage failure.
var ErrInvalidArgument = errors.New("kvstore: invalid argument")

// ErrStorage is wrapped around any I/O or constraint failure from the
// underlying database. The mutation did not complete; the relation
// remains at its prior state.
var ErrStorage = errors.New("kvstore: storage failure")

// errLaneClosed is returned by the write lane when a mutation is
// submitted after Close has been called on the Store.
var errLaneClosed = errors.New("kvstore: store is closed")
