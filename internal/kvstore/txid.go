package kvstore

import "github.com/google/uuid"

// TxIDGenerator supplies the identifier a Store stamps onto the
// paired before/after log lines produced by one mutation. Grounded in
// the teacher's fixed-token generator testability seam, adapted to
// produce real UUIDs in production instead of a scenario-supplied
// fixed string.
type TxIDGenerator interface {
	Generate() string
}

type uuidTxIDGenerator struct{}

func (uuidTxIDGenerator) Generate() string { return uuid.NewString() }

// FixedTxIDGenerator always returns the same id, letting tests assert
// on an exact txid or byte-compare golden log output.
type FixedTxIDGenerator struct {
	id string
}

// NewFixedTxIDGenerator creates a generator returning id every time.
// An empty id falls back to "test-txn-default".
func NewFixedTxIDGenerator(id string) *FixedTxIDGenerator {
	if id == "" {
		id = "test-txn-default"
	}
	return &FixedTxIDGenerator{id: id}
}

func (g *FixedTxIDGenerator) Generate() string { return g.id }
