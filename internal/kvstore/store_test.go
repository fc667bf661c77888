package kvstore

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typedkv/kvsvc/internal/txnlog"
	"github.com/typedkv/kvsvc/internal/txnlog/txnlogtest"
)

func newTestStore(t *testing.T) (*Store, *txnlogtest.Spy) {
	t.Helper()
	spy := txnlogtest.New()
	path := filepath.Join(t.TempDir(), "store.sqlite")
	s, err := Open(path, spy)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, spy
}

func TestPut_InsertThenOverwrite(t *testing.T) {
	s, spy := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "widgets", "a", []byte("v1")))
	calls := spy.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, txnlog.OpInsertAfter, calls[0].Op)
	assert.Equal(t, []byte("v1"), calls[0].Value)

	require.NoError(t, s.Put(ctx, "widgets", "a", []byte("v2")))
	calls = spy.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, txnlog.OpUpdateBefore, calls[1].Op)
	assert.Equal(t, []byte("v1"), calls[1].Value)
	assert.Equal(t, txnlog.OpUpdateAfter, calls[2].Op)
	assert.Equal(t, []byte("v2"), calls[2].Value)
	assert.Equal(t, calls[1].TxID, calls[2].TxID)

	value, found, err := s.Get(ctx, "widgets", "a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v2"), value)
}

func TestPut_RejectsEmptyArguments(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.Put(ctx, "", "a", []byte("v")), ErrInvalidArgument)
	assert.ErrorIs(t, s.Put(ctx, "widgets", "", []byte("v")), ErrInvalidArgument)
	assert.ErrorIs(t, s.Put(ctx, "widgets", "a", nil), ErrInvalidArgument)
}

func TestPut_RejectsOversizedValue(t *testing.T) {
	spy := txnlogtest.New()
	path := filepath.Join(t.TempDir(), "store.sqlite")
	s, err := Open(path, spy, WithMaxValueBytes(4))
	require.NoError(t, err)
	defer s.Close()

	err = s.Put(context.Background(), "widgets", "a", []byte("toolong"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Empty(t, spy.Calls())
}

func TestGet_Missing(t *testing.T) {
	s, _ := newTestStore(t)
	value, found, err := s.Get(context.Background(), "widgets", "missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, value)
}

func TestExists(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	ok, err := s.Exists(ctx, "widgets", "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "widgets", "a", []byte("v")))

	ok, err = s.Exists(ctx, "widgets", "a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDelete_Existing(t *testing.T) {
	s, spy := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "widgets", "a", []byte("v")))
	spy.Reset()

	require.NoError(t, s.Delete(ctx, "widgets", "a"))
	calls := spy.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, txnlog.OpDeleteBefore, calls[0].Op)
	assert.Equal(t, []byte("v"), calls[0].Value)

	_, found, err := s.Get(ctx, "widgets", "a")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDelete_Missing(t *testing.T) {
	s, spy := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, "widgets", "ghost"))
	calls := spy.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, txnlog.OpDeleteBeforeMissing, calls[0].Op)
	assert.Nil(t, calls[0].Value)
}

func TestList_OrderedAndLimited(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, k := range []string{"c", "a", "b"} {
		require.NoError(t, s.Put(ctx, "items", k, []byte("v")))
	}

	keys, err := s.List(ctx, "items", "", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	keys, err = s.List(ctx, "items", "", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestList_PrefixFilter(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, k := range []string{"foo-1", "foo-2", "bar-1"} {
		require.NoError(t, s.Put(ctx, "items", k, []byte("v")))
	}

	keys, err := s.List(ctx, "items", "foo-", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"foo-1", "foo-2"}, keys)
}

func TestListEscaped_MatchesLiterally(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "items", "a%b", []byte("v")))
	require.NoError(t, s.Put(ctx, "items", "aXb", []byte("v")))

	plain, err := s.List(ctx, "items", "a%b", 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a%b", "aXb"}, plain)

	literal, err := s.ListEscaped(ctx, "items", "a%b", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a%b"}, literal)
}

func TestList_LimitClampedToMax(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Put(ctx, "items", string(rune('a'+i)), []byte("v")))
	}

	keys, err := s.List(ctx, "items", "", 1000000)
	require.NoError(t, err)
	assert.Len(t, keys, 5)

	keys, err = s.List(ctx, "items", "", -5)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestStats_CountsPerType(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "widgets", "a", []byte("v")))
	require.NoError(t, s.Put(ctx, "widgets", "b", []byte("v")))
	require.NoError(t, s.Put(ctx, "gadgets", "a", []byte("v")))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TypeCounts["widgets"])
	assert.Equal(t, int64(1), stats.TypeCounts["gadgets"])
	assert.Greater(t, stats.PageCount, int64(0))
	assert.Greater(t, stats.PageSize, int64(0))

	sorted := SortedTypes(stats)
	assert.Equal(t, []string{"gadgets", "widgets"}, sorted)
}

func TestConcurrentPuts_EachProducesOneLogEntry(t *testing.T) {
	s, spy := newTestStore(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := filepath.Join("key", string(rune('a'+i%26)), string(rune('0'+i/26)))
			assert.NoError(t, s.Put(ctx, "items", key, []byte("v")))
		}(i)
	}
	wg.Wait()

	calls := spy.Calls()
	assert.Len(t, calls, n)
	for _, c := range calls {
		assert.Equal(t, txnlog.OpInsertAfter, c.Op)
	}
}
