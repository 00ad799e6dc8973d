package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault/internal/common"
)

// roundTrip exercises the Store contract shared by all implementations.
func roundTrip(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	payload := []byte("ciphertext bytes \x00\x01\xff")
	ref, err := s.Put(ctx, bytes.NewReader(payload))
	require.NoError(t, err)
	require.NotEmpty(t, ref)

	rc, err := s.Get(ctx, ref)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, payload, got)

	require.NoError(t, s.Delete(ctx, ref))

	_, err = s.Get(ctx, ref)
	assert.True(t, errors.Is(err, common.ErrorStorage), "get after delete should report ErrorStorage, got %v", err)

	// second delete of the same ref is a no-op
	assert.NoError(t, s.Delete(ctx, ref))
	assert.NoError(t, s.Delete(ctx, "documents/never/existed"))
}

func TestMemoryStore(t *testing.T) {
	roundTrip(t, NewMemoryStore())
}

func TestBadgerStore(t *testing.T) {
	s, err := NewBadgerStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	roundTrip(t, s)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	ref, err := s.Put(ctx, bytes.NewReader([]byte{1, 2, 3}))
	require.NoError(t, err)

	rc, err := s.Get(ctx, ref)
	require.NoError(t, err)
	first, _ := io.ReadAll(rc)
	first[0] = 99

	rc2, err := s.Get(ctx, ref)
	require.NoError(t, err)
	second, _ := io.ReadAll(rc2)
	assert.Equal(t, byte(1), second[0], "mutating a read must not touch the stored blob")
}

func TestMemoryStore_Corrupt(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	ref, err := s.Put(ctx, bytes.NewReader([]byte{0x10, 0x20}))
	require.NoError(t, err)

	require.True(t, s.Corrupt(ref, 0))
	rc, err := s.Get(ctx, ref)
	require.NoError(t, err)
	got, _ := io.ReadAll(rc)
	assert.Equal(t, byte(0x11), got[0])

	assert.False(t, s.Corrupt("missing", 0))
}
