package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"docvault/internal/common"
)

// MemoryStore is an in-memory Store for tests and development.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(ctx context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: read stream: %v", common.ErrorStorage, err)
	}

	ref := newStorageRef()
	s.mu.Lock()
	s.blobs[ref] = data
	s.mu.Unlock()
	return ref, nil
}

func (s *MemoryStore) Get(ctx context.Context, ref string) (io.ReadCloser, error) {
	s.mu.RLock()
	data, ok := s.blobs[ref]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: blob %s missing", common.ErrorStorage, ref)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return io.NopCloser(bytes.NewReader(out)), nil
}

func (s *MemoryStore) Delete(ctx context.Context, ref string) error {
	s.mu.Lock()
	delete(s.blobs, ref)
	s.mu.Unlock()
	return nil
}

// Corrupt flips one bit of the stored blob, for tamper-detection tests.
func (s *MemoryStore) Corrupt(ref string, byteOffset int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[ref]
	if !ok || byteOffset >= len(data) {
		return false
	}
	data[byteOffset] ^= 0x01
	return true
}

// Len reports how many blobs are held, for orphan-cleanup assertions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
