package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dgraph-io/badger/v4"

	"docvault/internal/common"
)

// BadgerStore keeps blobs in an embedded Badger database. Suited to
// single-node deployments and local development where no object storage
// is available.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger at %s: %v", common.ErrorStorage, path, err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Put(ctx context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: read stream: %v", common.ErrorStorage, err)
	}

	ref := newStorageRef()
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(ref), data)
	})
	if err != nil {
		return "", fmt.Errorf("%w: put %s: %v", common.ErrorStorage, ref, err)
	}
	return ref, nil
}

func (s *BadgerStore) Get(ctx context.Context, ref string) (io.ReadCloser, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(ref))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: blob %s missing", common.ErrorStorage, ref)
		}
		return nil, fmt.Errorf("%w: get %s: %v", common.ErrorStorage, ref, err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete is idempotent: Badger deletes are no-ops for absent keys.
func (s *BadgerStore) Delete(ctx context.Context, ref string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(ref))
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", common.ErrorStorage, ref, err)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
