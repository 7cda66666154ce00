package badger

import (
	"context"
	"errors"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/gnosis/store"
)

// ResultRepository implements store.Repository for BadgerDB.
type ResultRepository struct {
	backend *Backend

	mu   sync.Mutex
	seqs map[string]*badger.Sequence
}

var _ store.Repository = (*ResultRepository)(nil)

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(backend *Backend) (*ResultRepository, error) {
	return &ResultRepository{
		backend: backend,
		seqs:    make(map[string]*badger.Sequence),
	}, nil
}

// Close releases the cached ID sequences. The backend is closed
// separately by its owner.
func (r *ResultRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for name, seq := range r.seqs {
		if err := seq.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.seqs, name)
	}
	return firstErr
}

// SaveEntry writes an entry and its insertion-order index key.
func (r *ResultRepository) SaveEntry(ctx context.Context, entry *store.Entry) error {
	value := store.MarshalEntry(entry)

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeEntryKey(entry.ConversationID, entry.ResultID)
		if err := tx.Set(key, value); err != nil {
			return err
		}

		orderKey := makeOrderKey(entry.ConversationID, entry.Timestamp, entry.ResultID)
		if err := tx.Set(orderKey, []byte(entry.ResultID)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)
}

// GetEntry retrieves an entry by conversation and result id.
func (r *ResultRepository) GetEntry(ctx context.Context, conversationID, resultID string) (*store.Entry, error) {
	var entry *store.Entry

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		entry, err = r.readEntry(tx, makeEntryKey(conversationID, resultID))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, store.ErrNotFound
	}
	return entry, nil
}

// ListEntries returns all entries of a conversation in insertion order.
func (r *ResultRepository) ListEntries(ctx context.Context, conversationID string) ([]*store.Entry, error) {
	var entries []*store.Entry

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeOrderScanPrefix(conversationID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var resultID string
			err := iter.Item().Value(func(val []byte) error {
				resultID = string(val)
				return nil
			})
			if err != nil {
				return err
			}

			entry, err := r.readEntry(tx, makeEntryKey(conversationID, resultID))
			if err != nil {
				return err
			}
			if entry != nil {
				entries = append(entries, entry)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// SetStatus transitions an entry's lifecycle status. The status flag is
// the only field ever rewritten in place.
func (r *ResultRepository) SetStatus(ctx context.Context, conversationID, resultID string, status store.Status) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeEntryKey(conversationID, resultID)
		entry, err := r.readEntry(tx, key)
		if err != nil {
			return err
		}
		if entry == nil {
			return store.ErrNotFound
		}

		entry.Status = status
		if err := tx.Set(key, store.MarshalEntry(entry)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// NextSequence returns the next monotonic sequence number for a
// conversation/tool pair, starting at 1.
func (r *ResultRepository) NextSequence(ctx context.Context, conversationID, toolName string) (uint64, error) {
	seq, err := r.getSequence(makeSequenceName(conversationID, toolName))
	if err != nil {
		return 0, err
	}

	next, err := seq.Next()
	if err != nil {
		return 0, err
	}
	// BadgerDB sequences start at 0; result ids start at 1
	if next == 0 {
		next, err = seq.Next()
		if err != nil {
			return 0, err
		}
	}
	return next, nil
}

func (r *ResultRepository) getSequence(name string) (*badger.Sequence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if seq, ok := r.seqs[name]; ok {
		return seq, nil
	}
	seq, err := r.backend.GetSequence(name)
	if err != nil {
		return nil, err
	}
	r.seqs[name] = seq
	return seq, nil
}

// readEntry reads and deserializes an entry, returning nil when the key
// is absent.
func (r *ResultRepository) readEntry(tx *badger.Txn, key []byte) (*store.Entry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var entry *store.Entry
	err = item.Value(func(val []byte) error {
		var err error
		entry, err = store.UnmarshalEntry(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
