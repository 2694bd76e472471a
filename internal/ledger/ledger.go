package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// TransferRecord describes one encode run: which file was converted, its
// content digest, and how many chunks it produced. The digest doubles as
// the lookup key since it is the transfer identity on the wire.
type TransferRecord struct {
	ID        string `json:"id"`
	Digest    string `json:"digest"`
	FileName  string `json:"file_name"`
	FileSize  uint64 `json:"file_size"`
	NumChunks int    `json:"num_chunks"`
	CreatedAt int64  `json:"created_at"` // Unix timestamp
}

// DecodeRecord describes the outcome of one decode attempt for a transfer.
type DecodeRecord struct {
	ID        string `json:"id"`
	Digest    string `json:"digest"`
	FileName  string `json:"file_name"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// Store wraps BadgerDB for transfer bookkeeping.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a BadgerDB at the given path.
func Open(dbPath string) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(dbPath).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutTransfer stores a transfer record keyed by its digest.
func (s *Store) PutTransfer(rec TransferRecord) error {
	key := []byte("transfer:" + rec.Digest)
	val, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
}

// GetTransfer retrieves a transfer record by content digest.
func (s *Store) GetTransfer(digest string) (TransferRecord, error) {
	key := []byte("transfer:" + digest)
	var rec TransferRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	return rec, err
}

// PutDecode appends a decode outcome for a transfer. Each attempt gets its
// own record so retries stay visible.
func (s *Store) PutDecode(rec DecodeRecord) error {
	key := []byte("decode:" + rec.Digest + ":" + rec.ID)
	val, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
}

// DecodesFor returns all recorded decode attempts for a transfer digest.
func (s *Store) DecodesFor(digest string) ([]DecodeRecord, error) {
	prefix := []byte("decode:" + digest + ":")
	var recs []DecodeRecord
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec DecodeRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			recs = append(recs, rec)
		}
		return nil
	})
	return recs, err
}

// NewTransferRecord builds a transfer record with a fresh id and the
// current timestamp.
func NewTransferRecord(digest, fileName string, fileSize uint64, numChunks int) TransferRecord {
	return TransferRecord{
		ID:        uuid.NewString(),
		Digest:    digest,
		FileName:  fileName,
		FileSize:  fileSize,
		NumChunks: numChunks,
		CreatedAt: time.Now().Unix(),
	}
}

// NewDecodeRecord builds a decode record; err may be nil for success.
func NewDecodeRecord(digest, fileName string, err error) DecodeRecord {
	rec := DecodeRecord{
		ID:        uuid.NewString(),
		Digest:    digest,
		FileName:  fileName,
		Success:   err == nil,
		CreatedAt: time.Now().Unix(),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	return rec
}
