package blob

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/Project-Sylos/Nimbus/internal/utils"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Key prefixes. Content and mime type live under separate keys so that
// Get on a large blob does not need to decode a wrapper.
const (
	prefixData = "data:"
	prefixMeta = "meta:"
)

func keyData(path string) []byte { return []byte(prefixData + path) }
func keyMeta(path string) []byte { return []byte(prefixMeta + path) }

// BadgerStoreConfig configures the embedded blob store
type BadgerStoreConfig struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path     string
	InMemory bool

	// Signer mints and checks the URLs served under /blobs/
	Signer *Signer
}

// BadgerStore keeps blobs in an embedded BadgerDB and serves them through
// signed URLs handled by this process.
type BadgerStore struct {
	db     *badger.DB
	signer *Signer
	now    func() time.Time
}

// NewBadgerStore opens (or creates) the store
func NewBadgerStore(cfg BadgerStoreConfig) (*BadgerStore, error) {
	if cfg.Signer == nil {
		return nil, fmt.Errorf("badger blob store: signer is required")
	}
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("badger blob store: path is required")
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", cfg.Path, err)
	}

	return &BadgerStore{db: db, signer: cfg.Signer, now: time.Now}, nil
}

// Put stores data under a fresh storage path
func (s *BadgerStore) Put(ctx context.Context, owner, name string, data []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := utils.StoragePath(owner, name, uuid.New().String(), s.now())

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(keyData(path), data); err != nil {
			return err
		}
		return txn.Set(keyMeta(path), []byte(mimeType))
	})
	if err != nil {
		return "", fmt.Errorf("failed to store blob %s: %w", path, err)
	}

	return path, nil
}

// Get returns the content and mime type at path
func (s *BadgerStore) Get(ctx context.Context, path string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	var (
		data     []byte
		mimeType string
	)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyData(path))
		if err != nil {
			return err
		}
		if data, err = item.ValueCopy(nil); err != nil {
			return err
		}

		meta, err := txn.Get(keyMeta(path))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return meta.Value(func(v []byte) error {
			mimeType = string(v)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read blob %s: %w", path, err)
	}

	return data, mimeType, nil
}

// Delete removes the blob at path
func (s *BadgerStore) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(keyData(path)); err != nil {
			return err
		}
		return txn.Delete(keyMeta(path))
	})
	if err != nil {
		return fmt.Errorf("failed to delete blob %s: %w", path, err)
	}
	return nil
}

// SignedURL returns a /blobs/ URL on this server valid for ttl
func (s *BadgerStore) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.signer.Sign(path, ttl), nil
}

// OpenSigned verifies the signature in query and reads the blob at path
func (s *BadgerStore) OpenSigned(ctx context.Context, path string, query url.Values) ([]byte, string, error) {
	if err := s.signer.Verify(path, query); err != nil {
		return nil, "", err
	}
	data, mimeType, err := s.Get(ctx, path)
	if err != nil {
		return nil, "", err
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return data, mimeType, nil
}

// Close closes the underlying database
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
