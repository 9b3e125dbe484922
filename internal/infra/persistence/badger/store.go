// Package badger persists pedigree records in an embedded BadgerDB key-value
// store, one key per individual.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"pedigreecore/internal/infra/persistence/memory"
	"pedigreecore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

const keyPrefix = "individual/"

// Config controls how the database is opened.
type Config struct {
	// Path is the database directory. Required unless InMemory is set.
	Path string
	// InMemory keeps all data in memory. Intended for tests.
	InMemory   bool
	SyncWrites bool
	Logger     *slog.Logger
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Store mirrors committed in-memory state into BadgerDB.
type Store struct {
	*memory.Store
	db     *badger.DB
	logger *slog.Logger
}

// NewStore opens the database described by cfg and hydrates the in-memory
// state from any records already present.
func NewStore(cfg Config, engine *domain.RulesEngine) (*Store, error) {
	var opts badger.Options
	switch {
	case cfg.InMemory:
		opts = badger.DefaultOptions("").WithInMemory(true)
	case cfg.Path == "":
		return nil, errors.New("badger: path is required for persistent database")
	default:
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	snapshot, err := loadSnapshot(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	mem := memory.NewStore(engine)
	mem.ImportState(snapshot)
	return &Store{Store: mem, db: db, logger: cfg.Logger}, nil
}

func loadSnapshot(db *badger.DB) (memory.Snapshot, error) {
	snapshot := memory.Snapshot{Individuals: make(map[string]domain.Individual)}
	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			id := strings.TrimPrefix(string(item.Key()), keyPrefix)
			var ind domain.Individual
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &ind)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", item.Key(), err)
			}
			snapshot.Individuals[id] = ind
		}
		return nil
	})
	if err != nil {
		return memory.Snapshot{}, fmt.Errorf("load individuals: %w", err)
	}
	return snapshot, nil
}

// RunInTransaction applies fn and writes the keys it touched to BadgerDB
// before the in-memory state advances. A failed write aborts the transaction.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	return s.Store.RunInTransactionWithCommit(ctx, fn, s.persist)
}

// persist writes only the records touched by commit. Small commits go through
// one atomic badger transaction; commits too large for a single transaction
// fall back to a write batch.
func (s *Store) persist(_ context.Context, commit memory.Commit) error {
	written, removed := commit.Touched()
	encoded := make(map[string][]byte, len(written))
	for id, ind := range written {
		data, err := json.Marshal(ind)
		if err != nil {
			return fmt.Errorf("encode %s: %w", id, err)
		}
		encoded[id] = data
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return applyWrites(txn.Set, txn.Delete, encoded, removed)
	})
	if !errors.Is(err, badger.ErrTxnTooBig) {
		return err
	}
	s.logf("badger commit of %d records exceeds one transaction, using write batch", len(encoded)+len(removed))
	wb := s.db.NewWriteBatch()
	if err := applyWrites(wb.Set, wb.Delete, encoded, removed); err != nil {
		wb.Cancel()
		return err
	}
	return wb.Flush()
}

func applyWrites(set func(k, v []byte) error, del func(k []byte) error, encoded map[string][]byte, removed []string) error {
	for _, id := range removed {
		if err := del([]byte(keyPrefix + id)); err != nil {
			return fmt.Errorf("delete %s: %w", id, err)
		}
	}
	for id, data := range encoded {
		if err := set([]byte(keyPrefix+id), data); err != nil {
			return fmt.Errorf("set %s: %w", id, err)
		}
	}
	return nil
}

func (s *Store) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(fmt.Sprintf(format, args...))
	}
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying database for integration testing hooks.
func (s *Store) DB() *badger.DB { return s.db }
