package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pedigreecore/internal/infra/persistence/memory"
	"pedigreecore/pkg/domain"
)

func TestStoreWritesOneKeyPerIndividual(t *testing.T) {
	store, err := NewStore(Config{InMemory: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		for _, id := range []string{"a", "b"} {
			if _, err := tx.CreateIndividual(domain.Individual{Base: domain.Base{ID: id}, Name: id}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	err = store.DB().View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("individual/a"))
		require.NoError(t, err)
		return item.Value(func(val []byte) error {
			assert.Contains(t, string(val), `"name":"a"`)
			return nil
		})
	})
	require.NoError(t, err)

	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteIndividual("b")
	})
	require.NoError(t, err)
	err = store.DB().View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte("individual/b"))
		assert.ErrorIs(t, err, badger.ErrKeyNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestStoreReopenFromDisk(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(Config{Path: dir, SyncWrites: true}, nil)
	require.NoError(t, err)
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateIndividual(domain.Individual{Base: domain.Base{ID: "pup"}, Name: "Pup", DamID: domain.Ref("dam")})
		return err
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewStore(Config{Path: dir}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	pup, ok := reopened.GetIndividual("pup")
	require.True(t, ok)
	require.NotNil(t, pup.DamID)
	assert.Equal(t, "dam", *pup.DamID)
}

func TestStoreRequiresPath(t *testing.T) {
	_, err := NewStore(Config{}, nil)
	require.Error(t, err)
}

func TestStoreWritesOnlyTouchedKeysForLargeRegistry(t *testing.T) {
	store, err := NewStore(Config{InMemory: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	const registry = 40000
	snapshot := memory.Snapshot{Individuals: make(map[string]domain.Individual, registry)}
	for i := range registry {
		id := fmt.Sprintf("dog-%06d", i)
		snapshot.Individuals[id] = domain.Individual{Base: domain.Base{ID: id}, Name: id, Sex: domain.SexMale, Breed: "Beagle"}
	}
	store.ImportState(snapshot)

	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateIndividual(domain.Individual{Base: domain.Base{ID: "new"}, Name: "New", Sex: domain.SexFemale, Breed: "Beagle", SireID: domain.Ref("dog-000001")})
		return err
	})
	require.NoError(t, err)

	var keys int
	require.NoError(t, store.DB().View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys++
			assert.Equal(t, "individual/new", string(it.Item().Key()))
		}
		return nil
	}))
	assert.Equal(t, 1, keys)
	assert.Len(t, store.ListIndividuals(), registry+1)
}

func TestStoreFailedWriteLeavesMemoryUnchanged(t *testing.T) {
	store, err := NewStore(Config{InMemory: true}, nil)
	require.NoError(t, err)
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateIndividual(domain.Individual{Base: domain.Base{ID: "kept"}, Name: "Kept"})
		return err
	})
	require.NoError(t, err)
	require.NoError(t, store.DB().Close())

	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.CreateIndividual(domain.Individual{Base: domain.Base{ID: "lost"}, Name: "Lost"}); err != nil {
			return err
		}
		return tx.DeleteIndividual("kept")
	})
	require.Error(t, err)

	_, ok := store.GetIndividual("lost")
	assert.False(t, ok, "unwritten record must not be visible")
	_, ok = store.GetIndividual("kept")
	assert.True(t, ok, "delete must not apply when the write fails")
}

func TestStoreCreateThenDeleteInOneTransactionLeavesNoKey(t *testing.T) {
	store, err := NewStore(Config{InMemory: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.CreateIndividual(domain.Individual{Base: domain.Base{ID: "tmp"}, Name: "Tmp"}); err != nil {
			return err
		}
		return tx.DeleteIndividual("tmp")
	})
	require.NoError(t, err)
	require.NoError(t, store.DB().View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte("individual/tmp"))
		assert.ErrorIs(t, err, badger.ErrKeyNotFound)
		return nil
	}))
}
