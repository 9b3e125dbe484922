package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pedigreecore/pkg/domain"
)

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pedigree.db")
	store, err := NewStore(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, store.Path())

	ctx := context.Background()
	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreateIndividual(domain.Individual{Base: domain.Base{ID: "sire"}, Name: "Sire", Sex: domain.SexMale, Breed: "Beagle"}); err != nil {
			return err
		}
		_, err := tx.CreateIndividual(domain.Individual{Base: domain.Base{ID: "pup"}, Name: "Pup", Sex: domain.SexFemale, Breed: "Beagle", SireID: domain.Ref("sire")})
		return err
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewStore(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	pup, ok := reopened.GetIndividual("pup")
	require.True(t, ok)
	require.NotNil(t, pup.SireID)
	assert.Equal(t, "sire", *pup.SireID)
	assert.Nil(t, pup.DamID)
	assert.Len(t, reopened.ListIndividuals(), 2)
}

func TestStoreFailedTransactionDoesNotPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pedigree.db")
	store, err := NewStore(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.DeleteIndividual("missing")
	})
	require.Error(t, err)

	var count int
	require.NoError(t, store.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&count))
	assert.Zero(t, count)
}

func TestStoreWriteFailureLeavesMemoryUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pedigree.db")
	store, err := NewStore(path, nil)
	require.NoError(t, err)
	require.NoError(t, store.DB().Close())

	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateIndividual(domain.Individual{Base: domain.Base{ID: "ghost"}, Name: "Ghost"})
		return err
	})
	require.Error(t, err)
	_, ok := store.GetIndividual("ghost")
	assert.False(t, ok)
}
