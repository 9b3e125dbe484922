package domain

import "context"

// IndividualFinder resolves an identifier to an individual record. It is the
// only capability the pedigree engine needs from storage. A false return means
// the identifier is unknown; implementations never return an error for a miss.
type IndividualFinder interface {
	FindIndividual(id string) (Individual, bool)
}

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateIndividual(Individual) (Individual, error)
	UpdateIndividual(id string, mutator func(*Individual) error) (Individual, error)
	DeleteIndividual(id string) error
	FindIndividual(id string) (Individual, bool)
}

// TransactionView provides read-only access to a consistent snapshot. Every
// lookup made through one view observes the same state.
type TransactionView interface {
	IndividualFinder
	ListIndividuals() []Individual
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetIndividual(id string) (Individual, bool)
	ListIndividuals() []Individual
}
