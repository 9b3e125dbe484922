// Package memory provides an in-memory implementation of the pedigree
// persistence store used for tests and ephemeral environments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/btree"

	"pedigreecore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Individual aliases domain.Individual for in-memory persistence operations.
	Individual = domain.Individual
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

// memoryState keeps individuals ordered by ID. Copy is copy-on-write, so a
// transaction clone costs O(1) until the first mutation.
type memoryState struct {
	individuals *btree.Map[string, Individual]
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Individuals map[string]Individual `json:"individuals"`
}

func newMemoryState() memoryState {
	return memoryState{individuals: new(btree.Map[string, Individual])}
}

func (s memoryState) clone() memoryState {
	return memoryState{individuals: s.individuals.Copy()}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	out := Snapshot{Individuals: make(map[string]Individual, state.individuals.Len())}
	state.individuals.Scan(func(id string, ind Individual) bool {
		out.Individuals[id] = ind.Clone()
		return true
	})
	return out
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for id, ind := range s.Individuals {
		ind = ind.Clone()
		ind.ID = id
		ind.NormalizeRefs()
		state.individuals.Set(id, ind)
	}
	return state
}

// Store provides an in-memory transactional store for pedigree records.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string {
	return uuid.NewString()
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the in-memory store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// SetNowFunc overrides the time provider. Intended for tests.
func (s *Store) SetNowFunc(fn func() time.Time) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.nowFn = fn
	s.mu.Unlock()
}

type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// ListIndividuals returns all individuals in ascending ID order.
func (v transactionView) ListIndividuals() []Individual {
	return listIndividuals(v.state)
}

// FindIndividual resolves an individual by ID.
func (v transactionView) FindIndividual(id string) (Individual, bool) {
	return findIndividual(v.state, id)
}

func listIndividuals(state *memoryState) []Individual {
	out := make([]Individual, 0, state.individuals.Len())
	state.individuals.Scan(func(_ string, ind Individual) bool {
		out = append(out, ind.Clone())
		return true
	})
	return out
}

func findIndividual(state *memoryState, id string) (Individual, bool) {
	ind, ok := state.individuals.Get(id)
	if !ok {
		return Individual{}, false
	}
	return ind.Clone(), true
}

// Commit describes a transaction that passed the rules and is about to
// replace the store state.
type Commit struct {
	Changes []Change
	state   memoryState
}

// Snapshot clones the state the transaction will install.
func (c Commit) Snapshot() Snapshot {
	return snapshotFromMemoryState(c.state)
}

// Touched returns the records written and the IDs removed by the
// transaction, keyed by their final outcome. An individual created and then
// deleted in the same transaction only appears in removed.
func (c Commit) Touched() (written map[string]Individual, removed []string) {
	written = make(map[string]Individual)
	gone := make(map[string]struct{})
	for _, change := range c.Changes {
		if change.Entity != domain.EntityIndividual {
			continue
		}
		if change.Action == domain.ActionDelete {
			if before, ok := change.Before.(Individual); ok {
				delete(written, before.ID)
				gone[before.ID] = struct{}{}
			}
			continue
		}
		if after, ok := change.After.(Individual); ok {
			written[after.ID] = after.Clone()
			delete(gone, after.ID)
		}
	}
	for id := range gone {
		removed = append(removed, id)
	}
	sort.Strings(removed)
	return written, removed
}

// CommitFunc makes a commit durable. A non-nil error aborts the transaction
// and leaves the in-memory state untouched.
type CommitFunc func(ctx context.Context, commit Commit) error

// RunInTransaction executes fn within a transactional copy of the store state.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	return s.RunInTransactionWithCommit(ctx, fn, nil)
}

// RunInTransactionWithCommit is RunInTransaction with a hook that runs after
// rule evaluation and before the new state becomes visible. Durable stores
// write there so a failed write never leaves memory ahead of disk.
func (s *Store) RunInTransactionWithCommit(ctx context.Context, fn func(tx Transaction) error, commit CommitFunc) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	if commit != nil && len(tx.changes) > 0 {
		if err := commit(ctx, Commit{Changes: tx.changes, state: tx.state}); err != nil {
			return result, err
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	// Copy re-stamps the source tree for copy-on-write, so it needs the write lock.
	s.mu.Lock()
	snapshot := s.state.clone()
	s.mu.Unlock()

	view := newTransactionView(&snapshot)
	return fn(view)
}

// GetIndividual returns a copy of the stored individual.
func (s *Store) GetIndividual(id string) (Individual, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findIndividual(&s.state, id)
}

// ListIndividuals returns every stored individual ordered by ID.
func (s *Store) ListIndividuals() []Individual {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listIndividuals(&s.state)
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// FindIndividual exposes individual lookup within the transaction scope.
func (tx *transaction) FindIndividual(id string) (Individual, bool) {
	return findIndividual(&tx.state, id)
}

// CreateIndividual stores a new individual within the transaction.
func (tx *transaction) CreateIndividual(ind Individual) (Individual, error) {
	if ind.ID == "" {
		ind.ID = tx.store.newID()
	}
	if _, exists := tx.state.individuals.Get(ind.ID); exists {
		return Individual{}, fmt.Errorf("individual %q already exists", ind.ID)
	}
	ind.NormalizeRefs()
	ind.CreatedAt = tx.now
	ind.UpdatedAt = tx.now
	tx.state.individuals.Set(ind.ID, ind.Clone())
	tx.recordChange(Change{Entity: domain.EntityIndividual, Action: domain.ActionCreate, After: ind.Clone()})
	return ind.Clone(), nil
}

// UpdateIndividual mutates an individual using the provided mutator function.
func (tx *transaction) UpdateIndividual(id string, mutator func(*Individual) error) (Individual, error) {
	current, ok := tx.state.individuals.Get(id)
	if !ok {
		return Individual{}, domain.ErrNotFound{Entity: domain.EntityIndividual, ID: id}
	}
	before := current.Clone()
	current = current.Clone()
	if err := mutator(&current); err != nil {
		return Individual{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	current.NormalizeRefs()
	tx.state.individuals.Set(id, current.Clone())
	tx.recordChange(Change{Entity: domain.EntityIndividual, Action: domain.ActionUpdate, Before: before, After: current.Clone()})
	return current.Clone(), nil
}

// DeleteIndividual removes an individual. Individuals still referenced as a
// sire or dam cannot be removed.
func (tx *transaction) DeleteIndividual(id string) error {
	current, ok := tx.state.individuals.Get(id)
	if !ok {
		return domain.ErrNotFound{Entity: domain.EntityIndividual, ID: id}
	}
	var children []string
	tx.state.individuals.Scan(func(childID string, child Individual) bool {
		if (child.SireID != nil && *child.SireID == id) || (child.DamID != nil && *child.DamID == id) {
			children = append(children, childID)
		}
		return true
	})
	if len(children) > 0 {
		sort.Strings(children)
		return fmt.Errorf("individual %q still referenced as parent of %q", id, children[0])
	}
	tx.state.individuals.Delete(id)
	tx.recordChange(Change{Entity: domain.EntityIndividual, Action: domain.ActionDelete, Before: current.Clone()})
	return nil
}
