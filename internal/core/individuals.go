package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pedigreecore/pkg/domain"
)

// ErrInvalidIndividual wraps struct validation failures.
var ErrInvalidIndividual = errors.New("core: invalid individual")

func (s *Service) validateIndividual(ind Individual) error {
	if err := s.validate.Struct(ind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidIndividual, err)
	}
	return nil
}

// CreateIndividual validates and persists a new individual. Warnings from the
// pedigree rules are returned in the Result; blocking findings abort the
// write with a RuleViolationError.
func (s *Service) CreateIndividual(ctx context.Context, ind Individual) (Individual, Result, error) {
	var (
		created Individual
		res     Result
	)
	err := s.run(ctx, "create_individual", func(ctx context.Context) error {
		ind.NormalizeRefs()
		if err := s.validateIndividual(ind); err != nil {
			return err
		}
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			created, err = tx.CreateIndividual(ind)
			return err
		})
		return err
	}, "name", ind.Name)
	s.logWarnings("create_individual", res)
	return created, res, err
}

// UpdateIndividual applies mutator to the stored record and re-validates it.
func (s *Service) UpdateIndividual(ctx context.Context, id string, mutator func(*Individual) error) (Individual, Result, error) {
	var (
		updated Individual
		res     Result
	)
	err := s.run(ctx, "update_individual", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			updated, err = tx.UpdateIndividual(id, func(ind *Individual) error {
				if err := mutator(ind); err != nil {
					return err
				}
				ind.NormalizeRefs()
				return s.validateIndividual(*ind)
			})
			return err
		})
		return err
	}, "individual_id", id)
	s.logWarnings("update_individual", res)
	return updated, res, err
}

// DeleteIndividual removes an individual that no other record uses as a parent.
func (s *Service) DeleteIndividual(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.run(ctx, "delete_individual", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteIndividual(id)
		})
		return err
	}, "individual_id", id)
	return res, err
}

// GetIndividual returns the individual or domain.ErrNotFound.
func (s *Service) GetIndividual(ctx context.Context, id string) (Individual, error) {
	var ind Individual
	err := s.run(ctx, "get_individual", func(context.Context) error {
		var ok bool
		ind, ok = s.store.GetIndividual(id)
		if !ok {
			return domain.ErrNotFound{Entity: domain.EntityIndividual, ID: id}
		}
		return nil
	}, "individual_id", id)
	return ind, err
}

// ListIndividuals returns every individual ordered by ID.
func (s *Service) ListIndividuals(ctx context.Context) ([]Individual, error) {
	var out []Individual
	err := s.run(ctx, "list_individuals", func(context.Context) error {
		out = s.store.ListIndividuals()
		return nil
	})
	return out, err
}

// SearchIndividuals matches query case-insensitively against the name,
// registration number, tattoo, microchip, kennel and breed. An empty query
// matches nothing.
func (s *Service) SearchIndividuals(ctx context.Context, query string) ([]Individual, error) {
	out := []Individual{}
	err := s.run(ctx, "search_individuals", func(context.Context) error {
		q := strings.ToLower(strings.TrimSpace(query))
		if q == "" {
			return nil
		}
		for _, ind := range s.store.ListIndividuals() {
			if matchesQuery(ind, q) {
				out = append(out, ind)
			}
		}
		return nil
	}, "query", query)
	return out, err
}

func matchesQuery(ind Individual, q string) bool {
	for _, field := range []string{ind.Name, ind.RegistrationNumber, ind.TattooNumber, ind.Microchip, ind.KennelName, ind.Breed} {
		if field != "" && strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// ValidateIndividual runs struct validation and the registered rules against
// ind without persisting anything.
func (s *Service) ValidateIndividual(ctx context.Context, ind Individual) (Result, error) {
	var res Result
	err := s.run(ctx, "validate_individual", func(ctx context.Context) error {
		ind.NormalizeRefs()
		if err := s.validateIndividual(ind); err != nil {
			return err
		}
		if s.engine == nil {
			return nil
		}
		return s.store.View(ctx, func(view TransactionView) error {
			candidate := overlayView{TransactionView: view, ind: ind}
			change := Change{Entity: domain.EntityIndividual, Action: domain.ActionCreate, After: ind}
			if _, exists := view.FindIndividual(ind.ID); exists && ind.ID != "" {
				change.Action = domain.ActionUpdate
			}
			var err error
			res, err = s.engine.Evaluate(ctx, candidate, []Change{change})
			return err
		})
	}, "individual_id", ind.ID)
	return res, err
}

// overlayView presents ind as if it were already stored.
type overlayView struct {
	TransactionView
	ind Individual
}

func (v overlayView) FindIndividual(id string) (Individual, bool) {
	if id != "" && id == v.ind.ID {
		return v.ind, true
	}
	return v.TransactionView.FindIndividual(id)
}

func (v overlayView) ListIndividuals() []Individual {
	list := v.TransactionView.ListIndividuals()
	if v.ind.ID == "" {
		return append(list, v.ind)
	}
	for i, existing := range list {
		if existing.ID == v.ind.ID {
			list[i] = v.ind
			return list
		}
	}
	return append(list, v.ind)
}
