package core

import (
	"context"

	"pedigreecore/internal/pedigree"
	"pedigreecore/pkg/domain"
)

// resolveGenerations applies the default for 0 and enforces the ceiling.
func (s *Service) resolveGenerations(g, fallback int) (int, error) {
	if g == 0 {
		g = fallback
	}
	if err := pedigree.ValidateGenerations(g, s.ceiling); err != nil {
		return 0, err
	}
	return g, nil
}

// withSubject runs fn against one consistent snapshot in which id exists.
func (s *Service) withSubject(ctx context.Context, id string, fn func(TransactionView, Individual) error) error {
	return s.store.View(ctx, func(view TransactionView) error {
		ind, ok := view.FindIndividual(id)
		if !ok {
			return domain.ErrNotFound{Entity: domain.EntityIndividual, ID: id}
		}
		return fn(view, ind)
	})
}

// AncestorTree walks id's ancestry to generations deep.
func (s *Service) AncestorTree(ctx context.Context, id string, generations int) (*pedigree.AncestorNode, error) {
	var tree *pedigree.AncestorNode
	err := s.run(ctx, "ancestor_tree", func(ctx context.Context) error {
		g, err := s.resolveGenerations(generations, s.generations)
		if err != nil {
			return err
		}
		return s.withSubject(ctx, id, func(view TransactionView, _ Individual) error {
			tree = pedigree.Walk(view, id, 0, g)
			return nil
		})
	}, "individual_id", id, "generations", generations)
	return tree, err
}

// Pedigree builds the chart for id: tree, matrix, completeness and repeated
// ancestors.
func (s *Service) Pedigree(ctx context.Context, id string, generations int) (pedigree.Chart, error) {
	var chart pedigree.Chart
	err := s.run(ctx, "pedigree_chart", func(ctx context.Context) error {
		g, err := s.resolveGenerations(generations, s.generations)
		if err != nil {
			return err
		}
		return s.withSubject(ctx, id, func(view TransactionView, _ Individual) error {
			chart, err = pedigree.BuildChart(view, id, g)
			return err
		})
	}, "individual_id", id, "generations", generations)
	if err == nil {
		s.observeCompleteness(ctx, chart.Completeness.Percentage)
	}
	return chart, err
}

// Inbreeding computes the coefficient of inbreeding for id.
func (s *Service) Inbreeding(ctx context.Context, id string, generations int) (pedigree.COIResult, error) {
	var result pedigree.COIResult
	err := s.run(ctx, "inbreeding", func(ctx context.Context) error {
		g, err := s.resolveGenerations(generations, s.coiGenerations)
		if err != nil {
			return err
		}
		return s.withSubject(ctx, id, func(view TransactionView, ind Individual) error {
			result, err = pedigree.ComputeCOI(view, ind, g)
			return err
		})
	}, "individual_id", id, "generations", generations)
	if err == nil && result.Status == pedigree.StatusCalculated {
		s.observeCOI(ctx, result.COIPercentage)
	}
	return result, err
}

// Report assembles every analysis for id from a single snapshot.
func (s *Service) Report(ctx context.Context, id string, generations, coiGenerations int) (pedigree.Report, error) {
	var report pedigree.Report
	err := s.run(ctx, "report", func(ctx context.Context) error {
		var err error
		report, err = s.buildReport(ctx, id, generations, coiGenerations)
		return err
	}, "individual_id", id, "generations", generations, "coi_generations", coiGenerations)
	if err == nil {
		s.observeCompleteness(ctx, report.Pedigree.Completeness.Percentage)
		if report.Inbreeding.Status == pedigree.StatusCalculated {
			s.observeCOI(ctx, report.Inbreeding.COIPercentage)
		}
	}
	return report, err
}

func (s *Service) buildReport(ctx context.Context, id string, generations, coiGenerations int) (pedigree.Report, error) {
	g, err := s.resolveGenerations(generations, s.generations)
	if err != nil {
		return pedigree.Report{}, err
	}
	cg, err := s.resolveGenerations(coiGenerations, s.coiGenerations)
	if err != nil {
		return pedigree.Report{}, err
	}
	var report pedigree.Report
	err = s.withSubject(ctx, id, func(view TransactionView, ind Individual) error {
		report, err = pedigree.BuildReport(view, view.ListIndividuals(), ind, pedigree.ReportOptions{
			Generations:    g,
			COIGenerations: cg,
			Now:            s.clock.Now(),
		})
		return err
	})
	return report, err
}

// Relatives lists siblings, half-siblings and offspring of id.
func (s *Service) Relatives(ctx context.Context, id string, kind pedigree.RelationKind) ([]pedigree.Relative, error) {
	var out []pedigree.Relative
	err := s.run(ctx, "relatives", func(ctx context.Context) error {
		k, err := pedigree.ParseRelationKind(string(kind))
		if err != nil {
			return err
		}
		return s.withSubject(ctx, id, func(view TransactionView, ind Individual) error {
			out = pedigree.FindRelatives(ind, view.ListIndividuals(), k)
			return nil
		})
	}, "individual_id", id, "kind", kind)
	return out, err
}

// Statistics summarises the whole registry.
func (s *Service) Statistics(ctx context.Context) (pedigree.BreedingStatistics, error) {
	var stats pedigree.BreedingStatistics
	err := s.run(ctx, "statistics", func(ctx context.Context) error {
		return s.store.View(ctx, func(view TransactionView) error {
			stats = pedigree.ComputeStatistics(view.ListIndividuals())
			return nil
		})
	})
	return stats, err
}
