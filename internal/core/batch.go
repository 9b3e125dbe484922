package core

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"pedigreecore/internal/pedigree"
)

// BatchFailure records an individual whose report could not be built.
type BatchFailure struct {
	IndividualID string `json:"individual_id"`
	Error        string `json:"error"`
}

// BatchSummary aggregates the reports of one batch. COI figures only cover
// reports whose status is calculated.
type BatchSummary struct {
	Requested          int     `json:"requested"`
	Succeeded          int     `json:"succeeded"`
	Failed             int     `json:"failed"`
	COICalculated      int     `json:"coi_calculated"`
	COIMean            float64 `json:"coi_mean"`
	COIStdDev          float64 `json:"coi_std_dev"`
	COIMax             float64 `json:"coi_max"`
	CompletenessMean   float64 `json:"completeness_mean"`
	CompletenessStdDev float64 `json:"completeness_std_dev"`
}

// BatchResult holds the successful reports in request order plus failures.
type BatchResult struct {
	Reports  []pedigree.Report `json:"reports"`
	Failures []BatchFailure    `json:"failures"`
	Summary  BatchSummary      `json:"summary"`
}

// BatchReports builds reports for ids with at most concurrency builds in
// flight (the service batch limit when concurrency <= 0). A failing id does
// not stop the others; only context cancellation aborts the batch.
func (s *Service) BatchReports(ctx context.Context, ids []string, generations, coiGenerations, concurrency int) (BatchResult, error) {
	var result BatchResult
	err := s.run(ctx, "batch_reports", func(ctx context.Context) error {
		if concurrency <= 0 {
			concurrency = s.batchLimit
		}
		reports := make([]*pedigree.Report, len(ids))
		failures := make([]error, len(ids))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for i, id := range ids {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				rep, err := s.Report(gctx, id, generations, coiGenerations)
				if err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
						return err
					}
					failures[i] = err
					return nil
				}
				reports[i] = &rep
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		result = collectBatch(ids, reports, failures)
		return nil
	}, "requested", len(ids), "concurrency", concurrency)
	return result, err
}

func collectBatch(ids []string, reports []*pedigree.Report, failures []error) BatchResult {
	out := BatchResult{Reports: []pedigree.Report{}, Failures: []BatchFailure{}}
	var coi, completeness []float64
	for i, id := range ids {
		if failures[i] != nil {
			out.Failures = append(out.Failures, BatchFailure{IndividualID: id, Error: failures[i].Error()})
			continue
		}
		rep := *reports[i]
		out.Reports = append(out.Reports, rep)
		completeness = append(completeness, rep.Pedigree.Completeness.Percentage)
		if rep.Inbreeding.Status == pedigree.StatusCalculated {
			coi = append(coi, rep.Inbreeding.COIPercentage)
		}
	}
	out.Summary = BatchSummary{
		Requested:     len(ids),
		Succeeded:     len(out.Reports),
		Failed:        len(out.Failures),
		COICalculated: len(coi),
	}
	out.Summary.COIMean, out.Summary.COIStdDev = meanStdDev(coi)
	out.Summary.CompletenessMean, out.Summary.CompletenessStdDev = meanStdDev(completeness)
	if len(coi) > 0 {
		out.Summary.COIMax = floats.Max(coi)
	}
	return out
}

// meanStdDev returns zeros for empty input and a zero deviation for a
// single sample, where the unbiased estimate is undefined.
func meanStdDev(xs []float64) (float64, float64) {
	switch len(xs) {
	case 0:
		return 0, 0
	case 1:
		return xs[0], 0
	}
	mean, std := stat.MeanStdDev(xs, nil)
	return mean, std
}
