package core

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"pedigreecore/internal/archive"
	"pedigreecore/internal/infra/persistence/memory"
	"pedigreecore/internal/pedigree"
	"pedigreecore/pkg/domain"
)

// Defaults applied when no ServiceOption overrides them.
const (
	DefaultGenerations    = 4
	DefaultCOIGenerations = 5
	DefaultBatchLimit     = 4
)

// ErrArchiveDisabled is returned by archive operations on a service built
// without WithArchive.
var ErrArchiveDisabled = errors.New("core: report archive not configured")

// Service exposes transactional CRUD over individuals and the pedigree
// queries built on top of the engine.
type Service struct {
	store    PersistentStore
	engine   *RulesEngine
	validate *validator.Validate
	archive  *archive.Archive
	logger   Logger
	clock    Clock
	metrics  MetricsRecorder
	tracer   Tracer

	ceiling        int
	generations    int
	coiGenerations int
	batchLimit     int
}

// ServiceOption configures optional dependencies.
type ServiceOption func(*Service)

// WithLogger sets the structured logger.
func WithLogger(l Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source used for report timestamps. Stores exposing
// SetNowFunc share it for record timestamps.
func WithClock(c Clock) ServiceOption {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithMetricsRecorder sets the operation metrics sink.
func WithMetricsRecorder(m MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer sets the span factory.
func WithTracer(t Tracer) ServiceOption {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithArchive enables ArchiveReport and the archive listing operations.
func WithArchive(a *archive.Archive) ServiceOption {
	return func(s *Service) { s.archive = a }
}

// WithGenerationCeiling lowers the largest accepted generation bound.
// Values outside [1, pedigree.MaxGenerations] are ignored.
func WithGenerationCeiling(n int) ServiceOption {
	return func(s *Service) {
		if n >= pedigree.MinGenerations && n <= pedigree.MaxGenerations {
			s.ceiling = n
		}
	}
}

// WithDefaultGenerations sets the depths used when a caller passes 0.
func WithDefaultGenerations(chart, coi int) ServiceOption {
	return func(s *Service) {
		if chart > 0 {
			s.generations = chart
		}
		if coi > 0 {
			s.coiGenerations = coi
		}
	}
}

// WithBatchLimit bounds concurrent report builds in BatchReports.
func WithBatchLimit(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.batchLimit = n
		}
	}
}

// NewService constructs a service over store.
func NewService(store PersistentStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:          store,
		engine:         extractRulesEngine(store),
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		logger:         noopLogger{},
		metrics:        noopMetrics{},
		tracer:         noopTracer{},
		ceiling:        pedigree.MaxGenerations,
		generations:    DefaultGenerations,
		coiGenerations: DefaultCOIGenerations,
		batchLimit:     DefaultBatchLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = ClockFunc(selectNowFunc(store))
	} else if setter, ok := store.(interface{ SetNowFunc(func() time.Time) }); ok {
		setter.SetNowFunc(s.clock.Now)
	}
	return s
}

// NewInMemoryService creates a service over a fresh in-memory store.
func NewInMemoryService(engine *RulesEngine, opts ...ServiceOption) *Service {
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying persistent store.
func (s *Service) Store() PersistentStore { return s.store }

// RulesEngine returns the engine evaluated by the store, if it exposes one.
func (s *Service) RulesEngine() *RulesEngine { return s.engine }

func extractRulesEngine(store PersistentStore) *RulesEngine {
	if p, ok := store.(interface{ RulesEngine() *domain.RulesEngine }); ok {
		return p.RulesEngine()
	}
	return nil
}

func selectNowFunc(store PersistentStore) func() time.Time {
	if p, ok := store.(interface{ NowFunc() func() time.Time }); ok {
		if fn := p.NowFunc(); fn != nil {
			return fn
		}
	}
	return nil
}

// run wraps one operation with a span, a metrics observation and a log line.
func (s *Service) run(ctx context.Context, op string, fn func(context.Context) error, attrs ...any) error {
	ctx, span := s.tracer.Start(ctx, op)
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, elapsed)
	args := append([]any{"operation", op, "duration", elapsed}, attrs...)
	if err != nil {
		s.logger.Error("pedigree operation failed", append(args, "error", err)...)
		return err
	}
	s.logger.Debug("pedigree operation completed", args...)
	return nil
}

func (s *Service) logWarnings(op string, res Result) {
	for _, v := range res.Violations {
		if v.Severity == domain.SeverityBlock {
			continue
		}
		s.logger.Warn("pedigree rule warning", "operation", op, "rule", v.Rule, "individual_id", v.EntityID, "message", v.Message)
	}
}

func (s *Service) observeCOI(ctx context.Context, pct float64) {
	if a, ok := s.metrics.(AnalyticsRecorder); ok {
		a.ObserveCOI(ctx, pct)
	}
}

func (s *Service) observeCompleteness(ctx context.Context, pct float64) {
	if a, ok := s.metrics.(AnalyticsRecorder); ok {
		a.ObserveCompleteness(ctx, pct)
	}
}
