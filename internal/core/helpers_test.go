package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"pedigreecore/pkg/domain"
)

type captureLogger struct {
	mu    sync.Mutex
	calls []string
}

func (l *captureLogger) record(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf("%s:%s %v", level, msg, args))
}

func (l *captureLogger) Debug(msg string, args ...any) { l.record("d", msg, args...) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("i", msg, args...) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("w", msg, args...) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("e", msg, args...) }

func (l *captureLogger) count(prefix string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

type metricsCall struct {
	op      string
	success bool
}

type captureMetrics struct {
	mu           sync.Mutex
	calls        []metricsCall
	coi          []float64
	completeness []float64
}

func (c *captureMetrics) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, metricsCall{op: op, success: success})
}

func (c *captureMetrics) ObserveCOI(_ context.Context, pct float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coi = append(c.coi, pct)
}

func (c *captureMetrics) ObserveCompleteness(_ context.Context, pct float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completeness = append(c.completeness, pct)
}

func (c *captureMetrics) has(op string, success bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()
	opts = append([]ServiceOption{WithClock(ClockFunc(func() time.Time { return fixedNow }))}, opts...)
	return NewInMemoryService(NewDefaultRulesEngine(), opts...)
}

func dog(id, name string, sex domain.Sex, sire, dam string) Individual {
	return Individual{
		Base:   Base{ID: id},
		Name:   name,
		Sex:    sex,
		Breed:  "Border Collie",
		SireID: domain.Ref(sire),
		DamID:  domain.Ref(dam),
	}
}

// seedFullSibMating stores a full-sibling mating: pup's sire and dam share
// both parents gs and gd.
func seedFullSibMating(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()
	for _, ind := range []Individual{
		dog("gs", "Grand Sire", SexMale, "", ""),
		dog("gd", "Grand Dam", SexFemale, "", ""),
		dog("s", "Sire", SexMale, "gs", "gd"),
		dog("d", "Dam", SexFemale, "gs", "gd"),
		dog("pup", "Pup", SexMale, "s", "d"),
		dog("pup2", "Litter Mate", SexFemale, "s", "d"),
	} {
		if _, _, err := svc.CreateIndividual(ctx, ind); err != nil {
			t.Fatalf("create %s: %v", ind.ID, err)
		}
	}
}
