package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"pedigreecore/pkg/domain"
)

func TestNoopLogger(t *testing.T) {
	logger := noopLogger{}
	logger.Debug("debug", "k", "v")
	logger.Info("info", "k", "v")
	logger.Warn("warn", "k", "v")
	logger.Error("error", "k", "v")
}

func TestClockFuncNowNilFallsBackToUTCTime(t *testing.T) {
	got := ClockFunc(nil).Now()
	if got.IsZero() || got.Location() != time.UTC {
		t.Fatalf("expected non-zero UTC time, got %s", got)
	}
}

func TestClockFuncNowConvertsToUTC(t *testing.T) {
	local := time.Date(2024, 7, 4, 12, 34, 56, 0, time.FixedZone("offset", -5*3600))
	got := ClockFunc(func() time.Time { return local }).Now()
	if !got.Equal(local) || got.Location() != time.UTC {
		t.Fatalf("expected %s in UTC, got %s", local.UTC(), got)
	}
}

func TestServiceRunRecordsMetricsTracesAndLogs(t *testing.T) {
	logger := &captureLogger{}
	metrics := &captureMetrics{}
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)
	svc := newTestService(t, WithLogger(logger), WithMetricsRecorder(metrics), WithTracer(tracer))
	ctx := context.Background()

	if _, _, err := svc.CreateIndividual(ctx, dog("a", "Ace", SexMale, "", "")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.GetIndividual(ctx, "missing"); err == nil {
		t.Fatal("expected not found")
	}

	if !metrics.has("create_individual", true) || !metrics.has("get_individual", false) {
		t.Fatalf("unexpected metrics calls %+v", metrics.calls)
	}
	if logger.count("d:") == 0 || logger.count("e:") != 1 {
		t.Fatalf("expected debug and one error log, got %v", logger.calls)
	}

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(entries))
	}
	if entries[0].Operation != "create_individual" || entries[0].Status != "success" {
		t.Fatalf("unexpected first span %+v", entries[0])
	}
	if entries[1].Status != "error" || !strings.Contains(entries[1].Error, "not found") {
		t.Fatalf("unexpected second span %+v", entries[1])
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSON lines, got %q", buf.String())
	}
	var decoded JSONTraceEntry
	if err := json.Unmarshal([]byte(lines[1]), &decoded); err != nil {
		t.Fatalf("decode trace line: %v", err)
	}
	if decoded.Operation != "get_individual" {
		t.Fatalf("unexpected decoded span %+v", decoded)
	}
}

func TestJSONTracerSpanEndsOnce(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ticks := 0
	tracer := NewJSONTracer(nil).WithClock(ClockFunc(func() time.Time {
		ticks++
		return start.Add(time.Duration(ticks) * 250 * time.Millisecond)
	}))
	_, span := tracer.Start(context.Background(), "op")
	span.End(errors.New("boom"))
	span.End(nil)
	entries := tracer.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if entries[0].DurationMS != 250 || entries[0].Error != "boom" {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
}

func TestNewServiceAdoptsStoreClockAndEngine(t *testing.T) {
	engine := NewDefaultRulesEngine()
	svc := NewInMemoryService(engine)
	if svc.RulesEngine() != engine {
		t.Fatal("expected engine from store")
	}
	if svc.clock.Now().IsZero() {
		t.Fatal("expected a usable clock")
	}
	if len(engine.Rules()) != 1 || engine.Rules()[0].Name() != "pedigree_integrity" {
		t.Fatalf("unexpected default rules %+v", engine.Rules())
	}
}

type bareStore struct{ domain.PersistentStore }

func TestNewServiceWithoutProviders(t *testing.T) {
	svc := NewService(bareStore{})
	if svc.RulesEngine() != nil {
		t.Fatal("expected nil engine for a store without provider")
	}
	if svc.clock.Now().Location() != time.UTC {
		t.Fatal("expected wall clock fallback")
	}
	res, err := svc.ValidateIndividual(context.Background(), dog("x", "X", SexMale, "x", ""))
	if err != nil || len(res.Violations) != 0 {
		t.Fatalf("without an engine validation is struct-only, got %v %+v", err, res)
	}
}
