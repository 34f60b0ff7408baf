package eventlog

import (
	"context"
	"testing"
	"time"
)

func TestDisabledRecorderIsSafe(t *testing.T) {
	rec := NewRecorder(nil)
	if rec.Enabled() {
		t.Fatal("recorder with nil database reports enabled")
	}

	ctx := context.Background()
	// Writes must be silent no-ops.
	rec.Record(ctx, Event{Endpoint: "/v1/trains/search", Method: "GET", Status: 200, Timestamp: time.Now()})
	rec.RecordSearch(ctx, "Delhi", "Mumbai")
	rec.EnsureIndexes(ctx)

	// Reads degrade to empty results, never to an error.
	if routes := rec.TopRoutes(ctx, 10); len(routes) != 0 {
		t.Fatalf("TopRoutes: expected empty slice, got %v", routes)
	}
	entries, total := rec.Logs(ctx, LogFilter{})
	if len(entries) != 0 || total != 0 {
		t.Fatalf("Logs: expected no entries, got %d (total %d)", len(entries), total)
	}
	report := rec.Stats(ctx, 24)
	if report.TotalRequests != 0 || len(report.Endpoints) != 0 {
		t.Fatalf("Stats: expected zero report, got %+v", report)
	}
	if report.WindowHours != 24 {
		t.Fatalf("Stats: window hours = %d, want 24", report.WindowHours)
	}
}

func TestNilRecorderPointerIsSafe(t *testing.T) {
	var rec *Recorder
	if rec.Enabled() {
		t.Fatal("nil recorder reports enabled")
	}
	rec.Record(context.Background(), Event{})
	rec.RecordSearch(context.Background(), "a", "b")
}
