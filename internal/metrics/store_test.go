package metrics

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE llm_usage (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			agent_name TEXT NOT NULL,
			model TEXT NOT NULL,
			prompt_tokens INTEGER NOT NULL,
			completion_tokens INTEGER NOT NULL,
			latency_ms INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		);
	`)
	if err != nil {
		t.Fatal(err)
	}
	return NewStore(db)
}

func TestStore_RecordAndDailyUsage(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for i := 0; i < 3; i++ {
		err := store.Record(ctx, ExecutionMetric{
			AgentName:        "Clipper",
			Model:            "gemini-1.5-flash",
			PromptTokens:     100,
			CompletionTokens: 50,
			LatencyMS:        1200,
		})
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	usage, err := store.GetDailyUsage(ctx, 1)
	if err != nil {
		t.Fatalf("GetDailyUsage failed: %v", err)
	}
	if len(usage) != 1 {
		t.Fatalf("Expected one day of usage, got %d", len(usage))
	}
	if usage[0].TotalPrompt != 300 || usage[0].TotalCompletion != 150 || usage[0].TotalExecution != 3 {
		t.Errorf("Expected totals 300/150/3, got %+v", usage[0])
	}
}

func TestStore_Cleanup(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	old := ExecutionMetric{AgentName: "Clipper", Model: "m", Timestamp: time.Now().AddDate(0, 0, -60)}
	recent := ExecutionMetric{AgentName: "Clipper", Model: "m"}
	if err := store.Record(ctx, old); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Record(ctx, recent); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	removed, err := store.Cleanup(ctx, 30)
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 removed record, got %d", removed)
	}
}
