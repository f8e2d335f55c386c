package ingredient

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE ingredients (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			unit TEXT NOT NULL,
			UNIQUE (name, unit)
		);
	`)
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func TestRepository_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	first, err := repo.GetOrCreate(ctx, "flour", "g")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	t.Run("SamePairReturnsSameID", func(t *testing.T) {
		again, err := repo.GetOrCreate(ctx, "flour", "g")
		if err != nil {
			t.Fatalf("GetOrCreate failed: %v", err)
		}
		if again.ID != first.ID {
			t.Errorf("Expected same ID %d, got %d", first.ID, again.ID)
		}
	})

	t.Run("DifferentUnitIsDistinct", func(t *testing.T) {
		cups, err := repo.GetOrCreate(ctx, "flour", "cup")
		if err != nil {
			t.Fatalf("GetOrCreate failed: %v", err)
		}
		if cups.ID == first.ID {
			t.Error("Expected (flour, cup) to be a distinct catalog entry from (flour, g)")
		}
	})

	t.Run("EmptyNameRejected", func(t *testing.T) {
		if _, err := repo.GetOrCreate(ctx, "", "g"); err == nil {
			t.Fatal("Expected an error for empty name, got nil")
		}
	})
}

func TestRepository_SearchByPrefix(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	for _, pair := range [][2]string{{"sugar", "g"}, {"sunflower oil", "ml"}, {"salt", "g"}} {
		if _, err := repo.GetOrCreate(ctx, pair[0], pair[1]); err != nil {
			t.Fatalf("Failed to seed catalog: %v", err)
		}
	}

	results, err := repo.SearchByPrefix(ctx, "su")
	if err != nil {
		t.Fatalf("SearchByPrefix failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results for prefix 'su', got %d", len(results))
	}
	if results[0].Name != "sugar" || results[1].Name != "sunflower oil" {
		t.Errorf("Expected results ordered by name, got %v", results)
	}
}

func TestImportCSV(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	t.Run("Success", func(t *testing.T) {
		csvData := "flour,g\nsugar,g\negg,pcs\n"
		created, err := ImportCSV(ctx, repo, strings.NewReader(csvData))
		if err != nil {
			t.Fatalf("ImportCSV failed: %v", err)
		}
		if created != 3 {
			t.Errorf("Expected 3 created entries, got %d", created)
		}
	})

	t.Run("ReimportIsIdempotent", func(t *testing.T) {
		created, err := ImportCSV(ctx, repo, strings.NewReader("flour,g\nmilk,ml\n"))
		if err != nil {
			t.Fatalf("ImportCSV failed: %v", err)
		}
		if created != 1 {
			t.Errorf("Expected only the new entry to be created, got %d", created)
		}
	})

	t.Run("ShortRowRejected", func(t *testing.T) {
		if _, err := ImportCSV(ctx, repo, strings.NewReader("lonely\n")); err == nil {
			t.Fatal("Expected an error for a row without a unit, got nil")
		}
	})
}
