package shopping

import (
	"context"
	"database/sql"
	"reflect"
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
		CREATE TABLE cart_items (
			user_id INTEGER NOT NULL,
			recipe_id TEXT NOT NULL,
			PRIMARY KEY (user_id, recipe_id)
		);
	`)
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func TestRepository_Cart(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	t.Run("AddAndSelection", func(t *testing.T) {
		if err := repo.Add(ctx, 1, "r2"); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if err := repo.Add(ctx, 1, "r1"); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		got, err := repo.Selection(ctx, 1)
		if err != nil {
			t.Fatalf("Selection failed: %v", err)
		}
		if !reflect.DeepEqual(got, []string{"r1", "r2"}) {
			t.Errorf("Expected stable ordered selection [r1 r2], got %v", got)
		}
	})

	t.Run("DuplicateAddRejected", func(t *testing.T) {
		if err := repo.Add(ctx, 1, "r1"); err == nil {
			t.Fatal("Expected an error for duplicate cart item, got nil")
		}
	})

	t.Run("CartsAreScopedPerUser", func(t *testing.T) {
		got, err := repo.Selection(ctx, 2)
		if err != nil {
			t.Fatalf("Selection failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Expected empty cart for other user, got %v", got)
		}
	})

	t.Run("Contains", func(t *testing.T) {
		in, err := repo.Contains(ctx, 1, "r1")
		if err != nil {
			t.Fatalf("Contains failed: %v", err)
		}
		if !in {
			t.Error("Expected r1 to be in user 1's cart")
		}
	})

	t.Run("Remove", func(t *testing.T) {
		removed, err := repo.Remove(ctx, 1, "r1")
		if err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if !removed {
			t.Error("Expected Remove to report removal")
		}
		removed, err = repo.Remove(ctx, 1, "r1")
		if err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if removed {
			t.Error("Expected second Remove to report nothing removed")
		}
	})
}
