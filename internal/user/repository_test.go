package user

import (
	"context"
	"database/sql"
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
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL UNIQUE,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE TABLE subscriptions (
			subscriber_id INTEGER NOT NULL,
			author_id INTEGER NOT NULL,
			PRIMARY KEY (subscriber_id, author_id)
		);
	`)
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func newTestUser(t *testing.T, repo *Repository, email, username string) *User {
	t.Helper()
	u := &User{Email: email, Username: username, FirstName: "Test", LastName: "User"}
	if err := u.HashPassword("correct horse"); err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if _, err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return u
}

func TestRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))
	created := newTestUser(t, repo, "cook@example.com", "cook")

	t.Run("GetByID", func(t *testing.T) {
		got, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got == nil {
			t.Fatal("Expected user, got nil")
		}
		if got.Email != "cook@example.com" {
			t.Errorf("Expected email 'cook@example.com', got '%s'", got.Email)
		}
		if !got.CheckPassword("correct horse") {
			t.Error("Expected stored hash to verify the original password")
		}
		if got.CheckPassword("wrong") {
			t.Error("Expected wrong password to fail verification")
		}
	})

	t.Run("GetByEmail", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "cook@example.com")
		if err != nil {
			t.Fatalf("GetByEmail failed: %v", err)
		}
		if got == nil || got.ID != created.ID {
			t.Fatalf("Expected user with ID %d, got %v", created.ID, got)
		}
	})

	t.Run("GetMissingReturnsNil", func(t *testing.T) {
		got, err := repo.GetByID(ctx, 9999)
		if err != nil {
			t.Fatalf("Expected no error for missing user, got %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil for missing user, got %v", got)
		}
	})

	t.Run("DuplicateEmailRejected", func(t *testing.T) {
		dup := &User{Email: "cook@example.com", Username: "other", FirstName: "A", LastName: "B", Hash: "x"}
		if _, err := repo.Create(ctx, dup); err == nil {
			t.Fatal("Expected an error for duplicate email, got nil")
		}
	})
}

func TestRepository_Subscriptions(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))
	reader := newTestUser(t, repo, "reader@example.com", "reader")
	author := newTestUser(t, repo, "author@example.com", "author")

	t.Run("SubscribeAndList", func(t *testing.T) {
		if err := repo.Subscribe(ctx, reader.ID, author.ID); err != nil {
			t.Fatalf("Subscribe failed: %v", err)
		}
		ok, err := repo.IsSubscribed(ctx, reader.ID, author.ID)
		if err != nil {
			t.Fatalf("IsSubscribed failed: %v", err)
		}
		if !ok {
			t.Error("Expected reader to be subscribed to author")
		}
		authors, err := repo.ListSubscriptions(ctx, reader.ID)
		if err != nil {
			t.Fatalf("ListSubscriptions failed: %v", err)
		}
		if len(authors) != 1 || authors[0].Username != "author" {
			t.Errorf("Expected one subscription to 'author', got %v", authors)
		}
	})

	t.Run("SelfSubscribeRejected", func(t *testing.T) {
		if err := repo.Subscribe(ctx, reader.ID, reader.ID); err == nil {
			t.Fatal("Expected an error for self-subscription, got nil")
		}
	})

	t.Run("DuplicateSubscribeRejected", func(t *testing.T) {
		if err := repo.Subscribe(ctx, reader.ID, author.ID); err == nil {
			t.Fatal("Expected an error for duplicate subscription, got nil")
		}
	})

	t.Run("Unsubscribe", func(t *testing.T) {
		removed, err := repo.Unsubscribe(ctx, reader.ID, author.ID)
		if err != nil {
			t.Fatalf("Unsubscribe failed: %v", err)
		}
		if !removed {
			t.Error("Expected Unsubscribe to remove an existing subscription")
		}
		removed, err = repo.Unsubscribe(ctx, reader.ID, author.ID)
		if err != nil {
			t.Fatalf("Unsubscribe failed: %v", err)
		}
		if removed {
			t.Error("Expected second Unsubscribe to report nothing removed")
		}
	})
}

func TestUser_Validate(t *testing.T) {
	valid := User{Email: "a@b.c", Username: "a.b+c", FirstName: "A", LastName: "B"}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid user, got %v", err)
	}

	bad := valid
	bad.Username = "no spaces allowed"
	if err := bad.Validate(); err == nil {
		t.Error("Expected an error for invalid username, got nil")
	}

	bad = valid
	bad.Email = ""
	if err := bad.Validate(); err == nil {
		t.Error("Expected an error for missing email, got nil")
	}

	bad = valid
	bad.FirstName = ""
	bad.LastName = ""
	if err := bad.Validate(); err == nil {
		t.Error("Expected an error for missing names, got nil")
	}
}

// TestCreateFullAccount walks the same steps the create-user command does:
// populate every field, validate, hash, insert.
func TestCreateFullAccount(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	u := &User{
		Email:     "admin@example.com",
		Username:  "admin",
		FirstName: "Ada",
		LastName:  "Min",
	}
	if err := u.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if err := u.HashPassword("longenough"); err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	id, err := repo.Create(ctx, u)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if id == 0 || u.ID != id {
		t.Errorf("Create() id = %d, u.ID = %d, want matching non-zero", id, u.ID)
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got == nil || got.FirstName != "Ada" || got.LastName != "Min" {
		t.Errorf("GetByID() = %+v, want stored names", got)
	}
}
