package user

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository handles persistence of users and author subscriptions.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new user repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Create inserts a new user and returns its assigned ID.
func (r *Repository) Create(ctx context.Context, u *User) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, username, first_name, last_name, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.Email, u.Username, u.FirstName, u.LastName, u.Hash, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted user id: %w", err)
	}
	u.ID = id
	return id, nil
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, email, username, first_name, last_name, password_hash, created_at
		 FROM users WHERE id = ?`, id))
}

// GetByEmail retrieves a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, email, username, first_name, last_name, password_hash, created_at
		 FROM users WHERE email = ?`, email))
}

func (r *Repository) scanOne(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.Hash, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No user found
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// Subscribe records that subscriber follows author. Self-subscription and
// duplicates are rejected.
func (r *Repository) Subscribe(ctx context.Context, subscriberID, authorID int64) error {
	if subscriberID == authorID {
		return fmt.Errorf("cannot subscribe to yourself")
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subscriptions (subscriber_id, author_id) VALUES (?, ?)`,
		subscriberID, authorID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert subscription: %w", err)
	}
	return nil
}

// Unsubscribe removes a subscription. Returns false if none existed.
func (r *Repository) Unsubscribe(ctx context.Context, subscriberID, authorID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE subscriber_id = ? AND author_id = ?`,
		subscriberID, authorID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete subscription: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// IsSubscribed reports whether subscriber follows author.
func (r *Repository) IsSubscribed(ctx context.Context, subscriberID, authorID int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = ? AND author_id = ?`,
		subscriberID, authorID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}
	return n > 0, nil
}

// ListSubscriptions returns the authors the subscriber follows, ordered by id.
func (r *Repository) ListSubscriptions(ctx context.Context, subscriberID int64) ([]User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.email, u.username, u.first_name, u.last_name, u.password_hash, u.created_at
		 FROM users u
		 JOIN subscriptions s ON s.author_id = u.id
		 WHERE s.subscriber_id = ?
		 ORDER BY u.id`, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var authors []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.Hash, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription author: %w", err)
		}
		authors = append(authors, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}
	return authors, nil
}
