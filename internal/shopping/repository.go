package shopping

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles persistence of per-user shopping cart selections.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new shopping cart repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Add puts a recipe into the user's cart. Adding the same recipe twice is an error.
func (r *Repository) Add(ctx context.Context, userID int64, recipeID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cart_items (user_id, recipe_id) VALUES (?, ?)`, userID, recipeID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert cart item: %w", err)
	}
	return nil
}

// Remove takes a recipe out of the user's cart. Returns false if it was not there.
func (r *Repository) Remove(ctx context.Context, userID int64, recipeID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = ? AND recipe_id = ?`, userID, recipeID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete cart item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// Contains reports whether the recipe is in the user's cart.
func (r *Repository) Contains(ctx context.Context, userID int64, recipeID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cart_items WHERE user_id = ? AND recipe_id = ?`, userID, recipeID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check cart item: %w", err)
	}
	return n > 0, nil
}

// Selection returns the recipe IDs in the user's cart, in a stable order.
func (r *Repository) Selection(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT recipe_id FROM cart_items WHERE user_id = ? ORDER BY recipe_id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cart items: %w", err)
	}
	return ids, nil
}
