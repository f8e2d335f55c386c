package ingredient

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles persistence of the ingredient catalog.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new ingredient repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// GetByID retrieves an ingredient by ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Ingredient, error) {
	var ing Ingredient
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, unit FROM ingredients WHERE id = ?`, id,
	).Scan(&ing.ID, &ing.Name, &ing.Unit)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No ingredient found
		}
		return nil, fmt.Errorf("failed to get ingredient by ID: %w", err)
	}
	return &ing, nil
}

// GetOrCreate returns the catalog entry for (name, unit), inserting it first
// if it does not exist yet.
func (r *Repository) GetOrCreate(ctx context.Context, name, unit string) (*Ingredient, error) {
	if name == "" || unit == "" {
		return nil, fmt.Errorf("ingredient name and unit are required")
	}

	var ing Ingredient
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, unit FROM ingredients WHERE name = ? AND unit = ?`, name, unit,
	).Scan(&ing.ID, &ing.Name, &ing.Unit)
	if err == nil {
		return &ing, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to look up ingredient: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO ingredients (name, unit) VALUES (?, ?)`, name, unit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert ingredient: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted ingredient id: %w", err)
	}
	return &Ingredient{ID: id, Name: name, Unit: unit}, nil
}

// SearchByPrefix returns catalog entries whose name starts with the prefix,
// ordered by name. An empty prefix lists the whole catalog.
func (r *Repository) SearchByPrefix(ctx context.Context, prefix string) ([]Ingredient, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, unit FROM ingredients WHERE name LIKE ? || '%' ORDER BY name, unit`,
		prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search ingredients: %w", err)
	}
	defer rows.Close()

	var results []Ingredient
	for rows.Next() {
		var ing Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		results = append(results, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ingredients: %w", err)
	}
	return results, nil
}

// Count returns the number of catalog entries.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ingredients`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count ingredients: %w", err)
	}
	return n, nil
}
