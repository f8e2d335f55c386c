package recipe

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Filter narrows down List results. Zero values mean "no constraint".
type Filter struct {
	AuthorID    int64
	TagSlugs    []string
	FavoritedBy int64
	InCartOf    int64
}

// Repository is a database-backed repository for recipes, tags and favorites.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save inserts a new recipe together with its tag links and ingredient lines.
// A missing ID is assigned.
func (r *Repository) Save(ctx context.Context, rec *Recipe) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO recipes (id, author_id, name, text, cooking_time, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.AuthorID, rec.Name, rec.Text, rec.CookingTime, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert recipe: %w", err)
	}

	if err := r.writeLinks(ctx, tx, rec); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recipe: %w", err)
	}
	return nil
}

// Update replaces the recipe's fields, tag links and ingredient lines.
// Returns ErrNotFound if the recipe does not exist.
func (r *Repository) Update(ctx context.Context, rec *Recipe) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE recipes SET name = ?, text = ?, cooking_time = ? WHERE id = ?`,
		rec.Name, rec.Text, rec.CookingTime, rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_tags WHERE recipe_id = ?`, rec.ID); err != nil {
		return fmt.Errorf("failed to clear recipe tags: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = ?`, rec.ID); err != nil {
		return fmt.Errorf("failed to clear recipe ingredients: %w", err)
	}
	if err := r.writeLinks(ctx, tx, rec); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recipe update: %w", err)
	}
	return nil
}

func (r *Repository) writeLinks(ctx context.Context, tx *sql.Tx, rec *Recipe) error {
	for _, tag := range rec.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO recipe_tags (recipe_id, tag_id) VALUES (?, ?)`, rec.ID, tag.ID,
		); err != nil {
			return fmt.Errorf("failed to link tag %d: %w", tag.ID, err)
		}
	}
	for i, line := range rec.Ingredients {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount, position)
			 VALUES (?, ?, ?, ?)`,
			rec.ID, line.IngredientID, line.Amount, i,
		); err != nil {
			return fmt.Errorf("failed to link ingredient %d: %w", line.IngredientID, err)
		}
	}
	return nil
}

// Delete removes a recipe and its links. Returns ErrNotFound if it does not exist.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Get retrieves a recipe by its ID, including tags and ingredient lines.
func (r *Repository) Get(ctx context.Context, id string) (*Recipe, error) {
	var rec Recipe
	err := r.db.QueryRowContext(ctx,
		`SELECT id, author_id, name, text, cooking_time, created_at FROM recipes WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.AuthorID, &rec.Name, &rec.Text, &rec.CookingTime, &rec.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Recipe not found
		}
		return nil, fmt.Errorf("failed to get recipe by ID: %w", err)
	}

	if rec.Tags, err = r.tagsFor(ctx, id); err != nil {
		return nil, err
	}
	if rec.Ingredients, err = r.linesFor(ctx, id); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetIngredientLines returns the recipe's ordered ingredient lines. Unlike
// Get, a missing recipe is an error: shopping-list aggregation must fail
// fast rather than silently produce a partial list.
func (r *Repository) GetIngredientLines(ctx context.Context, recipeID string) ([]IngredientLine, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recipes WHERE id = ?`, recipeID,
	).Scan(&n); err != nil {
		return nil, fmt.Errorf("failed to check recipe existence: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return r.linesFor(ctx, recipeID)
}

func (r *Repository) linesFor(ctx context.Context, recipeID string) ([]IngredientLine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT i.id, i.name, i.unit, ri.amount
		 FROM recipe_ingredients ri
		 JOIN ingredients i ON i.id = ri.ingredient_id
		 WHERE ri.recipe_id = ?
		 ORDER BY ri.position`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingredient lines: %w", err)
	}
	defer rows.Close()

	var lines []IngredientLine
	for rows.Next() {
		var line IngredientLine
		if err := rows.Scan(&line.IngredientID, &line.Name, &line.Unit, &line.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ingredient lines: %w", err)
	}
	return lines, nil
}

func (r *Repository) tagsFor(ctx context.Context, recipeID string) ([]Tag, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.name, t.color, t.slug
		 FROM recipe_tags rt
		 JOIN tags t ON t.id = rt.tag_id
		 WHERE rt.recipe_id = ?
		 ORDER BY t.name`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return tags, nil
}

// List retrieves recipes matching the filter, newest first.
func (r *Repository) List(ctx context.Context, f Filter) ([]Recipe, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT DISTINCT r.id, r.author_id, r.name, r.text, r.cooking_time, r.created_at FROM recipes r`)
	var args []interface{}
	var where []string

	if len(f.TagSlugs) > 0 {
		query.WriteString(` JOIN recipe_tags rt ON rt.recipe_id = r.id JOIN tags t ON t.id = rt.tag_id`)
		placeholders := strings.Repeat("?,", len(f.TagSlugs))
		where = append(where, fmt.Sprintf("t.slug IN (%s)", placeholders[:len(placeholders)-1]))
		for _, slug := range f.TagSlugs {
			args = append(args, slug)
		}
	}
	if f.FavoritedBy != 0 {
		query.WriteString(` JOIN favorites fav ON fav.recipe_id = r.id`)
		where = append(where, "fav.user_id = ?")
		args = append(args, f.FavoritedBy)
	}
	if f.InCartOf != 0 {
		query.WriteString(` JOIN cart_items ci ON ci.recipe_id = r.id`)
		where = append(where, "ci.user_id = ?")
		args = append(args, f.InCartOf)
	}
	if f.AuthorID != 0 {
		where = append(where, "r.author_id = ?")
		args = append(args, f.AuthorID)
	}
	if len(where) > 0 {
		query.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	query.WriteString(" ORDER BY r.created_at DESC, r.id")

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		var rec Recipe
		if err := rows.Scan(&rec.ID, &rec.AuthorID, &rec.Name, &rec.Text, &rec.CookingTime, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipes: %w", err)
	}

	for i := range recipes {
		if recipes[i].Tags, err = r.tagsFor(ctx, recipes[i].ID); err != nil {
			return nil, err
		}
		if recipes[i].Ingredients, err = r.linesFor(ctx, recipes[i].ID); err != nil {
			return nil, err
		}
	}
	return recipes, nil
}

// Favorite marks a recipe as a favorite of the user.
func (r *Repository) Favorite(ctx context.Context, userID int64, recipeID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO favorites (user_id, recipe_id, added_at) VALUES (?, ?, ?)`,
		userID, recipeID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert favorite: %w", err)
	}
	return nil
}

// Unfavorite removes a favorite. Returns false if none existed.
func (r *Repository) Unfavorite(ctx context.Context, userID int64, recipeID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND recipe_id = ?`, userID, recipeID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete favorite: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// IsFavorited reports whether the user has favorited the recipe.
func (r *Repository) IsFavorited(ctx context.Context, userID int64, recipeID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites WHERE user_id = ? AND recipe_id = ?`, userID, recipeID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return n > 0, nil
}

// ListTags returns all tags ordered by name.
func (r *Repository) ListTags(ctx context.Context) ([]Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, color, slug FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return tags, nil
}

// GetTag retrieves a tag by ID.
func (r *Repository) GetTag(ctx context.Context, id int64) (*Tag, error) {
	var t Tag
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, color, slug FROM tags WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &t.Color, &t.Slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No tag found
		}
		return nil, fmt.Errorf("failed to get tag by ID: %w", err)
	}
	return &t, nil
}

// SaveTag inserts a new tag.
func (r *Repository) SaveTag(ctx context.Context, t *Tag) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tags (name, color, slug) VALUES (?, ?, ?)`, t.Name, t.Color, t.Slug,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert tag: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted tag id: %w", err)
	}
	t.ID = id
	return id, nil
}
