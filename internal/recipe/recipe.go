package recipe

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrNotFound is returned when a referenced recipe does not exist.
var ErrNotFound = errors.New("recipe not found")

var (
	hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	slugRe     = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// Tag can be assigned to recipes for filtering.
type Tag struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

// Validate checks tag fields before insertion.
func (t *Tag) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("tag name is required")
	}
	if !hexColorRe.MatchString(t.Color) {
		return fmt.Errorf("tag color must be a hex value like #RRGGBB")
	}
	if !slugRe.MatchString(t.Slug) {
		return fmt.Errorf("tag slug may only contain letters, digits, underscores and dashes")
	}
	return nil
}

// IngredientLine is one ingredient requirement of a recipe: a catalog
// ingredient plus the amount this recipe needs.
type IngredientLine struct {
	IngredientID int64  `json:"id"`
	Name         string `json:"name"`
	Unit         string `json:"measurement_unit"`
	Amount       int64  `json:"amount"`
}

// Recipe is a published dish with its ordered ingredient lines.
type Recipe struct {
	ID          string           `json:"id"`
	AuthorID    int64            `json:"author"`
	Name        string           `json:"name"`
	Text        string           `json:"text"`
	CookingTime int              `json:"cooking_time"`
	Tags        []Tag            `json:"tags"`
	Ingredients []IngredientLine `json:"ingredients"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Validate checks the recipe fields required at publish time.
func (r *Recipe) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("recipe name is required")
	}
	if r.Text == "" {
		return fmt.Errorf("recipe text is required")
	}
	if r.CookingTime < 1 {
		return fmt.Errorf("cooking time must be at least 1 minute")
	}
	if len(r.Ingredients) == 0 {
		return fmt.Errorf("recipe needs at least one ingredient")
	}

	seen := make(map[int64]struct{}, len(r.Ingredients))
	for _, line := range r.Ingredients {
		if line.Amount < 1 {
			return fmt.Errorf("ingredient amount must be at least 1")
		}
		if _, dup := seen[line.IngredientID]; dup {
			return fmt.Errorf("duplicate ingredient %d in recipe", line.IngredientID)
		}
		seen[line.IngredientID] = struct{}{}
	}
	return nil
}
