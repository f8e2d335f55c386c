package shopping

import (
	"context"
	"fmt"
	"sort"

	"recipe-box/internal/recipe"
)

// LineSource supplies the ordered ingredient lines of a recipe. It is
// satisfied by *recipe.Repository; the aggregator treats it as a read-only
// snapshot and performs no I/O of its own.
type LineSource interface {
	GetIngredientLines(ctx context.Context, recipeID string) ([]recipe.IngredientLine, error)
}

type identity struct {
	name string
	unit string
}

// Aggregate merges the ingredient lines of the selected recipes into one
// shopping list. Lines sharing the same exact (name, unit) identity are
// summed with integer arithmetic; the result is sorted by name, then unit,
// so identical input always yields identical output.
//
// An empty selection yields an empty list. If any selected recipe cannot be
// resolved the whole aggregation fails with recipe.ErrNotFound: a partial
// shopping list is a correctness defect, not a degraded result.
func Aggregate(ctx context.Context, selection []string, source LineSource) ([]AggregatedLine, error) {
	totals := make(map[identity]int64)
	seen := make(map[string]struct{}, len(selection))

	for _, recipeID := range selection {
		// The selection is a set; a repeated ID must not double amounts.
		if _, dup := seen[recipeID]; dup {
			continue
		}
		seen[recipeID] = struct{}{}

		lines, err := source.GetIngredientLines(ctx, recipeID)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate recipe %s: %w", recipeID, err)
		}
		for _, line := range lines {
			totals[identity{name: line.Name, unit: line.Unit}] += line.Amount
		}
	}

	result := make([]AggregatedLine, 0, len(totals))
	for id, total := range totals {
		result = append(result, AggregatedLine{Name: id.name, Unit: id.unit, Total: total})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].Unit < result[j].Unit
	})
	return result, nil
}
