package ingredient

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ImportCSV loads catalog entries from CSV rows of the form "name,unit".
// Existing (name, unit) pairs are left untouched. Returns the number of rows
// that created a new entry.
func ImportCSV(ctx context.Context, repo *Repository, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	before, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}

	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read CSV: %w", err)
		}
		line++

		if len(record) < 2 {
			return 0, fmt.Errorf("line %d: expected at least 2 fields, got %d", line, len(record))
		}

		name := strings.TrimSpace(record[0])
		unit := strings.TrimSpace(record[1])
		if _, err := repo.GetOrCreate(ctx, name, unit); err != nil {
			return 0, fmt.Errorf("line %d: %w", line, err)
		}
	}

	after, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	return after - before, nil
}
