package acceptance_tests

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"recipe-box/internal/clipper"
	"recipe-box/internal/database"
	"recipe-box/internal/ingredient"
	"recipe-box/internal/llm"
	"recipe-box/internal/pdf"
	"recipe-box/internal/recipe"
	"recipe-box/internal/shopping"
	"recipe-box/internal/user"
)

// --- Mock LLM Client ---
type mockLLMClient struct {
	generateContentCalls int
}

func (m *mockLLMClient) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.generateContentCalls++
	return llm.ContentResponse{
		Content: `{
			"title": "Pancakes",
			"text": "Whisk and fry.",
			"cooking_time_minutes": 20,
			"ingredients": [
				{"name": "flour", "unit": "g", "amount": 200},
				{"name": "egg", "unit": "pcs", "amount": 2}
			]
		}`,
		Usage: llm.TokenUsage{Model: "mock", PromptTokens: 10, CompletionTokens: 5},
	}, nil
}

func (m *mockLLMClient) Close() error { return nil }

// TestClipToShoppingListFlow walks the whole pipeline: clip a recipe from a
// web page, store it, put it in a cart next to a hand-entered recipe, and
// download the merged shopping list as a PDF.
func TestClipToShoppingListFlow(t *testing.T) {
	ctx := context.Background()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "acceptance.db"))
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := user.NewRepository(db.SQL)
	recipes := recipe.NewRepository(db.SQL)
	ingredients := ingredient.NewRepository(db.SQL)
	carts := shopping.NewRepository(db.SQL)

	author := &user.User{Email: "cook@example.com", Username: "cook"}
	if err := author.HashPassword("longenough"); err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if _, err := users.Create(ctx, author); err != nil {
		t.Fatalf("Create(user) error = %v", err)
	}

	// 1. Clip a recipe from a fake web page.
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><h1>Pancakes</h1><p>Whisk flour and eggs, fry.</p></body></html>"))
	}))
	t.Cleanup(page.Close)

	mock := &mockLLMClient{}
	clip := clipper.NewClipper(mock)
	clipped, _, err := clip.ClipURL(ctx, page.URL)
	if err != nil {
		t.Fatalf("ClipURL() error = %v", err)
	}
	if mock.generateContentCalls != 1 {
		t.Errorf("generateContentCalls = %d, want 1", mock.generateContentCalls)
	}

	// 2. Resolve the clipped ingredients against the catalog and save.
	clippedRecipe := &recipe.Recipe{
		AuthorID:    author.ID,
		Name:        clipped.Title,
		Text:        clipped.Text,
		CookingTime: clipped.CookingTime,
	}
	for _, ci := range clipped.Ingredients {
		ing, err := ingredients.GetOrCreate(ctx, ci.Name, ci.Unit)
		if err != nil {
			t.Fatalf("GetOrCreate(%q) error = %v", ci.Name, err)
		}
		clippedRecipe.Ingredients = append(clippedRecipe.Ingredients, recipe.IngredientLine{
			IngredientID: ing.ID,
			Name:         ing.Name,
			Unit:         ing.Unit,
			Amount:       ci.Amount,
		})
	}
	if err := recipes.Save(ctx, clippedRecipe); err != nil {
		t.Fatalf("Save(clipped) error = %v", err)
	}

	// 3. A second, hand-entered recipe sharing one ingredient.
	flour, err := ingredients.GetOrCreate(ctx, "flour", "g")
	if err != nil {
		t.Fatalf("GetOrCreate(flour) error = %v", err)
	}
	sugar, err := ingredients.GetOrCreate(ctx, "sugar", "g")
	if err != nil {
		t.Fatalf("GetOrCreate(sugar) error = %v", err)
	}
	cake := &recipe.Recipe{
		AuthorID:    author.ID,
		Name:        "Cake",
		Text:        "Bake it.",
		CookingTime: 45,
		Ingredients: []recipe.IngredientLine{
			{IngredientID: flour.ID, Name: "flour", Unit: "g", Amount: 300},
			{IngredientID: sugar.ID, Name: "sugar", Unit: "g", Amount: 100},
		},
	}
	if err := recipes.Save(ctx, cake); err != nil {
		t.Fatalf("Save(cake) error = %v", err)
	}

	// 4. Fill the cart and aggregate.
	if err := carts.Add(ctx, author.ID, clippedRecipe.ID); err != nil {
		t.Fatalf("Add(clipped) error = %v", err)
	}
	if err := carts.Add(ctx, author.ID, cake.ID); err != nil {
		t.Fatalf("Add(cake) error = %v", err)
	}
	selection, err := carts.Selection(ctx, author.ID)
	if err != nil {
		t.Fatalf("Selection() error = %v", err)
	}
	lines, err := shopping.Aggregate(ctx, selection, recipes)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	want := []shopping.AggregatedLine{
		{Name: "egg", Unit: "pcs", Total: 2},
		{Name: "flour", Unit: "g", Total: 500},
		{Name: "sugar", Unit: "g", Total: 100},
	}
	if len(lines) != len(want) {
		t.Fatalf("Aggregate() returned %d lines, want %d: %+v", len(lines), len(want), lines)
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("lines[%d] = %+v, want %+v", i, lines[i], w)
		}
	}

	// 5. Render the PDF.
	doc, err := pdf.Render(lines)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF-")) {
		t.Errorf("Render() output is not a PDF document")
	}
}
