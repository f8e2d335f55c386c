// Package clipper imports recipes from external web pages: it fetches the
// page, strips markup noise, and asks an LLM to normalize the content into
// structured ingredient lines.
package clipper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"recipe-box/internal/llm"
)

// ClippedIngredient is one extracted ingredient requirement.
type ClippedIngredient struct {
	Name   string `json:"name"`
	Unit   string `json:"unit"`
	Amount int64  `json:"amount"`
}

// ClippedRecipe represents the data structured by the AI. It still needs to
// be resolved against the ingredient catalog before it can be saved.
type ClippedRecipe struct {
	Title       string              `json:"title"`
	Text        string              `json:"text"`
	CookingTime int                 `json:"cooking_time_minutes"`
	Ingredients []ClippedIngredient `json:"ingredients"`
}

// Meta carries usage accounting for one clip.
type Meta struct {
	Usage   llm.TokenUsage
	Latency time.Duration
}

// Clipper handles fetching and extracting recipes from URLs.
type Clipper struct {
	httpClient *http.Client
	textGen    llm.TextGenerator
}

// NewClipper creates a new Clipper instance.
func NewClipper(textGen llm.TextGenerator) *Clipper {
	return &Clipper{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		textGen:    textGen,
	}
}

// ClipURL fetches the URL and extracts a structured recipe draft using the LLM.
func (c *Clipper) ClipURL(ctx context.Context, url string) (*ClippedRecipe, Meta, error) {
	content, err := c.fetchAndCleanHTML(ctx, url)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("failed to fetch content: %w", err)
	}

	prompt := fmt.Sprintf(`
You are a recipe extraction expert. Extract the recipe details from the following page content.
Return the result strictly as a JSON object with this structure:
{
  "title": "Recipe Title",
  "text": "Step-by-step instructions as one text block",
  "cooking_time_minutes": 30,
  "ingredients": [{"name": "flour", "unit": "g", "amount": 200}, ...]
}

Amounts must be positive integers in the given unit. Use lowercase ingredient names.
Ensure the output is valid JSON. Return ONLY the raw JSON string. Do not wrap the response in markdown code blocks.

Page content:
%s
`, content)

	start := time.Now()
	resp, err := c.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("ai extraction failed: %w", err)
	}
	meta := Meta{Usage: resp.Usage, Latency: time.Since(start)}

	var extracted ClippedRecipe
	if err := json.Unmarshal([]byte(resp.Content), &extracted); err != nil {
		return nil, meta, fmt.Errorf("failed to parse AI response: %w. Response: %s", err, resp.Content)
	}
	if err := validate(&extracted); err != nil {
		return nil, meta, err
	}

	return &extracted, meta, nil
}

func validate(r *ClippedRecipe) error {
	if r.Title == "" {
		return fmt.Errorf("extracted recipe has no title")
	}
	if len(r.Ingredients) == 0 {
		return fmt.Errorf("extracted recipe has no ingredients")
	}
	for _, ing := range r.Ingredients {
		if ing.Name == "" || ing.Unit == "" || ing.Amount < 1 {
			return fmt.Errorf("extracted ingredient %+v is incomplete", ing)
		}
	}
	if r.CookingTime < 1 {
		r.CookingTime = 1
	}
	return nil
}

func (c *Clipper) fetchAndCleanHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text(), nil
}
