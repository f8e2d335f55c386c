package llm

import "context"

// TokenUsage records what a single generation cost.
type TokenUsage struct {
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// ContentResponse is the result of a text generation call.
type ContentResponse struct {
	Content string
	Usage   TokenUsage
}

// TextGenerator is an interface for a client that can interact with a large
// language model.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
	Close() error
}
