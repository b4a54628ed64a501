package proposer

import (
	"context"
	"errors"
	"fmt"
	"time"

	genai "google.golang.org/genai"

	"github.com/specmend/specmend/document"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// geminiAttempts is how many times a transient API failure is retried.
const geminiAttempts = 3

// GeminiInvoker calls the Gemini API and returns the raw JSON response
// text. The response MIME type is pinned to application/json so the
// model cannot wrap its plan in prose or markdown fences.
type GeminiInvoker struct {
	client *genai.Client
	model  string
	log    document.Logger
}

// GeminiOption configures a GeminiInvoker.
type GeminiOption func(*GeminiInvoker)

// WithModel overrides the model name.
func WithModel(model string) GeminiOption {
	return func(g *GeminiInvoker) { g.model = model }
}

// WithGeminiLogger sets the invoker's logger.
func WithGeminiLogger(l document.Logger) GeminiOption {
	return func(g *GeminiInvoker) { g.log = l }
}

// NewGeminiInvoker creates an Invoker backed by the Gemini API. The API
// key may be empty, in which case the client reads GEMINI_API_KEY from
// the environment.
func NewGeminiInvoker(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiInvoker, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("proposer: gemini client: %w", err)
	}
	g := &GeminiInvoker{client: client, model: DefaultModel, log: document.NopLogger{}}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

var _ Invoker = (*GeminiInvoker)(nil)

// Invoke sends the prompt and returns the model's JSON text. Transient
// failures are retried with backoff; cancellation stops the retries.
func (g *GeminiInvoker) Invoke(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < geminiAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(300*(1<<attempt)) * time.Millisecond):
			}
		}

		resp, err := g.client.Models.GenerateContent(ctx, g.model,
			[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
			&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
		)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = err
			g.log.Warn("gemini call failed", "attempt", attempt+1, "error", err)
			continue
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			lastErr = errors.New("proposer: gemini returned no candidates")
			continue
		}
		return resp.Candidates[0].Content.Parts[0].Text, nil
	}
	return "", fmt.Errorf("proposer: gemini invocation failed after %d attempts: %w", geminiAttempts, lastErr)
}
