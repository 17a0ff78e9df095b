package completion

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// ErrCompletion marks any failure of the completion service: transport
// errors, non-success status, or a payload missing the expected candidate
// content. Callers that need a reply no matter what should substitute a
// fallback string when they see it.
var ErrCompletion = errors.New("completion failed")

// Completer is the request/response interface to the text-completion
// endpoint.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// IsGeminiModel reports whether a model name is served by the Gemini API.
func IsGeminiModel(model string) bool {
	return strings.HasPrefix(model, "gemini")
}

// NewCompleter picks a completer implementation based on the model name.
func NewCompleter(model string, apiKey string, options ...Option) (Completer, error) {
	if model == "" {
		return nil, errors.New("no completion model specified")
	}
	if apiKey == "" {
		return nil, errors.Errorf("missing API key for model %s", model)
	}
	if IsGeminiModel(model) {
		return NewGeminiCompleter(apiKey, model, options...), nil
	}
	return NewOpenAICompleter(apiKey, model, options...), nil
}
