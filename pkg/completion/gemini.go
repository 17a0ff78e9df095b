package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiCompleter calls the generateContent endpoint of the Gemini API with
// a single text part and returns the first candidate's text.
type GeminiCompleter struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewGeminiCompleter(apiKey string, model string, options ...Option) *GeminiCompleter {
	cfg := newConfig(options...)
	baseURL := cfg.baseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	return &GeminiCompleter{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  cfg.client,
	}
}

var _ Completer = (*GeminiCompleter)(nil)

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(ErrCompletion, err.Error())
	}

	u := g.baseURL + "/v1beta/models/" + g.model + ":generateContent?key=" + g.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return "", errors.Wrap(ErrCompletion, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("model", g.model).Msg("gemini request failed")
		return "", errors.Wrap(ErrCompletion, err.Error())
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(ErrCompletion, err.Error())
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Str("model", g.model).Msg("gemini returned non-success status")
		return "", errors.Wrapf(ErrCompletion, "gemini returned status %d", resp.StatusCode)
	}

	var decoded geminiResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", errors.Wrap(ErrCompletion, "malformed gemini response")
	}
	if len(decoded.Candidates) == 0 ||
		decoded.Candidates[0].Content == nil ||
		len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", errors.Wrap(ErrCompletion, "gemini response missing candidate content")
	}

	text := decoded.Candidates[0].Content.Parts[0].Text
	log.Debug().Str("model", g.model).Int("completion_len", len(text)).Msg("gemini completion received")
	return text, nil
}
