package completion

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// OpenAICompleter serves the same single-prompt contract through the OpenAI
// chat completions API.
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

func NewOpenAICompleter(apiKey string, model string, options ...Option) *OpenAICompleter {
	cfg := newConfig(options...)
	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.baseURL != "" {
		clientConfig.BaseURL = cfg.baseURL
	}
	clientConfig.HTTPClient = cfg.client
	return &OpenAICompleter{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

var _ Completer = (*OpenAICompleter)(nil)

func (o *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		log.Warn().Err(err).Str("model", o.model).Msg("openai request failed")
		return "", errors.Wrap(ErrCompletion, err.Error())
	}
	if len(resp.Choices) == 0 {
		return "", errors.Wrap(ErrCompletion, "openai response missing choices")
	}

	text := resp.Choices[0].Message.Content
	log.Debug().Str("model", o.model).Int("completion_len", len(text)).Msg("openai completion received")
	return text, nil
}
