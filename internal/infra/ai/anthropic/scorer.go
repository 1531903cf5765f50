package anthropic

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	domain "github.com/bryanwahyu/aidetect/internal/domain/analysis"
	"github.com/bryanwahyu/aidetect/internal/infra/ai/prompt"
)

const DefaultModel = "claude-3-5-haiku-latest"

type Scorer struct {
	client anthropic.Client
	model  string
}

var _ domain.Scorer = (*Scorer)(nil)

func New(apiKey, model, baseURL string) *Scorer {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = DefaultModel
	}
	return &Scorer{client: anthropic.NewClient(opts...), model: model}
}

func (s *Scorer) Score(ctx context.Context, text string) (domain.Score, error) {
	message, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: prompt.SystemPrompt(), CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.UserPrompt(text))),
		},
	})
	if err != nil {
		return domain.Score{}, fmt.Errorf("anthropic API error: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return prompt.ParseScore(block.Text)
		}
	}
	return domain.Score{}, errors.New("no text content in anthropic response")
}
