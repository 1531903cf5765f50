package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	domain "github.com/bryanwahyu/aidetect/internal/domain/analysis"
	"github.com/bryanwahyu/aidetect/internal/infra/ai/prompt"
)

const DefaultModel = "gemini-2.0-flash"

// Scorer asks a Gemini model for a JSON verdict.
type Scorer struct {
	client *genai.Client
	model  string
}

var _ domain.Scorer = (*Scorer)(nil)

func New(ctx context.Context, apiKey, model, baseURL string) (*Scorer, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Scorer{client: client, model: model}, nil
}

func (s *Scorer) Score(ctx context.Context, text string) (domain.Score, error) {
	resp, err := s.client.Models.GenerateContent(ctx, s.model,
		genai.Text(prompt.UserPrompt(text)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(prompt.SystemPrompt(), genai.RoleUser),
			ResponseMIMEType:  "application/json",
			Temperature:       genai.Ptr[float32](0),
		},
	)
	if err != nil {
		return domain.Score{}, fmt.Errorf("failed to send request to gemini: %w", err)
	}
	out := resp.Text()
	if out == "" {
		return domain.Score{}, errors.New("empty gemini response")
	}
	return prompt.ParseScore(out)
}
