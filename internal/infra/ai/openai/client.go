package openai

import (
    "context"
    "errors"
    "fmt"
    "strings"

    "github.com/sashabaranov/go-openai"

    domain "github.com/bryanwahyu/aidetect/internal/domain/analysis"
    "github.com/bryanwahyu/aidetect/internal/infra/ai/prompt"
)

const (
    maxTokens    = 1024
    DefaultModel = "gpt-4o-mini"
)

type Client struct {
    *openai.Client
    Model string
}

var _ domain.Scorer = (*Client)(nil)

// NewClient; baseURL kosong = api.openai.com
func NewClient(apiKey, model, baseURL string) *Client {
    cfg := openai.DefaultConfig(apiKey)
    if baseURL != "" {
        cfg.BaseURL = baseURL
    }
    return &Client{Client: openai.NewClientWithConfig(cfg), Model: model}
}

func (c *Client) Score(ctx context.Context, text string) (domain.Score, error) {
    model := c.Model
    if model == "" {
        model = DefaultModel
    }
    req := openai.ChatCompletionRequest{
        Model: model,
        ResponseFormat: &openai.ChatCompletionResponseFormat{
            Type: openai.ChatCompletionResponseFormatTypeJSONObject,
        },
        Messages: []openai.ChatCompletionMessage{
            {Role: openai.ChatMessageRoleSystem, Content: prompt.SystemPrompt()},
            {Role: openai.ChatMessageRoleUser, Content: prompt.UserPrompt(text)},
        },
    }
    // For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
    if isReasoningModel(model) {
        req.MaxCompletionTokens = maxTokens
    } else {
        req.MaxTokens = maxTokens
    }

    resp, err := c.CreateChatCompletion(ctx, req)
    if err != nil {
        return domain.Score{}, fmt.Errorf("failed to create chat completion: %w", err)
    }
    if len(resp.Choices) == 0 {
        return domain.Score{}, errors.New("chat completion returned no choices")
    }

    return prompt.ParseScore(resp.Choices[0].Message.Content)
}

func isReasoningModel(model string) bool {
    for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
        if strings.HasPrefix(model, p) {
            return true
        }
    }
    return false
}
