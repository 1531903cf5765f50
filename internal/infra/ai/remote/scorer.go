// Package remote calls a self-hosted detection model over HTTP.
//
//	POST <baseURL>/score {"text": "..."}
//	200 {"aiProbability": 0.8, "confidence": 0.9, "flaggedSentences": [{"text": "...", "score": 0.9}]}
package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	domain "github.com/bryanwahyu/aidetect/internal/domain/analysis"
)

type Scorer struct {
	client *resty.Client
}

var _ domain.Scorer = (*Scorer)(nil)

func New(baseURL, apiKey string, timeout time.Duration) *Scorer {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &Scorer{client: client}
}

type scoreRequest struct {
	Text string `json:"text"`
}

type scoreResponse struct {
	AIProbability    *float64          `json:"aiProbability"`
	Confidence       *float64          `json:"confidence"`
	FlaggedSentences []domain.Evidence `json:"flaggedSentences"`
}

func (s *Scorer) Score(ctx context.Context, text string) (domain.Score, error) {
	var result scoreResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(scoreRequest{Text: text}).
		SetResult(&result).
		Post("/score")
	if err != nil {
		return domain.Score{}, fmt.Errorf("failed to call remote scorer: %w", err)
	}
	if resp.IsError() {
		return domain.Score{}, fmt.Errorf("remote scorer returned %d: %s", resp.StatusCode(), resp.String())
	}
	if result.AIProbability == nil || result.Confidence == nil {
		return domain.Score{}, errors.New("remote scorer response missing fields")
	}
	return domain.Score{
		AIProbability: *result.AIProbability,
		Confidence:    *result.Confidence,
		Evidence:      result.FlaggedSentences,
	}, nil
}
