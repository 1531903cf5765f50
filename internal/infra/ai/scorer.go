// Package ai builds the configured Scorer.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bryanwahyu/aidetect/internal/config"
	domain "github.com/bryanwahyu/aidetect/internal/domain/analysis"
	"github.com/bryanwahyu/aidetect/internal/infra/ai/anthropic"
	"github.com/bryanwahyu/aidetect/internal/infra/ai/gemini"
	"github.com/bryanwahyu/aidetect/internal/infra/ai/heuristic"
	"github.com/bryanwahyu/aidetect/internal/infra/ai/openai"
	"github.com/bryanwahyu/aidetect/internal/infra/ai/remote"
	"github.com/bryanwahyu/aidetect/internal/logger"
)

var errMissingKey = errors.New("scorer.apiKey is required for this provider")

// New returns the scorer named by cfg.Provider, rate limited when
// cfg.RequestsPerMinute is set.
func New(ctx context.Context, cfg config.Scorer, log *logger.Logger) (domain.Scorer, error) {
	var (
		s   domain.Scorer
		err error
	)
	switch cfg.Provider {
	case "", "heuristic":
		s = heuristic.New()
	case "openai":
		if cfg.APIKey == "" {
			return nil, errMissingKey
		}
		s = openai.NewClient(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case "anthropic":
		if cfg.APIKey == "" {
			return nil, errMissingKey
		}
		s = anthropic.New(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case "gemini":
		if cfg.APIKey == "" {
			return nil, errMissingKey
		}
		s, err = gemini.New(ctx, cfg.APIKey, cfg.Model, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
	case "remote":
		if cfg.BaseURL == "" {
			return nil, errors.New("scorer.baseURL is required for the remote provider")
		}
		s = remote.New(cfg.BaseURL, cfg.APIKey, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown scorer provider %q", cfg.Provider)
	}

	log.Info("scorer configured",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.Int("requests_per_minute", cfg.RequestsPerMinute),
	)
	return NewLimited(s, cfg.RequestsPerMinute), nil
}

// Limited spaces calls to the wrapped scorer.
type Limited struct {
	next    domain.Scorer
	limiter *rate.Limiter
}

// NewLimited returns next unchanged when perMinute <= 0.
func NewLimited(next domain.Scorer, perMinute int) domain.Scorer {
	if perMinute <= 0 {
		return next
	}
	every := time.Minute / time.Duration(perMinute)
	return &Limited{next: next, limiter: rate.NewLimiter(rate.Every(every), 1)}
}

func (l *Limited) Score(ctx context.Context, text string) (domain.Score, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return domain.Score{}, fmt.Errorf("failed to wait for scorer rate limit: %w", err)
	}
	return l.next.Score(ctx, text)
}
