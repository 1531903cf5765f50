package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/aidetect/internal/config"
	domain "github.com/bryanwahyu/aidetect/internal/domain/analysis"
	"github.com/bryanwahyu/aidetect/internal/infra/ai/heuristic"
	"github.com/bryanwahyu/aidetect/internal/infra/ai/openai"
	"github.com/bryanwahyu/aidetect/internal/logger"
)

func TestNew(t *testing.T) {
	ctx := context.Background()
	log := logger.Nop()

	s, err := New(ctx, config.Scorer{Provider: "heuristic"}, log)
	require.NoError(t, err)
	assert.IsType(t, heuristic.Scorer{}, s)

	s, err = New(ctx, config.Scorer{Provider: "openai", APIKey: "k", RequestsPerMinute: 60}, log)
	require.NoError(t, err)
	lim, ok := s.(*Limited)
	require.True(t, ok)
	assert.IsType(t, &openai.Client{}, lim.next)

	for _, cfg := range []config.Scorer{
		{Provider: "openai"},
		{Provider: "anthropic"},
		{Provider: "gemini"},
		{Provider: "remote"},
		{Provider: "bogus"},
	} {
		_, err := New(ctx, cfg, log)
		assert.Error(t, err, cfg.Provider)
	}
}

type countingScorer struct{ n int }

func (c *countingScorer) Score(context.Context, string) (domain.Score, error) {
	c.n++
	return domain.Score{AIProbability: 0.5, Confidence: 0.5}, nil
}

func TestLimited(t *testing.T) {
	inner := &countingScorer{}
	assert.Same(t, domain.Scorer(inner), NewLimited(inner, 0))

	// one call per minute: the first passes, the second cannot fit the deadline
	s := NewLimited(inner, 1)
	_, err := s.Score(context.Background(), "x")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = s.Score(ctx, "x")
	assert.Error(t, err)
	assert.Equal(t, 1, inner.n)
}
