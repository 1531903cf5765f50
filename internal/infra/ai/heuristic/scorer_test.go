package heuristic

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/aidetect/internal/domain/analysis"
)

const machineLike = "Furthermore, it is important to note that technology plays a crucial role in society. " +
	"Moreover, it is important to note that education plays a crucial role in society. " +
	"Additionally, it is important to note that health plays a crucial role in society. " +
	"In conclusion, it is important to note that culture plays a crucial role in society."

const humanLike = "I missed the bus again today. Honestly? The driver waved at me while pulling away, " +
	"grinning like he'd won something, and I stood there holding my cold coffee and laughing " +
	"because what else can you do. My sister says I should just buy a bike. Maybe."

func TestScore_Deterministic(t *testing.T) {
	s := New()
	a, err := s.Score(context.Background(), machineLike)
	require.NoError(t, err)
	b, err := s.Score(context.Background(), machineLike)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NoError(t, a.Validate())
}

func TestScore_Separates(t *testing.T) {
	s := New()
	machine, err := s.Score(context.Background(), machineLike)
	require.NoError(t, err)
	human, err := s.Score(context.Background(), humanLike)
	require.NoError(t, err)

	assert.Greater(t, machine.AIProbability, 0.7)
	assert.Less(t, human.AIProbability, 0.4)
	assert.Equal(t, domain.ActionHigh, domain.SuggestedAction(machine.AIProbability))
	assert.Equal(t, domain.ActionHuman, domain.SuggestedAction(human.AIProbability))
}

func TestScore_Evidence(t *testing.T) {
	sc, err := New().Score(context.Background(), machineLike)
	require.NoError(t, err)

	require.NotEmpty(t, sc.Evidence)
	assert.LessOrEqual(t, len(sc.Evidence), domain.MaxEvidence)
	for i, e := range sc.Evidence {
		assert.Contains(t, machineLike, e.Text)
		assert.Greater(t, e.Score, 0.5)
		if i > 0 {
			assert.LessOrEqual(t, e.Score, sc.Evidence[i-1].Score)
		}
	}
}

func TestScore_RepeatedCharacter(t *testing.T) {
	sc, err := New().Score(context.Background(), strings.Repeat("A", 60))
	require.NoError(t, err)
	assert.NoError(t, sc.Validate())
	assert.Equal(t, domain.ActionHuman, domain.SuggestedAction(sc.AIProbability))
	assert.NotNil(t, sc.Evidence)
}

func TestScore_ConfidenceGrowsWithLength(t *testing.T) {
	short, err := New().Score(context.Background(), humanLike)
	require.NoError(t, err)
	long, err := New().Score(context.Background(), strings.Repeat(humanLike+" ", 10))
	require.NoError(t, err)
	assert.Greater(t, long.Confidence, short.Confidence)
	assert.LessOrEqual(t, long.Confidence, 0.95)
}

func TestScore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Score(ctx, machineLike)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMATTR(t *testing.T) {
	assert.InDelta(t, 1.0, mattr([]string{"a", "b", "c"}), 1e-9)
	assert.InDelta(t, 0.5, mattr([]string{"a", "a", "b", "b"}), 1e-9)

	long := strings.Fields(strings.Repeat("x y ", 100))
	assert.InDelta(t, 2.0/window, mattr(long), 1e-9)
}

func TestSplitSentences(t *testing.T) {
	got, err := splitSentences("It rained all day. We stayed in and read! Did you go out?  ")
	require.NoError(t, err)
	assert.Equal(t, []string{"It rained all day.", "We stayed in and read!", "Did you go out?"}, got)

	got, err = splitSentences("... !!! ")
	require.NoError(t, err)
	assert.Empty(t, got)
}
