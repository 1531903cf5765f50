// Package heuristic is a deterministic, offline Scorer. It looks at three
// signals that separate model output from human prose: uniform sentence
// length, low lexical variety, and stock transition phrases.
package heuristic

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"

	domain "github.com/bryanwahyu/aidetect/internal/domain/analysis"
)

const (
	window = 50 // MATTR window, in words

	weightBurst   = 0.45
	weightPhrases = 0.25
	weightLexical = 0.30

	// sentences scoring above this are reported as evidence
	evidenceThreshold = 0.5
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}']+`)

// punkt model for English, loaded once; it knows abbreviations like "e.g." and "Dr."
var tokenizer = sync.OnceValues(func() (*sentences.DefaultSentenceTokenizer, error) {
	return english.NewSentenceTokenizer(nil)
})

// Stock phrases over-represented in model-generated prose.
var phrases = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(furthermore|moreover|additionally|consequently|nevertheless|nonetheless|hence)\b`),
	regexp.MustCompile(`(?i)\bin (conclusion|summary|essence)\b`),
	regexp.MustCompile(`(?i)\bit is (important|worth|crucial|essential) to (note|mention|consider|remember)\b`),
	regexp.MustCompile(`(?i)\bplays? an? (crucial|vital|pivotal|significant|key) role\b`),
	regexp.MustCompile(`(?i)\bin today's (world|society|fast-paced|digital)\b`),
	regexp.MustCompile(`(?i)\bdelv(e|es|ing) into\b`),
	regexp.MustCompile(`(?i)\b(a|the) testament to\b`),
	regexp.MustCompile(`(?i)\bnavigat(e|es|ing) the (complexities|landscape)\b`),
	regexp.MustCompile(`(?i)\b(overall|ultimately)\b,`),
}

type Scorer struct{}

var _ domain.Scorer = Scorer{}

func New() Scorer { return Scorer{} }

func (Scorer) Score(ctx context.Context, text string) (domain.Score, error) {
	if err := ctx.Err(); err != nil {
		return domain.Score{}, err
	}

	sents, err := splitSentences(text)
	if err != nil {
		return domain.Score{}, err
	}
	words := wordRe.FindAllString(strings.ToLower(text), -1)

	lengths := make([]float64, len(sents))
	hits := make([]int, len(sents))
	totalHits := 0
	for i, s := range sents {
		lengths[i] = float64(len(wordRe.FindAllString(s, -1)))
		hits[i] = phraseHits(s)
		totalHits += hits[i]
	}

	burst := burstiness(lengths)
	lexical := clamp(1 - (mattr(words)-0.4)/0.5)
	density := 0.0
	if len(sents) > 0 {
		density = clamp(float64(totalHits) / float64(len(sents)) / 0.5)
	}

	ai := round4(clamp(weightBurst*burst + weightPhrases*density + weightLexical*lexical))
	conf := round4(math.Min(0.95, 0.5+0.45*math.Min(1, float64(len(words))/300)))

	return domain.Score{
		AIProbability: ai,
		Confidence:    conf,
		Evidence:      evidence(sents, lengths, hits, ai),
	}, nil
}

func splitSentences(text string) ([]string, error) {
	tok, err := tokenizer()
	if err != nil {
		return nil, fmt.Errorf("load sentence tokenizer: %w", err)
	}
	raw := tok.Tokenize(text)
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if t := strings.TrimSpace(s.Text); wordRe.MatchString(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func phraseHits(s string) int {
	n := 0
	for _, re := range phrases {
		n += len(re.FindAllStringIndex(s, -1))
	}
	return n
}

// burstiness maps the coefficient of variation of sentence lengths onto [0,1],
// where 1 means perfectly uniform. Fewer than two sentences is undecided.
func burstiness(lengths []float64) float64 {
	if len(lengths) < 2 {
		return 0.5
	}
	mean := 0.0
	for _, l := range lengths {
		mean += l
	}
	mean /= float64(len(lengths))
	if mean == 0 {
		return 0.5
	}
	variance := 0.0
	for _, l := range lengths {
		variance += (l - mean) * (l - mean)
	}
	cv := math.Sqrt(variance/float64(len(lengths))) / mean
	return clamp(1 - cv/0.6)
}

// mattr is the moving-average type-token ratio; plain TTR below one window.
func mattr(words []string) float64 {
	n := len(words)
	if n == 0 {
		return 1
	}
	if n <= window {
		seen := make(map[string]struct{}, n)
		for _, w := range words {
			seen[w] = struct{}{}
		}
		return float64(len(seen)) / float64(n)
	}

	counts := make(map[string]int, window)
	for _, w := range words[:window] {
		counts[w]++
	}
	sum := float64(len(counts))
	for i := window; i < n; i++ {
		out := words[i-window]
		if counts[out]--; counts[out] == 0 {
			delete(counts, out)
		}
		counts[words[i]]++
		sum += float64(len(counts))
	}
	return sum / float64(n-window+1) / window
}

func evidence(sents []string, lengths []float64, hits []int, ai float64) []domain.Evidence {
	if len(sents) == 0 {
		return []domain.Evidence{}
	}
	mean := 0.0
	for _, l := range lengths {
		mean += l
	}
	mean /= float64(len(lengths))

	out := []domain.Evidence{}
	for i, s := range sents {
		local := 0.0
		if hits[i] > 0 {
			local += 0.6
		}
		if mean > 0 {
			local += 0.4 * clamp(1-math.Abs(lengths[i]-mean)/mean)
		}
		score := round4(clamp(0.5*ai + 0.5*local))
		if score > evidenceThreshold {
			out = append(out, domain.Evidence{Text: s, Score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > domain.MaxEvidence {
		out = out[:domain.MaxEvidence]
	}
	return out
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }
