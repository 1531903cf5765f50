package analysis

import (
	"fmt"
	"math"
	"sort"
)

const (
	ActionHigh     = "Review carefully - high probability of AI-generated content"
	ActionModerate = "Some indicators of AI content - further review recommended"
	ActionHuman    = "Likely human-written content"
)

const (
	highThreshold     = 0.7
	moderateThreshold = 0.4
)

// SuggestedAction maps aiProbability onto one of three fixed bands.
func SuggestedAction(aiProbability float64) string {
	switch {
	case aiProbability > highThreshold:
		return ActionHigh
	case aiProbability > moderateThreshold:
		return ActionModerate
	default:
		return ActionHuman
	}
}

// Validate rejects scorer output that must never be persisted.
func (s Score) Validate() error {
	if !inUnitRange(s.AIProbability) {
		return fmt.Errorf("ai probability out of range: %v", s.AIProbability)
	}
	if !inUnitRange(s.Confidence) {
		return fmt.Errorf("confidence out of range: %v", s.Confidence)
	}
	for i, e := range s.Evidence {
		if !inUnitRange(e.Score) {
			return fmt.Errorf("evidence %d score out of range: %v", i, e.Score)
		}
	}
	return nil
}

// NormalizeEvidence sorts by score descending (stable on input order) and keeps at
// most MaxEvidence entries. The result is never nil.
func NormalizeEvidence(in []Evidence) []Evidence {
	out := make([]Evidence, 0, len(in))
	for _, e := range in {
		if e.Text == "" {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > MaxEvidence {
		out = out[:MaxEvidence]
	}
	return out
}

func inUnitRange(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}
