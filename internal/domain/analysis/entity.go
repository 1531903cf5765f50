package analysis

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MinTextLength minimal jumlah karakter (setelah trim) yang boleh dianalisa
	MinTextLength = 50

	// PreviewLength is the number of characters kept in Record.TextPreview.
	PreviewLength = 200

	// maxPreviewBytes matches the text_preview column width.
	maxPreviewBytes = 255

	// MaxEvidence caps Record.FlaggedEvidence.
	MaxEvidence = 3
)

// Evidence is one flagged excerpt with its local score.
type Evidence struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Score is what a Scorer produces for a piece of text.
type Score struct {
	AIProbability float64
	Confidence    float64
	Evidence      []Evidence
}

// Record is the durable result of scoring one fingerprint. It is written once and
// never updated.
type Record struct {
	ID               int64       `json:"id"`
	Fingerprint      Fingerprint `json:"fingerprint"`
	TextPreview      string      `json:"textPreview"`
	AIProbability    float64     `json:"aiProbability"`
	HumanProbability float64     `json:"humanProbability"`
	Confidence       float64     `json:"confidence"`
	SuggestedAction  string      `json:"suggestedAction"`
	FlaggedEvidence  []Evidence  `json:"flaggedEvidence"`
	CreatedAt        time.Time   `json:"createdAt"`
}

// Outcome is the result of Service.Analyze.
type Outcome struct {
	Record    *Record
	FromCache bool
}

// ValidateText checks the minimum trimmed length.
func ValidateText(text string) error {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinTextLength {
		return ErrInvalidInput
	}
	return nil
}

// Preview returns the first PreviewLength characters of text, cut back to a rune
// boundary so the result never exceeds the column width in bytes.
func Preview(text string) string {
	n := 0
	end := len(text)
	for i := range text {
		if n == PreviewLength {
			end = i
			break
		}
		n++
	}
	p := text[:end]
	for len(p) > maxPreviewBytes {
		_, size := utf8.DecodeLastRuneInString(p)
		p = p[:len(p)-size]
	}
	return p
}
