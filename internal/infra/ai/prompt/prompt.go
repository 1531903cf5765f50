package prompt

import (
    "encoding/json"
    "errors"
    "fmt"
    "strings"

    domain "github.com/bryanwahyu/aidetect/internal/domain/analysis"
)

// MaxTextRunes bounds how much of a submission is sent to a hosted model.
const MaxTextRunes = 24000

// SystemPrompt provides strict directions and schema for JSON output.
func SystemPrompt() string {
    return `You are an expert at telling AI-generated prose from human writing. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- ai_probability is the probability (0 to 1) that the text was written by an AI model.
- confidence (0 to 1) is how sure you are of that estimate; short or mixed texts deserve lower confidence.
- flagged_sentences lists at most 3 sentences copied verbatim from the text that most strongly suggest AI authorship, each with its own score (0 to 1). Use an empty array when nothing stands out.

Schema (example with empty values):
{
  "ai_probability": 0.0,
  "confidence": 0.0,
  "flagged_sentences": [
    {"text": "<sentence>", "score": 0.0}
  ]
}`
}

// UserPrompt wraps the submitted text, truncated to MaxTextRunes.
func UserPrompt(text string) string {
    if r := []rune(text); len(r) > MaxTextRunes {
        text = string(r[:MaxTextRunes])
    }
    return fmt.Sprintf("Estimate whether the following text was written by an AI and respond with the JSON per schema.\n\n<text>\n%s\n</text>", text)
}

// Response is the JSON contract every LLM scorer asks for.
type Response struct {
    AIProbability    *float64 `json:"ai_probability"`
    Confidence       *float64 `json:"confidence"`
    FlaggedSentences []struct {
        Text  string  `json:"text"`
        Score float64 `json:"score"`
    } `json:"flagged_sentences"`
}

var errNoJSON = errors.New("model reply contains no JSON object")

// ParseScore decodes a model reply into a domain.Score. Code fences and any text
// around the outermost JSON object are ignored. Range checks are left to the caller.
func ParseScore(raw string) (domain.Score, error) {
    body := strings.TrimSpace(raw)
    body = strings.TrimPrefix(body, "```json")
    body = strings.TrimPrefix(body, "```")
    body = strings.TrimSuffix(body, "```")

    start := strings.Index(body, "{")
    end := strings.LastIndex(body, "}")
    if start < 0 || end < start {
        return domain.Score{}, errNoJSON
    }

    var r Response
    if err := json.Unmarshal([]byte(body[start:end+1]), &r); err != nil {
        return domain.Score{}, fmt.Errorf("decode model reply: %w", err)
    }
    if r.AIProbability == nil {
        return domain.Score{}, errors.New("model reply missing ai_probability")
    }

    s := domain.Score{AIProbability: *r.AIProbability, Confidence: 0.5}
    if r.Confidence != nil {
        s.Confidence = *r.Confidence
    }
    for _, f := range r.FlaggedSentences {
        s.Evidence = append(s.Evidence, domain.Evidence{Text: strings.TrimSpace(f.Text), Score: f.Score})
    }
    return s, nil
}
