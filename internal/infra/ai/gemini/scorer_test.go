package gemini

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/"+DefaultModel+":generateContent"), r.URL.Path)

		var body struct {
			GenerationConfig struct {
				ResponseMIMEType string `json:"responseMimeType"`
			} `json:"generationConfig"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "application/json", body.GenerationConfig.ResponseMIMEType)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": `{"ai_probability":0.35,"confidence":0.6,"flagged_sentences":[]}`}},
				},
				"finishReason": "STOP",
			}},
		})
	}))
	defer srv.Close()

	s, err := New(t.Context(), "test-key", "", srv.URL+"/")
	require.NoError(t, err)

	sc, err := s.Score(t.Context(), "text long enough to be worth scoring by a hosted model")
	require.NoError(t, err)
	assert.InDelta(t, 0.35, sc.AIProbability, 1e-9)
	assert.InDelta(t, 0.6, sc.Confidence, 1e-9)
}
