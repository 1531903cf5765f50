package dbutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeEvidence_Empty(t *testing.T) {
	s, err := EncodeEvidence(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)
}

func TestDecodeEvidence(t *testing.T) {
	ev, err := DecodeEvidence([]byte(`[{"text":"In conclusion, it is important.","score":0.91}]`))
	require.NoError(t, err)
	require.Len(t, ev, 1)
	assert.Equal(t, "In conclusion, it is important.", ev[0].Text)
	assert.InDelta(t, 0.91, ev[0].Score, 1e-9)

	for _, raw := range []string{"", "null", "[]"} {
		ev, err := DecodeEvidence([]byte(raw))
		require.NoError(t, err)
		assert.NotNil(t, ev)
		assert.Empty(t, ev)
	}

	_, err = DecodeEvidence([]byte("{broken"))
	assert.Error(t, err)
}
