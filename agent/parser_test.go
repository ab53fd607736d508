package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponsePlainJSON(t *testing.T) {
	parsed, err := ParseResponse(`{"action": "drop", "confidence": 0.9, "reasoning": "center control", "column": 3}`)
	require.NoError(t, err)
	assert.Equal(t, "drop", parsed.ActionType)
	assert.Equal(t, 0.9, parsed.Confidence)
	assert.Equal(t, "center control", parsed.Reasoning)
	assert.Equal(t, float64(3), parsed.Fields["column"])
}

func TestParseResponseCodeFence(t *testing.T) {
	raw := "Here is my move:\n```json\n{\"action\": \"guess\", \"guess\": \"write a haiku\", \"confidence\": 0.4}\n```\nGood luck!"
	parsed, err := ParseResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "guess", parsed.ActionType)
	assert.Equal(t, "write a haiku", parsed.Fields["guess"])
}

func TestParseResponseJSONEmbeddedInProse(t *testing.T) {
	raw := `I think the best play is {"action": "drop", "column": 5} because it blocks.`
	parsed, err := ParseResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "drop", parsed.ActionType)
	assert.Equal(t, float64(5), parsed.Fields["column"])
}

func TestParseResponseActionObject(t *testing.T) {
	parsed, err := ParseResponse(`{"action": {"type": "drop", "column": 2}, "reasoning": "edge"}`)
	require.NoError(t, err)
	assert.Equal(t, "drop", parsed.ActionType)
	assert.Equal(t, float64(2), parsed.Fields["column"])
	assert.Equal(t, "edge", parsed.Reasoning)
}

func TestParseResponseNestedBracesInStrings(t *testing.T) {
	parsed, err := ParseResponse(`{"action": "guess", "guess": "print {\"a\": 1}"}`)
	require.NoError(t, err)
	assert.Equal(t, `print {"a": 1}`, parsed.Fields["guess"])
}

func TestParseResponseErrors(t *testing.T) {
	cases := map[string]string{
		"no json":        "I refuse to answer.",
		"no action":      `{"confidence": 1}`,
		"unterminated":   `{"action": "drop"`,
		"untyped object": `{"action": {"column": 3}}`,
	}
	for name, raw := range cases {
		_, err := ParseResponse(raw)
		assert.Error(t, err, name)
	}
}
