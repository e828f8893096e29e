package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompletion_Direct(t *testing.T) {
	t.Parallel()

	raw := `{"enrichedContact":{"name":"Jane"},"confidenceScores":{"name":90},"sources":{"name":"https://example.com"}}`
	res, layer, err := ParseCompletion(raw)
	require.NoError(t, err)
	assert.Equal(t, LayerDirect, layer)
	assert.Equal(t, "Jane", res.EnrichedContact["name"])
	assert.Equal(t, float64(90), res.ConfidenceScores["name"])
	assert.Equal(t, "https://example.com", res.Sources["name"])
}

func TestParseCompletion_DirectWithSurroundingWhitespace(t *testing.T) {
	t.Parallel()

	_, layer, err := ParseCompletion("\n\n  {\"enrichedContact\":{}}  \n")
	require.NoError(t, err)
	assert.Equal(t, LayerDirect, layer)
}

func TestParseCompletion_ChattyResponse(t *testing.T) {
	t.Parallel()

	raw := "Here you go:\n{\n\"enrichedContact\": {\"name\": \"Jane\", \"company\": \"Acme\"},\n\"confidenceScores\": {\"company\": 80}\n}\nHope that helps!"
	res, layer, err := ParseCompletion(raw)
	require.NoError(t, err)
	assert.Equal(t, LayerBraces, layer)
	assert.Equal(t, "Acme", res.EnrichedContact["company"])
	assert.Equal(t, float64(80), res.ConfidenceScores["company"])
}

func TestParseCompletion_MarkdownFence(t *testing.T) {
	t.Parallel()

	raw := "```json\n{\n  \"enrichedContact\": {\n    \"title\": \"Analyst\"\n  }\n}\n```"
	res, layer, err := ParseCompletion(raw)
	require.NoError(t, err)
	assert.Equal(t, LayerBraces, layer)
	assert.Equal(t, "Analyst", res.EnrichedContact["title"])
}

func TestParseCompletion_SingleLineObjectAfterProse(t *testing.T) {
	t.Parallel()

	raw := "Result below.\n{\"enrichedContact\":{\"name\":\"Jane\"}}\nThanks"
	res, layer, err := ParseCompletion(raw)
	require.NoError(t, err)
	assert.Equal(t, LayerBraces, layer)
	assert.Equal(t, "Jane", res.EnrichedContact["name"])
}

// A brace inside a string value closes the counted span early; the pattern
// layer recovers because the real object ends on a line-initial brace.
func TestParseCompletion_StringBraceFallsThroughToPattern(t *testing.T) {
	t.Parallel()

	raw := "Sure:\n{\n  \"enrichedContact\": {\"bio\": \"ends with }\"}\n}\ndone"
	res, layer, err := ParseCompletion(raw)
	require.NoError(t, err)
	assert.Equal(t, LayerPattern, layer)
	assert.Equal(t, "ends with }", res.EnrichedContact["bio"])
}

// An unbalanced opening brace inside a string keeps the counted depth above
// zero, so only the pattern layer can find the object.
func TestParseCompletion_StringOpenBraceDefeatsCounting(t *testing.T) {
	t.Parallel()

	raw := "Here:\n{\n  \"enrichedContact\": {\"bio\": \"loves { braces\"},\n  \"confidenceScores\": {\"bio\": 40}\n}"
	res, layer, err := ParseCompletion(raw)
	require.NoError(t, err)
	assert.Equal(t, LayerPattern, layer)
	assert.Equal(t, "loves { braces", res.EnrichedContact["bio"])
	assert.Equal(t, float64(40), res.ConfidenceScores["bio"])
}

// Documents the blind spot: an object inline after prose with a brace in a
// string and no line-initial closing brace is not recoverable.
func TestParseCompletion_InlineObjectWithStringBraceIsMalformed(t *testing.T) {
	t.Parallel()

	raw := `Result: {"enrichedContact": {"bio": "}"}} trailing`
	_, layer, err := ParseCompletion(raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedCompletion)
	assert.Equal(t, LayerMalformed, layer)
}

func TestParseCompletion_Malformed(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"garbage":      "I could not find anything about this person.",
		"empty":        "",
		"array":        `["name", "company"]`,
		"string":       `"just text"`,
		"null":         "null",
		"unterminated": "Here:\n{\n\"enrichedContact\": {\n",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			res, layer, err := ParseCompletion(raw)
			assert.Nil(t, res)
			assert.Equal(t, LayerMalformed, layer)
			assert.ErrorIs(t, err, ErrMalformedCompletion)
		})
	}
}

func TestParseCompletion_NonObjectSections(t *testing.T) {
	t.Parallel()

	res, _, err := ParseCompletion(`{"enrichedContact":"Jane","confidenceScores":[1,2]}`)
	require.NoError(t, err)
	assert.Nil(t, res.EnrichedContact)
	assert.Nil(t, res.ConfidenceScores)
	assert.Nil(t, res.Sources)
}

func TestParseCompletion_ExtraKeysPassThrough(t *testing.T) {
	t.Parallel()

	res, _, err := ParseCompletion(`{"enrichedContact":{"name":"Jane","favoriteColor":"teal"}}`)
	require.NoError(t, err)
	assert.Equal(t, "teal", res.EnrichedContact["favoriteColor"])
}
