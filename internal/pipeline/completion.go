package pipeline

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-enricher/internal/model"
)

// ParseLayer names the parse strategy that produced a result.
type ParseLayer string

const (
	LayerDirect    ParseLayer = "direct"
	LayerBraces    ParseLayer = "braces"
	LayerPattern   ParseLayer = "pattern"
	LayerMalformed ParseLayer = "malformed"
)

// objectPattern matches the shortest "{ ... }" span whose closing brace
// starts a line.
var objectPattern = regexp.MustCompile(`(?s)\{.*?\n\}`)

// ParseCompletion extracts the enrichment object from a chat completion.
// It tries, in order: the whole text, the brace-balanced line range starting
// at the first line that begins with "{", and a pattern match ending at a
// line-initial "}". Braces inside JSON strings are counted like any other,
// so a string containing an unbalanced brace can defeat the second layer.
// When every layer fails the error wraps ErrMalformedCompletion.
func ParseCompletion(raw string) (*model.EnrichmentResult, ParseLayer, error) {
	if obj, ok := decodeObject(raw); ok {
		return toResult(obj), LayerDirect, nil
	}

	if candidate, ok := braceSpan(raw); ok {
		if obj, ok := decodeObject(candidate); ok {
			return toResult(obj), LayerBraces, nil
		}
	}

	if m := objectPattern.FindString(raw); m != "" {
		if obj, ok := decodeObject(m); ok {
			return toResult(obj), LayerPattern, nil
		}
	}

	return nil, LayerMalformed, eris.Wrapf(ErrMalformedCompletion, "no JSON object in %d bytes of completion", len(raw))
}

// braceSpan returns the lines from the first "{"-prefixed line through the
// line where brace depth returns to zero.
func braceSpan(raw string) (string, bool) {
	lines := strings.Split(raw, "\n")
	start := -1
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "{") {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}

	depth := 0
	for i := start; i < len(lines); i++ {
		for _, ch := range lines[i] {
			switch ch {
			case '{':
				depth++
			case '}':
				depth--
			}
		}
		if depth <= 0 {
			return strings.Join(lines[start:i+1], "\n"), true
		}
	}
	return "", false
}

func decodeObject(s string) (map[string]any, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func toResult(obj map[string]any) *model.EnrichmentResult {
	asMap := func(key string) map[string]any {
		m, _ := obj[key].(map[string]any)
		return m
	}
	return &model.EnrichmentResult{
		EnrichedContact:  asMap("enrichedContact"),
		ConfidenceScores: asMap("confidenceScores"),
		Sources:          asMap("sources"),
	}
}
