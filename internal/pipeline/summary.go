package pipeline

import (
	"encoding/json"
	"math"
	"sort"
	"strings"

	"github.com/sells-group/contact-enricher/internal/model"
)

// Summarize compares the original contact with the parsed result. A nil
// result summarizes as nothing enriched, every field not found, and zero
// confidence.
func Summarize(original model.ContactInfo, result *model.EnrichmentResult) model.EnrichmentSummary {
	var enriched, scores map[string]any
	if result != nil {
		enriched, scores = result.EnrichedContact, result.ConfidenceScores
	}

	have := make(map[string]bool)
	for _, f := range original.PresentFields() {
		have[f] = true
	}

	found := make(map[string]bool, len(enriched))
	for k, v := range enriched {
		if present(v) {
			found[k] = true
		}
	}

	summary := model.EnrichmentSummary{
		FieldsEnriched:    []string{},
		FieldsNotFound:    []string{},
		OverallConfidence: overallConfidence(scores),
	}

	// Canonical fields first, in canonical order, then any extra keys the
	// model returned, sorted.
	for _, f := range model.CanonicalFields {
		if found[f] && !have[f] {
			summary.FieldsEnriched = append(summary.FieldsEnriched, f)
		}
		if !found[f] {
			summary.FieldsNotFound = append(summary.FieldsNotFound, f)
		}
	}
	summary.FieldsEnriched = append(summary.FieldsEnriched, extraKeys(found, have)...)
	return summary
}

func extraKeys(found, have map[string]bool) []string {
	canonical := make(map[string]bool, len(model.CanonicalFields))
	for _, f := range model.CanonicalFields {
		canonical[f] = true
	}
	var extra []string
	for k := range found {
		if !canonical[k] && !have[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return extra
}

// present treats nil and whitespace-only strings as absent. Arrays and
// objects are present when at least one element or member is.
func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case []any:
		for _, e := range t {
			if present(e) {
				return true
			}
		}
		return false
	case map[string]any:
		for _, e := range t {
			if present(e) {
				return true
			}
		}
		return false
	}
	return true
}

// overallConfidence is the rounded mean of every numeric leaf, looking one
// level into nested objects and arrays. No numeric leaves yields 0.
func overallConfidence(scores map[string]any) int {
	var sum float64
	var n int
	add := func(v any) {
		if f, ok := number(v); ok {
			sum += f
			n++
		}
	}
	for _, v := range scores {
		switch t := v.(type) {
		case map[string]any:
			for _, inner := range t {
				add(inner)
			}
		case []any:
			for _, inner := range t {
				add(inner)
			}
		default:
			add(v)
		}
	}
	if n == 0 {
		return 0
	}
	return int(math.Floor(sum/float64(n) + 0.5))
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t) && !math.IsInf(t, 0)
	case int:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}
