package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/contact-enricher/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:        "abc12345-6789-0000-0000-000000000000",
			Status:    model.RunStatusComplete,
			Request:   model.EnrichmentRequest{ContactInfo: model.ContactInfo{Name: "Ada Lovelace", Company: "Analytical Engines"}},
			Response:  &model.EnrichmentResponse{EnrichmentSummary: model.EnrichmentSummary{OverallConfidence: 87}},
			CreatedAt: now,
			UpdatedAt: now.Add(12 * time.Second),
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Status:    model.RunStatusFailed,
			Request:   model.EnrichmentRequest{ContactInfo: model.ContactInfo{Email: "grace@navy.mil"}},
			Error:     "llm invocation failed",
			CreatedAt: now.Add(-1 * time.Hour),
			UpdatedAt: now.Add(-1 * time.Hour),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "CONTACT")
	assert.Contains(t, output, "abc12345")
	assert.NotContains(t, output, "abc12345-6789")
	assert.Contains(t, output, "Ada Lovelace (Analytical En...")
	assert.Contains(t, output, "87")
	assert.Contains(t, output, "12s")
	assert.Contains(t, output, "grace@navy.mil")
	assert.Contains(t, output, "failed")
	assert.Contains(t, output, "2025-06-15 10:30")
}

func TestContactLabel(t *testing.T) {
	tests := []struct {
		name string
		in   model.ContactInfo
		want string
	}{
		{"name only", model.ContactInfo{Name: "Ada"}, "Ada"},
		{"name and company", model.ContactInfo{Name: "Ada", Company: "AE"}, "Ada (AE)"},
		{"email", model.ContactInfo{Email: "ada@example.com"}, "ada@example.com"},
		{"company and title", model.ContactInfo{Company: "AE", Title: "CTO"}, "AE"},
		{"long", model.ContactInfo{Name: "Augusta Ada King, Countess of Lovelace"}, "Augusta Ada King, Countess ..."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, contactLabel(tt.in), tt.name)
	}
}

func TestComputeRunStats(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	runs := []model.Run{
		{
			Status:    model.RunStatusComplete,
			Response:  &model.EnrichmentResponse{EnrichmentSummary: model.EnrichmentSummary{OverallConfidence: 90}, Usage: model.Usage{CostUSD: 0.002}},
			CreatedAt: now,
			UpdatedAt: now.Add(10 * time.Second),
		},
		{
			Status:    model.RunStatusComplete,
			Response:  &model.EnrichmentResponse{RawResponse: "not json", Usage: model.Usage{CostUSD: 0.001}},
			CreatedAt: now,
			UpdatedAt: now.Add(20 * time.Second),
		},
		{Status: model.RunStatusFailed, Error: "boom"},
		{Status: model.RunStatusRunning},
	}

	s := computeRunStats(runs)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Complete)
	assert.Equal(t, 1, s.Malformed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Running)
	assert.InDelta(t, 45.0, s.AvgConfidence, 0.001)
	assert.InDelta(t, 15.0, s.AvgDurSecs, 0.001)
	assert.InDelta(t, 0.003, s.TotalCostUSD, 1e-9)
}

func TestComputeRunStats_Empty(t *testing.T) {
	s := computeRunStats(nil)
	assert.Equal(t, runStats{}, s)

	var buf bytes.Buffer
	formatRunStats(&buf, s)
	assert.Contains(t, buf.String(), "Total runs:")
	assert.NotContains(t, buf.String(), "Avg confidence")
}

func TestFormatRunStats(t *testing.T) {
	var buf bytes.Buffer
	formatRunStats(&buf, runStats{Total: 3, Complete: 2, Failed: 1, AvgConfidence: 72.5, AvgDurSecs: 8.3, TotalCostUSD: 0.0125})

	out := buf.String()
	assert.Contains(t, out, "72.5")
	assert.Contains(t, out, "8.3s")
	assert.Contains(t, out, "$0.0125")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789"))
	assert.Equal(t, "short", truncateID("short"))
}
