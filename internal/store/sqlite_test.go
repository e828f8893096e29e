package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-enricher/internal/config"
	"github.com/sells-group/contact-enricher/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func adaRequest() model.EnrichmentRequest {
	return model.EnrichmentRequest{
		ContactInfo:      model.ContactInfo{Name: "Ada Lovelace", Company: "Analytical Engines"},
		OptimizationMode: model.ModeBalanced,
	}
}

func TestSQLite_CreateAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, adaRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, model.RunStatusRunning, got.Status)
	assert.Equal(t, "Ada Lovelace", got.Request.ContactInfo.Name)
	assert.Nil(t, got.Response)
	assert.Empty(t, got.Error)
}

func TestSQLite_CompleteRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, adaRequest())
	require.NoError(t, err)

	resp := &model.EnrichmentResponse{
		EnrichedContact:  map[string]any{"name": "Ada Lovelace"},
		ConfidenceScores: map[string]any{"company": float64(90)},
		EnrichmentSummary: model.EnrichmentSummary{
			FieldsEnriched:    []string{},
			FieldsNotFound:    []string{"bio"},
			OverallConfidence: 90,
		},
		Model: model.ModelInfo{ChatProvider: "anthropic", ChatModel: "claude-3-haiku-20240307"},
	}
	require.NoError(t, st.CompleteRun(ctx, run.ID, resp))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Response)
	assert.Equal(t, 90, got.Response.EnrichmentSummary.OverallConfidence)
	assert.Equal(t, "anthropic", got.Response.Model.ChatProvider)
}

func TestSQLite_FailRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, adaRequest())
	require.NoError(t, err)
	require.NoError(t, st.FailRun(ctx, run.ID, "llm invocation failed"))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "llm invocation failed", got.Error)
}

func TestSQLite_RunNotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	assert.ErrorIs(t, st.CompleteRun(ctx, "missing", &model.EnrichmentResponse{}), ErrRunNotFound)
	assert.ErrorIs(t, st.FailRun(ctx, "missing", "x"), ErrRunNotFound)
}

func TestSQLite_ListRuns(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	var ids []string
	for range 3 {
		run, err := st.CreateRun(ctx, adaRequest())
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}
	require.NoError(t, st.FailRun(ctx, ids[1], "boom"))

	all, err := st.ListRuns(ctx, model.RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	failed, err := st.ListRuns(ctx, model.RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, ids[1], failed[0].ID)

	page, err := st.ListRuns(ctx, model.RunFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := st.ListRuns(ctx, model.RunFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestSQLite_ListRunsEmpty(t *testing.T) {
	st := newTestSQLiteStore(t)

	runs, err := st.ListRuns(context.Background(), model.RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st, err := Open(ctx, config.StoreConfig{Driver: "none"})
	require.NoError(t, err)
	assert.Nil(t, st)

	_, err = Open(ctx, config.StoreConfig{Driver: "mysql"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")

	st, err = Open(ctx, config.StoreConfig{Driver: "sqlite", DatabaseURL: filepath.Join(t.TempDir(), "open.db")})
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	run, err := st.CreateRun(ctx, adaRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
}
