package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-enricher/internal/resilience"
	"github.com/sells-group/contact-enricher/pkg/jina"
	"github.com/sells-group/contact-enricher/pkg/searxng"
)

func TestSearxngBackend(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `"Ada Lovelace" "Analytical Engines"`, r.URL.Query().Get("q"))
		w.Write([]byte(`{"query":"q","results":[
			{"title":"A","url":"https://a.example","content":"a","engine":"google"},
			{"title":"B","url":"https://b.example","content":"b","engine":"bing"},
			{"title":"C","url":"https://c.example","content":"c","engine":"duckduckgo"},
			{"title":"D","url":"https://d.example","content":"d","engine":"google"}
		]}`))
	}))
	defer srv.Close()

	b := NewSearxngBackend(searxng.NewClient(srv.URL))
	assert.Equal(t, "searxng", b.Name())

	got, err := b.Search(context.Background(), `"Ada Lovelace" "Analytical Engines"`, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].Title)
	assert.Equal(t, "https://b.example", got[1].URL)
	assert.Equal(t, "c", got[2].Content)
	assert.Equal(t, "duckduckgo", got[2].Engine)
	assert.Nil(t, got[0].FullContent)
	assert.Nil(t, got[0].SemanticScore)
}

func TestSearxngBackend_TransientStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewSearxngBackend(searxng.NewClient(srv.URL)).Search(context.Background(), "x", 3)
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestSearxngBackend_PermanentStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewSearxngBackend(searxng.NewClient(srv.URL)).Search(context.Background(), "x", 3)
	require.Error(t, err)
	assert.False(t, resilience.IsTransient(err))
}

func TestJinaBackend(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":200,"data":[
			{"title":"ada","url":"https://github.com/ada","description":"Ada's repos","content":"long"},
			{"title":"Ada","url":"https://about.me/ada","content":"bio"}
		]}`))
	}))
	defer srv.Close()

	b := NewJinaBackend(jina.NewClient("k", jina.WithSearchBaseURL(srv.URL)))
	assert.Equal(t, "jina", b.Name())

	got, err := b.Search(context.Background(), "ada", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ada's repos", got[0].Content)
	assert.Equal(t, "jina", got[0].Engine)
}
