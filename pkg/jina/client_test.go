package jina

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastClient(key string, opts ...Option) Client {
	return NewClient(key, append([]Option{WithBackoff(time.Millisecond)}, opts...)...)
}

func TestRead_Success(t *testing.T) {
	t.Parallel()

	want := ReadResponse{
		Code: 200,
		Data: ReadData{
			Title:   "Ada Lovelace | LinkedIn",
			URL:     "https://www.linkedin.com/in/ada",
			Content: "Ada Lovelace. Analyst at Analytical Engines.",
			Usage:   ReadUsage{Tokens: 120},
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "text", r.Header.Get("X-Return-Format"))
		assert.Empty(t, r.Header.Get("X-Remove-Selector"))
		assert.Equal(t, "/https://www.linkedin.com/in/ada", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(want)
	}))
	defer srv.Close()

	got, err := fastClient("test-key", WithBaseURL(srv.URL)).Read(context.Background(), "https://www.linkedin.com/in/ada")

	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestRead_Options(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "markdown", r.Header.Get("X-Return-Format"))
		assert.Equal(t, "nav,footer", r.Header.Get("X-Remove-Selector"))
		assert.Equal(t, "5", r.Header.Get("X-Timeout"))
		w.Write([]byte(`{"code":200,"data":{"content":"ok"}}`))
	}))
	defer srv.Close()

	got, err := fastClient("k", WithBaseURL(srv.URL)).Read(context.Background(), "https://github.com/ada",
		WithFormat("markdown"),
		WithRemoveSelector("nav,footer"),
		WithReadTimeout(5*time.Second),
	)
	require.NoError(t, err)
	assert.Equal(t, "ok", got.Data.Content)
}

func TestRead_NoKeyOmitsAuthorization(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"code":200,"data":{}}`))
	}))
	defer srv.Close()

	_, err := fastClient("", WithBaseURL(srv.URL)).Read(context.Background(), "https://about.me/ada")
	require.NoError(t, err)
}

func TestRead_RetriesThenFails(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("down"))
	}))
	defer srv.Close()

	_, err := fastClient("k", WithBaseURL(srv.URL), WithMaxAttempts(3)).Read(context.Background(), "https://github.com/ada")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, int32(3), calls.Load())
}

func TestRead_RetryRecovers(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"code":200,"data":{"content":"second time"}}`))
	}))
	defer srv.Close()

	got, err := fastClient("k", WithBaseURL(srv.URL)).Read(context.Background(), "https://github.com/ada")
	require.NoError(t, err)
	assert.Equal(t, "second time", got.Data.Content)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRead_PermanentErrorNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := fastClient("k", WithBaseURL(srv.URL)).Read(context.Background(), "https://github.com/ada")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Equal(t, int32(1), calls.Load())
}

func TestRead_MalformedJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{broken`))
	}))
	defer srv.Close()

	_, err := fastClient("k", WithBaseURL(srv.URL)).Read(context.Background(), "https://github.com/ada")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestRead_ContextCancelled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient("k", WithBaseURL(srv.URL)).Read(ctx, "https://github.com/ada")
	require.Error(t, err)
}

func TestSearch_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `/"Ada Lovelace" GitHub`, r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		w.Write([]byte(`{"code":200,"data":[
			{"title":"ada (Ada)","url":"https://github.com/ada","description":"Ada's repos","content":"long page"},
			{"title":"Ada","url":"https://example.com","content":"only content"}
		]}`))
	}))
	defer srv.Close()

	got, err := fastClient("k", WithSearchBaseURL(srv.URL)).Search(context.Background(), `"Ada Lovelace" GitHub`)
	require.NoError(t, err)
	require.Len(t, got.Data, 2)
	assert.Equal(t, "Ada's repos", got.Data[0].Snippet())
	assert.Equal(t, "only content", got.Data[1].Snippet())
}

func TestSearch_SiteFilter(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "linkedin.com", r.URL.Query().Get("site"))
		w.Write([]byte(`{"code":200,"data":[]}`))
	}))
	defer srv.Close()

	_, err := fastClient("k", WithSearchBaseURL(srv.URL)).Search(context.Background(), "ada", WithSiteFilter("linkedin.com"))
	require.NoError(t, err)
}

func TestSearch_NoResults422(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	got, err := fastClient("k", WithSearchBaseURL(srv.URL)).Search(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, 422, got.Code)
	assert.Empty(t, got.Data)
}

func TestSearch_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad"))
	}))
	defer srv.Close()

	_, err := fastClient("k", WithSearchBaseURL(srv.URL)).Search(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
