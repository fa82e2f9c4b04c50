package openai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/assert/v2"

	"stockfinder/internal/domain"
)

func TestEmbedOpenAIShape(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Write([]byte(`{"data":[{"embedding":[0.5,0.25]}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKeyEnv: "TEST_OPENAI_KEY"})
	v, err := c.Embed(context.Background(), "semiconductors")

	assert.Equal(t, nil, err)
	assert.Equal(t, []float32{0.5, 0.25}, v)
	assert.Equal(t, 2, c.Dimension())
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "/embeddings", gotPath)
}

func TestEmbedOllamaShape(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "ollama")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"embedding":[1,2,3]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKeyEnv: "TEST_OPENAI_KEY"})
	v, err := c.Embed(context.Background(), "retail")

	assert.Equal(t, nil, err)
	assert.Equal(t, 3, len(v))
}

func TestEmbedMissingKeyFailsOnFirstCall(t *testing.T) {
	c := NewClient(Config{APIKeyEnv: "TEST_OPENAI_KEY_UNSET"})

	_, err := c.Embed(context.Background(), "energy")

	assert.Equal(t, true, errors.Is(err, domain.ErrMissingAPIKey))
}

func TestEmbedNoRetryOnServerError(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKeyEnv: "TEST_OPENAI_KEY"})
	_, err := c.Embed(context.Background(), "energy")

	assert.NotEqual(t, nil, err)
	assert.Equal(t, 1, calls)
}

func TestEmbedEmptyPayload(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKeyEnv: "TEST_OPENAI_KEY"})
	_, err := c.Embed(context.Background(), "energy")

	assert.NotEqual(t, nil, err)
}
