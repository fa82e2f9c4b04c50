package huggingface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestEmbedFlatVector(t *testing.T) {
	t.Setenv("TEST_HF_KEY", "hf-secret")
	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`[0.25, -0.5, 1]`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKeyEnv: "TEST_HF_KEY", Model: "sentence-transformers/all-mpnet-base-v2"})
	v, err := c.Embed(context.Background(), "electric vehicles")

	assert.Equal(t, nil, err)
	assert.Equal(t, []float32{0.25, -0.5, 1}, v)
	assert.Equal(t, 3, c.Dimension())
	assert.Equal(t, "/pipeline/feature-extraction/sentence-transformers/all-mpnet-base-v2", gotPath)
	assert.Equal(t, "Bearer hf-secret", gotAuth)
	assert.Equal(t, "electric vehicles", gotBody["inputs"])
}

func TestEmbedSingleRowMatrix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[0.1, 0.2]]`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	v, err := c.Embed(context.Background(), "chips")

	assert.Equal(t, nil, err)
	assert.Equal(t, []float32{0.1, 0.2}, v)
}

func TestEmbedWithoutKeySendsNoAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[1]`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKeyEnv: "TEST_HF_KEY_UNSET"})
	_, err := c.Embed(context.Background(), "banks")

	assert.Equal(t, nil, err)
	assert.Equal(t, "", gotAuth)
}

func TestEmbedServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"Model is currently loading"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	_, err := c.Embed(context.Background(), "oil")

	assert.NotEqual(t, nil, err)
	assert.MatchRegex(t, err.Error(), "currently loading")
	assert.Equal(t, 0, c.Dimension())
}

func TestEmbedRejectsEmptyInput(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:0"})

	_, err := c.Embed(context.Background(), "   ")

	assert.NotEqual(t, nil, err)
}
