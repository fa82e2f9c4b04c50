package embedding

import (
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"

	"stockfinder/internal/config"
)

func TestNewSelectsBackend(t *testing.T) {
	hf, err := New(config.EmbedderConfig{Type: "huggingface", HuggingFace: config.HuggingFaceConfig{Model: "sentence-transformers/all-mpnet-base-v2"}})
	assert.Equal(t, nil, err)
	assert.Equal(t, true, strings.HasPrefix(hf.Name(), "huggingface:"))

	oa, err := New(config.EmbedderConfig{Type: "openai"})
	assert.Equal(t, nil, err)
	assert.Equal(t, true, strings.HasPrefix(oa.Name(), "openai:"))

	tf, err := New(config.EmbedderConfig{Type: "tfidf"})
	assert.Equal(t, nil, err)
	_, fits := tf.(Fitter)
	assert.Equal(t, true, fits)
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(config.EmbedderConfig{Type: "word2vec"})

	assert.NotEqual(t, nil, err)
}
