package embedding

import (
	"fmt"
	"time"

	"stockfinder/internal/config"
	"stockfinder/internal/domain"
	"stockfinder/internal/embedding/huggingface"
	"stockfinder/internal/embedding/openai"
	"stockfinder/internal/embedding/tfidf"
)

// Embedder converts free text into a numeric vector representation.
type Embedder = domain.Embedder

// Fitter is implemented by embedders that must see the indexed corpus first.
type Fitter interface {
	Fit(corpus []string) error
}

// New builds the embedder selected by cfg.Type.
func New(cfg config.EmbedderConfig) (Embedder, error) {
	switch cfg.Type {
	case "huggingface", "":
		return huggingface.NewClient(huggingface.Config{
			BaseURL:   cfg.HuggingFace.BaseURL,
			APIKeyEnv: cfg.HuggingFace.APIKeyEnv,
			Model:     cfg.HuggingFace.Model,
			Timeout:   time.Duration(cfg.HuggingFace.TimeoutSecs) * time.Second,
		}), nil
	case "openai":
		return openai.NewClient(openai.Config{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKeyEnv: cfg.OpenAI.APIKeyEnv,
			Model:     cfg.OpenAI.Model,
			Timeout:   time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
		}), nil
	case "tfidf":
		return tfidf.NewEmbedder(), nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
}
