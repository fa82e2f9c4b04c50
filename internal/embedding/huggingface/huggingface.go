package huggingface

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client embeds text with a sentence-transformers model served by the
// Hugging Face feature-extraction pipeline.
type Client struct {
	http      *resty.Client
	apiKeyEnv string
	model     string
	dimension atomic.Int64
}

// Config configures the Hugging Face embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	// Timeout of zero leaves requests unbounded.
	Timeout time.Duration
}

// NewClient creates a new embeddings client. The API key is read from the
// environment on every request; public models work without one.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api-inference.huggingface.co"
	}
	if cfg.Model == "" {
		cfg.Model = "sentence-transformers/all-mpnet-base-v2"
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &Client{http: client, apiKeyEnv: cfg.APIKeyEnv, model: cfg.Model}
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "huggingface:" + c.model }

// Dimension returns the vector size seen on the first successful embed, or 0.
func (c *Client) Dimension() int { return int(c.dimension.Load()) }

// Embed returns the embedding vector for text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("huggingface: empty input")
	}
	req := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"inputs":  text,
			"options": map[string]any{"wait_for_model": true},
		})
	if c.apiKeyEnv != "" {
		if key := os.Getenv(c.apiKeyEnv); key != "" {
			req.SetAuthToken(key)
		}
	}
	resp, err := req.Post("/pipeline/feature-extraction/" + c.model)
	if err != nil {
		return nil, fmt.Errorf("huggingface embeddings: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("huggingface embeddings failed: %s: %s", resp.Status(), errorMessage(resp.Body()))
	}
	v, err := decodeVector(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("huggingface embeddings: %w", err)
	}
	c.dimension.CompareAndSwap(0, int64(len(v)))
	return v, nil
}

// decodeVector accepts a flat vector or a single-row matrix.
func decodeVector(payload []byte) ([]float32, error) {
	var flat []float32
	if err := json.Unmarshal(payload, &flat); err == nil {
		if len(flat) == 0 {
			return nil, errors.New("empty embedding")
		}
		return flat, nil
	}
	var rows [][]float32
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, fmt.Errorf("decode embedding: %w", err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.New("empty embedding")
	}
	return rows[0], nil
}

func errorMessage(body []byte) string {
	var out struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &out); err == nil && out.Error != "" {
		return out.Error
	}
	return strings.TrimSpace(string(body))
}
