package qdrant

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"stockfinder/internal/domain"
	"stockfinder/internal/vectorstore"
)

// Storage is a minimal REST client to Qdrant.
// Namespaces are a "namespace" payload field filtered at query time.
type Storage struct {
	http       *resty.Client
	apiKeyEnv  string
	collection string
}

type Config struct {
	URL        string
	APIKeyEnv  string
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config) *Storage {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &Storage{http: client, apiKeyEnv: cfg.APIKeyEnv, collection: cfg.Collection}
}

type searchResponse struct {
	Result []struct {
		ID      any            `json:"id"`
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

func (s *Storage) Query(ctx context.Context, vector []float32, topK int, namespace string) ([]domain.Match, error) {
	if err := vectorstore.CheckQuery(vector, topK); err != nil {
		return nil, err
	}
	body := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	if namespace != "" {
		body["filter"] = map[string]any{
			"must": []map[string]any{
				{"key": "namespace", "match": map[string]any{"value": namespace}},
			},
		}
	}
	req := s.http.R().SetContext(ctx).SetBody(body)
	// local deployments run without a key
	if key := os.Getenv(s.apiKeyEnv); key != "" {
		req.SetHeader("api-key", key)
	}
	var out searchResponse
	resp, err := req.SetResult(&out).Post(fmt.Sprintf("/collections/%s/points/search", s.collection))
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("qdrant search in %s failed: %s", s.collection, resp.Status())
	}
	matches := make([]domain.Match, 0, len(out.Result))
	for _, r := range out.Result {
		m := domain.Match{ID: fmt.Sprint(r.ID), Score: r.Score, Metadata: make(map[string]string, len(r.Payload))}
		for k, v := range r.Payload {
			m.Metadata[k] = fmt.Sprint(v)
		}
		m.Text = m.Metadata["text"]
		matches = append(matches, m)
	}
	return vectorstore.Rank(matches, topK), nil
}
