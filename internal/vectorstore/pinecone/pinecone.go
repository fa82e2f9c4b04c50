package pinecone

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"stockfinder/internal/domain"
	"stockfinder/internal/vectorstore"
)

const apiVersion = "2024-07"

// Storage is a minimal REST client to a Pinecone serverless index.
// The data-plane host is resolved from the control plane on first use unless configured.
type Storage struct {
	http       *resty.Client
	controlURL string
	index      string
	apiKeyEnv  string

	mu   sync.Mutex
	host string
}

type Config struct {
	ControlURL string
	Index      string
	// Host skips the control-plane lookup when set.
	Host      string
	APIKeyEnv string
	Timeout   time.Duration
}

func NewStorage(cfg Config) *Storage {
	if cfg.ControlURL == "" {
		cfg.ControlURL = "https://api.pinecone.io"
	}
	client := resty.New().
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Pinecone-API-Version", apiVersion)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &Storage{
		http:       client,
		controlURL: strings.TrimRight(cfg.ControlURL, "/"),
		index:      cfg.Index,
		apiKeyEnv:  cfg.APIKeyEnv,
		host:       normalizeHost(cfg.Host),
	}
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	Namespace       string    `json:"namespace"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
	Namespace string `json:"namespace"`
}

func (s *Storage) Query(ctx context.Context, vector []float32, topK int, namespace string) ([]domain.Match, error) {
	if err := vectorstore.CheckQuery(vector, topK); err != nil {
		return nil, err
	}
	key := os.Getenv(s.apiKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("pinecone: %w (env %s)", domain.ErrMissingAPIKey, s.apiKeyEnv)
	}
	host, err := s.resolveHost(ctx, key)
	if err != nil {
		return nil, err
	}
	var out queryResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetHeader("Api-Key", key).
		SetBody(queryRequest{Vector: vector, TopK: topK, Namespace: namespace, IncludeMetadata: true}).
		SetResult(&out).
		Post(host + "/query")
	if err != nil {
		return nil, fmt.Errorf("pinecone query: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("pinecone query failed: %s", resp.Status())
	}
	matches := make([]domain.Match, 0, len(out.Matches))
	for _, m := range out.Matches {
		match := domain.Match{ID: m.ID, Score: m.Score, Metadata: make(map[string]string, len(m.Metadata))}
		for k, v := range m.Metadata {
			match.Metadata[k] = fmt.Sprint(v)
		}
		match.Text = match.Metadata["text"]
		matches = append(matches, match)
	}
	return vectorstore.Rank(matches, topK), nil
}

func (s *Storage) resolveHost(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.host != "" {
		return s.host, nil
	}
	var out struct {
		Host string `json:"host"`
	}
	resp, err := s.http.R().
		SetContext(ctx).
		SetHeader("Api-Key", key).
		SetResult(&out).
		Get(fmt.Sprintf("%s/indexes/%s", s.controlURL, s.index))
	if err != nil {
		return "", fmt.Errorf("pinecone describe index: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("pinecone describe index %s failed: %s", s.index, resp.Status())
	}
	if out.Host == "" {
		return "", fmt.Errorf("pinecone index %s has no host", s.index)
	}
	s.host = normalizeHost(out.Host)
	return s.host, nil
}

func normalizeHost(h string) string {
	if h == "" {
		return ""
	}
	if !strings.Contains(h, "://") {
		h = "https://" + h
	}
	return strings.TrimRight(h, "/")
}
