package memory

import (
	"context"
	"errors"
	"math"
	"sync"

	"stockfinder/internal/domain"
	"stockfinder/internal/vectorstore"
)

// Item is a stored description vector.
type Item struct {
	ID       string
	Vector   []float32
	Text     string
	Metadata map[string]string
}

// Storage is a simple in-memory vector store using brute-force cosine similarity.
type Storage struct {
	mu         sync.RWMutex
	dimension  int
	namespaces map[string][]Item
}

// NewStorage creates an empty store. A dimension of zero is fixed by the first upsert.
func NewStorage(dimension int) *Storage {
	return &Storage{dimension: dimension, namespaces: make(map[string][]Item)}
}

// Upsert adds items to namespace, replacing any with the same ID.
func (s *Storage) Upsert(namespace string, items ...Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 && len(items) > 0 {
		s.dimension = len(items[0].Vector)
	}
	for _, it := range items {
		if len(it.Vector) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	existing := s.namespaces[namespace]
	for _, it := range items {
		replaced := false
		for i := range existing {
			if existing[i].ID == it.ID {
				existing[i] = it
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, it)
		}
	}
	s.namespaces[namespace] = existing
	return nil
}

func (s *Storage) Query(ctx context.Context, vector []float32, topK int, namespace string) ([]domain.Match, error) {
	if err := vectorstore.CheckQuery(vector, topK); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(vector) != s.dimension {
		return nil, errors.New("vector dimension mismatch")
	}
	items, ok := s.namespaces[namespace]
	if !ok {
		return nil, errors.New("namespace not found: " + namespace)
	}
	matches := make([]domain.Match, 0, len(items))
	for _, it := range items {
		matches = append(matches, domain.Match{
			ID:       it.ID,
			Score:    cosine(it.Vector, vector),
			Text:     it.Text,
			Metadata: it.Metadata,
		})
	}
	return vectorstore.Rank(matches, topK), nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
