package vectorstore

import (
	"errors"
	"sort"

	"stockfinder/internal/domain"
)

// Storage runs similarity queries against a namespaced index.
type Storage = domain.VectorStore

// ErrInvalidQuery is returned when topK is not positive or the vector is empty.
var ErrInvalidQuery = errors.New("invalid vector query")

// CheckQuery validates the arguments shared by every backend.
func CheckQuery(vector []float32, topK int) error {
	if topK <= 0 {
		return errors.Join(ErrInvalidQuery, errors.New("top_k must be positive"))
	}
	if len(vector) == 0 {
		return errors.Join(ErrInvalidQuery, errors.New("empty query vector"))
	}
	return nil
}

// Rank orders matches by descending score and keeps at most topK of them.
// Backends already rank their results; this keeps the contract when one does not.
func Rank(matches []domain.Match, topK int) []domain.Match {
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if topK >= 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}
