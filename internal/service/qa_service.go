package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"stockfinder/internal/domain"
	"stockfinder/internal/llm"
)

const (
	contextSeparator = "\n\n-------\n\n"
	// DefaultTopK is the number of stock descriptions put in front of the model.
	DefaultTopK = 10
)

// QAService answers free-text questions grounded in the stock description index.
type QAService struct {
	embedder  domain.Embedder
	store     domain.VectorStore
	completer domain.Completer
	namespace string
	topK      int
	log       zerolog.Logger
}

func NewQAService(embedder domain.Embedder, store domain.VectorStore, completer domain.Completer, namespace string, topK int, log zerolog.Logger) *QAService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &QAService{embedder: embedder, store: store, completer: completer, namespace: namespace, topK: topK, log: log}
}

// Answer embeds query, retrieves the closest descriptions and asks the model.
// The returned result carries the contexts even when the completion fails.
func (s *QAService) Answer(ctx context.Context, query string) (domain.QueryResult, error) {
	res := domain.QueryResult{Query: query}
	if strings.TrimSpace(query) == "" {
		return res, errors.New("query is empty")
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return res, fmt.Errorf("embed query: %w", err)
	}
	matches, err := s.store.Query(ctx, vec, s.topK, s.namespace)
	if err != nil {
		return res, fmt.Errorf("vector query: %w", err)
	}
	res.Contexts = matches
	s.log.Debug().Str("namespace", s.namespace).Int("contexts", len(matches)).Msg("retrieved contexts")

	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		texts = append(texts, m.Text)
	}
	answer, err := s.completer.Complete(ctx, llm.AnswerSystemPrompt, AugmentedPrompt(texts, query))
	if err != nil {
		return res, fmt.Errorf("completion: %w", err)
	}
	if strings.TrimSpace(answer) == "" {
		return res, errors.New("completion: empty answer")
	}
	res.Answer = answer
	return res, nil
}

// AugmentedPrompt wraps contexts (most relevant first) in a labeled block followed by the question.
func AugmentedPrompt(contexts []string, query string) string {
	var b strings.Builder
	b.WriteString("<CONTEXT>\n")
	b.WriteString(strings.Join(contexts, contextSeparator))
	b.WriteString("\n-------\n</CONTEXT>\n\n\n\nMY QUESTION:\n")
	b.WriteString(query)
	return b.String()
}
