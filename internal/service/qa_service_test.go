package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/rs/zerolog"

	"stockfinder/internal/domain"
	"stockfinder/internal/llm"
)

type fakeEmbedder struct {
	got []string
	err error
}

func (f *fakeEmbedder) Name() string   { return "fake" }
func (f *fakeEmbedder) Dimension() int { return 3 }
func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.got = append(f.got, text)
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

type fakeStore struct {
	matches   []domain.Match
	err       error
	topK      int
	namespace string
}

func (f *fakeStore) Query(_ context.Context, _ []float32, topK int, namespace string) ([]domain.Match, error) {
	f.topK, f.namespace = topK, namespace
	return f.matches, f.err
}

type fakeCompleter struct {
	answer string
	err    error
	system string
	user   string
	calls  int
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	f.calls++
	f.system, f.user = system, user
	return f.answer, f.err
}

func TestAugmentedPromptFormat(t *testing.T) {
	got := AugmentedPrompt([]string{"Apple makes phones.", "Microsoft sells software."}, "phone makers?")

	want := "<CONTEXT>\nApple makes phones.\n\n-------\n\nMicrosoft sells software.\n-------\n</CONTEXT>\n\n\n\nMY QUESTION:\nphone makers?"
	assert.Equal(t, want, got)
}

func TestAugmentedPromptNoContexts(t *testing.T) {
	got := AugmentedPrompt(nil, "anything")

	assert.Equal(t, "<CONTEXT>\n\n-------\n</CONTEXT>\n\n\n\nMY QUESTION:\nanything", got)
}

func TestAnswerKeepsRetrievalOrder(t *testing.T) {
	emb := &fakeEmbedder{}
	store := &fakeStore{matches: []domain.Match{
		{ID: "NVDA", Score: 0.92, Text: "NVIDIA designs GPUs."},
		{ID: "AMD", Score: 0.88, Text: "AMD designs CPUs and GPUs."},
		{ID: "INTC", Score: 0.71, Text: "Intel manufactures chips."},
	}}
	comp := &fakeCompleter{answer: "NVDA, AMD and INTC."}
	svc := NewQAService(emb, store, comp, "stock-descriptions", 10, zerolog.Nop())

	res, err := svc.Answer(context.Background(), "What are some companies that manufacture computer chips?")

	assert.Equal(t, nil, err)
	assert.Equal(t, "NVDA, AMD and INTC.", res.Answer)
	assert.Equal(t, 3, len(res.Contexts))
	assert.Equal(t, []string{"What are some companies that manufacture computer chips?"}, emb.got)
	assert.Equal(t, 10, store.topK)
	assert.Equal(t, "stock-descriptions", store.namespace)
	assert.Equal(t, llm.AnswerSystemPrompt, comp.system)
	assert.Equal(t, AugmentedPrompt([]string{
		"NVIDIA designs GPUs.",
		"AMD designs CPUs and GPUs.",
		"Intel manufactures chips.",
	}, "What are some companies that manufacture computer chips?"), comp.user)
}

func TestAnswerDefaultsTopK(t *testing.T) {
	store := &fakeStore{}
	svc := NewQAService(&fakeEmbedder{}, store, &fakeCompleter{answer: "ok"}, "ns", 0, zerolog.Nop())

	_, err := svc.Answer(context.Background(), "q")

	assert.Equal(t, nil, err)
	assert.Equal(t, DefaultTopK, store.topK)
}

func TestAnswerRejectsEmptyQuery(t *testing.T) {
	emb := &fakeEmbedder{}
	svc := NewQAService(emb, &fakeStore{}, &fakeCompleter{}, "ns", 10, zerolog.Nop())

	_, err := svc.Answer(context.Background(), "   ")

	assert.NotEqual(t, nil, err)
	assert.Equal(t, 0, len(emb.got))
}

func TestAnswerErrors(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name  string
		emb   *fakeEmbedder
		store *fakeStore
		comp  *fakeCompleter
	}{
		{"embedder", &fakeEmbedder{err: boom}, &fakeStore{}, &fakeCompleter{answer: "x"}},
		{"store", &fakeEmbedder{}, &fakeStore{err: boom}, &fakeCompleter{answer: "x"}},
		{"completion", &fakeEmbedder{}, &fakeStore{}, &fakeCompleter{err: boom}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewQAService(tc.emb, tc.store, tc.comp, "ns", 10, zerolog.Nop())

			_, err := svc.Answer(context.Background(), "q")

			assert.Equal(t, true, errors.Is(err, boom))
		})
	}
}

func TestAnswerEmptyCompletionIsError(t *testing.T) {
	svc := NewQAService(&fakeEmbedder{}, &fakeStore{}, &fakeCompleter{answer: "  \n"}, "ns", 10, zerolog.Nop())

	res, err := svc.Answer(context.Background(), "q")

	assert.NotEqual(t, nil, err)
	assert.Equal(t, "", res.Answer)
}

func TestAnswerMissingKeySurfaces(t *testing.T) {
	svc := NewQAService(&fakeEmbedder{}, &fakeStore{err: domain.ErrMissingAPIKey}, &fakeCompleter{}, "ns", 10, zerolog.Nop())

	_, err := svc.Answer(context.Background(), "q")

	assert.Equal(t, true, errors.Is(err, domain.ErrMissingAPIKey))
}
