package domain

import (
	"context"
	"errors"
	"time"
)

// ErrMissingAPIKey is returned by a client when the credential it needs is not configured.
// Credentials are checked on first use, not at startup.
var ErrMissingAPIKey = errors.New("missing API key")

// Article is a fetched news article.
type Article struct {
	URL     string
	Text    string
	Excerpt string
}

// TickerRecord is a ticker implicated by an article together with the reason.
type TickerRecord struct {
	Ticker      string `json:"ticker" validate:"required,ticker"`
	Explanation string `json:"explanation" validate:"required"`
}

// Match is a stored description vector returned by a similarity query.
type Match struct {
	ID       string
	Score    float64
	Text     string
	Metadata map[string]string
}

// PricePoint is a single daily close.
type PricePoint struct {
	Date  time.Time
	Close float64
}

// PriceSeries holds the trailing daily closes for one ticker, oldest first.
type PriceSeries struct {
	Ticker string
	Points []PricePoint
}

// Closes returns the closing prices in date order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorStore runs similarity queries against a namespaced index.
type VectorStore interface {
	Query(ctx context.Context, vector []float32, topK int, namespace string) ([]Match, error)
}

// ArticleFetcher downloads a page and returns the text of its paragraphs.
type ArticleFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// TickerExtractor asks a language model for the tickers implicated by an article.
type TickerExtractor interface {
	Extract(ctx context.Context, articleText string) ([]TickerRecord, error)
}

// PriceFetcher loads trailing daily closes keyed by ticker.
type PriceFetcher interface {
	FetchPrices(ctx context.Context, tickers []string) (map[string]PriceSeries, error)
}

// Completer sends a system instruction and a user message to a chat model.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
