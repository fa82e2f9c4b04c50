package domain

// ArticleResult is the outcome of the article pipeline. Err is set when a stage failed;
// whatever was produced before the failure is still populated.
type ArticleResult struct {
	Article Article
	Tickers []TickerRecord
	Prices  map[string]PriceSeries
	Err     error
}

// TickerSymbols returns the ticker symbols in result order.
func (r ArticleResult) TickerSymbols() []string {
	out := make([]string, 0, len(r.Tickers))
	for _, t := range r.Tickers {
		out = append(out, t.Ticker)
	}
	return out
}

// QueryResult is the outcome of the question-answering pipeline.
type QueryResult struct {
	Query    string
	Answer   string
	Contexts []Match
	Err      error
}
