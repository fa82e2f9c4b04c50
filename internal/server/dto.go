package server

import (
	"sort"
	"time"

	"stockfinder/internal/domain"
)

type ArticleRequest struct {
	URL string `json:"url"`
}

type QueryRequest struct {
	Query string `json:"query"`
}

type AnalyzeRequest struct {
	URL   string `json:"url"`
	Query string `json:"query"`
}

type TickerResponse struct {
	Ticker      string `json:"ticker"`
	Explanation string `json:"explanation"`
}

type PricePointResponse struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

type ArticleResponse struct {
	URL     string                          `json:"url"`
	Excerpt string                          `json:"excerpt"`
	Tickers []TickerResponse                `json:"tickers"`
	Prices  map[string][]PricePointResponse `json:"prices"`
	Missing []string                        `json:"missing_prices,omitempty"`
	Error   string                          `json:"error,omitempty"`
}

type ContextResponse struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

type QueryResponse struct {
	Query    string            `json:"query"`
	Answer   string            `json:"answer"`
	Contexts []ContextResponse `json:"contexts"`
	Error    string            `json:"error,omitempty"`
}

type AnalyzeResponse struct {
	Article *ArticleResponse `json:"article,omitempty"`
	Query   *QueryResponse   `json:"query,omitempty"`
}

func newArticleResponse(res domain.ArticleResult) ArticleResponse {
	out := ArticleResponse{
		URL:     res.Article.URL,
		Excerpt: res.Article.Excerpt,
		Tickers: make([]TickerResponse, 0, len(res.Tickers)),
		Prices:  make(map[string][]PricePointResponse, len(res.Prices)),
	}
	for _, t := range res.Tickers {
		out.Tickers = append(out.Tickers, TickerResponse{Ticker: t.Ticker, Explanation: t.Explanation})
		series := res.Prices[t.Ticker]
		if len(series.Points) == 0 {
			if res.Prices != nil {
				out.Missing = append(out.Missing, t.Ticker)
			}
			continue
		}
		points := make([]PricePointResponse, 0, len(series.Points))
		for _, p := range series.Points {
			points = append(points, PricePointResponse{Date: p.Date.Format(time.DateOnly), Close: p.Close})
		}
		out.Prices[t.Ticker] = points
	}
	sort.Strings(out.Missing)
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out
}

func newQueryResponse(res domain.QueryResult) QueryResponse {
	out := QueryResponse{
		Query:    res.Query,
		Answer:   res.Answer,
		Contexts: make([]ContextResponse, 0, len(res.Contexts)),
	}
	for _, m := range res.Contexts {
		out.Contexts = append(out.Contexts, ContextResponse{ID: m.ID, Score: m.Score, Text: m.Text})
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out
}
