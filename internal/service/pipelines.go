package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"stockfinder/internal/article"
	"stockfinder/internal/domain"
)

// Answerer is the question-answering side of the application.
type Answerer interface {
	Answer(ctx context.Context, query string) (domain.QueryResult, error)
}

// Pipelines runs the article and query pipelines. Each one is its own error
// boundary: a failure is stored in the result and never reaches the other pipeline.
type Pipelines struct {
	fetcher      domain.ArticleFetcher
	extractor    domain.TickerExtractor
	prices       domain.PriceFetcher
	answerer     Answerer
	excerptWords int
	log          zerolog.Logger
}

func NewPipelines(fetcher domain.ArticleFetcher, extractor domain.TickerExtractor, prices domain.PriceFetcher, answerer Answerer, excerptWords int, log zerolog.Logger) *Pipelines {
	return &Pipelines{
		fetcher:      fetcher,
		extractor:    extractor,
		prices:       prices,
		answerer:     answerer,
		excerptWords: excerptWords,
		log:          log,
	}
}

// RunArticle fetches the article, extracts tickers and loads their price history.
// Whatever completed before a failure is kept in the result.
func (p *Pipelines) RunArticle(ctx context.Context, url string) (res domain.ArticleResult) {
	url = strings.TrimSpace(url)
	res.Article.URL = url
	defer p.recoverInto(&res.Err, "article")

	text, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		p.log.Error().Err(err).Str("url", url).Msg("article fetch failed")
		res.Err = err
		return res
	}
	res.Article.Text = text
	res.Article.Excerpt = article.Excerpt(text, p.excerptWords)

	tickers, err := p.extractor.Extract(ctx, text)
	if err != nil {
		p.log.Error().Err(err).Str("url", url).Msg("ticker extraction failed")
		res.Tickers = []domain.TickerRecord{}
		res.Err = err
		return res
	}
	res.Tickers = tickers
	p.log.Info().Str("url", url).Strs("tickers", res.TickerSymbols()).Msg("tickers extracted")
	if len(tickers) == 0 {
		return res
	}

	prices, err := p.prices.FetchPrices(ctx, res.TickerSymbols())
	res.Prices = prices
	if err != nil {
		p.log.Error().Err(err).Msg("price fetch failed")
		res.Err = fmt.Errorf("price history: %w", err)
	}
	return res
}

// RunQuery answers query from the stock description index.
func (p *Pipelines) RunQuery(ctx context.Context, query string) (res domain.QueryResult) {
	query = strings.TrimSpace(query)
	res.Query = query
	defer p.recoverInto(&res.Err, "query")

	out, err := p.answerer.Answer(ctx, query)
	out.Query = query
	if err != nil {
		p.log.Error().Err(err).Str("query", query).Msg("query failed")
		out.Err = err
	}
	return out
}

// Run fires each pipeline whose input is non-empty. A nil result means that
// pipeline was not triggered.
func (p *Pipelines) Run(ctx context.Context, url, query string) (*domain.ArticleResult, *domain.QueryResult) {
	var (
		articleRes *domain.ArticleResult
		queryRes   *domain.QueryResult
	)
	if strings.TrimSpace(url) != "" {
		r := p.RunArticle(ctx, url)
		articleRes = &r
	}
	if strings.TrimSpace(query) != "" {
		r := p.RunQuery(ctx, query)
		queryRes = &r
	}
	return articleRes, queryRes
}

func (p *Pipelines) recoverInto(errp *error, pipeline string) {
	if r := recover(); r != nil {
		p.log.Error().Interface("panic", r).Str("pipeline", pipeline).Msg("pipeline panicked")
		*errp = fmt.Errorf("%s pipeline failed: %v", pipeline, r)
	}
}
