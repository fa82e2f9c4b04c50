package market

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/rs/zerolog"

	"stockfinder/internal/domain"
)

// HistoryFunc loads daily closes for one symbol between start and end.
type HistoryFunc func(ctx context.Context, symbol string, start, end time.Time) ([]domain.PricePoint, error)

// Fetcher loads trailing daily closing prices. Results are never cached.
type Fetcher struct {
	history  HistoryFunc
	lookback int
	now      func() time.Time
	log      zerolog.Logger
}

// NewFetcher creates a fetcher backed by the Yahoo Finance chart API.
func NewFetcher(lookbackDays int, log zerolog.Logger) *Fetcher {
	return newFetcher(YahooHistory, lookbackDays, log)
}

func newFetcher(history HistoryFunc, lookbackDays int, log zerolog.Logger) *Fetcher {
	if lookbackDays <= 0 {
		lookbackDays = 365
	}
	return &Fetcher{history: history, lookback: lookbackDays, now: time.Now, log: log}
}

// FetchPrices returns one series per distinct ticker. A ticker the provider does not
// know yields an empty series instead of failing the whole request; only context
// cancellation is reported as an error.
func (f *Fetcher) FetchPrices(ctx context.Context, tickers []string) (map[string]domain.PriceSeries, error) {
	end := f.now()
	start := end.AddDate(0, 0, -f.lookback)
	out := make(map[string]domain.PriceSeries, len(tickers))
	for _, t := range tickers {
		symbol := strings.ToUpper(strings.TrimSpace(t))
		if symbol == "" {
			continue
		}
		if _, seen := out[symbol]; seen {
			continue
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}
		points, err := f.history(ctx, symbol, start, end)
		if err != nil {
			f.log.Warn().Err(err).Str("ticker", symbol).Msg("no price history")
			points = nil
		}
		sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
		out[symbol] = domain.PriceSeries{Ticker: symbol, Points: points}
		f.log.Debug().Str("ticker", symbol).Int("points", len(points)).Msg("price history loaded")
	}
	return out, nil
}

// YahooHistory reads daily bars from the Yahoo Finance chart endpoint.
// Bars without a close (null in the response, decoded as zero) are skipped.
func YahooHistory(ctx context.Context, symbol string, start, end time.Time) ([]domain.PricePoint, error) {
	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}
	params.Context = &ctx
	iter := chart.Get(params)

	var points []domain.PricePoint
	for iter.Next() {
		bar := iter.Bar()
		if bar.Close.IsZero() {
			continue
		}
		closePrice, _ := bar.Close.Float64()
		points = append(points, domain.PricePoint{
			Date:  time.Unix(int64(bar.Timestamp), 0).UTC(),
			Close: closePrice,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get historical data for %s: %w", symbol, err)
	}
	return points, nil
}
