package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/rs/zerolog"

	"stockfinder/internal/domain"
)

var day0 = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func fakeHistory(calls *[]string, gotStart, gotEnd *time.Time) HistoryFunc {
	return func(_ context.Context, symbol string, start, end time.Time) ([]domain.PricePoint, error) {
		*calls = append(*calls, symbol)
		*gotStart, *gotEnd = start, end
		switch symbol {
		case "AAPL":
			return []domain.PricePoint{
				{Date: day0.AddDate(0, 0, 1), Close: 231.5},
				{Date: day0, Close: 229.0},
			}, nil
		case "TSLA":
			return []domain.PricePoint{{Date: day0, Close: 410.2}}, nil
		default:
			return nil, errors.New("No data found, symbol may be delisted")
		}
	}
}

func TestFetchPricesUnknownTickerDegrades(t *testing.T) {
	var calls []string
	var start, end time.Time
	f := newFetcher(fakeHistory(&calls, &start, &end), 365, zerolog.Nop())
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return now }

	got, err := f.FetchPrices(context.Background(), []string{"AAPL", "ZZZZQ", "TSLA"})

	assert.Equal(t, nil, err)
	assert.Equal(t, 3, len(got))
	assert.Equal(t, 0, len(got["ZZZZQ"].Points))
	assert.Equal(t, []float64{229.0, 231.5}, got["AAPL"].Closes())
	assert.Equal(t, 1, len(got["TSLA"].Points))
	assert.Equal(t, now, end)
	assert.Equal(t, now.AddDate(0, 0, -365), start)
}

func TestFetchPricesSkipsBlankAndDuplicateTickers(t *testing.T) {
	var calls []string
	var start, end time.Time
	f := newFetcher(fakeHistory(&calls, &start, &end), 30, zerolog.Nop())

	got, err := f.FetchPrices(context.Background(), []string{"aapl", " ", "AAPL"})

	assert.Equal(t, nil, err)
	assert.Equal(t, []string{"AAPL"}, calls)
	assert.Equal(t, 1, len(got))
}

func TestFetchPricesStopsOnCancel(t *testing.T) {
	var calls []string
	var start, end time.Time
	f := newFetcher(fakeHistory(&calls, &start, &end), 365, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.FetchPrices(ctx, []string{"AAPL"})

	assert.Equal(t, true, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, len(calls))
}
