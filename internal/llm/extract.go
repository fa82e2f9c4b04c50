package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"stockfinder/internal/domain"
)

// ErrMalformedResponse means the model reply was not a valid ticker list.
// Callers treat it as recoverable: the extractor still returns an empty list.
var ErrMalformedResponse = errors.New("malformed ticker response")

var (
	validate      = validator.New()
	tickerPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-]{0,9}$`)
)

func init() {
	err := validate.RegisterValidation("ticker", func(fl validator.FieldLevel) bool {
		return tickerPattern.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
}

type tickerEnvelope struct {
	Tickers []domain.TickerRecord `json:"tickers" validate:"dive"`
}

// Extractor asks the model for the tickers implicated by an article.
type Extractor struct {
	chat  Chatter
	model string
}

func NewExtractor(chat Chatter, model string) *Extractor {
	return &Extractor{chat: chat, model: model}
}

// Extract returns the validated, deduplicated tickers for articleText. The slice is
// never nil; it is empty when nothing was found or the reply was malformed.
func (e *Extractor) Extract(ctx context.Context, articleText string) ([]domain.TickerRecord, error) {
	raw, err := e.chat.Chat(ctx, Request{
		Model: e.model,
		User:  ExtractionPrompt(articleText),
		JSON:  true,
	})
	if err != nil {
		return []domain.TickerRecord{}, err
	}
	return ParseTickers(raw)
}

// ParseTickers strictly decodes a {"tickers": [...]} reply. Records are normalized to
// upper case and deduplicated keeping the first occurrence.
func ParseTickers(raw string) ([]domain.TickerRecord, error) {
	content := cleanJSONResponse(raw)
	dec := json.NewDecoder(bytes.NewReader([]byte(content)))
	dec.DisallowUnknownFields()

	var env tickerEnvelope
	if err := dec.Decode(&env); err != nil {
		return []domain.TickerRecord{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return []domain.TickerRecord{}, fmt.Errorf("%w: trailing data after JSON object", ErrMalformedResponse)
	}
	for i := range env.Tickers {
		env.Tickers[i].Ticker = strings.ToUpper(strings.TrimSpace(env.Tickers[i].Ticker))
		env.Tickers[i].Explanation = strings.TrimSpace(env.Tickers[i].Explanation)
	}
	if err := validate.Struct(env); err != nil {
		return []domain.TickerRecord{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return dedupe(env.Tickers), nil
}

func dedupe(records []domain.TickerRecord) []domain.TickerRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]domain.TickerRecord, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.Ticker]; ok {
			continue
		}
		seen[r.Ticker] = struct{}{}
		out = append(out, r)
	}
	return out
}

func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
