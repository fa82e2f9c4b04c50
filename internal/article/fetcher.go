package article

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// Fetcher downloads article pages and extracts their paragraph text.
type Fetcher struct {
	client *resty.Client
}

// Config configures the article fetcher.
type Config struct {
	UserAgent string
	// Timeout of zero keeps the HTTP client default (no timeout).
	Timeout time.Duration
}

// NewFetcher creates a fetcher. It performs a single GET per call and never retries.
func NewFetcher(cfg Config) *Fetcher {
	client := resty.New()
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &Fetcher{client: client}
}

// Fetch returns the text of every <p> element of the page at rawURL, in document
// order, joined by single spaces.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	text, err := f.fetch(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("error parsing the article: %w", err)
	}
	return text, nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("url is empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}

	resp, err := f.client.R().SetContext(ctx).Get(u.String())
	if err != nil {
		return "", fmt.Errorf("failed to fetch article: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("HTTP error %d when fetching article", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	return ParagraphText(doc), nil
}

// ParagraphText joins the text of all paragraphs in doc with single spaces.
func ParagraphText(doc *goquery.Document) string {
	paragraphs := doc.Find("p").Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	})
	return strings.Join(paragraphs, " ")
}

// Excerpt returns the first maxWords whitespace-separated words of text followed by "...".
func Excerpt(text string, maxWords int) string {
	words := strings.Fields(text)
	if maxWords > 0 && len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, " ") + "..."
}
