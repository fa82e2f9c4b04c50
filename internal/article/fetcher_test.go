package article

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"
)

const page = `<html><head><title>Markets</title></head><body>
<h1>EV makers rally</h1>
<p>Apple shares rose on Monday.</p>
<div><p>Tesla delivered <b>more cars</b> than expected.</p></div>
<span>not a paragraph</span>
<p></p>
<p>Analysts were surprised.</p>
</body></html>`

func TestFetchJoinsParagraphsInOrder(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	}))
	defer srv.Close()

	f := NewFetcher(Config{UserAgent: "stockfinder-test"})
	text, err := f.Fetch(context.Background(), srv.URL+"/news/ev")

	assert.Equal(t, nil, err)
	assert.Equal(t, "Apple shares rose on Monday. Tesla delivered more cars than expected.  Analysts were surprised.", text)
	assert.Equal(t, "stockfinder-test", gotUA)
}

func TestFetchNoParagraphs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div>nothing</div></body></html>`))
	}))
	defer srv.Close()

	text, err := NewFetcher(Config{}).Fetch(context.Background(), srv.URL)

	assert.Equal(t, nil, err)
	assert.Equal(t, "", text)
}

func TestFetchWrapsHTTPError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewFetcher(Config{}).Fetch(context.Background(), srv.URL)

	assert.NotEqual(t, nil, err)
	assert.Equal(t, true, strings.HasPrefix(err.Error(), "error parsing the article:"))
	assert.Equal(t, 1, calls)
}

func TestFetchRejectsBadURLs(t *testing.T) {
	f := NewFetcher(Config{})

	for _, u := range []string{"", "   ", "ftp://example.com/a", "not a url"} {
		_, err := f.Fetch(context.Background(), u)
		assert.NotEqual(t, nil, err)
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{name: "short text kept", text: "Apple beat estimates", max: 150, want: "Apple beat estimates..."},
		{name: "long text cut", text: "one two  three\nfour five", max: 3, want: "one two three..."},
		{name: "empty", text: "", max: 150, want: "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Excerpt(tt.text, tt.max))
		})
	}
}
