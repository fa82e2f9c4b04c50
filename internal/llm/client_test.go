package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/assert/v2"

	"stockfinder/internal/domain"
)

func completionServer(t *testing.T, status int, content string, got *map[string]any, calls *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		if r.URL.Path != "/openai/v1/chat/completions" || r.Header.Get("Authorization") != "Bearer gsk-test" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewDecoder(r.Body).Decode(got)
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1760000000,
			"model":   (*got)["model"],
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestChatSendsSystemAndUserMessages(t *testing.T) {
	var got map[string]any
	calls := 0
	srv := completionServer(t, http.StatusOK, "Consider TSLA and RIVN.", &got, &calls)

	c := NewClient(Config{BaseURL: srv.URL + "/openai/v1", APIKey: "gsk-test"})
	answer, err := NewCompleter(c, "llama-3.1-8b-instant").Complete(context.Background(), AnswerSystemPrompt, "What are the best EV stocks?")

	assert.Equal(t, nil, err)
	assert.Equal(t, "Consider TSLA and RIVN.", answer)
	assert.Equal(t, "llama-3.1-8b-instant", got["model"])
	messages := got["messages"].([]any)
	assert.Equal(t, 2, len(messages))
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
	assert.Equal(t, nil, got["response_format"])
}

func TestChatJSONModeSetsResponseFormat(t *testing.T) {
	var got map[string]any
	calls := 0
	srv := completionServer(t, http.StatusOK, `{"tickers":[]}`, &got, &calls)

	c := NewClient(Config{BaseURL: srv.URL + "/openai/v1/", APIKey: "gsk-test"})
	reply, err := c.Chat(context.Background(), Request{Model: "llama-3.3-70b-versatile", User: "article", JSON: true})

	assert.Equal(t, nil, err)
	assert.Equal(t, `{"tickers":[]}`, reply)
	format := got["response_format"].(map[string]any)
	assert.Equal(t, "json_object", format["type"])
	assert.Equal(t, 1, len(got["messages"].([]any)))
}

func TestChatDoesNotRetry(t *testing.T) {
	var got map[string]any
	calls := 0
	srv := completionServer(t, http.StatusTooManyRequests, "", &got, &calls)

	c := NewClient(Config{BaseURL: srv.URL + "/openai/v1", APIKey: "gsk-test"})
	_, err := c.Chat(context.Background(), Request{Model: "m", User: "q"})

	assert.NotEqual(t, nil, err)
	assert.Equal(t, 1, calls)
}

func TestChatMissingKey(t *testing.T) {
	c := NewClient(Config{APIKeyEnv: "GROQ_API_KEY"})

	_, err := c.Chat(context.Background(), Request{Model: "m", User: "q"})

	assert.Equal(t, true, errors.Is(err, domain.ErrMissingAPIKey))
}
