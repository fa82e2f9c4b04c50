package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"stockfinder/internal/domain"
)

// Request is a single chat completion call.
type Request struct {
	Model  string
	System string
	User   string
	// JSON asks the endpoint for a JSON object response.
	JSON bool
}

// Chatter sends one chat completion request and returns the reply text.
type Chatter interface {
	Chat(ctx context.Context, req Request) (string, error)
}

// Client talks to any OpenAI-compatible chat completions endpoint (Groq by default).
type Client struct {
	client    *openai.Client
	hasKey    bool
	apiKeyEnv string
}

// Config configures the completion endpoint.
type Config struct {
	BaseURL   string
	APIKey    string
	APIKeyEnv string
	Timeout   time.Duration
}

func NewClient(cfg Config) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		opts = append(opts, option.WithBaseURL(base))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	client := openai.NewClient(opts...)
	return &Client{client: &client, hasKey: cfg.APIKey != "", apiKeyEnv: cfg.APIKeyEnv}
}

func (c *Client) Chat(ctx context.Context, req Request) (string, error) {
	if !c.hasKey {
		return "", fmt.Errorf("llm: %w (env %s)", domain.ErrMissingAPIKey, c.apiKeyEnv)
	}
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.User))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: messages,
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("completion API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from completion API")
	}
	return resp.Choices[0].Message.Content, nil
}

// Completer binds a model to a Chatter for free-text completions.
type Completer struct {
	chat  Chatter
	model string
}

func NewCompleter(chat Chatter, model string) *Completer {
	return &Completer{chat: chat, model: model}
}

// Complete sends system and user as a two-message conversation.
func (c *Completer) Complete(ctx context.Context, system, user string) (string, error) {
	return c.chat.Chat(ctx, Request{Model: c.model, System: system, User: user})
}
