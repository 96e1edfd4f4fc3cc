package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"jobfit-agent/internal/domain"
)

// SecretSource yields the API key for each call.
type SecretSource interface {
	Value(ctx context.Context) (string, error)
}

// StatusError wraps an API error that carried an HTTP status.
type StatusError struct {
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openai: api status %d: %v", e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

func (e *StatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client calls Chat Completions through the official SDK. SDK retries are
// disabled; every Complete is exactly one request.
type Client struct {
	api    sdk.Client
	secret SecretSource
}

type settings struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*settings)

func WithBaseURL(baseURL string) Option {
	return func(s *settings) {
		s.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(s *settings) {
		s.httpClient = httpClient
	}
}

func NewClient(secret SecretSource, opts ...Option) (*Client, error) {
	if secret == nil {
		return nil, errors.New("openai: secret source must not be nil")
	}
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	reqOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if s.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(s.baseURL))
	}
	if s.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(s.httpClient))
	}
	return &Client{api: sdk.NewClient(reqOpts...), secret: secret}, nil
}

func (c *Client) Name() string {
	return "openai"
}

func (c *Client) Complete(ctx context.Context, in domain.CompletionRequest) (string, error) {
	if in.Model == "" {
		return "", errors.New("openai: model must not be empty")
	}

	apiKey, err := c.secret.Value(ctx)
	if err != nil {
		return "", fmt.Errorf("openai: resolve api key: %w", err)
	}

	params := sdk.ChatCompletionNewParams{
		Model:    sdk.ChatModel(in.Model),
		Messages: toMessageParams(in.Messages),
	}
	if in.Temperature != nil {
		params.Temperature = sdk.Float(*in.Temperature)
	}
	if in.MaxTokens > 0 {
		params.MaxCompletionTokens = sdk.Int(int64(in.MaxTokens))
	}

	resp, err := c.api.Chat.Completions.New(ctx, params, option.WithAPIKey(apiKey))
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			return "", &StatusError{StatusCode: apiErr.StatusCode, Err: err}
		}
		return "", fmt.Errorf("openai: create chat completion: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices in response: %w", domain.ErrEmptyCompletion)
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("openai: empty message content: %w", domain.ErrEmptyCompletion)
	}
	return content, nil
}

func toMessageParams(messages []domain.ChatMessage) []sdk.ChatCompletionMessageParamUnion {
	out := make([]sdk.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			out = append(out, sdk.SystemMessage(m.Content))
		case "assistant":
			out = append(out, sdk.AssistantMessage(m.Content))
		default:
			out = append(out, sdk.UserMessage(m.Content))
		}
	}
	return out
}
