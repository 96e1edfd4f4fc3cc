package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"google.golang.org/genai"

	"jobfit-agent/internal/domain"
)

// SecretSource yields the API key used to build the SDK client.
type SecretSource interface {
	Value(ctx context.Context) (string, error)
}

// Client is the Gemini backend for SDK-style operations. The genai client
// needs the key up front, so it is created on first use. Racing first calls
// may each build one; the first stored wins.
type Client struct {
	secret     SecretSource
	baseURL    string
	httpClient *http.Client

	api atomic.Pointer[genai.Client]
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(secret SecretSource, opts ...Option) (*Client, error) {
	if secret == nil {
		return nil, errors.New("gemini: secret source must not be nil")
	}
	c := &Client{secret: secret}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Name() string {
	return "gemini"
}

func (c *Client) client(ctx context.Context) (*genai.Client, error) {
	if api := c.api.Load(); api != nil {
		return api, nil
	}

	apiKey, err := c.secret.Value(ctx)
	if err != nil {
		return nil, fmt.Errorf("gemini: resolve api key: %w", err)
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	api, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	if !c.api.CompareAndSwap(nil, api) {
		return c.api.Load(), nil
	}
	return api, nil
}

func (c *Client) Complete(ctx context.Context, in domain.CompletionRequest) (string, error) {
	if in.Model == "" {
		return "", errors.New("gemini: model must not be empty")
	}
	api, err := c.client(ctx)
	if err != nil {
		return "", err
	}

	contents, system := toContents(in.Messages)
	cfg := &genai.GenerateContentConfig{SystemInstruction: system}
	if in.Temperature != nil {
		t := float32(*in.Temperature)
		cfg.Temperature = &t
	}
	if in.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(in.MaxTokens)
	}

	resp, err := api.Models.GenerateContent(ctx, in.Model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	text := firstCandidateText(resp)
	if text == "" {
		return "", fmt.Errorf("gemini: empty candidate text: %w", domain.ErrEmptyCompletion)
	}
	return text, nil
}

// toContents splits system messages into a single system instruction and
// maps the rest onto user/model turns.
func toContents(messages []domain.ChatMessage) ([]*genai.Content, *genai.Content) {
	var (
		contents []*genai.Content
		system   []string
	)
	for _, m := range messages {
		switch m.Role {
		case "system":
			system = append(system, m.Content)
		case "assistant":
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(system) == 0 {
		return contents, nil
	}
	return contents, genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
}

func firstCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}
	var builder strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		builder.WriteString(part.Text)
	}
	return builder.String()
}
