package perplexity

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jobfit-agent/internal/domain"
)

type fakeSecret struct {
	val   string
	err   error
	calls int
}

func (f *fakeSecret) Value(_ context.Context) (string, error) {
	f.calls++
	return f.val, f.err
}

func temp(v float64) *float64 { return &v }

func sampleRequest() domain.CompletionRequest {
	return domain.CompletionRequest{
		Model: "sonar",
		Messages: []domain.ChatMessage{
			{Role: "system", Content: "be helpful"},
			{Role: "user", Content: "analyze this"},
		},
		Temperature: temp(0.7),
		MaxTokens:   1024,
	}
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(
		&fakeSecret{val: "pplx-test"},
		WithBaseURL(srv.URL),
		WithHTTPClient(&http.Client{Timeout: 2 * time.Second}),
	)
	require.NoError(t, err)
	return c
}

func TestChatURL(t *testing.T) {
	cases := []struct {
		base string
		want string
	}{
		{"https://api.perplexity.ai", "https://api.perplexity.ai/chat/completions"},
		{"https://api.perplexity.ai/", "https://api.perplexity.ai/chat/completions"},
		{"http://localhost:8080", "http://localhost:8080/chat/completions"},
		{"", "https://api.perplexity.ai/chat/completions"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, chatURL(tc.base), "base=%q", tc.base)
	}
}

func TestNewClient_NilSecret(t *testing.T) {
	_, err := NewClient(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "nil")
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(&fakeSecret{})
	require.NoError(t, err)
	require.Equal(t, "https://api.perplexity.ai", c.baseURL)
	require.Equal(t, "perplexity", c.Name())
}

func TestClient_Complete_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer pplx-test", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var got map[string]any
		require.NoError(t, json.Unmarshal(raw, &got))
		require.Equal(t, "sonar", got["model"])
		require.Equal(t, 0.7, got["temperature"])
		require.Equal(t, float64(1024), got["max_tokens"])
		require.Equal(t, false, got["stream"])
		require.Len(t, got["messages"], 2)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{
			"id": "resp-1",
			"model": "sonar",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "<div class=\"analysis\">OK</div>"}
			}]
		}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	out, err := c.Complete(context.Background(), sampleRequest())
	require.NoError(t, err)
	require.Equal(t, `<div class="analysis">OK</div>`, out)
}

func TestClient_Complete_OmitsUnsetOptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NotContains(t, string(raw), "temperature")
		require.NotContains(t, string(raw), "max_tokens")
		require.Contains(t, string(raw), `"stream":false`)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	out, err := c.Complete(context.Background(), domain.CompletionRequest{Model: "sonar"})
	require.NoError(t, err)
	require.Equal(t, "ok", out)
}

func TestClient_Complete_Non200IncludesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(400)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid model 'nope'"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Complete(context.Background(), sampleRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected status 400")
	require.Contains(t, err.Error(), `{"error":{"message":"Invalid model 'nope'"}}`)

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 400, statusErr.HTTPStatusCode())
}

func TestClient_Complete_429(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(429)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Complete(context.Background(), sampleRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
}

func TestClient_Complete_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`not-a-json`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Complete(context.Background(), sampleRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode response")
	require.False(t, errors.Is(err, domain.ErrEmptyCompletion))
}

func TestClient_Complete_MissingContent(t *testing.T) {
	bodies := map[string]string{
		"no choices":   `{"choices":[]}`,
		"null content": `{"choices":[{"message":{"role":"assistant","content":null}}]}`,
		"no message":   `{"choices":[{"index":0}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			c := newTestClient(t, srv)
			_, err := c.Complete(context.Background(), sampleRequest())
			require.ErrorIs(t, err, domain.ErrEmptyCompletion)
		})
	}
}

func TestClient_Complete_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}
	_, err := c.Complete(context.Background(), sampleRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "request failed")
}

func TestClient_Complete_EmptyModel(t *testing.T) {
	secret := &fakeSecret{val: "pplx-test"}
	c, err := NewClient(secret)
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), domain.CompletionRequest{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "model")
	require.Zero(t, secret.calls)
}

func TestClient_Complete_SecretError(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c, err := NewClient(&fakeSecret{err: errors.New("ssm unavailable")}, WithBaseURL(srv.URL))
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), sampleRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "ssm unavailable")
	require.False(t, called)
}

func TestClient_Complete_NetworkError(t *testing.T) {
	c, err := NewClient(&fakeSecret{val: "k"}, WithBaseURL("http://127.0.0.1:1"),
		WithHTTPClient(&http.Client{Timeout: 100 * time.Millisecond}))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), sampleRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "request failed")
}
