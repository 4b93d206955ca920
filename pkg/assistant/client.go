package assistant

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// authTokenUnavailableMsg is the fixed message reported when no bearer
// credential can be obtained. No network call is made in that case.
const authTokenUnavailableMsg = "authentication token not available"

// TokenProvider supplies the bearer credential for assistant requests.
// The client calls Token once per Stream or Send call, before any network
// activity. Returning an empty token or an error short-circuits the request.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TokenProviderFunc adapts a plain function to the TokenProvider interface.
type TokenProviderFunc func(ctx context.Context) (string, error)

func (f TokenProviderFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticToken returns a TokenProvider that always yields the given token.
func StaticToken(token string) TokenProvider {
	return TokenProviderFunc(func(context.Context) (string, error) {
		return token, nil
	})
}

// Client talks to the quill assistant API. One Client may serve many
// concurrent streams; each Stream call gets its own session.
type Client struct {
	baseURL    string
	tokens     TokenProvider
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client created with NewClient.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client. The default client
// carries no timeout: streams are long-lived and the decoder imposes no
// deadline of its own. Callers needing one arm the cancellation function
// externally.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the structured logger. Dropped events and malformed
// payloads log at Debug. Defaults to a discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a Client for the assistant API at baseURL
// (scheme + host, e.g. "https://api.quill.dev").
func NewClient(baseURL string, tokens TokenProvider, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{},
		logger:     slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// authToken resolves the bearer credential, mapping every failure mode
// (nil provider, provider error, empty token) to "no token available".
func (c *Client) authToken(ctx context.Context) (string, bool) {
	if c.tokens == nil {
		return "", false
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.logger.Debug("token provider failed", "error", err)
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}
