package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/go_storefront/internal/auth"
	"github.com/fjod/go_storefront/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Client talks to the storefront REST API. All mutating calls carry the
// bearer token from the Holder; cart and order mutations return the full
// updated resource, never a delta.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  *auth.Holder
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a Client for the given base URL, e.g. "http://localhost:8080"
// in dev or "" for same-origin production deployments behind a proxy.
func New(baseURL string, tokens *auth.Holder, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		tokens:  tokens,
		http: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	// The breaker trips on transport failures only; HTTP error statuses
	// are business outcomes and pass through as successes here. No
	// automatic retries anywhere: a tripped breaker fails fast, the user
	// decides what to do.
	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    "storefront-api",
		Timeout: 15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		return c.http.Do(req)
	})
	if err != nil {
		return fmt.Errorf("storefront api unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody domain.ErrorResponse
		if decErr := json.NewDecoder(resp.Body).Decode(&errBody); decErr != nil {
			errBody = domain.ErrorResponse{Error: resp.Status}
		}
		return errorFromResponse(resp.StatusCode, &errBody)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Login exchanges credentials for a token and stores it in the Holder.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.User, error) {
	var resp domain.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", domain.LoginRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if err := c.tokens.SetToken(resp.Token); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout purges the held token. Callers owning a cart store must reset
// it as well; the session and the cart die together.
func (c *Client) Logout() error {
	return c.tokens.Clear()
}
