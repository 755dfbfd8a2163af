// Package market fetches raw Polygon DEX activity from the Bitquery
// streaming GraphQL endpoint: recent trades aggregated into top markets,
// pool liquidity events and pool price (slippage) records. Payloads are
// kept as raw JSON so downstream consumers decide what matters.
package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/tidwall/gjson"
)

const (
	defaultBaseURL          = "https://streaming.bitquery.io/graphql"
	defaultHTTPTimeout      = 10 * time.Second
	defaultMaxRetries       = 3
	defaultRetryBackoffBase = 150 * time.Millisecond
)

// Client wraps access to the Bitquery GraphQL endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
}

// Option configures a new Client.
type Option func(*Client)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL overrides the default GraphQL endpoint URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		if key != "" {
			c.apiKey = key
		}
	}
}

// WithMaxRetries adjusts the retry budget.
func WithMaxRetries(max int) Option {
	return func(c *Client) {
		if max >= 0 {
			c.maxRetries = max
		}
	}
}

// NewClient constructs a Bitquery API client. The API key defaults to the
// BITQUERY_API_KEY environment variable.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     os.Getenv("BITQUERY_API_KEY"),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// query posts a GraphQL query and returns the raw response body after
// surfacing transport failures, non-2xx statuses and GraphQL errors.
func (c *Client) query(ctx context.Context, query string, variables map[string]any) ([]byte, error) {
	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("bitquery: encode request: %w", err)
	}

	var lastErr error
	backoff := defaultRetryBackoffBase
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("bitquery: build request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
		} else {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("bitquery: read response: %w", readErr)
			} else if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				lastErr = fmt.Errorf("bitquery: http status %d: %s", resp.StatusCode, string(body))
			} else if msg := gjson.GetBytes(body, "errors.0.message"); msg.Exists() {
				// GraphQL errors arrive with status 200 and are not retryable.
				return nil, fmt.Errorf("bitquery: graphql error: %s", msg.String())
			} else {
				return body, nil
			}
		}

		if attempt < c.maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("bitquery: request failed without error detail")
}
