package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL for the EODHD API.
	DefaultBaseURL = "https://eodhd.com/api"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 10

	// ExchangeSA is the EODHD code for B3 (São Paulo).
	ExchangeSA = "SA"

	dateLayout = "2006-01-02"
)

// Client is an EODHD API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the HTTP timeout on the default client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond < 1 {
			requestsPerSecond = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a new EODHD API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get performs a GET request to the API and decodes the JSON body into result.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &RateLimitError{RetryAfter: time.Second}
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("url", c.baseURL+path).
			Msg("EODHD API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return &RateLimitError{RetryAfter: retryAfter(resp.Header.Get("Retry-After"))}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}

	return nil
}

func retryAfter(header string) time.Duration {
	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return time.Second
}

func dateValues(p *queryParams) url.Values {
	values := url.Values{}
	if !p.From.IsZero() {
		values.Set("from", p.From.Format(dateLayout))
	}
	if !p.To.IsZero() {
		values.Set("to", p.To.Format(dateLayout))
	}
	return values
}

// GetEOD retrieves end-of-day price data for a symbol.
// Symbol format: TICKER.EXCHANGE (e.g., "PETR4.SA")
func (c *Client) GetEOD(ctx context.Context, symbol string, opts ...QueryOption) (EODResponse, error) {
	params := &queryParams{
		Period: "d",
		Order:  "a",
	}
	for _, opt := range opts {
		opt(params)
	}

	values := dateValues(params)
	if params.Period != "" {
		values.Set("period", params.Period)
	}
	if params.Order != "" {
		values.Set("order", params.Order)
	}

	var result EODResponse
	if err := c.get(ctx, "/eod/"+symbol, values, &result); err != nil {
		return nil, err
	}

	for i := range result {
		if t, err := time.Parse(dateLayout, result[i].DateStr); err == nil {
			result[i].Date = t
		}
	}

	return result, nil
}

// GetDividends retrieves dividend events for a symbol, oldest first.
func (c *Client) GetDividends(ctx context.Context, symbol string, opts ...QueryOption) (DividendsResponse, error) {
	params := &queryParams{}
	for _, opt := range opts {
		opt(params)
	}

	var result DividendsResponse
	if err := c.get(ctx, "/div/"+symbol, dateValues(params), &result); err != nil {
		return nil, err
	}

	for i := range result {
		if t, err := time.Parse(dateLayout, result[i].DateStr); err == nil {
			result[i].Date = t
		}
	}

	return result, nil
}

// GetFundamentals retrieves the fundamentals document for a symbol.
// The document is returned undecoded so callers can select only the fields they need.
func (c *Client) GetFundamentals(ctx context.Context, symbol string) (Fundamentals, error) {
	var result Fundamentals
	if err := c.get(ctx, "/fundamentals/"+symbol, nil, &result); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "empty fundamentals", Endpoint: "/fundamentals/" + symbol}
	}
	return result, nil
}

// GetExchangeSymbols lists the tickers traded on an exchange (e.g. "SA").
func (c *Client) GetExchangeSymbols(ctx context.Context, exchange string) (ExchangeSymbolsResponse, error) {
	var result ExchangeSymbolsResponse
	if err := c.get(ctx, "/exchange-symbol-list/"+exchange, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}
