// Package rest provides the rate-limited HTTP transport shared by the
// Wattwatchers API clients, with a uniform value-or-error result contract.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for transport operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ww_requests_total",
		Help: "Total Wattwatchers API requests by path and status",
	}, []string{"path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ww_request_duration_seconds",
		Help:    "Wattwatchers API request duration in seconds by path",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"path"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ww_errors_total",
		Help: "Total Wattwatchers API errors by kind",
	}, []string{"kind"})

	throttleWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ww_throttle_wait_seconds",
		Help:    "Time spent waiting on the outgoing request rate limiter",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
	})
)

// Config holds the REST client configuration.
type Config struct {
	// BaseURL of the API, without a trailing slash.
	BaseURL string

	// APIKey is the bearer token attached to every request.
	APIKey string

	// MaxRequestsPerSecond caps the outgoing request rate. The achieved rate
	// may be lower when individual requests take longer than the minimum
	// spacing.
	MaxRequestsPerSecond int

	// Timeout for a single HTTP attempt. Defaults to 30 seconds.
	Timeout time.Duration
}

// RequestOptions carries the per-call query parameters and JSON body.
type RequestOptions struct {
	Query url.Values

	// Body is serialized as a JSON document when non-nil.
	Body any
}

// Client executes single HTTP exchanges against a fixed base URL. Every call
// is gated by a per-instance rate limiter whose state lives for the lifetime
// of the Client. There are no automatic retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	throttle   *throttle
	logger     zerolog.Logger
}

// New creates a new REST client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	if cfg.MaxRequestsPerSecond <= 0 {
		return nil, fmt.Errorf("max requests per second must be positive (got %d)", cfg.MaxRequestsPerSecond)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		throttle: newThrottle(cfg.MaxRequestsPerSecond),
		logger:   log.With().Str("component", "rest-client").Logger(),
	}, nil
}

// Request performs a single HTTP exchange and translates the outcome into a
// uniform result. Exactly one of the returned value and error is non-nil,
// except for a 2xx response with an empty body, which yields (nil, nil).
func (c *Client) Request(ctx context.Context, method, path string, opts *RequestOptions) (any, error) {
	fullURL := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if opts != nil && len(opts.Query) > 0 {
		fullURL += "?" + opts.Query.Encode()
	}

	// Caller input is validated before the limiter runs so that invalid
	// calls never consume rate budget.
	var bodyReader io.Reader
	if opts != nil && opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, &Error{
				Kind:    KindCaller,
				Message: fmt.Sprintf("serialize request body: %v", err),
				Method:  method,
				URL:     fullURL,
				Err:     err,
			}
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, &Error{
			Kind:    KindCaller,
			Message: fmt.Sprintf("build request: %v", err),
			Method:  method,
			URL:     fullURL,
			Err:     err,
		}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	if err := c.throttle.wait(ctx); err != nil {
		return nil, &Error{
			Kind:    KindTransport,
			Message: "cancelled while waiting on rate limiter",
			Method:  method,
			URL:     fullURL,
			Err:     err,
		}
	}

	// The limiter timestamp advances after every attempt, success or failure.
	defer c.throttle.record()

	requestID := uuid.NewString()
	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}()

	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("url", fullURL).
		Msg("Executing API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errorsTotal.WithLabelValues(string(KindTransport)).Inc()
		requestsTotal.WithLabelValues(path, "network_error").Inc()

		c.logger.Error().
			Err(err).
			Str("request_id", requestID).
			Str("url", fullURL).
			Msg("HTTP request failed")

		return nil, &Error{
			Kind:    KindTransport,
			Message: "no response received",
			Method:  method,
			URL:     fullURL,
			Err:     err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(KindTransport)).Inc()
		requestsTotal.WithLabelValues(path, "network_error").Inc()
		return nil, &Error{
			Kind:    KindTransport,
			Message: "read response body",
			Method:  method,
			URL:     fullURL,
			Err:     err,
		}
	}

	requestsTotal.WithLabelValues(path, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errorsTotal.WithLabelValues(string(KindStatus)).Inc()

		c.logger.Warn().
			Str("request_id", requestID).
			Str("url", fullURL).
			Int("status", resp.StatusCode).
			Msg("API request error")

		return nil, &Error{
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Message:    extractMessage(body),
			Method:     method,
			URL:        fullURL,
		}
	}

	if len(body) == 0 {
		return nil, nil
	}

	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		errorsTotal.WithLabelValues(string(KindTransport)).Inc()
		return nil, &Error{
			Kind:    KindTransport,
			Message: "decode response body",
			Method:  method,
			URL:     fullURL,
			Err:     err,
		}
	}

	return value, nil
}

// extractMessage pulls the `message` field out of an error response body.
// Returns the empty string when the body is not JSON or carries no message.
func extractMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	message, _ := payload["message"].(string)
	return message
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, opts *RequestOptions) (any, error) {
	return c.Request(ctx, http.MethodGet, path, opts)
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, opts *RequestOptions) (any, error) {
	return c.Request(ctx, http.MethodPost, path, opts)
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, opts *RequestOptions) (any, error) {
	return c.Request(ctx, http.MethodPut, path, opts)
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, opts *RequestOptions) (any, error) {
	return c.Request(ctx, http.MethodPatch, path, opts)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts *RequestOptions) (any, error) {
	return c.Request(ctx, http.MethodDelete, path, opts)
}

// Head performs a HEAD request.
func (c *Client) Head(ctx context.Context, path string, opts *RequestOptions) (any, error) {
	return c.Request(ctx, http.MethodHead, path, opts)
}

// Options performs an OPTIONS request.
func (c *Client) Options(ctx context.Context, path string, opts *RequestOptions) (any, error) {
	return c.Request(ctx, http.MethodOptions, path, opts)
}

// Close releases the client's idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
