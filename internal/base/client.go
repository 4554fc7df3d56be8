// Package base provides the shared HTTP client infrastructure for the ADS API.
package base

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apierrors "github.com/olgasafonova/nasa-ads-mcp-server/internal/errors"
	"github.com/olgasafonova/nasa-ads-mcp-server/metrics"
	"github.com/olgasafonova/nasa-ads-mcp-server/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout for API requests
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the client-side pacing in requests per second
	DefaultRateLimit = 5.0

	// DefaultUserAgent identifies the server to the ADS API
	DefaultUserAgent = "nasa-ads-mcp-server/1.0 (github.com/olgasafonova/nasa-ads-mcp-server)"

	// maxResponseSize bounds how much of a response body is read
	maxResponseSize = 16 << 20
)

// Client provides common HTTP client infrastructure: bearer authentication,
// JSON encoding, client-side pacing, and the UpstreamError taxonomy.
// It never retries a request.
type Client struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	Limiter    *rate.Limiter
	BaseURL    string
	UserAgent  string
	token      string
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.HTTPClient = c
	}
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) ClientOption {
	return func(client *Client) {
		client.Logger = l
	}
}

// WithBaseURL sets the API base URL (for testing or mirrors)
func WithBaseURL(u string) ClientOption {
	return func(client *Client) {
		client.BaseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(client *Client) {
		if d > 0 {
			client.HTTPClient.Timeout = d
		}
	}
}

// WithRateLimit sets client-side pacing in requests per second. Zero or less disables pacing.
func WithRateLimit(rps float64) ClientOption {
	return func(client *Client) {
		if rps <= 0 {
			client.Limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		client.Limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewClient creates a new base client. The token is attached to every request
// as a bearer credential.
func NewClient(baseURL, token string, opts ...ClientOption) *Client {
	c := &Client{
		HTTPClient: newHTTPClient(DefaultTimeout),
		Logger:     slog.Default(),
		Limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		BaseURL:    strings.TrimRight(baseURL, "/"),
		UserAgent:  DefaultUserAgent,
		token:      token,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// RequestConfig configures a single HTTP request
type RequestConfig struct {
	Method string     // defaults to GET
	Path   string     // API path relative to BaseURL, e.g. "/search/query"
	Action string     // low-cardinality label for metrics and spans; defaults to Path
	Query  url.Values // URL-encoded into the query string
	Body   any        // JSON-encoded request body when non-nil
}

func (cfg RequestConfig) label() string {
	if cfg.Action != "" {
		return cfg.Action
	}
	return cfg.Path
}

// DoRequest performs one HTTP request and returns the response body and status.
// Any status >= 400, transport failure or timeout is returned as an *UpstreamError.
func (c *Client) DoRequest(ctx context.Context, cfg RequestConfig) ([]byte, int, error) {
	method := cfg.Method
	if method == "" {
		method = http.MethodGet
	}
	action := cfg.label()

	ctx, span := tracing.StartSpan(ctx, "ads.api."+action)
	defer span.End()
	tracing.AddAPIAttributes(span, method, cfg.Path)

	start := time.Now()
	body, status, err := c.do(ctx, method, cfg)
	duration := time.Since(start)

	span.SetAttributes(attribute.Int("http.response.status_code", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordAPICall(action, duration.Seconds(), false, errorCode(err))
		c.Logger.Warn("ADS API request failed",
			"method", method,
			"endpoint", cfg.Path,
			"status", status,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return nil, status, err
	}

	span.SetStatus(codes.Ok, "")
	metrics.RecordAPICall(action, duration.Seconds(), true, "")
	c.Logger.Debug("ADS API request",
		"method", method,
		"endpoint", cfg.Path,
		"status", status,
		"duration_ms", duration.Milliseconds(),
		"response_bytes", len(body))
	return body, status, nil
}

// DoJSON performs a request and decodes the JSON response into out.
// A body that is not valid JSON is reported as an *UpstreamError; out is left
// untouched in every failure case.
func (c *Client) DoJSON(ctx context.Context, cfg RequestConfig, out any) error {
	body, status, err := c.DoRequest(ctx, cfg)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if !json.Valid(body) {
		metrics.APIErrors.WithLabelValues(cfg.label(), "malformed_json").Inc()
		return apierrors.NewUpstreamError(cfg.Path, status, "malformed JSON response: "+truncate(string(body), 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		metrics.APIErrors.WithLabelValues(cfg.label(), "malformed_json").Inc()
		return apierrors.NewUpstreamError(cfg.Path, status, "unexpected response shape: "+err.Error())
	}
	return nil
}

func (c *Client) do(ctx context.Context, method string, cfg RequestConfig) ([]byte, int, error) {
	if err := c.waitForSlot(ctx); err != nil {
		return nil, 0, apierrors.NewUpstreamError(cfg.Path, 0, "rate limiter: "+err.Error())
	}

	reqURL := c.BaseURL + cfg.Path
	if len(cfg.Query) > 0 {
		reqURL += "?" + cfg.Query.Encode()
	}

	var reader io.Reader
	if cfg.Body != nil {
		payload, err := json.Marshal(cfg.Body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, apierrors.NewUpstreamError(cfg.Path, 0, transportMessage(err))
	}

	body, err := readAndClose(resp)
	if err != nil {
		return nil, resp.StatusCode, apierrors.NewUpstreamError(cfg.Path, resp.StatusCode, "failed to read response: "+err.Error())
	}

	if remaining := resp.Header.Get("X-RateLimit-Remaining"); remaining != "" {
		if n, convErr := strconv.Atoi(remaining); convErr == nil {
			metrics.SetRateLimitRemaining(n)
		}
	}

	if resp.StatusCode >= 400 {
		upErr := apierrors.NewUpstreamError(cfg.Path, resp.StatusCode, remoteMessage(resp.StatusCode, body))
		upErr.RetryAfter = resp.Header.Get("Retry-After")
		return nil, resp.StatusCode, upErr
	}

	return body, resp.StatusCode, nil
}

// waitForSlot blocks until the limiter grants a slot or the context ends
func (c *Client) waitForSlot(ctx context.Context) error {
	if c.Limiter == nil {
		return nil
	}
	r := c.Limiter.Reserve()
	if !r.OK() {
		return errors.New("request exceeds limiter burst")
	}
	delay := r.Delay()
	if delay == 0 {
		return nil
	}

	metrics.RateLimitWaits.Inc()
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

// remoteMessage extracts the short error message ADS puts in error replies
func remoteMessage(status int, body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return truncate(text, 200)
	}
	return http.StatusText(status)
}

// transportMessage describes a failure where no response was received
func transportMessage(err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "request timed out"
	}
	if errors.Is(err, context.Canceled) {
		return "request canceled"
	}
	return "network error: " + err.Error()
}

// errorCode labels a failure for the api_errors_total metric
func errorCode(err error) string {
	var upErr *apierrors.UpstreamError
	if errors.As(err, &upErr) {
		if upErr.Status != 0 {
			return strconv.Itoa(upErr.Status)
		}
		if upErr.Message == "request timed out" {
			return "timeout"
		}
		return "network"
	}
	return "internal"
}

// readAndClose reads the response body and closes it
func readAndClose(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	_ = resp.Body.Close()
	return body, err
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// newHTTPClient creates an HTTP client with optimized transport settings
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       120 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
