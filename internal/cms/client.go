package cms

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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"piriven.moe.gov.lk/web/internal/observability"
)

const (
	// DefaultBaseURL is used when no API base is configured.
	DefaultBaseURL = "http://127.0.0.1:8000/api"

	defaultTimeout = 5 * time.Second
	maxErrorBody   = 4 << 10
	tracerName     = "piriven.moe.gov.lk/web/internal/cms"
)

// Params are query parameters for list reads. Empty values are not sent.
type Params map[string]string

// merge returns defaults overlaid with p.
func (p Params) merge(defaults Params) Params {
	out := make(Params, len(defaults)+len(p))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Client provides access to the content API. Every read goes to the network;
// there is no response cache.
type Client struct {
	baseURL    string
	origin     string
	http       *http.Client
	logger     *zap.Logger
	metrics    *observability.Metrics
	tracer     trace.Tracer
	contentDir string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger used when the request context carries none.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records request outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithContentDir sets the directory holding local markdown fallbacks.
func WithContentDir(dir string) Option {
	return func(c *Client) {
		c.contentDir = strings.TrimSpace(dir)
	}
}

// NewClient constructs a Client with the provided base URL, e.g.
// http://127.0.0.1:8000/api. A trailing slash is ignored.
func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		origin:  APIOrigin(baseURL),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  zap.NewNop(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API base.
func (c *Client) BaseURL() string { return c.baseURL }

// Origin returns the API base with its /api suffix removed.
func (c *Client) Origin() string { return c.origin }

func (c *Client) endpointURL(path string, params Params) (string, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", fmt.Errorf("cms: build url %s: %w", path, err)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, v := range params {
			if strings.TrimSpace(v) == "" {
				continue
			}
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// get performs a fresh GET and returns the raw body of a 2xx response.
func (c *Client) get(ctx context.Context, endpoint, path string, params Params) ([]byte, error) {
	target, err := c.endpointURL(path, params)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, endpoint, http.MethodGet, target, nil)
}

// post sends payload as JSON.
func (c *Client) post(ctx context.Context, endpoint, path string, payload any) ([]byte, error) {
	target, err := c.endpointURL(path, nil)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("cms: encode %s payload: %w", endpoint, err)
	}
	return c.do(ctx, endpoint, http.MethodPost, target, body)
}

func (c *Client) do(ctx context.Context, endpoint, method, target string, body []byte) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "cms."+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", target),
			attribute.String("cms.endpoint", endpoint),
		),
	)
	defer span.End()

	logger := observability.FromContextOr(ctx, c.logger).With(
		zap.String("cms_endpoint", endpoint),
		zap.String("cms_method", method),
		zap.String("cms_url", target),
	)
	start := time.Now()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		c.fail(span, endpoint, observability.OutcomeError, start, err)
		return nil, fmt.Errorf("cms: build request %s %s: %w", method, target, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.fail(span, endpoint, observability.OutcomeError, start, err)
		logger.Warn("cms request failed", zap.Error(err))
		return nil, fmt.Errorf("cms: %s %s: %w", method, target, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		reqErr := &RequestError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(snippet)),
		}
		outcome := observability.OutcomeError
		if resp.StatusCode == http.StatusNotFound {
			outcome = observability.OutcomeNotFound
		}
		c.fail(span, endpoint, outcome, start, reqErr)
		logger.Warn("cms responded with error status", zap.Int("status", resp.StatusCode))
		return nil, reqErr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.fail(span, endpoint, observability.OutcomeError, start, err)
		return nil, fmt.Errorf("cms: read %s %s: %w", method, target, err)
	}
	c.metrics.ObserveCMS(endpoint, observability.OutcomeOK, time.Since(start))
	logger.Debug("cms request completed", zap.Duration("latency", time.Since(start)), zap.Int("bytes", len(data)))
	return data, nil
}

func (c *Client) fail(span trace.Span, endpoint, outcome string, start time.Time, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.metrics.ObserveCMS(endpoint, outcome, time.Since(start))
}

// getList fetches path and normalizes the body into typed elements.
func getList[T any](ctx context.Context, c *Client, endpoint, path string, params Params) ([]T, error) {
	body, err := c.get(ctx, endpoint, path, params)
	if err != nil {
		return nil, err
	}
	items, err := DecodeList[T](body, func(index int, err error) {
		observability.FromContextOr(ctx, c.logger).Debug("cms: skipped list element",
			zap.String("endpoint", endpoint),
			zap.Int("index", index),
			zap.Error(err),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("cms: decode %s: %w", endpoint, err)
	}
	return items, nil
}

// getOne fetches a single object.
func getOne[T any](ctx context.Context, c *Client, endpoint, path string) (T, error) {
	var out T
	body, err := c.get(ctx, endpoint, path, nil)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("cms: decode %s: %w", endpoint, err)
	}
	return out, nil
}
