// Package registry queries the authoritative government open-data service
// for parcel locations, characteristics, assessments, tax rates and sales.
//
// Every failure here is returned to the caller: the registry is the source of
// truth, so nothing is degraded or defaulted silently.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"taxappeal/internal/evidence/providers"
	"taxappeal/internal/evidence/registry/metrics"
	"taxappeal/internal/platform/config"
)

const maxResponseBytes = 8 << 20

// Client is the Primary Registry client.
type Client struct {
	baseURL   string
	appToken  string
	state     string
	floorYear int
	timeout   time.Duration
	datasets  config.Datasets

	httpClient *http.Client
	limiter    *rate.Limiter
	tracer     trace.Tracer
	logger     *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithClock overrides the time source used for recency windows.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a registry client from configuration.
func New(cfg config.RegistryConfig, opts ...Option) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	c := &Client{
		baseURL:    cfg.BaseURL,
		appToken:   cfg.AppToken,
		state:      cfg.State,
		floorYear:  cfg.TaxRateFloorYear,
		timeout:    cfg.Timeout,
		datasets:   cfg.Datasets,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(limit, burst),
		tracer:     otel.Tracer("taxappeal/registry"),
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// query runs q against dataset and decodes the JSON row array into out.
func (c *Client) query(ctx context.Context, dataset string, q *Query, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "registry.query",
		trace.WithAttributes(attribute.String("dataset", dataset)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	waitStart := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return c.fail(dataset, providers.ClassifyTransport(err), "rate limiter wait aborted", err)
	}
	c.metrics.ObserveThrottle(time.Since(waitStart))

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := fmt.Sprintf("%s/resource/%s.json?%s", c.baseURL, dataset, q.Values().Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return c.fail(dataset, providers.ErrorInternal, "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.appToken != "" {
		req.Header.Set("X-App-Token", c.appToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveQuery(dataset, false, time.Since(start))
		return c.fail(dataset, providers.ClassifyTransport(err), "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.metrics.ObserveQuery(dataset, err == nil && resp.StatusCode == http.StatusOK, time.Since(start))
	if err != nil {
		return c.fail(dataset, providers.ClassifyTransport(err), "failed to read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return c.fail(dataset, providers.ErrorBadData, "unknown dataset", nil)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return c.fail(dataset, providers.ErrorUnauthorized, fmt.Sprintf("status %d", resp.StatusCode), nil)
	case resp.StatusCode == http.StatusBadRequest:
		return c.fail(dataset, providers.ErrorBadData, "query rejected", errors.New(truncate(body, 256)))
	default:
		return c.fail(dataset, providers.ErrorProviderOutage, fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return c.fail(dataset, providers.ErrorBadData, "failed to decode rows", err)
	}
	return nil
}

func (c *Client) fail(dataset string, category providers.ErrorCategory, msg string, err error) error {
	c.metrics.IncrementError(dataset, string(category))
	return providers.NewSourceError(category, providers.SourcePrimaryRegistry, msg, err).WithDataset(dataset)
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
