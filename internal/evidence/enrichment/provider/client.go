// Package provider is the HTTP client for the paid secondary property data
// provider. It knows the provider's wire format and status codes; quota and
// caching decisions belong to the enrichment package.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"taxappeal/internal/evidence/providers"
	"taxappeal/internal/platform/config"
	"taxappeal/pkg/platform/circuit"
)

const maxResponseBytes = 4 << 20

// Endpoints, relative to the configured base URL.
const (
	EndpointDetail  = "/property/detail"
	EndpointAddress = "/property/address"
	EndpointSales   = "/sale/snapshot"
)

// Client calls the secondary provider with an API key.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	breaker    *circuit.Breaker
	tracer     trace.Tracer
	logger     *slog.Logger
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

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

// WithClock overrides the time source stamped on fetched entries.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New returns nil when no API key is configured: callers treat a nil client
// as "provider unavailable".
func New(cfg config.ProviderConfig, opts ...Option) *Client {
	if !cfg.Enabled() {
		return nil
	}
	c := &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
		breaker: circuit.New(providers.SourceSecondaryProvider,
			circuit.WithFailureThreshold(cfg.FailureThreshold),
			circuit.WithSuccessThreshold(1),
			circuit.WithCooldown(cfg.Cooldown),
		),
		tracer: otel.Tracer("taxappeal/provider"),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Allow reports whether the circuit lets a call through now. Callers check it
// before reserving quota so an open circuit never spends budget.
func (c *Client) Allow() bool {
	return c.Enabled() && c.breaker.Allow()
}

// get performs one authenticated GET and returns the raw body of a 2xx answer.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (body []byte, err error) {
	ctx, span := c.tracer.Start(ctx, "provider.request",
		trace.WithAttributes(attribute.String("endpoint", endpoint)))
	defer func() {
		if err != nil && !providers.IsNotFound(err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, c.fail(providers.ErrorInternal, endpoint, "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(providers.ClassifyTransport(err), endpoint, "request failed", err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, c.fail(providers.ClassifyTransport(err), endpoint, "failed to read response", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		c.breaker.RecordSuccess()
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		c.breaker.RecordSuccess()
		return nil, providers.NewSourceError(providers.ErrorNotFound, providers.SourceSecondaryProvider, "no record", nil)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, c.fail(providers.ErrorUnauthorized, endpoint, fmt.Sprintf("status %d", resp.StatusCode), nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, c.fail(providers.ErrorQuotaExceeded, endpoint, "provider quota exceeded", nil)
	default:
		return nil, c.fail(providers.ErrorProviderOutage, endpoint, fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
}

// fail tags the error and feeds outages and timeouts to the breaker.
func (c *Client) fail(category providers.ErrorCategory, endpoint, msg string, err error) error {
	if category == providers.ErrorProviderOutage || category == providers.ErrorTimeout {
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.logger.Warn("secondary provider circuit opened", "endpoint", endpoint)
		}
	}
	return providers.NewSourceError(category, providers.SourceSecondaryProvider, msg, err).WithDataset(endpoint)
}

func (c *Client) decode(endpoint string, body []byte) (*propertyResponse, error) {
	var resp propertyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, providers.NewSourceError(providers.ErrorBadData, providers.SourceSecondaryProvider,
			"failed to decode response", err).WithDataset(endpoint)
	}
	return &resp, nil
}

// Enabled reports whether the client can make calls. A nil client is disabled.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}
