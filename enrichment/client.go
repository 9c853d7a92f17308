package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the production CNPJá API endpoint.
const DefaultBaseURL = "https://api.cnpja.com"

// Limiter gates every outbound attempt. Retries consume slots exactly like
// first attempts, so a retrying client still respects the plan ceiling.
type Limiter interface {
	Acquire(ctx context.Context) error
}

// ClientOptions configures the lookup client. Zero values fall back to the
// defaults documented on each field.
type ClientOptions struct {
	// APIKey is sent raw in the Authorization header (no Bearer prefix).
	APIKey string
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
	// Timeout bounds a single HTTP attempt. Default 30s.
	Timeout time.Duration
	// RetryMax is the attempt cap for transport failures. Default 4.
	RetryMax int
	// RetryMax429 is the attempt cap for HTTP 429. Default 3.
	RetryMax429 int
	// BackoffInitial is the first transport-failure backoff. Default 1s,
	// doubling per attempt up to BackoffMax (default 30s), with ±20% jitter.
	BackoffInitial    time.Duration
	BackoffMax        time.Duration
	BackoffJitterFrac float64
	// RateWindow is the 429 wait when the response carries no usable
	// Retry-After header. Default 60s, matching the plan's rate window.
	RateWindow time.Duration
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.RetryMax <= 0 {
		o.RetryMax = 4
	}
	if o.RetryMax429 <= 0 {
		o.RetryMax429 = 3
	}
	if o.BackoffInitial <= 0 {
		o.BackoffInitial = time.Second
	}
	if o.BackoffMax <= 0 {
		o.BackoffMax = 30 * time.Second
	}
	if o.BackoffJitterFrac <= 0 {
		o.BackoffJitterFrac = 0.2
	}
	if o.RateWindow <= 0 {
		o.RateWindow = time.Minute
	}
	return o
}

// Client looks up one CNPJ at a time against the CNPJá office endpoint.
// Fetch never fails past its boundary: every outcome, including exhausted
// retries, resolves to a Result.
type Client struct {
	opts       ClientOptions
	httpClient *http.Client
	breaker    *CircuitBreaker
	limiter    Limiter
}

// NewClient builds a lookup client. limiter may be nil to disable
// throttling (tests only; production always passes the window limiter).
func NewClient(opts ClientOptions, limiter Limiter) *Client {
	opts = opts.withDefaults()

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxConnsPerHost:     5,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		opts:    opts,
		limiter: limiter,
		breaker: NewCircuitBreaker(),
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
	}
}

// Breaker exposes the circuit breaker state for logging.
func (c *Client) Breaker() *CircuitBreaker { return c.breaker }

// defaultQuery carries the cache-control and optional-data flags of the
// office endpoint. Stale cached data is acceptable when the registry is
// unreachable (CACHE_IF_ERROR).
func defaultQuery() url.Values {
	q := url.Values{}
	q.Set("strategy", "CACHE_IF_ERROR")
	q.Set("maxAge", "45")
	q.Set("maxStale", "365")
	q.Set("simples", "false")
	q.Set("simplesHistory", "false")
	q.Set("suframa", "false")
	q.Set("geocoding", "false")
	q.Set("sync", "false")
	return q
}

// Fetch resolves one normalized CNPJ to a Result. Transport failures are
// retried with exponential backoff, HTTP 429 with its own bounded wait
// policy; any other non-2xx status and unparseable bodies resolve
// immediately. Every attempt consumes one limiter slot before the wire.
func (c *Client) Fetch(ctx context.Context, cnpj string) Result {
	attempts := 0
	attempts429 := 0

	for {
		if err := ctx.Err(); err != nil {
			return failureResult(ErrNetwork, err.Error(), 0)
		}
		if !c.breaker.CanProceed() {
			return failureResult(ErrNetwork, "circuit breaker open", 0)
		}
		if c.limiter != nil {
			if err := c.limiter.Acquire(ctx); err != nil {
				return failureResult(ErrNetwork, err.Error(), 0)
			}
		}

		status, header, body, err := c.attempt(ctx, cnpj)
		if err != nil {
			c.breaker.RecordFailure()
			attempts++
			if attempts >= c.opts.RetryMax {
				return failureResult(ErrNetwork, err.Error(), 0)
			}
			if werr := waitFor(ctx, c.backoff(attempts-1)); werr != nil {
				return failureResult(ErrNetwork, err.Error(), 0)
			}
			continue
		}

		if status == http.StatusTooManyRequests {
			attempts429++
			if attempts429 >= c.opts.RetryMax429 {
				return failureResult(ErrRateLimited, "429 persisted after retries", status)
			}
			if werr := waitFor(ctx, c.retryAfter(header)); werr != nil {
				return failureResult(ErrRateLimited, werr.Error(), status)
			}
			continue
		}

		if status < 200 || status >= 300 {
			if status >= 500 {
				c.breaker.RecordFailure()
			}
			return failureResult(ErrHTTP, fmt.Sprintf("http_error_%d", status), status)
		}

		c.breaker.RecordSuccess()

		var office Office
		if err := json.Unmarshal(body, &office); err != nil {
			return failureResult(ErrParse, err.Error(), status)
		}
		return successResult(&office, status)
	}
}

// attempt performs one HTTP round trip and reads the full body.
func (c *Client) attempt(ctx context.Context, cnpj string) (int, http.Header, []byte, error) {
	endpoint := fmt.Sprintf("%s/office/%s", c.opts.BaseURL, cnpj)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.URL.RawQuery = defaultQuery().Encode()
	req.Header.Set("Authorization", c.opts.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("read response body: %w", err)
	}
	return resp.StatusCode, resp.Header, body, nil
}

// retryAfter honors the Retry-After hint on a 429, falling back to one
// full rate window.
func (c *Client) retryAfter(header http.Header) time.Duration {
	if v := header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return c.opts.RateWindow
}

// backoff returns the sleep before retry number attempt (0-based),
// doubling from BackoffInitial and capped at BackoffMax, with jitter.
func (c *Client) backoff(attempt int) time.Duration {
	sleep := c.opts.BackoffInitial
	for i := 0; i < attempt && sleep < c.opts.BackoffMax; i++ {
		sleep *= 2
	}
	if sleep > c.opts.BackoffMax {
		sleep = c.opts.BackoffMax
	}
	j := 1 + (rand.Float64()*2-1)*c.opts.BackoffJitterFrac
	return time.Duration(float64(sleep) * j)
}

func waitFor(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
