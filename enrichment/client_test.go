package enrichment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOfficeJSON = `{
	"company": {
		"name": "EMPRESA TESTE LTDA",
		"alias": "Teste",
		"openingDate": "2010-01-20",
		"legalNature": "206-2 Sociedade Empresária Limitada",
		"size": {"id": 2, "acronym": "ME", "text": "Microempresa"}
	},
	"address": {
		"street": "Av. Paulista",
		"number": "1000",
		"complement": "Sala 1",
		"district": "Bela Vista",
		"city": "São Paulo",
		"state": "SP",
		"zip": "01310100"
	},
	"mainActivity": {"id": 6201501, "text": "Desenvolvimento de programas de computador sob encomenda"},
	"status": "Ativa",
	"statusDate": "2010-01-20",
	"headquarterOrBranch": "Matriz"
}`

// countingLimiter records how many slots were consumed.
type countingLimiter struct {
	calls int
}

func (l *countingLimiter) Acquire(context.Context) error {
	l.calls++
	return nil
}

// fastOptions keeps retry waits in the microsecond range so failure paths
// run instantly under test.
func fastOptions(baseURL string) ClientOptions {
	return ClientOptions{
		APIKey:         "test-key",
		BaseURL:        baseURL,
		Timeout:        2 * time.Second,
		BackoffInitial: time.Millisecond,
		BackoffMax:     2 * time.Millisecond,
		RateWindow:     time.Millisecond,
	}
}

func TestFetchSuccess(t *testing.T) {
	var gotPath, gotAuth, gotStrategy string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotStrategy = r.URL.Query().Get("strategy")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleOfficeJSON))
	}))
	defer srv.Close()

	c := NewClient(fastOptions(srv.URL), nil)
	res := c.Fetch(context.Background(), "12345678000195")

	require.True(t, res.Success)
	assert.Equal(t, http.StatusOK, res.HTTPStatus)
	assert.Empty(t, res.ErrorKind)
	require.NotNil(t, res.Payload)
	assert.Equal(t, "EMPRESA TESTE LTDA", res.Payload.Company.Name)
	assert.Equal(t, "ME", res.Payload.Company.Size.Acronym)

	assert.Equal(t, "/office/12345678000195", gotPath)
	assert.Equal(t, "test-key", gotAuth, "API key goes raw into Authorization, no Bearer prefix")
	assert.Equal(t, "CACHE_IF_ERROR", gotStrategy)
}

func TestFetchHTTPErrorDoesNotRetry(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(fastOptions(srv.URL), nil)
	res := c.Fetch(context.Background(), "12345678000195")

	assert.False(t, res.Success)
	assert.Equal(t, ErrHTTP, res.ErrorKind)
	assert.Equal(t, http.StatusInternalServerError, res.HTTPStatus)
	assert.Equal(t, "http_error_500", res.ErrorDetail)
	assert.Nil(t, res.Payload)
	assert.Equal(t, 1, hits, "non-429 HTTP errors are fatal for the call, never retried")
}

func TestFetchRateLimitedAfterRetries(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	opts := fastOptions(srv.URL)
	opts.RetryMax429 = 3
	c := NewClient(opts, nil)
	res := c.Fetch(context.Background(), "12345678000195")

	assert.False(t, res.Success)
	assert.Equal(t, ErrRateLimited, res.ErrorKind)
	assert.Equal(t, http.StatusTooManyRequests, res.HTTPStatus)
	assert.Equal(t, 3, hits, "429 is retried exactly up to its own cap")
}

func TestFetchRecoversAfter429(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(sampleOfficeJSON))
	}))
	defer srv.Close()

	limiter := &countingLimiter{}
	c := NewClient(fastOptions(srv.URL), limiter)
	res := c.Fetch(context.Background(), "12345678000195")

	assert.True(t, res.Success)
	assert.Equal(t, 2, hits)
	assert.Equal(t, 2, limiter.calls, "the 429 retry consumed its own limiter slot")
}

func TestRetryAfterHint(t *testing.T) {
	opts := fastOptions("http://unused")
	opts.RateWindow = 45 * time.Second
	c := NewClient(opts, nil)

	h := http.Header{}
	h.Set("Retry-After", "7")
	assert.Equal(t, 7*time.Second, c.retryAfter(h))

	h.Set("Retry-After", "not-a-number")
	assert.Equal(t, 45*time.Second, c.retryAfter(h))

	assert.Equal(t, 45*time.Second, c.retryAfter(http.Header{}))
}

func TestFetchParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>definitely not json</html>"))
	}))
	defer srv.Close()

	c := NewClient(fastOptions(srv.URL), nil)
	res := c.Fetch(context.Background(), "12345678000195")

	assert.False(t, res.Success)
	assert.Equal(t, ErrParse, res.ErrorKind)
	assert.Equal(t, http.StatusOK, res.HTTPStatus)
	assert.Nil(t, res.Payload)
}

func TestFetchNetworkErrorRetriesThenFails(t *testing.T) {
	// A server that is already closed produces connection-refused errors.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	limiter := &countingLimiter{}
	opts := fastOptions(srv.URL)
	opts.RetryMax = 3
	c := NewClient(opts, limiter)
	res := c.Fetch(context.Background(), "12345678000195")

	assert.False(t, res.Success)
	assert.Equal(t, ErrNetwork, res.ErrorKind)
	assert.Equal(t, 0, res.HTTPStatus)
	assert.Equal(t, 3, limiter.calls, "every retry must consume a rate-limiter slot")
}

func TestFetchCircuitBreakerOpens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	limiter := &countingLimiter{}
	opts := fastOptions(srv.URL)
	opts.RetryMax = 1
	c := NewClient(opts, limiter)

	for i := 0; i < 5; i++ {
		res := c.Fetch(context.Background(), "12345678000195")
		assert.Equal(t, ErrNetwork, res.ErrorKind)
	}
	require.Equal(t, "open", c.Breaker().State())

	res := c.Fetch(context.Background(), "12345678000195")
	assert.False(t, res.Success)
	assert.Equal(t, ErrNetwork, res.ErrorKind)
	assert.Equal(t, "circuit breaker open", res.ErrorDetail)
	assert.Equal(t, 5, limiter.calls, "an open breaker must not consume limiter slots")
}

func TestFetchCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleOfficeJSON))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(fastOptions(srv.URL), nil)
	res := c.Fetch(ctx, "12345678000195")
	assert.False(t, res.Success)
	assert.Equal(t, ErrNetwork, res.ErrorKind)
}
