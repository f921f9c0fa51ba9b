package results

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/ahrav/medalbound/internal/ports"
)

// Default fetch settings. The results sites are small volunteer-run
// servers, so requests are paced conservatively.
const (
	DefaultRequestsPerSecond = 2
	DefaultBurst             = 1
	DefaultTimeout           = 30 * time.Second
	DefaultMaxRetries        = 3

	maxDocumentSize = 32 << 20
)

// Fetcher downloads results documents into an ArtifactCache. Documents
// already cached are never refetched. Concurrent requests for the same key
// share one download.
type Fetcher struct {
	client     *http.Client
	cache      ports.ArtifactCache
	limiter    *rate.Limiter
	logger     *zap.Logger
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	sf         singleflight.Group
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient sets the HTTP client used for downloads.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// WithRateLimit paces downloads with a token bucket of the given rate and
// burst. A non-positive limit disables pacing.
func WithRateLimit(limit float64, burst int) FetcherOption {
	return func(f *Fetcher) {
		if limit <= 0 {
			f.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		f.limiter = rate.NewLimiter(rate.Limit(limit), max(burst, 1))
	}
}

// WithRetry retries retryable failures up to maxRetries times with
// exponential backoff between baseDelay and maxDelay.
func WithRetry(maxRetries int, baseDelay, maxDelay time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.maxRetries = max(maxRetries, 0)
		f.baseDelay = baseDelay
		f.maxDelay = maxDelay
	}
}

// WithFetchLogger sets the fetcher's logger.
func WithFetchLogger(l *zap.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = l }
}

// NewFetcher creates a Fetcher storing documents in cache.
func NewFetcher(cache ports.ArtifactCache, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:     &http.Client{Timeout: DefaultTimeout},
		cache:      cache,
		limiter:    rate.NewLimiter(DefaultRequestsPerSecond, DefaultBurst),
		logger:     zap.NewNop(),
		maxRetries: DefaultMaxRetries,
		baseDelay:  500 * time.Millisecond,
		maxDelay:   10 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the document stored under key, downloading it from url on
// a cache miss. source names the results source for error reporting.
func (f *Fetcher) Fetch(ctx context.Context, source, key, url string) ([]byte, error) {
	if data, ok, err := f.cache.Get(ctx, key); err != nil {
		return nil, err
	} else if ok {
		return data, nil
	}

	v, err, _ := f.sf.Do(key, func() (any, error) {
		// Another caller may have completed the download since our miss.
		if data, ok, err := f.cache.Get(ctx, key); err != nil {
			return nil, err
		} else if ok {
			return data, nil
		}

		data, err := f.downloadWithRetry(ctx, source, url)
		if err != nil {
			return nil, err
		}
		if err := f.cache.Set(ctx, key, data); err != nil {
			return nil, err
		}
		f.logger.Info("downloaded results",
			zap.String("source", source),
			zap.String("key", key),
			zap.Int("bytes", len(data)))
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (f *Fetcher) downloadWithRetry(ctx context.Context, source, url string) ([]byte, error) {
	var (
		lastErr  error
		attempts int
	)
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		attempts++
		data, err := f.download(ctx, source, url)
		if err == nil {
			return data, nil
		}
		lastErr = err

		var fe *ports.FetchError
		if !errors.As(err, &fe) || !fe.IsRetryable() || ctx.Err() != nil || attempt == f.maxRetries {
			break
		}

		delay := f.calculateDelay(attempt)
		if fe.RetryAfter != nil && *fe.RetryAfter > delay {
			delay = min(*fe.RetryAfter, f.maxDelay)
		}
		f.logger.Debug("retrying download",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if attempts == 1 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("download failed after %d attempts: %w", attempts, lastErr)
}

func (f *Fetcher) download(ctx context.Context, source, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ports.NewFetchError(source, url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ports.NewFetchError(source, url, fmt.Errorf("%w: %w", ports.ErrServiceUnavailable, err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fe := ports.NewFetchError(source, url, ports.StatusError(resp.StatusCode))
		fe.StatusCode = resp.StatusCode
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs >= 0 {
			d := time.Duration(secs) * time.Second
			fe.RetryAfter = &d
		}
		return nil, fe
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, ports.NewFetchError(source, url, fmt.Errorf("%w: %w", ports.ErrInvalidResponse, err))
	}
	return data, nil
}

func (f *Fetcher) calculateDelay(attempt int) time.Duration {
	// Exponential backoff with jitter.
	attempt = min(max(attempt, 0), 30)
	// #nosec G115 - attempt is bounded between 0 and 30
	delay := f.baseDelay * time.Duration(1<<uint(attempt))

	// Add jitter (±25%)
	// #nosec G404 - Using weak RNG is acceptable for jitter calculation
	jitter := time.Duration(rand.Float64() * float64(delay) * 0.5)
	delay = delay + jitter - (delay / 4)

	return min(delay, f.maxDelay)
}
