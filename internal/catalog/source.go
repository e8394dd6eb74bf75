package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// maxFeedSize bounds how much of a catalog response is read.
const maxFeedSize = 32 << 20

// cacheBusterWindow is how long one cache-buster value stays the same.
const cacheBusterWindow = 30 * time.Minute

// Source fetches the raw catalog feed. origin names where the bytes came from.
type Source interface {
	Fetch(ctx context.Context) (data []byte, origin string, err error)
}

// FileSource reads the feed from a local file.
type FileSource struct {
	Path string
}

// Fetch implements Source.
func (s *FileSource) Fetch(ctx context.Context) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read catalog file %s: %w", s.Path, err)
	}
	return data, "file:" + s.Path, nil
}

// RetryConfig controls retries of one catalog URL.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryConfig returns the retry policy used when none is given.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   5 * time.Second,
	}
}

// HTTPSource fetches the feed over HTTP, trying each URL in order until one answers.
type HTTPSource struct {
	urls   []string
	client *http.Client
	retry  RetryConfig
	logger *logrus.Logger
	now    func() time.Time
}

// NewHTTPSource creates an HTTP source over one primary URL and any fallbacks.
func NewHTTPSource(urls []string, timeout time.Duration, retry RetryConfig, logger *logrus.Logger) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		urls:   urls,
		client: &http.Client{Timeout: timeout},
		retry:  retry,
		logger: logger,
		now:    time.Now,
	}
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, string, error) {
	if len(s.urls) == 0 {
		return nil, "", errors.New("no catalog URL configured")
	}

	var lastErr error
	for _, u := range s.urls {
		data, err := s.fetchWithRetry(ctx, u)
		if err == nil {
			return data, u, nil
		}
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		lastErr = err
		s.logger.WithError(err).WithField("url", u).Warn("Catalog URL failed, trying next")
	}
	return nil, "", fmt.Errorf("all catalog URLs failed: %w", lastErr)
}

func (s *HTTPSource) fetchWithRetry(ctx context.Context, rawURL string) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		data, err := s.fetchOnce(ctx, rawURL)
		if err == nil {
			return data, nil
		}
		if attempt >= s.retry.MaxRetries || !retryable(err) {
			return nil, err
		}

		delay := time.Duration(float64(s.retry.BaseDelay) * math.Pow(1.5, float64(attempt)))
		if s.retry.MaxDelay > 0 && delay > s.retry.MaxDelay {
			delay = s.retry.MaxDelay
		}
		s.logger.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"delay":   delay,
			"url":     rawURL,
			"error":   err.Error(),
		}).Debug("Retrying catalog fetch")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// statusError is a non-200 answer.
type statusError struct {
	Code int
	URL  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d@%s", e.Code, e.URL)
}

// retryable is false for client errors, which will not fix themselves.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.Code >= 500 || se.Code == http.StatusTooManyRequests
	}
	return true
}

func (s *HTTPSource) fetchOnce(ctx context.Context, rawURL string) ([]byte, error) {
	target, err := s.bustCache(rawURL)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &statusError{Code: resp.StatusCode, URL: rawURL}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog body: %w", err)
	}
	return data, nil
}

// bustCache adds a v= parameter that changes every half hour.
func (s *HTTPSource) bustCache(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid catalog URL %q: %w", rawURL, err)
	}
	q := u.Query()
	q.Set("v", strconv.FormatInt(s.now().UnixMilli()/cacheBusterWindow.Milliseconds(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
