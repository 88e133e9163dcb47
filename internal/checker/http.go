package checker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/hazz-dev/okgraph/internal/config"
	"github.com/hazz-dev/okgraph/internal/plugin"
)

const (
	maxBodyBytes   = 4 << 20
	maxQuotedBytes = 256
)

// HTTPChecker polls a health page over HTTP(S).
type HTTPChecker struct {
	page   config.HealthPage
	client *http.Client
	logger *slog.Logger
}

// New returns a checker for the given health page. Pass nil logger to use
// the default logger.
func New(page config.HealthPage, logger *slog.Logger) *HTTPChecker {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPChecker{
		page:   page,
		client: &http.Client{
			Timeout: page.Timeout,
			// A redirect is a non-200 answer from the health page.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger,
	}
}

// Check fetches the health page and aggregates it. Transport, protocol and
// format errors all yield UNKNOWN.
func (c *HTTPChecker) Check(ctx context.Context) plugin.Result {
	url := c.page.URL()

	body, err := c.fetch(ctx, url)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			return plugin.Unknown("%s returned a non 200 status code (%d)", url, se.code)
		}
		if errors.Is(err, errBodyTooLarge) {
			return plugin.Unknown("%s returned a body larger than %s", url, humanize.IBytes(maxBodyBytes))
		}
		return plugin.Unknown("problem fetching %s: %v", url, err)
	}

	report, err := Parse(body, c.page.Exclude)
	if err != nil {
		c.logger.Debug("health page rejected", "url", url, "error", err)
		return plugin.Unknown("%s returned a non-json formatted string: %s", url, quote(body))
	}

	c.logger.Debug("health page parsed", "url", url, "checks", len(report.Checks), "failing", len(report.Failing()))
	return Aggregate(report)
}

var errBodyTooLarge = errors.New("body too large")

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

func (c *HTTPChecker) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.page.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, errBodyTooLarge
	}
	return body, nil
}

// quote shortens body for the status line without splitting a rune.
func quote(body []byte) string {
	if len(body) <= maxQuotedBytes {
		return string(body)
	}
	cut := maxQuotedBytes
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut]) + "..."
}
