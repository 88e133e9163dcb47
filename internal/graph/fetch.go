package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
)

const maxImageBytes = 16 << 20

// ErrEmptyImage is returned when the render API answers with no content.
var ErrEmptyImage = errors.New("empty graph image")

// Fetcher downloads rendered graphs.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

// NewFetcher creates a Fetcher. A zero timeout leaves requests unbounded.
// Pass nil logger to use the default logger.
func NewFetcher(timeout time.Duration, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch returns the PNG bytes for req.
func (f *Fetcher) Fetch(ctx context.Context, req *Request) ([]byte, error) {
	u := req.URL()
	f.logger.Debug("graph url", "url", u)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "image/png")

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetching graph: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph request returned status %d", resp.StatusCode)
	}

	img, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("reading graph: %w", err)
	}
	if len(img) == 0 {
		return nil, ErrEmptyImage
	}

	f.logger.Debug("graph fetched",
		"size", humanize.Bytes(uint64(len(img))),
		"content_type", resp.Header.Get("Content-Type"),
	)
	return img, nil
}
