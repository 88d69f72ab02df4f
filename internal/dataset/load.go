package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"tienda-dashboard/internal/config"
)

const maxBodyBytes = 64 << 20

type Loader struct {
	client *retryablehttp.Client
	logger *slog.Logger
}

func NewLoader(cfg config.DataConfig, logger *slog.Logger) *Loader {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.FetchRetries
	client.RetryWaitMin = 250 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = nil
	client.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			logger.Warn("retrying dataset fetch", "url", req.URL.Redacted(), "attempt", attempt)
		}
	}

	return &Loader{client: client, logger: logger}
}

// Load fetches source (an http(s) URL or a local path) and parses it.
func (l *Loader) Load(ctx context.Context, source string) (*Dataset, error) {
	start := time.Now()

	body, err := l.open(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer body.Close()

	ds, err := Parse(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	ds.source = source

	l.logger.Info("dataset loaded",
		"records", ds.Len(),
		"categories", len(ds.categories),
		"countries", len(ds.countries),
		"days", len(ds.daily),
		"duration", time.Since(start),
	)
	return ds, nil
}

func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !isRemote(source) {
		return os.Open(source)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv, text/plain, */*")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Redacted())
	}
	return resp.Body, nil
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
