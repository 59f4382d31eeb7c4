package station

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"orion-collector/internal/domain"
)

// userAgent identifies the collector to the MicroServer's access logs.
const userAgent = "orion-collector/1.0.0"

// Client fetches the latest Enhanced XML sample from a MicroServer. It
// implements poller.Fetcher.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a station client. The timeout bounds the whole request;
// the MicroServer answers from RAM, so anything slow means trouble and the
// poll is better spent retrying on the grid.
func NewClient(stationURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url: stationURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// URL returns the sample document URL the client polls.
func (c *Client) URL() string {
	return c.url
}

// Fetch retrieves one raw sample document. Every failure comes back as a
// *domain.TransportError so the poller can classify it.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &domain.TransportError{URL: c.url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransportError{URL: c.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.TransportError{URL: c.url, Status: resp.StatusCode}
	}

	// the device is known to keep sending junk past the advertised length
	// on truncated transfers, so never read beyond it
	body := io.Reader(resp.Body)
	if resp.ContentLength >= 0 {
		body = io.LimitReader(resp.Body, resp.ContentLength)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &domain.TransportError{URL: c.url, Err: err}
	}

	c.logger.Debug("fetched station sample", "bytes", len(data))
	return data, nil
}
