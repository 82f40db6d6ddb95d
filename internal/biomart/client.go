package biomart

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultURL is the GRCh37 BioMart martservice endpoint.
const DefaultURL = "http://grch37.ensembl.org/biomart/martservice/"

// StatusError is returned when BioMart answers with a non-200 status.
// It carries the requested URL so the query can be debugged in a browser.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("biomart: unsuccessful HTTP response (status code %d), debug the following URL: %s", e.Code, e.URL)
}

// Client issues XML queries against a BioMart martservice endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given martservice URL.
// An empty URL selects DefaultURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch sends a single-line XML query as the "query" URL parameter and
// returns the raw tab-separated response body. A non-200 status yields a
// *StatusError; there is no retry.
func (c *Client) Fetch(ctx context.Context, query string) (string, error) {
	reqURL := c.baseURL + "?query=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("build biomart request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("biomart request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode, URL: reqURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read biomart response: %w", err)
	}
	return string(body), nil
}
