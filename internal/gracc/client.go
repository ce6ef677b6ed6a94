package gracc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
)

// ErrSearch is returned when the store answers a query with an error status.
var ErrSearch = errors.New("gracc: search request failed")

// Client issues the monthly aggregation query against one GRACC index.
type Client struct {
	search *opensearch.Client
	index  string
	vos    []string
	logger *slog.Logger
}

// NewClient connects to the store at url. The timeout bounds each search
// round-trip; vos is the VO allow-list applied to every query.
func NewClient(url, index string, timeout time.Duration, vos []string, logger *slog.Logger) (*Client, error) {
	search, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{url},
		Transport: &http.Transport{ResponseHeaderTimeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("gracc: create client: %w", err)
	}

	return &Client{search: search, index: index, vos: vos, logger: logger}, nil
}

// Query runs the monthly aggregation for year/month and returns the decoded
// bucket tree. Any error response from the store is fatal to the run.
func (c *Client) Query(ctx context.Context, year int, month time.Month) (*Response, error) {
	body, err := BuildQuery(year, month, c.vos)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("querying accounting store", "index", c.index, "year", year, "month", int(month))

	res, err := c.search.Search(
		c.search.Search.WithContext(ctx),
		c.search.Search.WithIndex(c.index),
		c.search.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("gracc: execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearch, res.Status())
	}

	return ParseResponse(res.Body)
}
