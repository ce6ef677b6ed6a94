// Package topology resolves the HEPScore23 capacity portion of a resource
// group from the OSG Topology service.
//
// The resource-group summary is fetched at most once per process run and
// cached for the lifetime of the Client. A failed fetch is fatal to the run;
// a partial report is worse than none.
package topology

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/graccapel/pkg/mathutil"
)

// percentScale converts a percentage in [0,100] to a fraction in [0,1].
const percentScale = 100.0

// summarySchema is the shape expected of the resource-group summary payload.
const summarySchema = `{
	"type": "object",
	"additionalProperties": {
		"type": "object",
		"required": ["Resources"],
		"properties": {
			"Resources": {
				"type": "object",
				"required": ["Resource"],
				"properties": {
					"Resource": {"type": "array"}
				}
			}
		}
	}
}`

// ErrStatus is returned when the topology endpoint answers with a non-200 status.
var ErrStatus = errors.New("topology: unexpected response status")

// ErrSchema is returned when the summary payload does not match the expected shape.
var ErrSchema = errors.New("topology: summary payload failed schema validation")

// resourceGroup mirrors one entry of the resource-group summary.
type resourceGroup struct {
	Resources struct {
		Resource []struct {
			WLCGInformation struct {
				HEPScore23Percentage *percentValue `json:"HEPScore23Percentage"`
			} `json:"WLCGInformation"`
		} `json:"Resource"`
	} `json:"Resources"`
}

// percentValue accepts a percentage encoded as either a JSON number or a
// numeric string, which is how Topology reports it.
type percentValue float64

func (p *percentValue) UnmarshalJSON(data []byte) error {
	raw := string(data)

	if len(raw) > 0 && raw[0] == '"' {
		var quoted string
		if err := json.Unmarshal(data, &quoted); err != nil {
			return fmt.Errorf("topology: percentage: %w", err)
		}

		raw = quoted
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("topology: percentage: %w", err)
	}

	*p = percentValue(f)

	return nil
}

// Client fetches and caches the mean HEPScore23 percentage per resource group.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger

	// percentages is nil until the first successful fetch; it maps a
	// resource-group name to the mean HEPScore23Percentage on the 0-100
	// scale. Never invalidated within a run.
	percentages map[string]float64
}

// NewClient creates a resolver for the given summary endpoint.
func NewClient(endpoint string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{endpoint: endpoint, httpClient: httpClient, logger: logger}
}

// Portion returns the HEPScore23 fraction of the resource group's capacity,
// in [0,1]. Unknown resource groups yield 0.0. The first call triggers the
// single fetch; any fetch failure is returned unrecovered.
func (c *Client) Portion(ctx context.Context, resourceGroup string) (float64, error) {
	if c.percentages == nil {
		if err := c.fetch(ctx); err != nil {
			return 0, err
		}
	}

	return c.percentages[resourceGroup] / percentScale, nil
}

func (c *Client) fetch(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("topology: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("topology: fetch resource group summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("topology: read response: %w", err)
	}

	if err := validateSummary(body); err != nil {
		return err
	}

	var groups map[string]resourceGroup
	if err := json.Unmarshal(body, &groups); err != nil {
		return fmt.Errorf("topology: decode summary: %w", err)
	}

	percentages := make(map[string]float64, len(groups))

	for name, group := range groups {
		var observed []float64

		for _, resource := range group.Resources.Resource {
			if p := resource.WLCGInformation.HEPScore23Percentage; p != nil {
				observed = append(observed, float64(*p))
			}
		}

		// Groups reporting no percentage stay at 0.0.
		percentages[name] = mathutil.Mean(observed)
	}

	c.percentages = percentages
	c.logger.Debug("fetched resource group summary", "groups", len(percentages))

	return nil
}

func validateSummary(body []byte) error {
	schema := gojsonschema.NewStringLoader(summarySchema)
	document := gojsonschema.NewBytesLoader(body)

	result, err := gojsonschema.Validate(schema, document)
	if err != nil {
		return fmt.Errorf("topology: validate summary: %w", err)
	}

	if !result.Valid() {
		return fmt.Errorf("%w: %v", ErrSchema, result.Errors())
	}

	return nil
}
