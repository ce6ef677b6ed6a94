// Package gracc talks to the GRACC accounting store (OpenSearch) and exposes
// the monthly usage aggregation as a typed bucket tree.
package gracc

import (
	"encoding/json"
	"fmt"
	"time"
)

// maxBucketSize keeps the terms aggregations from truncating buckets.
const maxBucketSize = 1 << 30

// MissingSite is the sentinel bucket key for records without a resource
// group; those fall back to a secondary grouping by site name.
const MissingSite = "__MISSING__"

// timeLayout is the timestamp format the store accepts in range filters.
const timeLayout = "2006-01-02T15:04:05"

// BuildQuery renders the monthly APEL aggregation query: records ending
// within the month, VO in the allow-list, and either Batch resources or
// Payload resources on the local grid, bucketed by Cores/VO/DN/Site with
// the per-leaf accounting metrics.
func BuildQuery(year int, month time.Month, vos []string) ([]byte, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	leaf := leafMetricAggs()

	siteAggs := leafMetricAggs()
	siteAggs["SiteName"] = map[string]any{
		"terms": map[string]any{"field": "SiteName", "size": maxBucketSize},
		"aggs":  leaf,
	}

	query := map[string]any{
		"size": 0,
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{
						"bool": map[string]any{
							"must": []any{
								map[string]any{"range": map[string]any{"EndTime": map[string]any{
									"gte": start.Format(timeLayout),
									"lt":  end.Format(timeLayout),
								}}},
								map[string]any{"terms": map[string]any{"VOName": vos}},
								map[string]any{"bool": map[string]any{
									"should": []any{
										map[string]any{"term": map[string]any{"ResourceType": "Batch"}},
										map[string]any{"bool": map[string]any{"must": []any{
											map[string]any{"term": map[string]any{"ResourceType": "Payload"}},
											map[string]any{"term": map[string]any{"Grid": "Local"}},
										}}},
									},
									"minimum_should_match": 1,
								}},
							},
						},
					},
				},
			},
		},
		"aggs": map[string]any{
			"Cores": termsAgg("Processors", map[string]any{
				"VO": termsAgg("VOName", map[string]any{
					"DN": termsAgg("DN", map[string]any{
						"Site": map[string]any{
							"terms": map[string]any{
								"field":   "OIM_ResourceGroup",
								"size":    maxBucketSize,
								"missing": MissingSite,
							},
							"aggs": siteAggs,
						},
					}),
				}),
			}),
		},
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("gracc: marshal query: %w", err)
	}

	return body, nil
}

func termsAgg(field string, children map[string]any) map[string]any {
	return map[string]any{
		"terms": map[string]any{"field": field, "size": maxBucketSize},
		"aggs":  children,
	}
}

func leafMetricAggs() map[string]any {
	return map[string]any{
		"NormalFactor":       map[string]any{"terms": map[string]any{"field": "OIM_WLCGAPELNormalFactor"}},
		"CpuDuration_system": map[string]any{"sum": map[string]any{"field": "CpuDuration_system"}},
		"CpuDuration_user":   map[string]any{"sum": map[string]any{"field": "CpuDuration_user"}},
		"CpuDuration":        map[string]any{"sum": map[string]any{"field": "CpuDuration"}},
		"WallDuration":       map[string]any{"sum": map[string]any{"field": "WallDuration"}},
		"NumberOfJobs":       map[string]any{"sum": map[string]any{"field": "Count"}},
		"EarliestEndTime":    map[string]any{"min": map[string]any{"field": "EndTime"}},
		"LatestEndTime":      map[string]any{"max": map[string]any{"field": "EndTime"}},
	}
}
