package gracc

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery(t *testing.T) {
	t.Parallel()

	body, err := BuildQuery(2026, time.July, []string{"atlas", "cms"})
	require.NoError(t, err)

	var query map[string]any
	require.NoError(t, json.Unmarshal(body, &query))

	t.Run("no_hits_requested", func(t *testing.T) {
		t.Parallel()

		assert.InDelta(t, 0.0, query["size"], 0)
	})

	t.Run("month_range_filter", func(t *testing.T) {
		t.Parallel()

		s := string(body)
		assert.Contains(t, s, `"gte":"2026-07-01T00:00:00"`)
		assert.Contains(t, s, `"lt":"2026-08-01T00:00:00"`)
	})

	t.Run("vo_allow_list", func(t *testing.T) {
		t.Parallel()

		assert.Contains(t, string(body), `"VOName":["atlas","cms"]`)
	})

	t.Run("resource_type_disjunction", func(t *testing.T) {
		t.Parallel()

		s := string(body)
		assert.Contains(t, s, `"ResourceType":"Batch"`)
		assert.Contains(t, s, `"ResourceType":"Payload"`)
		assert.Contains(t, s, `"Grid":"Local"`)
		assert.Contains(t, s, `"minimum_should_match":1`)
	})

	t.Run("grouping_hierarchy", func(t *testing.T) {
		t.Parallel()

		aggs, ok := query["aggs"].(map[string]any)
		require.True(t, ok)

		cores, ok := aggs["Cores"].(map[string]any)
		require.True(t, ok)

		vo, ok := cores["aggs"].(map[string]any)["VO"].(map[string]any)
		require.True(t, ok)

		dn, ok := vo["aggs"].(map[string]any)["DN"].(map[string]any)
		require.True(t, ok)

		site, ok := dn["aggs"].(map[string]any)["Site"].(map[string]any)
		require.True(t, ok)

		terms, ok := site["terms"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, MissingSite, terms["missing"])
		assert.Equal(t, "OIM_ResourceGroup", terms["field"])

		siteAggs, ok := site["aggs"].(map[string]any)
		require.True(t, ok)

		// Leaf metrics live both on the Site level and under the
		// SiteName fallback level.
		assert.Contains(t, siteAggs, "NormalFactor")
		assert.Contains(t, siteAggs, "WallDuration")
		assert.Contains(t, siteAggs, "SiteName")

		siteName, ok := siteAggs["SiteName"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, siteName["aggs"].(map[string]any), "EarliestEndTime")
	})
}

func TestParseResponse(t *testing.T) {
	t.Parallel()

	const fixture = `{
		"aggregations": {
			"Cores": {"buckets": [{
				"key": 8,
				"VO": {"buckets": [{
					"key": "cms",
					"DN": {"buckets": [{
						"key": "N/A",
						"Site": {"buckets": [{
							"key": "Crane",
							"NormalFactor": {"buckets": [{"key": 10.0}]},
							"CpuDuration_system": {"value": 0},
							"CpuDuration_user": {"value": 0},
							"CpuDuration": {"value": 3600},
							"WallDuration": {"value": 3600},
							"NumberOfJobs": {"value": 1},
							"EarliestEndTime": {"value": 1753000000000},
							"LatestEndTime": {"value": 1753086400000},
							"SiteName": {"buckets": []}
						}]}
					}]}
				}]}
			}]}
		}
	}`

	resp, err := ParseResponse(strings.NewReader(fixture))
	require.NoError(t, err)

	cores := resp.Aggregations.Cores.Buckets
	require.Len(t, cores, 1)
	assert.Equal(t, int64(8), cores[0].Key)

	site := cores[0].VO.Buckets[0].DN.Buckets[0].Site.Buckets[0]
	assert.Equal(t, "Crane", site.Key)

	earliest, latest := site.EndTimes()
	assert.Equal(t, int64(1753000000), earliest)
	assert.Equal(t, int64(1753086400), latest)

	assert.Equal(t, int64(3600), site.WallSeconds())
	assert.Equal(t, int64(1), site.JobCount())
	assert.Equal(t, []float64{10.0}, site.ObservedFactors())
}

func TestLeafMetricsCPUSeconds(t *testing.T) {
	t.Parallel()

	t.Run("combined_when_split_is_zero", func(t *testing.T) {
		t.Parallel()

		m := LeafMetrics{CPUCombined: MetricValue{Value: 500}}
		assert.Equal(t, int64(500), m.CPUSeconds())
	})

	t.Run("split_preferred_when_present", func(t *testing.T) {
		t.Parallel()

		m := LeafMetrics{
			CPUCombined: MetricValue{Value: 500},
			CPUUser:     MetricValue{Value: 300},
			CPUSystem:   MetricValue{Value: 100},
		}
		assert.Equal(t, int64(400), m.CPUSeconds())
	})

	t.Run("single_nonzero_component_suffices", func(t *testing.T) {
		t.Parallel()

		m := LeafMetrics{
			CPUCombined: MetricValue{Value: 500},
			CPUUser:     MetricValue{Value: 300},
		}
		assert.Equal(t, int64(300), m.CPUSeconds())
	})
}
