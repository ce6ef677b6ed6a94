package gracc

import (
	"encoding/json"
	"fmt"
	"io"
)

// millisPerSecond converts the store's epoch-millisecond timestamps.
const millisPerSecond = 1000

// Response is the decoded aggregation tree of one monthly query.
type Response struct {
	Aggregations Aggregations `json:"aggregations"`
}

// Aggregations holds the top grouping level.
type Aggregations struct {
	Cores BucketList[CoreBucket] `json:"Cores"`
}

// BucketList is one terms aggregation: a list of typed child buckets.
type BucketList[T any] struct {
	Buckets []T `json:"buckets"`
}

// CoreBucket groups usage by processor count.
type CoreBucket struct {
	Key int64                `json:"key"`
	VO  BucketList[VOBucket] `json:"VO"`
}

// VOBucket groups usage by virtual organization.
type VOBucket struct {
	Key string               `json:"key"`
	DN  BucketList[DNBucket] `json:"DN"`
}

// DNBucket groups usage by submitting user identity.
type DNBucket struct {
	Key  string                 `json:"key"`
	Site BucketList[SiteBucket] `json:"Site"`
}

// SiteBucket groups usage by resource group. When Key is MissingSite the leaf
// metrics here are meaningless and SiteName carries the real leaves.
type SiteBucket struct {
	Key string `json:"key"`
	LeafMetrics
	SiteName BucketList[SiteNameBucket] `json:"SiteName"`
}

// SiteNameBucket is the fallback grouping by site name under the missing-site
// sentinel.
type SiteNameBucket struct {
	Key string `json:"key"`
	LeafMetrics
}

// FactorBucket is one observed normalization-factor value at a leaf.
type FactorBucket struct {
	Key float64 `json:"key"`
}

// MetricValue is a single-valued metric aggregation (sum, min or max).
type MetricValue struct {
	Value float64 `json:"value"`
}

// LeafMetrics carries the raw summed metrics of one leaf bucket.
type LeafMetrics struct {
	NormalFactor BucketList[FactorBucket] `json:"NormalFactor"`
	CPUSystem    MetricValue              `json:"CpuDuration_system"`
	CPUUser      MetricValue              `json:"CpuDuration_user"`
	CPUCombined  MetricValue              `json:"CpuDuration"`
	Wall         MetricValue              `json:"WallDuration"`
	Jobs         MetricValue              `json:"NumberOfJobs"`
	Earliest     MetricValue              `json:"EarliestEndTime"`
	Latest       MetricValue              `json:"LatestEndTime"`
}

// EndTimes returns the earliest and latest record end times in epoch seconds.
func (m LeafMetrics) EndTimes() (int64, int64) {
	return int64(m.Earliest.Value) / millisPerSecond, int64(m.Latest.Value) / millisPerSecond
}

// WallSeconds returns the summed wall duration.
func (m LeafMetrics) WallSeconds() int64 {
	return int64(m.Wall.Value)
}

// CPUSeconds returns the summed CPU duration, preferring the user+system
// split when either component is non-zero over the combined field.
func (m LeafMetrics) CPUSeconds() int64 {
	if m.CPUUser.Value == 0 && m.CPUSystem.Value == 0 {
		return int64(m.CPUCombined.Value)
	}

	return int64(m.CPUUser.Value + m.CPUSystem.Value)
}

// JobCount returns the summed job count.
func (m LeafMetrics) JobCount() int64 {
	return int64(m.Jobs.Value)
}

// ObservedFactors returns every normalization-factor value reported at this
// leaf, unfiltered.
func (m LeafMetrics) ObservedFactors() []float64 {
	factors := make([]float64, 0, len(m.NormalFactor.Buckets))
	for _, b := range m.NormalFactor.Buckets {
		factors = append(factors, b.Key)
	}

	return factors
}

// ParseResponse decodes a search response body into the aggregation tree.
func ParseResponse(r io.Reader) (*Response, error) {
	var resp Response
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("gracc: decode response: %w", err)
	}

	return &resp, nil
}
