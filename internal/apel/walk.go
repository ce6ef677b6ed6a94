package apel

import (
	"log/slog"

	"github.com/Sumatoshi-tech/graccapel/internal/gracc"
	"github.com/Sumatoshi-tech/graccapel/internal/normtable"
)

// LeafBucket is the metric surface of one innermost grouped bucket.
type LeafBucket interface {
	// EndTimes returns the earliest and latest record end times in epoch seconds.
	EndTimes() (earliest, latest int64)
	// WallSeconds returns the summed wall duration.
	WallSeconds() int64
	// CPUSeconds returns the summed CPU duration.
	CPUSeconds() int64
	// JobCount returns the summed job count.
	JobCount() int64
	// ObservedFactors returns the normalization-factor values seen at the leaf.
	ObservedFactors() []float64
}

// Walker folds a grouped query result into a RecordSet.
type Walker struct {
	Table  normtable.Table
	Logger *slog.Logger
}

// Walk traverses the Cores/VO/DN/Site hierarchy and merges every leaf. Site
// buckets carrying the missing-site sentinel are skipped in favor of their
// SiteName children. Traversal order does not affect the result.
func (w *Walker) Walk(resp *gracc.Response) RecordSet {
	records := RecordSet{}

	for _, coreBkt := range resp.Aggregations.Cores.Buckets {
		for _, voBkt := range coreBkt.VO.Buckets {
			for _, dnBkt := range voBkt.DN.Buckets {
				for _, siteBkt := range dnBkt.Site.Buckets {
					if siteBkt.Key == gracc.MissingSite {
						for _, nameBkt := range siteBkt.SiteName.Buckets {
							w.addLeaf(records, voBkt.Key, nameBkt.Key, coreBkt.Key, dnBkt.Key, nameBkt.LeafMetrics)
						}

						continue
					}

					w.addLeaf(records, voBkt.Key, siteBkt.Key, coreBkt.Key, dnBkt.Key, siteBkt.LeafMetrics)
				}
			}
		}
	}

	return records
}

// addLeaf canonicalizes the site, resolves the factor and merges one leaf.
// Leaf-local extraction happens exactly once per leaf here.
func (w *Walker) addLeaf(records RecordSet, vo, site string, cores int64, dn string, leaf LeafBucket) {
	canonical := CanonicalSite(site, vo)
	if canonical != site {
		w.Logger.Debug("aliased site", "site", site, "canonical", canonical, "vo", vo)
	}

	earliest, latest := leaf.EndTimes()

	rec := Record{
		MinTime:    earliest,
		MaxTime:    latest,
		WallDur:    leaf.WallSeconds(),
		CPUDur:     leaf.CPUSeconds(),
		NormFactor: ResolveFactor(leaf.ObservedFactors(), canonical, w.Table),
		Jobs:       leaf.JobCount(),
	}

	records.Add(RecordKey{VO: vo, Site: canonical, Cores: cores, DN: dn}, rec)
}
