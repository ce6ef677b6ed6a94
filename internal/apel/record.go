// Package apel implements the aggregation-and-normalization engine that turns
// the grouped GRACC result tree into APEL normalised-summary records.
package apel

import (
	"cmp"
	"slices"

	"github.com/Sumatoshi-tech/graccapel/pkg/mathutil"
)

// RecordKey identifies one output record. Two leaf buckets with equal keys
// after site aliasing merge into one record.
type RecordKey struct {
	VO    string
	Site  string
	Cores int64
	DN    string
}

// Record accumulates the usage of one key. All durations are seconds; times
// are epoch seconds.
type Record struct {
	MinTime    int64
	MaxTime    int64
	WallDur    int64
	CPUDur     int64
	NormFactor float64
	Jobs       int64
}

// MergeRecords combines two records for the same key. The operation is
// associative and commutative, so leaves can fold in any order. Factors are
// resolved per leaf before merging; the merge keeps the smaller one.
func MergeRecords(a, b Record) Record {
	return Record{
		MinTime:    mathutil.Min(a.MinTime, b.MinTime),
		MaxTime:    mathutil.Max(a.MaxTime, b.MaxTime),
		WallDur:    a.WallDur + b.WallDur,
		CPUDur:     a.CPUDur + b.CPUDur,
		NormFactor: mathutil.Min(a.NormFactor, b.NormFactor),
		Jobs:       a.Jobs + b.Jobs,
	}
}

// RecordSet accumulates records by key.
type RecordSet map[RecordKey]Record

// Add inserts rec under key, merging with any record already there.
func (rs RecordSet) Add(key RecordKey, rec Record) {
	if existing, ok := rs[key]; ok {
		rec = MergeRecords(existing, rec)
	}

	rs[key] = rec
}

// SortedKeys returns the keys in output order: VO, site, cores, DN.
func (rs RecordSet) SortedKeys() []RecordKey {
	keys := make([]RecordKey, 0, len(rs))
	for key := range rs {
		keys = append(keys, key)
	}

	slices.SortFunc(keys, func(a, b RecordKey) int {
		return cmp.Or(
			cmp.Compare(a.VO, b.VO),
			cmp.Compare(a.Site, b.Site),
			cmp.Compare(a.Cores, b.Cores),
			cmp.Compare(a.DN, b.DN),
		)
	})

	return keys
}
