package apel

import (
	"github.com/Sumatoshi-tech/graccapel/internal/normtable"
	"github.com/Sumatoshi-tech/graccapel/pkg/mathutil"
)

// DefaultNormFactor is used when no plausible factor can be determined.
const DefaultNormFactor = 12.0

// maxNormFactor is the upper bound above which an observed factor is treated
// as implausible and overridden from the side table.
const maxNormFactor = 200.0

// ResolveFactor picks a single CPU normalization factor for one leaf from the
// observed values. Non-positive observations are discarded; none left yields
// the default, one is used as-is, several are averaged (duplicate values
// count individually). A result at or above the plausibility bound is
// replaced by the site's table entry, or the default when the table has none.
func ResolveFactor(observed []float64, site string, table normtable.Table) float64 {
	positive := make([]float64, 0, len(observed))

	for _, v := range observed {
		if v > 0 {
			positive = append(positive, v)
		}
	}

	var factor float64

	switch len(positive) {
	case 0:
		factor = DefaultNormFactor
	case 1:
		factor = positive[0]
	default:
		factor = mathutil.Mean(positive)
	}

	if factor >= maxNormFactor {
		if fallback, ok := table.Lookup(site); ok {
			return fallback
		}

		return DefaultNormFactor
	}

	return factor
}
