package apel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalSite(t *testing.T) {
	t.Parallel()

	t.Run("legacy_cluster_renames", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "Nebraska", CanonicalSite("Crane", "cms"))
		assert.Equal(t, "Nebraska", CanonicalSite("Sandhills", "atlas"))
		assert.Equal(t, "Nebraska", CanonicalSite("Tusker", "lhcb"))
	})

	t.Run("vo_specific_split", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "MIT_LHCb", CanonicalSite("MIT_CMS", "lhcb"))
		assert.Equal(t, "MIT_CMS", CanonicalSite("MIT_CMS", "cms"))
	})

	t.Run("unknown_site_passes_through", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "Clemson-Palmetto", CanonicalSite("Clemson-Palmetto", "cms"))
	})

	t.Run("case_sensitive", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "crane", CanonicalSite("crane", "cms"))
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		once := CanonicalSite("Crane", "cms")
		assert.Equal(t, once, CanonicalSite(once, "cms"))

		split := CanonicalSite("MIT_CMS", "lhcb")
		assert.Equal(t, split, CanonicalSite(split, "lhcb"))
	})
}
