package apel

// siteRenames maps retired cluster names to their canonical site.
var siteRenames = map[string]string{
	"Crane":     "Nebraska",
	"Sandhills": "Nebraska",
	"Tusker":    "Nebraska",
}

type siteVO struct {
	site string
	vo   string
}

// siteVORenames splits a shared site by VO. LHCb usage of the shared MIT CMS
// site reports under its own name.
var siteVORenames = map[siteVO]string{
	{site: "MIT_CMS", vo: "lhcb"}: "MIT_LHCb",
}

// CanonicalSite rewrites a site identifier to its canonical reporting name:
// first the site-only renames, then the (site, vo) splits. Unknown sites pass
// through unchanged. Idempotent.
func CanonicalSite(site, vo string) string {
	if renamed, ok := siteRenames[site]; ok {
		site = renamed
	}

	if renamed, ok := siteVORenames[siteVO{site: site, vo: vo}]; ok {
		site = renamed
	}

	return site
}
