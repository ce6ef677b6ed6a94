// Package config loads graccapel settings from file, environment and defaults.
package config

import "time"

// Config is the top-level configuration struct for graccapel.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	OpenSearch OpenSearchConfig `mapstructure:"opensearch"`
	Topology   TopologyConfig   `mapstructure:"topology"`
	VOs        []string         `mapstructure:"vos"`
	NormTable  NormTableConfig  `mapstructure:"normtable"`
}

// OpenSearchConfig holds the accounting-store connection settings.
type OpenSearchConfig struct {
	URL     string        `mapstructure:"url"`
	Index   string        `mapstructure:"index"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TopologyConfig holds the metadata-service settings.
type TopologyConfig struct {
	URL string `mapstructure:"url"`
}

// NormTableConfig locates the fallback normalization side table.
type NormTableConfig struct {
	Path string `mapstructure:"path"`
}

// Accounting-store defaults.
const (
	DefaultOpenSearchURL     = "https://gracc.opensciencegrid.org/q"
	DefaultOpenSearchIndex   = "gracc.osg.summary"
	DefaultOpenSearchTimeout = 300 * time.Second
)

// DefaultTopologyURL is the OSG Topology resource-group summary endpoint.
const DefaultTopologyURL = "https://topology.opensciencegrid.org/api/resource_group_summary"

// DefaultNormTablePath is the side-table location relative to the working directory.
const DefaultNormTablePath = "normal_hepspec"

// defaultVOs is the reported virtual-organization allow-list.
func defaultVOs() []string {
	return []string{"atlas", "alice", "belle", "cms", "enmr.eu", "lhcb"}
}
