package application

import (
	"time"

	"gopkg.in/yaml.v3"
)

// AnalysisConfig defines a complete analysis: which competition events to
// load, the goal proportions of the award tiers, and the boundary rules to
// compare against the jury's decisions.
type AnalysisConfig struct {
	// Version specifies the configuration schema version using semantic
	// versioning to ensure compatibility across system updates.
	Version string `yaml:"version" validate:"required,semver"`
	// Metadata contains descriptive information about the analysis.
	Metadata Metadata `yaml:"metadata" validate:"required"`
	// Competition selects the results source, events and goal.
	Competition CompetitionConfig `yaml:"competition" validate:"required"`
	// Source configures how results are downloaded and cached.
	Source SourceConfig `yaml:"source"`
	// Rules are the boundary rules to apply to every event.
	Rules []RuleConfig `yaml:"rules" validate:"required,min=1,dive"`
}

// Metadata provides descriptive information about an analysis.
type Metadata struct {
	// Name is the human-readable identifier for this analysis.
	Name string `yaml:"name" validate:"required,min=1,max=255"`
	// Description explains what the analysis compares.
	Description string `yaml:"description" validate:"max=1000"`
	// Tags are categorical labels for filtering and grouping.
	Tags []string `yaml:"tags" validate:"max=20,dive,min=1,max=50"`
}

// CompetitionConfig identifies the events to analyze.
type CompetitionConfig struct {
	// Name selects the results source.
	Name string `yaml:"name" validate:"required,oneof=imo egmo"`
	// Events lists the event identifiers: years for the IMO, event numbers
	// for the EGMO.
	Events []int `yaml:"events" validate:"required,min=1,dive,min=1"`
	// Goal holds the desired proportions of each award tier, highest first,
	// followed by the weight of contestants without an award. Defaults to
	// the competition's standard goal when omitted.
	Goal []int `yaml:"goal" validate:"omitempty,goal"`
}

// SourceConfig controls downloading and caching of results documents.
type SourceConfig struct {
	// CacheDir is the directory holding downloaded documents.
	CacheDir string `yaml:"cache_dir"`
	// RequestsPerSecond limits the download rate. Zero means the default.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"min=0,max=100"`
	// Burst is the number of requests allowed at once.
	Burst int `yaml:"burst" validate:"min=0,max=100"`
	// TimeoutSeconds bounds each download.
	TimeoutSeconds int `yaml:"timeout_seconds" validate:"min=0,max=3600"`
}

// Timeout returns the configured download timeout, or def when unset.
func (s SourceConfig) Timeout(def time.Duration) time.Duration {
	if s.TimeoutSeconds == 0 {
		return def
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// RuleConfig defines one boundary rule as an ordered list of units. Each
// unit sees the boundaries resolved by the units before it.
type RuleConfig struct {
	// ID is the unique identifier for this rule.
	ID string `yaml:"id" validate:"required,identifier,min=1,max=100"`
	// Description explains the rule for reports.
	Description string `yaml:"description" validate:"max=1000"`
	// Units lists the rule's steps in execution order.
	Units []UnitConfig `yaml:"units" validate:"required,min=1,max=8,dive"`
}

// UnitConfig defines a single step of a rule.
type UnitConfig struct {
	// ID is the unique identifier for this unit within its rule.
	ID string `yaml:"id" validate:"required,identifier,min=1,max=100"`
	// Type specifies the unit implementation to instantiate.
	Type string `yaml:"type" validate:"required,oneof=margin_linear margin_quadratic tier_independent tier_sequential tier_lp tier_ratio"`
	// Parameters contains type-specific configuration, validated according
	// to the unit type.
	Parameters yaml.Node `yaml:"parameters"`
}
