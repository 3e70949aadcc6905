package core

// RepoConfig represents the structure of the .review-gate.yml file that a
// repository may carry to tune how its reviews are filtered.
type RepoConfig struct {
	// Minimum severity a comment needs to be posted inline.
	// One of: critical, high, medium, low. Empty means no floor.
	MinSeverity string `yaml:"min_severity"`

	// Maximum number of inline comments per review. Zero means unbounded.
	MaxComments int `yaml:"max_comments"`

	// Path prefixes whose comments are never posted inline.
	// Example: ["vendor/", "docs/"]
	ExcludePaths []string `yaml:"exclude_paths"`
}

// DefaultRepoConfig returns a config with default values.
func DefaultRepoConfig() *RepoConfig {
	return &RepoConfig{
		ExcludePaths: []string{},
	}
}

// Apply overlays the repo-level overrides onto an operator-supplied filter
// config and returns the effective config for one run.
func (rc *RepoConfig) Apply(base FilterConfig) FilterConfig {
	effective := base
	if p := ParsePriority(rc.MinSeverity); p != "" {
		effective.MinSeverity = p
	}
	if rc.MaxComments > 0 {
		effective.MaxComments = rc.MaxComments
	}
	return effective
}
