package config

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/sevigo/review-gate/internal/core"
)

var (
	ErrRepoConfigNotFound = errors.New("repo config file not found")
	ErrRepoConfigParsing  = errors.New("repo config parsing failed")
)

// RepoConfigFileName is the per-repository override file fetched from the
// repository root of the pull request's head.
const RepoConfigFileName = ".review-gate.yml"

// ParseRepoConfig parses the contents of a .review-gate.yml file. Callers
// fetch the bytes themselves (usually via the contents API); empty content is
// treated as not found so defaults apply.
func ParseRepoConfig(data []byte) (*core.RepoConfig, error) {
	if len(data) == 0 {
		return core.DefaultRepoConfig(), ErrRepoConfigNotFound
	}

	cfg := core.DefaultRepoConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRepoConfigParsing, err)
	}

	if cfg.MinSeverity != "" && core.ParsePriority(cfg.MinSeverity) == "" {
		return nil, fmt.Errorf("%w: min_severity must be one of critical, high, medium, low; got %q",
			ErrRepoConfigParsing, cfg.MinSeverity)
	}
	return cfg, nil
}
