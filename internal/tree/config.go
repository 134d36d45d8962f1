package tree

import (
	"github.com/temirov/ptree/internal/utils"
)

// ProjectConfig carries include and exclude path patterns applied while building.
// Patterns are evaluated against paths relative to the project root using
// forward slashes. A pattern ending in "/" matches a directory and everything
// beneath it; a single-segment pattern matches base names; other patterns match
// the whole relative path segment by segment.
type ProjectConfig struct {
	Include []string
	Exclude []string
}

// NewProjectConfig returns an empty configuration that filters nothing.
func NewProjectConfig() *ProjectConfig {
	return &ProjectConfig{}
}

// AddInclude appends one include pattern.
func (config *ProjectConfig) AddInclude(pattern string) *ProjectConfig {
	config.Include = append(config.Include, pattern)
	return config
}

// AddIncludes appends include patterns in order.
func (config *ProjectConfig) AddIncludes(patterns ...string) *ProjectConfig {
	config.Include = append(config.Include, patterns...)
	return config
}

// AddExclude appends one exclude pattern.
func (config *ProjectConfig) AddExclude(pattern string) *ProjectConfig {
	config.Exclude = append(config.Exclude, pattern)
	return config
}

// AddExcludes appends exclude patterns in order.
func (config *ProjectConfig) AddExcludes(patterns ...string) *ProjectConfig {
	config.Exclude = append(config.Exclude, patterns...)
	return config
}

// ClearInclude removes every include pattern.
func (config *ProjectConfig) ClearInclude() *ProjectConfig {
	config.Include = nil
	return config
}

// ClearExclude removes every exclude pattern.
func (config *ProjectConfig) ClearExclude() *ProjectConfig {
	config.Exclude = nil
	return config
}

type pathFilter struct {
	include utils.PatternSet
	exclude utils.PatternSet
}

func newPathFilter(config *ProjectConfig) pathFilter {
	if config == nil {
		return pathFilter{}
	}
	return pathFilter{
		include: utils.CompilePatterns(config.Include),
		exclude: utils.CompilePatterns(config.Exclude),
	}
}

// admits reports whether the entry at relativePath belongs in the tree.
// Directories are only subject to exclusion so include patterns can match
// files at any depth.
func (filter pathFilter) admits(relativePath string, isDirectory bool) bool {
	if filter.exclude.Matches(relativePath) {
		return false
	}
	if isDirectory || filter.include.Empty() {
		return true
	}
	return filter.include.Matches(relativePath)
}
