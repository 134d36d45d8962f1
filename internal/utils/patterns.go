package utils

import (
	"path"
	"strings"
)

const pathSegmentSeparator = "/"

type patternKind int

const (
	// patternBaseName matches the last segment of any path.
	patternBaseName patternKind = iota
	// patternDirectory matches a leading run of segments and everything beneath it.
	patternDirectory
	// patternExact matches a whole relative path segment by segment.
	patternExact
)

type pathPattern struct {
	kind     patternKind
	segments []string
}

// PatternSet is a compiled list of path patterns evaluated against paths
// relative to a project root. A pattern ending in "/" matches that directory
// and all of its descendants, a single-segment pattern matches base names at
// any depth and any other pattern must match the whole path. Segments use
// path.Match glob syntax; backslashes are treated as separators.
type PatternSet struct {
	patterns []pathPattern
}

// CompilePatterns parses patterns into a PatternSet. Duplicates and blank
// entries are dropped.
func CompilePatterns(patterns []string) PatternSet {
	var compiled []pathPattern
	for _, pattern := range DeduplicatePatterns(patterns) {
		normalized := normalizeSeparators(strings.TrimSpace(pattern))
		if normalized == "" || normalized == pathSegmentSeparator {
			continue
		}
		kind := patternExact
		if strings.HasSuffix(normalized, pathSegmentSeparator) {
			kind = patternDirectory
			normalized = strings.TrimSuffix(normalized, pathSegmentSeparator)
		}
		segments := strings.Split(normalized, pathSegmentSeparator)
		if kind == patternExact && len(segments) == 1 {
			kind = patternBaseName
		}
		compiled = append(compiled, pathPattern{kind: kind, segments: segments})
	}
	return PatternSet{patterns: compiled}
}

// Empty reports whether the set holds no patterns.
func (set PatternSet) Empty() bool {
	return len(set.patterns) == 0
}

// Matches reports whether relativePath matches at least one pattern.
func (set PatternSet) Matches(relativePath string) bool {
	if len(set.patterns) == 0 {
		return false
	}
	pathSegments := strings.Split(normalizeSeparators(relativePath), pathSegmentSeparator)
	for _, pattern := range set.patterns {
		if pattern.matches(pathSegments) {
			return true
		}
	}
	return false
}

func (pattern pathPattern) matches(pathSegments []string) bool {
	switch pattern.kind {
	case patternBaseName:
		return segmentMatches(pattern.segments[0], pathSegments[len(pathSegments)-1])
	case patternDirectory:
		if len(pathSegments) < len(pattern.segments) {
			return false
		}
		return allSegmentsMatch(pattern.segments, pathSegments[:len(pattern.segments)])
	default:
		if len(pathSegments) != len(pattern.segments) {
			return false
		}
		return allSegmentsMatch(pattern.segments, pathSegments)
	}
}

func allSegmentsMatch(patternSegments []string, pathSegments []string) bool {
	for index, patternSegment := range patternSegments {
		if !segmentMatches(patternSegment, pathSegments[index]) {
			return false
		}
	}
	return true
}

// segmentMatches treats a malformed glob as a non-match.
func segmentMatches(patternSegment string, pathSegment string) bool {
	matched, matchError := path.Match(patternSegment, pathSegment)
	return matchError == nil && matched
}

func normalizeSeparators(value string) string {
	return strings.ReplaceAll(value, "\\", pathSegmentSeparator)
}
