// Package utils holds the small helpers shared by the ptree packages:
// path pattern matching, human-readable formatting, logging and build info.
package utils

const (
	// IgnoreFileName is the name of the project's ignore file.
	IgnoreFileName = ".ignore"
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
)

// DeduplicatePatterns returns patterns without repeats, keeping the first
// occurrence of each and dropping empty entries.
func DeduplicatePatterns(patterns []string) []string {
	if len(patterns) == 0 {
		return nil
	}
	seenPatterns := make(map[string]struct{}, len(patterns))
	uniquePatterns := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if _, seen := seenPatterns[pattern]; seen {
			continue
		}
		seenPatterns[pattern] = struct{}{}
		uniquePatterns = append(uniquePatterns, pattern)
	}
	return uniquePatterns
}
