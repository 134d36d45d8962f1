package config

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/ptree/internal/utils"
)

const (
	gitDirectoryPattern = utils.GitDirectoryName + "/"
	commentPrefix       = "#"
	negationPrefix      = "!"
	anchorPrefix        = "/"

	errorReadIgnoreFileFormat = "read %s: %w"
	errorWalkIgnoreFormat     = "collect ignore files under %s: %w"
)

// IgnoreOptions selects which sources contribute exclusion patterns.
type IgnoreOptions struct {
	UseGitignore  bool
	UseIgnoreFile bool
	IncludeGit    bool
	Exclude       []string
}

// ReadIgnoreFile returns the patterns listed in one ignore file. A missing file
// yields no patterns. Blank lines, comments and negations are skipped and a
// leading "/" is dropped since every pattern is already relative to its directory.
//
// #nosec G304
func ReadIgnoreFile(ignoreFilePath string) ([]string, error) {
	fileHandle, openError := os.Open(ignoreFilePath)
	if openError != nil {
		if os.IsNotExist(openError) {
			return nil, nil
		}
		return nil, fmt.Errorf(errorReadIgnoreFileFormat, ignoreFilePath, openError)
	}
	defer fileHandle.Close()

	var patterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, commentPrefix) || strings.HasPrefix(line, negationPrefix) {
			continue
		}
		if line = strings.TrimPrefix(line, anchorPrefix); line != "" {
			patterns = append(patterns, line)
		}
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf(errorReadIgnoreFileFormat, ignoreFilePath, scanError)
	}
	return patterns, nil
}

// patternList accumulates patterns in insertion order without duplicates and
// keeps a compiled copy for pruning the walk.
type patternList struct {
	patterns []string
	seen     map[string]struct{}
	compiled utils.PatternSet
	stale    bool
}

func (list *patternList) add(pattern string) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return
	}
	if list.seen == nil {
		list.seen = make(map[string]struct{})
	}
	if _, exists := list.seen[pattern]; exists {
		return
	}
	list.seen[pattern] = struct{}{}
	list.patterns = append(list.patterns, pattern)
	list.stale = true
}

func (list *patternList) matches(relativePath string) bool {
	if list.stale {
		list.compiled = utils.CompilePatterns(list.patterns)
		list.stale = false
	}
	return list.compiled.Matches(relativePath)
}

// LoadIgnorePatterns returns the exclusion patterns for a tree rooted at
// rootDirectoryPath. Patterns read from .ignore or .gitignore files are
// prefixed with their directory relative to the root, and the ignore files
// themselves are excluded once read. Directories already excluded by a
// collected pattern are not searched for further ignore files. ".git/" is
// excluded unless IncludeGit is set; explicit Exclude patterns come last.
func LoadIgnorePatterns(rootDirectoryPath string, options IgnoreOptions) ([]string, error) {
	var ignoreFileNames []string
	if options.UseIgnoreFile {
		ignoreFileNames = append(ignoreFileNames, utils.IgnoreFileName)
	}
	if options.UseGitignore {
		ignoreFileNames = append(ignoreFileNames, utils.GitIgnoreFileName)
	}

	var collected patternList
	if !options.IncludeGit {
		collected.add(gitDirectoryPattern)
	}
	if len(ignoreFileNames) > 0 {
		if walkError := collectIgnoreFiles(rootDirectoryPath, ignoreFileNames, &collected); walkError != nil {
			return nil, fmt.Errorf(errorWalkIgnoreFormat, rootDirectoryPath, walkError)
		}
		for _, ignoreFileName := range ignoreFileNames {
			collected.add(ignoreFileName)
		}
	}
	for _, pattern := range options.Exclude {
		collected.add(pattern)
	}
	return collected.patterns, nil
}

func collectIgnoreFiles(rootDirectoryPath string, ignoreFileNames []string, collected *patternList) error {
	return filepath.WalkDir(rootDirectoryPath, func(currentPath string, entry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return walkError
		}
		if !entry.IsDir() {
			return nil
		}

		relativeDirectory, relativeError := filepath.Rel(rootDirectoryPath, currentPath)
		if relativeError != nil {
			return relativeError
		}
		prefix := ""
		if relativeDirectory != "." {
			relativeDirectory = filepath.ToSlash(relativeDirectory)
			if collected.matches(relativeDirectory) {
				return filepath.SkipDir
			}
			prefix = relativeDirectory + "/"
		}

		for _, ignoreFileName := range ignoreFileNames {
			patterns, readError := ReadIgnoreFile(filepath.Join(currentPath, ignoreFileName))
			if readError != nil {
				return readError
			}
			for _, pattern := range patterns {
				collected.add(prefix + pattern)
			}
		}
		return nil
	})
}
