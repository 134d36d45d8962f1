package utils_test

import (
	"testing"
	"time"

	"github.com/temirov/ptree/internal/utils"
)

func TestDeduplicatePatterns(testingInstance *testing.T) {
	testCases := []struct {
		name     string
		patterns []string
		expected []string
	}{
		{name: "nil input", patterns: nil, expected: nil},
		{name: "keeps first occurrence", patterns: []string{"b", "a", "b", "c", "a"}, expected: []string{"b", "a", "c"}},
		{name: "drops blanks", patterns: []string{"", "vendor/", ""}, expected: []string{"vendor/"}},
	}
	for _, testCase := range testCases {
		testingInstance.Run(testCase.name, func(testingInstance *testing.T) {
			result := utils.DeduplicatePatterns(testCase.patterns)
			if len(result) != len(testCase.expected) {
				testingInstance.Fatalf("expected %v, got %v", testCase.expected, result)
			}
			for index := range result {
				if result[index] != testCase.expected[index] {
					testingInstance.Fatalf("expected %v, got %v", testCase.expected, result)
				}
			}
		})
	}
}

func TestPatternSetMatches(testingInstance *testing.T) {
	testCases := []struct {
		name         string
		patterns     []string
		relativePath string
		expected     bool
	}{
		{name: "no patterns", patterns: nil, relativePath: "main.go", expected: false},
		{name: "base name glob at root", patterns: []string{"*.log"}, relativePath: "server.log", expected: true},
		{name: "base name glob nested", patterns: []string{"*.log"}, relativePath: "logs/deep/server.log", expected: true},
		{name: "base name glob misses", patterns: []string{"*.log"}, relativePath: "logs", expected: false},
		{name: "directory pattern matches directory", patterns: []string{"vendor/"}, relativePath: "vendor", expected: true},
		{name: "directory pattern matches descendants", patterns: []string{"vendor/"}, relativePath: "vendor/pkg/lib.go", expected: true},
		{name: "directory pattern is anchored", patterns: []string{"vendor/"}, relativePath: "src/vendor", expected: false},
		{name: "nested directory pattern", patterns: []string{"web/node_modules/"}, relativePath: "web/node_modules/index.js", expected: true},
		{name: "nested directory pattern elsewhere", patterns: []string{"web/node_modules/"}, relativePath: "api/node_modules/index.js", expected: false},
		{name: "exact path", patterns: []string{"web/.clasp.json"}, relativePath: "web/.clasp.json", expected: true},
		{name: "exact path is not a prefix", patterns: []string{"web/.clasp.json"}, relativePath: "other/web/.clasp.json", expected: false},
		{name: "backslash pattern", patterns: []string{`web\node_modules\`}, relativePath: "web/node_modules", expected: true},
		{name: "malformed glob never matches", patterns: []string{"[.go"}, relativePath: "[.go", expected: false},
		{name: "any of several", patterns: []string{"*.md", "*.go"}, relativePath: "cmd/main.go", expected: true},
	}
	for _, testCase := range testCases {
		testingInstance.Run(testCase.name, func(testingInstance *testing.T) {
			if result := utils.CompilePatterns(testCase.patterns).Matches(testCase.relativePath); result != testCase.expected {
				testingInstance.Fatalf("CompilePatterns(%v).Matches(%q) = %t, expected %t", testCase.patterns, testCase.relativePath, result, testCase.expected)
			}
		})
	}
}

func TestPatternSetEmpty(testingInstance *testing.T) {
	if !utils.CompilePatterns([]string{"", "  ", "/"}).Empty() {
		testingInstance.Fatalf("expected blank patterns to compile to an empty set")
	}
	if utils.CompilePatterns([]string{"*.go"}).Empty() {
		testingInstance.Fatalf("expected a non-empty set")
	}
}

func TestFormatFileSize(testingInstance *testing.T) {
	testCases := []struct {
		name     string
		bytes    uint64
		expected string
	}{
		{name: "zero", bytes: 0, expected: "0b"},
		{name: "bytes", bytes: 512, expected: "512b"},
		{name: "one kilobyte", bytes: 1024, expected: "1kb"},
		{name: "fractional kilobyte", bytes: 1536, expected: "1.5kb"},
		{name: "ten megabytes", bytes: 10 * 1024 * 1024, expected: "10mb"},
		{name: "large gigabytes", bytes: 300 * 1024 * 1024 * 1024, expected: "300gb"},
	}
	for _, testCase := range testCases {
		testingInstance.Run(testCase.name, func(testingInstance *testing.T) {
			if result := utils.FormatFileSize(testCase.bytes); result != testCase.expected {
				testingInstance.Fatalf("expected %s, got %s", testCase.expected, result)
			}
		})
	}
}

func TestFormatTimestamp(testingInstance *testing.T) {
	if result := utils.FormatTimestamp(time.Time{}); result != "" {
		testingInstance.Fatalf("expected empty string for zero time, got %q", result)
	}
	moment := time.Date(2024, time.May, 6, 7, 8, 9, 0, time.Local)
	if result := utils.FormatTimestamp(moment); result != "2024-05-06 07:08" {
		testingInstance.Fatalf("unexpected timestamp %q", result)
	}
}
