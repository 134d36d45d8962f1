// Package output renders project trees as raw text, JSON, XML or YAML.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/temirov/ptree/internal/types"
	"github.com/temirov/ptree/internal/utils"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	depthIndent = "  "

	directoryLabel = "[DIR]"
	fileLabel      = "[FILE]"

	nodeLineFormat       = "%s- %s %s\n"
	annotatedLineFormat  = "%s- %s %s (%s)\n"
	annotationSeparator  = ", "
	linesAnnotation      = "%d lines"
	singleLineAnnotation = "1 line"
	tokensAnnotation     = "%d tokens"
)

// WriteTreeRaw renders a project tree in pre-order, one node per line as
// "- <path> [DIR]" or "- <path> [FILE]" indented two spaces per depth. Size
// and line annotations are appended when includeSummary is set.
func WriteTreeRaw(writer io.Writer, node *types.NodeDocument, includeSummary bool) error {
	return renderTreeNode(writer, node, 0, includeSummary)
}

func renderTreeNode(writer io.Writer, node *types.NodeDocument, depth int, includeSummary bool) error {
	if node == nil {
		return nil
	}
	indent := strings.Repeat(depthIndent, depth)
	label := fileLabel
	if node.Type == types.NodeTypeDirectory {
		label = directoryLabel
	}

	var writeError error
	if includeSummary {
		_, writeError = fmt.Fprintf(writer, annotatedLineFormat, indent, node.Path, label, nodeAnnotation(node))
	} else {
		_, writeError = fmt.Fprintf(writer, nodeLineFormat, indent, node.Path, label)
	}
	if writeError != nil {
		return writeError
	}

	for _, child := range node.Children {
		if err := renderTreeNode(writer, child, depth+1, includeSummary); err != nil {
			return err
		}
	}
	return nil
}

func nodeAnnotation(node *types.NodeDocument) string {
	parts := []string{utils.FormatFileSize(node.SizeBytes), formatLines(node.Lines)}
	if node.Tokens > 0 {
		parts = append(parts, fmt.Sprintf(tokensAnnotation, node.Tokens))
	}
	return strings.Join(parts, annotationSeparator)
}

func formatLines(lines uint64) string {
	if lines == 1 {
		return singleLineAnnotation
	}
	return fmt.Sprintf(linesAnnotation, lines)
}

// FormatSummaryLine renders the totals footer of the raw format.
func FormatSummaryLine(summary *types.OutputSummary) string {
	if summary == nil {
		summary = &types.OutputSummary{TotalSize: utils.FormatFileSize(0)}
	}
	fileWord := "files"
	if summary.TotalFiles == 1 {
		fileWord = "file"
	}
	directoryWord := "directories"
	if summary.TotalDirectories == 1 {
		directoryWord = "directory"
	}
	extra := ""
	if summary.TotalTokens > 0 {
		extra = fmt.Sprintf(", %d tokens", summary.TotalTokens)
	}
	modelSuffix := ""
	if summary.Model != "" {
		modelSuffix = fmt.Sprintf(" (model: %s)", summary.Model)
	}
	return fmt.Sprintf("Summary: %d %s, %d %s, %s, %s%s%s",
		summary.TotalFiles, fileWord,
		summary.TotalDirectories, directoryWord,
		summary.TotalSize, formatLines(summary.TotalLines), extra, modelSuffix)
}
