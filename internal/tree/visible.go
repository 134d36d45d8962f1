package tree

import (
	"fmt"
	"io"
	"strings"
)

const (
	showHeader        = "Project Tree:"
	showIDFormat      = "ID: %s\n"
	showValidFormat   = "Valid: %t\n"
	showNameFormat    = "Name: %s\n"
	showPathFormat    = "Path: %s\n"
	emptyTreeMessage  = "Tree is empty"
	printNodeFormat   = "%s- %s [%s]\n"
	indentUnit        = "  "
	projectTreeFormat = "ProjectTree {\n\tID: %s,\n\tValid: %t,\n\tName: %s,\n\tPath: %s\n}"
)

// Show writes the project info block.
func (project *ProjectTree) Show(writer io.Writer) error {
	if _, writeError := fmt.Fprintln(writer, showHeader); writeError != nil {
		return writeError
	}
	if _, writeError := fmt.Fprintf(writer, showIDFormat, project.ID); writeError != nil {
		return writeError
	}
	if _, writeError := fmt.Fprintf(writer, showValidFormat, project.IsValid()); writeError != nil {
		return writeError
	}
	if _, writeError := fmt.Fprintf(writer, showNameFormat, project.Name); writeError != nil {
		return writeError
	}
	_, writeError := fmt.Fprintf(writer, showPathFormat, project.Path)
	return writeError
}

// PrintTree writes one line per node in pre-order, indented two spaces per level.
func (project *ProjectTree) PrintTree(writer io.Writer) error {
	if project.Root == nil {
		_, writeError := fmt.Fprintln(writer, emptyTreeMessage)
		return writeError
	}
	var printError error
	Walk(project.Root, func(node *TreeNode, depth int) bool {
		if printError != nil {
			return false
		}
		_, printError = fmt.Fprintf(writer, printNodeFormat, strings.Repeat(indentUnit, depth), node.Path, node.Kind())
		return printError == nil
	})
	return printError
}

// String renders the project header block.
func (project *ProjectTree) String() string {
	return fmt.Sprintf(projectTreeFormat, project.ID, project.IsValid(), project.Name, project.Path)
}
