// Package types defines the cross-package output structures used by the ptree CLI.
package types

import "encoding/xml"

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"

	CommandPlant = "plant"

	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatXML  = "xml"
	FormatYAML = "yaml"
)

// NodeDocument is one node of a rendered project tree.
type NodeDocument struct {
	XMLName   xml.Name        `json:"-" xml:"node" yaml:"-"`
	ID        string          `json:"id" xml:"id,attr" yaml:"id"`
	Path      string          `json:"path" xml:"path" yaml:"path"`
	Name      string          `json:"name" xml:"name" yaml:"name"`
	Type      string          `json:"type" xml:"type" yaml:"type"`
	Size      string          `json:"size,omitempty" xml:"size,omitempty" yaml:"size,omitempty"`
	SizeBytes uint64          `json:"sizeBytes" xml:"sizeBytes" yaml:"sizeBytes"`
	Lines     uint64          `json:"lines" xml:"lines" yaml:"lines"`
	Tokens    uint64          `json:"tokens,omitempty" xml:"tokens,omitempty" yaml:"tokens,omitempty"`
	UpdatedAt string          `json:"updatedAt,omitempty" xml:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
	Children  []*NodeDocument `json:"children,omitempty" xml:"children>node,omitempty" yaml:"children,omitempty"`
}

// OutputSummary captures aggregate information about a rendered tree.
type OutputSummary struct {
	TotalFiles       int    `json:"totalFiles" xml:"totalFiles" yaml:"totalFiles"`
	TotalDirectories int    `json:"totalDirectories" xml:"totalDirectories" yaml:"totalDirectories"`
	TotalSize        string `json:"totalSize" xml:"totalSize" yaml:"totalSize"`
	TotalBytes       uint64 `json:"totalBytes" xml:"totalBytes" yaml:"totalBytes"`
	TotalLines       uint64 `json:"totalLines" xml:"totalLines" yaml:"totalLines"`
	TotalTokens      uint64 `json:"totalTokens,omitempty" xml:"totalTokens,omitempty" yaml:"totalTokens,omitempty"`
	Model            string `json:"model,omitempty" xml:"model,omitempty" yaml:"model,omitempty"`
}

// ProjectDocument is the structured rendering of one project tree.
type ProjectDocument struct {
	XMLName xml.Name       `json:"-" xml:"project" yaml:"-"`
	ID      string         `json:"id" xml:"id,attr" yaml:"id"`
	Name    string         `json:"name" xml:"name" yaml:"name"`
	Path    string         `json:"path" xml:"path" yaml:"path"`
	Summary *OutputSummary `json:"summary,omitempty" xml:"summary,omitempty" yaml:"summary,omitempty"`
	Tree    *NodeDocument  `json:"tree,omitempty" xml:"tree>node,omitempty" yaml:"tree,omitempty"`
}
