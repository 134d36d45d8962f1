// Package tree builds an in-memory model of a directory subtree and computes
// per-node size, line-count and token summaries bottom-up.
package tree

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
)

// NodeKind distinguishes file nodes from directory nodes.
type NodeKind int

const (
	// KindFile marks a node that holds metrics and never has children.
	KindFile NodeKind = iota
	// KindDirectory marks a node whose summary folds its children.
	KindDirectory
)

const (
	kindFileLabel      = "FILE"
	kindDirectoryLabel = "DIR"

	nodeIDFormat      = "%016x"
	nodeDisplayFormat = "\n----- TreeNode -----\n\n- path: %s\n- is_dir: %t\n- children: %d\n- summary: %s\n\n--------------------"
)

// String returns the label used by the printed tree.
func (kind NodeKind) String() string {
	if kind == KindDirectory {
		return kindDirectoryLabel
	}
	return kindFileLabel
}

// TreeNode is one filesystem entry plus its aggregated summary.
// The kind is fixed at construction; children exist only for directories.
type TreeNode struct {
	Path    string
	Summary NodeSummary

	kind     NodeKind
	children []*TreeNode
}

// NewFileNode returns a file node with a zero summary.
func NewFileNode(path string) *TreeNode {
	return &TreeNode{Path: path, kind: KindFile}
}

// NewDirectoryNode returns a directory node owning the provided children.
// A nil slice is normalized to an empty one.
func NewDirectoryNode(path string, children ...*TreeNode) *TreeNode {
	ownedChildren := make([]*TreeNode, 0, len(children))
	ownedChildren = append(ownedChildren, children...)
	return &TreeNode{Path: path, kind: KindDirectory, children: ownedChildren}
}

// Kind reports whether the node is a file or a directory.
func (node *TreeNode) Kind() NodeKind {
	return node.kind
}

// IsDirectory reports whether the node is a directory.
func (node *TreeNode) IsDirectory() bool {
	return node.kind == KindDirectory
}

// Children returns the ordered children of a directory, or nil for a file.
func (node *TreeNode) Children() []*TreeNode {
	if node.kind != KindDirectory {
		return nil
	}
	return node.children
}

// ID returns a stable 16-character hex identifier derived from the node path.
func (node *TreeNode) ID() string {
	return fmt.Sprintf(nodeIDFormat, xxhash.Sum64String(node.Path))
}

// IsValid reports whether the node path still exists.
func (node *TreeNode) IsValid() bool {
	_, validationError := NewFilesystemValidator().Validate(node.Path)
	return validationError == nil
}

// String renders the node in the multi-line debug layout.
func (node *TreeNode) String() string {
	return fmt.Sprintf(nodeDisplayFormat, node.Path, node.IsDirectory(), len(node.Children()), node.Summary.String())
}

// NodeSummary aggregates metrics for a file or for a directory subtree.
type NodeSummary struct {
	// Size is the byte size of a file or the sum over a directory subtree.
	Size uint64
	// Count is the text line count of a file or the sum over a directory subtree.
	Count uint64
	// Tokens is the optional token estimate; zero when no counter is configured.
	Tokens uint64
	// UpdatedAt is nil until the node has been summarized at least once.
	UpdatedAt *time.Time
	// Suffixes is the extension inventory slot. Aggregation keeps it empty.
	Suffixes []string
}

const summaryDisplayFormat = "\n  size: %d,\n  count: %d,\n  updated_at: %s,\n  suffixes: %v"

// IsSummarized reports whether an aggregation pass has written this summary.
func (summary NodeSummary) IsSummarized() bool {
	return summary.UpdatedAt != nil
}

// String renders the summary in the multi-line debug layout.
func (summary NodeSummary) String() string {
	updatedAt := "None"
	if summary.UpdatedAt != nil {
		updatedAt = summary.UpdatedAt.Format(time.RFC3339Nano)
	}
	return fmt.Sprintf(summaryDisplayFormat, summary.Size, summary.Count, updatedAt, summary.Suffixes)
}

func newSummary(now time.Time) NodeSummary {
	timestamp := now
	return NodeSummary{UpdatedAt: &timestamp, Suffixes: []string{}}
}

// Walk visits the subtree rooted at node in depth-first pre-order.
// Returning false from visit skips the children of the visited node.
func Walk(node *TreeNode, visit func(node *TreeNode, depth int) bool) {
	if node == nil || visit == nil {
		return
	}
	type walkEntry struct {
		node  *TreeNode
		depth int
	}
	pending := []walkEntry{{node: node, depth: 0}}
	for len(pending) > 0 {
		current := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if !visit(current.node, current.depth) {
			continue
		}
		children := current.node.Children()
		for childIndex := len(children) - 1; childIndex >= 0; childIndex-- {
			pending = append(pending, walkEntry{node: children[childIndex], depth: current.depth + 1})
		}
	}
}
