package tree

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

const relativePathSeparator = "/"

// Builder materializes a TreeNode tree from the filesystem without summaries.
type Builder struct {
	validator PathValidator
	filter    pathFilter
}

// NewBuilder returns a Builder; a nil validator falls back to FilesystemValidator
// and a nil config applies no filtering.
func NewBuilder(validator PathValidator, config *ProjectConfig) *Builder {
	if validator == nil {
		validator = NewFilesystemValidator()
	}
	return &Builder{validator: validator, filter: newPathFilter(config)}
}

// buildFrame is a directory whose entries still have to be listed.
type buildFrame struct {
	node          *TreeNode
	relativePath  string
	canonicalPath string
	parent        *buildFrame
}

func (frame *buildFrame) hasAncestor(canonicalPath string) bool {
	for ancestor := frame; ancestor != nil; ancestor = ancestor.parent {
		if ancestor.canonicalPath == canonicalPath {
			return true
		}
	}
	return false
}

// Build validates rootPath and returns the tree rooted at it. Any failure to
// stat an entry or list a directory aborts the build; no partial tree is returned.
func (builder *Builder) Build(rootPath string) (*TreeNode, error) {
	canonicalRootPath, validationError := builder.validator.Validate(rootPath)
	if validationError != nil {
		return nil, validationError
	}

	rootInfo, rootStatError := statEntry(rootPath)
	if rootStatError != nil {
		return nil, rootStatError
	}
	if !rootInfo.IsDir() {
		return NewFileNode(rootPath), nil
	}

	rootNode := NewDirectoryNode(rootPath)
	pending := []*buildFrame{{node: rootNode, canonicalPath: canonicalRootPath}}
	for len(pending) > 0 {
		frame := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		childFrames, expandError := builder.expand(frame)
		if expandError != nil {
			return nil, expandError
		}
		pending = append(pending, childFrames...)
	}
	return rootNode, nil
}

// expand lists the directory of frame, attaches its admitted children in
// listing order and returns frames for the child directories.
func (builder *Builder) expand(frame *buildFrame) ([]*buildFrame, error) {
	directoryEntries, listError := listDirectory(frame.node.Path)
	if listError != nil {
		return nil, listError
	}

	var childFrames []*buildFrame
	for _, directoryEntry := range directoryEntries {
		entryName := directoryEntry.Name()
		childPath := filepath.Join(frame.node.Path, entryName)
		childRelativePath := entryName
		if frame.relativePath != "" {
			childRelativePath = frame.relativePath + relativePathSeparator + entryName
		}

		childInfo, childStatError := statEntry(childPath)
		if childStatError != nil {
			return nil, childStatError
		}
		if !builder.filter.admits(childRelativePath, childInfo.IsDir()) {
			continue
		}

		if !childInfo.IsDir() {
			frame.node.children = append(frame.node.children, NewFileNode(childPath))
			continue
		}

		childCanonicalPath := filepath.Join(frame.canonicalPath, entryName)
		if directoryEntry.Type()&fs.ModeSymlink != 0 {
			resolvedPath, resolveError := filepath.EvalSymlinks(childPath)
			if resolveError != nil {
				return nil, newPathError(operationResolve, childPath, nil, resolveError)
			}
			childCanonicalPath = resolvedPath
		}
		if frame.hasAncestor(childCanonicalPath) {
			return nil, newPathError(operationResolve, childPath, ErrCycleDetected, nil)
		}

		childNode := NewDirectoryNode(childPath)
		frame.node.children = append(frame.node.children, childNode)
		childFrames = append(childFrames, &buildFrame{
			node:          childNode,
			relativePath:  childRelativePath,
			canonicalPath: childCanonicalPath,
			parent:        frame,
		})
	}
	return childFrames, nil
}

// statEntry follows symlinks; a vanished entry is reported as ErrInvalidPath.
func statEntry(path string) (os.FileInfo, error) {
	entryInfo, statError := os.Stat(path)
	if statError == nil {
		return entryInfo, nil
	}
	if errors.Is(statError, fs.ErrNotExist) {
		return nil, newPathError(operationStat, path, ErrInvalidPath, statError)
	}
	return nil, newPathError(operationStat, path, nil, statError)
}

// listDirectory returns entries in the order the filesystem reports them.
func listDirectory(path string) ([]fs.DirEntry, error) {
	directoryHandle, openError := os.Open(path)
	if openError != nil {
		return nil, newPathError(operationReadDir, path, nil, openError)
	}
	defer directoryHandle.Close()

	directoryEntries, readError := directoryHandle.ReadDir(-1)
	if readError != nil {
		return nil, newPathError(operationReadDir, path, nil, readError)
	}
	return directoryEntries, nil
}
