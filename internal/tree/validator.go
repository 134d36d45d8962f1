package tree

import (
	"os"
	"path/filepath"
)

// PathValidator checks that a path exists and resolves its canonical form.
type PathValidator interface {
	Validate(path string) (string, error)
}

// FilesystemValidator validates paths against the local filesystem.
type FilesystemValidator struct{}

// NewFilesystemValidator constructs a FilesystemValidator.
func NewFilesystemValidator() FilesystemValidator {
	return FilesystemValidator{}
}

// Validate returns the absolute, symlink-resolved form of path.
// Existence is checked first; a missing path yields ErrInvalidPath carrying the input.
func (FilesystemValidator) Validate(path string) (string, error) {
	if _, statError := os.Stat(path); statError != nil {
		return "", newPathError(operationValidate, path, ErrInvalidPath, statError)
	}
	absolutePath, absoluteError := filepath.Abs(path)
	if absoluteError != nil {
		return "", newPathError(operationResolve, path, nil, absoluteError)
	}
	canonicalPath, resolveError := filepath.EvalSymlinks(absolutePath)
	if resolveError != nil {
		return "", newPathError(operationResolve, path, nil, resolveError)
	}
	return canonicalPath, nil
}

var _ PathValidator = FilesystemValidator{}
