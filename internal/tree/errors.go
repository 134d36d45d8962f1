package tree

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPath reports that a path does not exist at check time.
	ErrInvalidPath = errors.New("invalid path")
	// ErrNotBuilt reports that Summarize was called before a successful Build.
	ErrNotBuilt = errors.New("root is absent, build the project tree first")
	// ErrCycleDetected reports a directory that is its own ancestor through a symlink.
	ErrCycleDetected = errors.New("directory cycle detected")
)

const (
	operationValidate = "validate"
	operationStat     = "stat"
	operationReadDir  = "read directory"
	operationResolve  = "resolve"
	operationMeasure  = "measure"

	pathErrorFormat         = "%s %s: %v"
	pathErrorWithKindFormat = "%s %s: %v: %v"
)

// PathError records an error and the path that caused it.
// Kind is one of the package sentinels or nil for plain I/O failures.
type PathError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func newPathError(operation string, path string, kind error, cause error) *PathError {
	return &PathError{Op: operation, Path: path, Kind: kind, Err: cause}
}

func (pathError *PathError) Error() string {
	if pathError.Err == nil {
		return fmt.Sprintf(pathErrorFormat, pathError.Op, pathError.Path, pathError.Kind)
	}
	if pathError.Kind == nil {
		return fmt.Sprintf(pathErrorFormat, pathError.Op, pathError.Path, pathError.Err)
	}
	return fmt.Sprintf(pathErrorWithKindFormat, pathError.Op, pathError.Path, pathError.Kind, pathError.Err)
}

func (pathError *PathError) Unwrap() error {
	return pathError.Err
}

// Is matches the sentinel kind so errors.Is(err, ErrInvalidPath) works
// without the cause being the sentinel itself.
func (pathError *PathError) Is(target error) bool {
	return pathError.Kind != nil && pathError.Kind == target
}
