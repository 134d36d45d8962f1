// Package clipboard copies rendered trees to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

const copyErrorFormat = "copy %d bytes to clipboard: %w"

// ErrUnavailable is returned by Copy when no clipboard utility exists on this system.
var ErrUnavailable = errors.New("system clipboard unavailable")

// Copier copies textual data to a clipboard.
type Copier interface {
	Available() bool
	Copy(text string) error
}

// SystemCopier writes to the operating system clipboard through
// github.com/atotto/clipboard (pbcopy, xclip, xsel, wl-copy or the Windows API).
type SystemCopier struct{}

// NewSystemCopier returns a Copier bound to the system clipboard.
func NewSystemCopier() SystemCopier {
	return SystemCopier{}
}

// Available reports whether a clipboard utility was found.
func (SystemCopier) Available() bool {
	return !clipboard.Unsupported
}

func (copier SystemCopier) Copy(text string) error {
	if !copier.Available() {
		return ErrUnavailable
	}
	if copyError := clipboard.WriteAll(text); copyError != nil {
		return fmt.Errorf(copyErrorFormat, len(text), copyError)
	}
	return nil
}

var _ Copier = SystemCopier{}
