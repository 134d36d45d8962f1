package clipboard

import (
	"errors"
	"testing"
)

func TestSystemCopierReportsUnavailableClipboard(t *testing.T) {
	copier := NewSystemCopier()
	if copier.Available() {
		t.Skip("system clipboard present; nothing to assert without writing to it")
	}
	if err := copier.Copy("tree"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
