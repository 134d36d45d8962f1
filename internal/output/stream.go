package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/temirov/ptree/internal/services/stream"
	"github.com/temirov/ptree/internal/types"
)

const unsupportedFormatErrorFormat = "unsupported output format %q"

// StreamRenderer consumes stream events and writes the rendering on Flush.
type StreamRenderer interface {
	Handle(event stream.Event) error
	Flush() error
}

// NewStreamRenderer returns the renderer for format, one of the types.Format* values.
func NewStreamRenderer(format string, stdout, stderr io.Writer, includeSummary bool) (StreamRenderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case types.FormatRaw, "":
		return NewRawStreamRenderer(stdout, stderr, includeSummary), nil
	case types.FormatJSON:
		return NewJSONStreamRenderer(stdout, stderr, includeSummary), nil
	case types.FormatXML:
		return NewXMLStreamRenderer(stdout, stderr, includeSummary), nil
	case types.FormatYAML:
		return NewYAMLStreamRenderer(stdout, stderr, includeSummary), nil
	default:
		return nil, fmt.Errorf(unsupportedFormatErrorFormat, format)
	}
}
