package output

import (
	"encoding/json"
	"io"

	"github.com/temirov/ptree/internal/services/stream"
)

type jsonStreamRenderer struct {
	stdout    io.Writer
	collector documentCollector
}

// NewJSONStreamRenderer renders the project as one indented JSON document.
func NewJSONStreamRenderer(stdout, stderr io.Writer, includeSummary bool) StreamRenderer {
	return &jsonStreamRenderer{
		stdout:    stdout,
		collector: documentCollector{stderr: stderr, includeSummary: includeSummary},
	}
}

func (renderer *jsonStreamRenderer) Handle(event stream.Event) error {
	return renderer.collector.collect(event)
}

func (renderer *jsonStreamRenderer) Flush() error {
	if renderer.stdout == nil {
		return nil
	}
	encoder := json.NewEncoder(renderer.stdout)
	encoder.SetIndent(indentPrefix, indentSpacer)
	return encoder.Encode(renderer.collector.document)
}
