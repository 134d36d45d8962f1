package output

import (
	"encoding/xml"
	"io"

	"github.com/temirov/ptree/internal/services/stream"
)

type xmlStreamRenderer struct {
	stdout    io.Writer
	collector documentCollector
}

// NewXMLStreamRenderer renders the project as one indented XML document.
func NewXMLStreamRenderer(stdout, stderr io.Writer, includeSummary bool) StreamRenderer {
	return &xmlStreamRenderer{
		stdout:    stdout,
		collector: documentCollector{stderr: stderr, includeSummary: includeSummary},
	}
}

func (renderer *xmlStreamRenderer) Handle(event stream.Event) error {
	return renderer.collector.collect(event)
}

func (renderer *xmlStreamRenderer) Flush() error {
	if renderer.stdout == nil {
		return nil
	}
	if _, err := io.WriteString(renderer.stdout, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(renderer.stdout)
	encoder.Indent(indentPrefix, indentSpacer)
	if err := encoder.Encode(renderer.collector.document); err != nil {
		return err
	}
	if err := encoder.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(renderer.stdout, "\n")
	return err
}
