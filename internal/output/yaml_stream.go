package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/temirov/ptree/internal/services/stream"
)

const yamlIndentWidth = 2

type yamlStreamRenderer struct {
	stdout    io.Writer
	collector documentCollector
}

// NewYAMLStreamRenderer renders the project as one YAML document.
func NewYAMLStreamRenderer(stdout, stderr io.Writer, includeSummary bool) StreamRenderer {
	return &yamlStreamRenderer{
		stdout:    stdout,
		collector: documentCollector{stderr: stderr, includeSummary: includeSummary},
	}
}

func (renderer *yamlStreamRenderer) Handle(event stream.Event) error {
	return renderer.collector.collect(event)
}

func (renderer *yamlStreamRenderer) Flush() error {
	if renderer.stdout == nil {
		return nil
	}
	encoder := yaml.NewEncoder(renderer.stdout)
	encoder.SetIndent(yamlIndentWidth)
	if err := encoder.Encode(renderer.collector.document); err != nil {
		return err
	}
	return encoder.Close()
}
