package output

import (
	"fmt"
	"io"
	"time"

	"github.com/temirov/ptree/internal/services/stream"
	"github.com/temirov/ptree/internal/types"
	"github.com/temirov/ptree/internal/utils"
)

const updatedAtFooterFormat = "Updated: %s\n"

type rawStreamRenderer struct {
	stdout         io.Writer
	stderr         io.Writer
	includeSummary bool
	summary        *types.OutputSummary
	updatedAt      time.Time
	trees          []*types.NodeDocument
}

// NewRawStreamRenderer renders the tree as indented text lines followed by an
// optional summary footer.
func NewRawStreamRenderer(stdout, stderr io.Writer, includeSummary bool) StreamRenderer {
	return &rawStreamRenderer{
		stdout:         stdout,
		stderr:         stderr,
		includeSummary: includeSummary,
	}
}

func (renderer *rawStreamRenderer) Handle(event stream.Event) error {
	switch event.Kind {
	case stream.EventKindWarning:
		if event.Message != nil && renderer.stderr != nil {
			fmt.Fprintln(renderer.stderr, event.Message.Message)
		}
	case stream.EventKindError:
		if event.Err != nil && renderer.stderr != nil {
			fmt.Fprintln(renderer.stderr, event.Err.Message)
		}
	case stream.EventKindSummary:
		renderer.summary = outputSummary(event.Summary)
		if event.Summary != nil {
			renderer.updatedAt = event.Summary.UpdatedAt
		}
	case stream.EventKindTree:
		if event.Tree != nil {
			renderer.trees = append(renderer.trees, cloneNodeDocument(event.Tree))
		}
	}
	return nil
}

func (renderer *rawStreamRenderer) Flush() error {
	if renderer.stdout == nil {
		return nil
	}
	for index, node := range renderer.trees {
		if index > 0 {
			if _, err := fmt.Fprintln(renderer.stdout); err != nil {
				return err
			}
		}
		if err := WriteTreeRaw(renderer.stdout, node, renderer.includeSummary); err != nil {
			return err
		}
	}

	if renderer.includeSummary && renderer.summary != nil {
		if _, err := fmt.Fprintln(renderer.stdout); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(renderer.stdout, FormatSummaryLine(renderer.summary)); err != nil {
			return err
		}
		if formatted := utils.FormatTimestamp(renderer.updatedAt); formatted != "" {
			if _, err := fmt.Fprintf(renderer.stdout, updatedAtFooterFormat, formatted); err != nil {
				return err
			}
		}
	}
	return nil
}
