package output

import (
	"fmt"
	"io"

	"github.com/temirov/ptree/internal/services/stream"
	"github.com/temirov/ptree/internal/types"
	"github.com/temirov/ptree/internal/utils"
)

// documentCollector gathers the project, tree and summary events that the
// structured renderers encode as a single document.
type documentCollector struct {
	stderr         io.Writer
	includeSummary bool
	document       types.ProjectDocument
}

func (collector *documentCollector) collect(event stream.Event) error {
	switch event.Kind {
	case stream.EventKindWarning:
		if event.Message != nil && collector.stderr != nil {
			_, err := fmt.Fprintln(collector.stderr, event.Message.Message)
			return err
		}
	case stream.EventKindError:
		if event.Err != nil && collector.stderr != nil {
			_, err := fmt.Fprintln(collector.stderr, event.Err.Message)
			return err
		}
	case stream.EventKindStart:
		if event.Project != nil {
			collector.document.ID = event.Project.ID
			collector.document.Name = event.Project.Name
			collector.document.Path = event.Project.Path
		}
	case stream.EventKindTree:
		collector.document.Tree = cloneNodeDocument(event.Tree)
	case stream.EventKindSummary:
		if collector.includeSummary {
			collector.document.Summary = outputSummary(event.Summary)
		}
	}
	return nil
}

func outputSummary(summary *stream.SummaryEvent) *types.OutputSummary {
	if summary == nil {
		return &types.OutputSummary{TotalSize: utils.FormatFileSize(0)}
	}
	return &types.OutputSummary{
		TotalFiles:       summary.Files,
		TotalDirectories: summary.Directories,
		TotalSize:        utils.FormatFileSize(summary.Bytes),
		TotalBytes:       summary.Bytes,
		TotalLines:       summary.Lines,
		TotalTokens:      summary.Tokens,
		Model:            summary.Model,
	}
}

func cloneNodeDocument(node *types.NodeDocument) *types.NodeDocument {
	if node == nil {
		return nil
	}

	cloned := *node

	if len(node.Children) > 0 {
		cloned.Children = make([]*types.NodeDocument, len(node.Children))
		for index, child := range node.Children {
			if child == nil {
				continue
			}
			cloned.Children[index] = cloneNodeDocument(child)
		}
	} else {
		cloned.Children = nil
	}

	return &cloned
}
