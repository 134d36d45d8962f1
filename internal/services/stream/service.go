// Package stream turns a project tree into an ordered sequence of render events.
package stream

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/temirov/ptree/internal/tree"
	"github.com/temirov/ptree/internal/types"
	"github.com/temirov/ptree/internal/utils"
)

const (
	documentTimeLayout = time.RFC3339

	warningLevel          = "warning"
	fallbackWarningFormat = "%s unavailable for %s, counted as zero: %v"
)

var errNilChannel = errors.New("stream: event channel is nil")

// StreamOptions configures StreamProject.
type StreamOptions struct {
	Command    string
	TokenModel string
}

type emitter struct {
	ctx     context.Context
	out     chan<- Event
	command string
}

func newEmitter(ctx context.Context, out chan<- Event, command string) *emitter {
	if ctx == nil {
		ctx = context.Background()
	}
	return &emitter{ctx: ctx, out: out, command: command}
}

func (e *emitter) send(event Event) error {
	if e.out == nil {
		return errNilChannel
	}
	event.Version = SchemaVersion
	if event.Command == "" {
		event.Command = e.command
	}
	if event.EmittedAt.IsZero() {
		event.EmittedAt = time.Now().UTC()
	}
	select {
	case <-e.ctx.Done():
		return e.ctx.Err()
	case e.out <- event:
		return nil
	}
}

func (e *emitter) warn(path string, message string) error {
	return e.send(Event{
		Kind:    EventKindWarning,
		Path:    path,
		Message: &LogEvent{Level: warningLevel, Message: message},
	})
}

// entryCounts tracks how many files and directories lie beneath a directory.
type entryCounts struct {
	files       int
	directories int
}

type walkFrame struct {
	node     *tree.TreeNode
	depth    int
	leaving  bool
	document *types.NodeDocument
	counts   *entryCounts
	parent   *walkFrame
}

// StreamProject walks the project tree in pre-order and emits start, directory
// enter, file, directory leave, warning, tree, summary and done events to out.
// One warning is emitted per metric the last Summarize counted as zero. The
// summaries carried by the events are whatever the last aggregation pass
// assigned; an unsummarized tree streams zeros.
func StreamProject(ctx context.Context, project *tree.ProjectTree, options StreamOptions, out chan<- Event) error {
	if project == nil || project.Root == nil {
		return tree.ErrNotBuilt
	}

	emitter := newEmitter(ctx, out, options.Command)
	if err := emitter.send(Event{
		Kind:    EventKindStart,
		Path:    project.Path,
		Project: &ProjectEvent{ID: project.ID, Name: project.Name, Path: project.Path},
	}); err != nil {
		return err
	}

	rootCounts := &entryCounts{}
	rootFrame := &walkFrame{node: project.Root, counts: rootCounts}
	rootDocument, walkError := walk(emitter, rootFrame, options)
	if walkError != nil {
		_ = emitter.send(Event{Kind: EventKindError, Path: project.Path, Err: &ErrorEvent{Message: walkError.Error()}})
		return walkError
	}

	for _, fallback := range project.Fallbacks() {
		if err := emitter.warn(fallback.Path, fmt.Sprintf(fallbackWarningFormat, fallback.Metric, fallback.Path, fallback.Err)); err != nil {
			return err
		}
	}

	if err := emitter.send(Event{Kind: EventKindTree, Path: project.Root.Path, Tree: rootDocument}); err != nil {
		return err
	}

	rootSummary := summaryEvent(project.Root.Summary, *rootCounts, options.TokenModel)
	if !project.Root.IsDirectory() {
		rootSummary.Files = 1
	}
	if err := emitter.send(Event{Kind: EventKindSummary, Path: project.Path, Summary: rootSummary}); err != nil {
		return err
	}
	return emitter.send(Event{Kind: EventKindDone, Path: project.Path})
}

func walk(emitter *emitter, rootFrame *walkFrame, options StreamOptions) (*types.NodeDocument, error) {
	var rootDocument *types.NodeDocument
	pending := []*walkFrame{rootFrame}
	for len(pending) > 0 {
		frame := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		node := frame.node

		if frame.leaving {
			if err := emitter.send(Event{
				Kind: EventKindDirectory,
				Path: node.Path,
				Directory: &DirectoryEvent{
					Phase:     DirectoryLeave,
					ID:        node.ID(),
					Path:      node.Path,
					Name:      filepath.Base(node.Path),
					Depth:     frame.depth,
					UpdatedAt: formatUpdatedAt(node.Summary),
					Summary:   summaryEvent(node.Summary, *frame.counts, options.TokenModel),
				},
			}); err != nil {
				return nil, err
			}
			if frame.parent != nil {
				frame.parent.counts.files += frame.counts.files
				frame.parent.counts.directories += frame.counts.directories + 1
			}
			continue
		}

		document := nodeDocument(node)
		if frame.parent == nil {
			rootDocument = document
		} else {
			frame.parent.document.Children = append(frame.parent.document.Children, document)
		}

		if !node.IsDirectory() {
			if err := emitter.send(Event{
				Kind: EventKindFile,
				Path: node.Path,
				File: &FileEvent{
					ID:        node.ID(),
					Path:      node.Path,
					Name:      document.Name,
					Depth:     frame.depth,
					SizeBytes: node.Summary.Size,
					Lines:     node.Summary.Count,
					Tokens:    node.Summary.Tokens,
					UpdatedAt: document.UpdatedAt,
				},
			}); err != nil {
				return nil, err
			}
			if frame.parent != nil {
				frame.parent.counts.files++
			}
			continue
		}

		if err := emitter.send(Event{
			Kind: EventKindDirectory,
			Path: node.Path,
			Directory: &DirectoryEvent{
				Phase:     DirectoryEnter,
				ID:        node.ID(),
				Path:      node.Path,
				Name:      document.Name,
				Depth:     frame.depth,
				UpdatedAt: document.UpdatedAt,
			},
		}); err != nil {
			return nil, err
		}

		counts := frame.counts
		if counts == nil {
			counts = &entryCounts{}
		}
		directoryFrame := &walkFrame{node: node, depth: frame.depth, document: document, counts: counts, parent: frame.parent}
		pending = append(pending, &walkFrame{node: node, depth: frame.depth, leaving: true, counts: counts, parent: frame.parent})
		children := node.Children()
		for index := len(children) - 1; index >= 0; index-- {
			pending = append(pending, &walkFrame{node: children[index], depth: frame.depth + 1, parent: directoryFrame})
		}
	}
	return rootDocument, nil
}

func nodeDocument(node *tree.TreeNode) *types.NodeDocument {
	nodeType := types.NodeTypeFile
	if node.IsDirectory() {
		nodeType = types.NodeTypeDirectory
	}
	return &types.NodeDocument{
		ID:        node.ID(),
		Path:      node.Path,
		Name:      filepath.Base(node.Path),
		Type:      nodeType,
		Size:      utils.FormatFileSize(node.Summary.Size),
		SizeBytes: node.Summary.Size,
		Lines:     node.Summary.Count,
		Tokens:    node.Summary.Tokens,
		UpdatedAt: formatUpdatedAt(node.Summary),
	}
}

func summaryEvent(summary tree.NodeSummary, counts entryCounts, tokenModel string) *SummaryEvent {
	event := &SummaryEvent{
		Files:       counts.files,
		Directories: counts.directories,
		Bytes:       summary.Size,
		Lines:       summary.Count,
		Tokens:      summary.Tokens,
	}
	if summary.Tokens > 0 {
		event.Model = tokenModel
	}
	if summary.UpdatedAt != nil {
		event.UpdatedAt = *summary.UpdatedAt
	}
	return event
}

func formatUpdatedAt(summary tree.NodeSummary) string {
	if summary.UpdatedAt == nil {
		return ""
	}
	return summary.UpdatedAt.UTC().Format(documentTimeLayout)
}
