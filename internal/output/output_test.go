package output_test

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/temirov/ptree/internal/output"
	"github.com/temirov/ptree/internal/services/stream"
	"github.com/temirov/ptree/internal/types"
)

const (
	sampleProjectID = "3f8a1c1e-0000-4000-8000-000000000000"
	sampleRoot      = "/tmp/root"
	sampleFile      = sampleRoot + "/file.txt"
	sampleNested    = sampleRoot + "/nested"
	sampleDeepFile  = sampleNested + "/deep.go"
)

var sampleUpdatedAt = time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)

func sampleTree() *types.NodeDocument {
	return &types.NodeDocument{
		ID: "root", Path: sampleRoot, Name: "root", Type: types.NodeTypeDirectory, SizeBytes: 1536, Lines: 12,
		Children: []*types.NodeDocument{
			{ID: "file", Path: sampleFile, Name: "file.txt", Type: types.NodeTypeFile, SizeBytes: 512, Lines: 1},
			{
				ID: "nested", Path: sampleNested, Name: "nested", Type: types.NodeTypeDirectory, SizeBytes: 1024, Lines: 11,
				Children: []*types.NodeDocument{
					{ID: "deep", Path: sampleDeepFile, Name: "deep.go", Type: types.NodeTypeFile, SizeBytes: 1024, Lines: 11, Tokens: 40},
				},
			},
		},
	}
}

func sampleEvents() []stream.Event {
	return []stream.Event{
		{Kind: stream.EventKindStart, Path: sampleRoot, Project: &stream.ProjectEvent{ID: sampleProjectID, Name: "sample", Path: sampleRoot}},
		{Kind: stream.EventKindDirectory, Directory: &stream.DirectoryEvent{Phase: stream.DirectoryEnter, Path: sampleRoot}},
		{Kind: stream.EventKindFile, File: &stream.FileEvent{Path: sampleFile, Depth: 1, SizeBytes: 512, Lines: 1}},
		{Kind: stream.EventKindDirectory, Directory: &stream.DirectoryEvent{Phase: stream.DirectoryLeave, Path: sampleRoot}},
		{Kind: stream.EventKindTree, Tree: sampleTree()},
		{Kind: stream.EventKindSummary, Summary: &stream.SummaryEvent{Files: 2, Directories: 1, Bytes: 1536, Lines: 12, Tokens: 40, Model: "gpt-4o", UpdatedAt: sampleUpdatedAt}},
		{Kind: stream.EventKindDone},
	}
}

func render(t *testing.T, renderer output.StreamRenderer, events []stream.Event) {
	t.Helper()
	for index, event := range events {
		if err := renderer.Handle(event); err != nil {
			t.Fatalf("handle event %d failed: %v", index, err)
		}
	}
	if err := renderer.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
}

func TestRawStreamRendererWritesTree(t *testing.T) {
	testCases := []struct {
		name              string
		includeSummary    bool
		expectedFragments []string
		absentFragments   []string
	}{
		{
			name:           "with summary",
			includeSummary: true,
			expectedFragments: []string{
				"- " + sampleRoot + " [DIR] (1.5kb, 12 lines)\n",
				"  - " + sampleFile + " [FILE] (512b, 1 line)\n",
				"  - " + sampleNested + " [DIR] (1kb, 11 lines)\n",
				"    - " + sampleDeepFile + " [FILE] (1kb, 11 lines, 40 tokens)\n",
				"Summary: 2 files, 1 directory, 1.5kb, 12 lines, 40 tokens (model: gpt-4o)",
				"Updated: ",
			},
		},
		{
			name:           "without summary",
			includeSummary: false,
			expectedFragments: []string{
				"- " + sampleRoot + " [DIR]\n",
				"  - " + sampleFile + " [FILE]\n",
				"    - " + sampleDeepFile + " [FILE]\n",
			},
			absentFragments: []string{"Summary:", "lines"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			var stdout bytes.Buffer
			var stderr bytes.Buffer
			render(t, output.NewRawStreamRenderer(&stdout, &stderr, testCase.includeSummary), sampleEvents())

			for _, fragment := range testCase.expectedFragments {
				if !strings.Contains(stdout.String(), fragment) {
					t.Fatalf("expected fragment %q in output: %s", fragment, stdout.String())
				}
			}
			for _, fragment := range testCase.absentFragments {
				if strings.Contains(stdout.String(), fragment) {
					t.Fatalf("unexpected fragment %q in output: %s", fragment, stdout.String())
				}
			}
			if stderr.Len() != 0 {
				t.Fatalf("expected no stderr output")
			}
		})
	}
}

func TestRenderersReportWarningsOnStderr(t *testing.T) {
	for _, format := range []string{types.FormatRaw, types.FormatJSON, types.FormatXML, types.FormatYAML} {
		t.Run(format, func(t *testing.T) {
			var stdout bytes.Buffer
			var stderr bytes.Buffer
			renderer, err := output.NewStreamRenderer(format, &stdout, &stderr, true)
			if err != nil {
				t.Fatalf("NewStreamRenderer: %v", err)
			}
			events := append([]stream.Event{{Kind: stream.EventKindWarning, Message: &stream.LogEvent{Level: "warning", Message: "alert"}}}, sampleEvents()...)
			render(t, renderer, events)
			if !strings.Contains(stderr.String(), "alert") {
				t.Fatalf("expected warning on stderr")
			}
		})
	}
}

func TestJSONStreamRendererWritesDocument(t *testing.T) {
	var stdout bytes.Buffer
	render(t, output.NewJSONStreamRenderer(&stdout, nil, true), sampleEvents())

	var decoded types.ProjectDocument
	if err := json.Unmarshal(stdout.Bytes(), &decoded); err != nil {
		t.Fatalf("decode json: %v\n%s", err, stdout.String())
	}
	if decoded.ID != sampleProjectID || decoded.Path != sampleRoot {
		t.Fatalf("unexpected project header: %+v", decoded)
	}
	if decoded.Tree == nil || len(decoded.Tree.Children) != 2 {
		t.Fatalf("expected two children in tree")
	}
	if decoded.Tree.Children[1].Children[0].Tokens != 40 {
		t.Fatalf("expected nested tokens to round-trip")
	}
	if decoded.Summary == nil || decoded.Summary.TotalFiles != 2 || decoded.Summary.TotalLines != 12 {
		t.Fatalf("unexpected summary: %+v", decoded.Summary)
	}
	if !strings.Contains(stdout.String(), `"sizeBytes": 1536`) {
		t.Fatalf("expected sizeBytes field in output: %s", stdout.String())
	}
}

func TestJSONStreamRendererOmitsSummaryWhenDisabled(t *testing.T) {
	var stdout bytes.Buffer
	render(t, output.NewJSONStreamRenderer(&stdout, nil, false), sampleEvents())
	if strings.Contains(stdout.String(), "totalFiles") {
		t.Fatalf("expected no summary block: %s", stdout.String())
	}
}

func TestXMLStreamRendererWritesDocument(t *testing.T) {
	var stdout bytes.Buffer
	render(t, output.NewXMLStreamRenderer(&stdout, nil, true), sampleEvents())

	if !strings.HasPrefix(stdout.String(), xml.Header) {
		t.Fatalf("expected xml header")
	}
	var decoded types.ProjectDocument
	if err := xml.Unmarshal(stdout.Bytes(), &decoded); err != nil {
		t.Fatalf("decode xml: %v\n%s", err, stdout.String())
	}
	if decoded.ID != sampleProjectID {
		t.Fatalf("expected project id attribute, got %q", decoded.ID)
	}
	if decoded.Tree == nil || decoded.Tree.Path != sampleRoot || len(decoded.Tree.Children) != 2 {
		t.Fatalf("unexpected xml tree: %+v", decoded.Tree)
	}
	if decoded.Tree.Children[1].Children[0].Path != sampleDeepFile {
		t.Fatalf("expected nested node in xml tree")
	}
}

func TestYAMLStreamRendererWritesDocument(t *testing.T) {
	var stdout bytes.Buffer
	render(t, output.NewYAMLStreamRenderer(&stdout, nil, true), sampleEvents())

	var decoded types.ProjectDocument
	if err := yaml.Unmarshal(stdout.Bytes(), &decoded); err != nil {
		t.Fatalf("decode yaml: %v\n%s", err, stdout.String())
	}
	if decoded.Name != "sample" || decoded.Tree == nil || decoded.Tree.Children[0].Path != sampleFile {
		t.Fatalf("unexpected yaml document: %+v", decoded)
	}
	if decoded.Summary == nil || decoded.Summary.TotalDirectories != 1 {
		t.Fatalf("unexpected yaml summary: %+v", decoded.Summary)
	}
}

func TestNewStreamRendererRejectsUnknownFormat(t *testing.T) {
	if _, err := output.NewStreamRenderer("toml", nil, nil, false); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestFormatSummaryLine(t *testing.T) {
	testCases := []struct {
		name     string
		summary  *types.OutputSummary
		expected string
	}{
		{
			name:     "nil summary",
			summary:  nil,
			expected: "Summary: 0 files, 0 directories, 0b, 0 lines",
		},
		{
			name:     "singular units",
			summary:  &types.OutputSummary{TotalFiles: 1, TotalDirectories: 1, TotalSize: "3b", TotalLines: 1},
			expected: "Summary: 1 file, 1 directory, 3b, 1 line",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if actual := output.FormatSummaryLine(testCase.summary); actual != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, actual)
			}
		})
	}
}
