package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/ptree/internal/services/stream"
	"github.com/temirov/ptree/internal/tree"
	"github.com/temirov/ptree/internal/types"
	"github.com/temirov/ptree/internal/utils"
)

const (
	firstFileName      = "alpha.txt"
	firstFileContent   = "one\ntwo\n"
	nestedDirectory    = "nested"
	secondFileName     = "beta.go"
	secondFileContent  = "package beta"
	missingConfigName  = "missing.yaml"
	projectNameFlag    = "--name"
	expectedTotalLines = 3
)

type stubCopier struct {
	available bool
	copied    []string
}

func (copier *stubCopier) Available() bool {
	return copier.available
}

func (copier *stubCopier) Copy(text string) error {
	copier.copied = append(copier.copied, text)
	return nil
}

func createProjectFixture(testingHandle *testing.T) string {
	testingHandle.Helper()
	rootDirectory := testingHandle.TempDir()
	writeFixtureFile(testingHandle, filepath.Join(rootDirectory, firstFileName), firstFileContent)
	writeFixtureFile(testingHandle, filepath.Join(rootDirectory, nestedDirectory, secondFileName), secondFileContent)
	return rootDirectory
}

func writeFixtureFile(testingHandle *testing.T, path string, content string) {
	testingHandle.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		testingHandle.Fatalf("create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		testingHandle.Fatalf("write %s: %v", path, err)
	}
}

// runCommand executes the root command with an isolated home directory and
// configuration path.
func runCommand(testingHandle *testing.T, copier *stubCopier, arguments ...string) (string, error) {
	testingHandle.Helper()
	testingHandle.Setenv("HOME", testingHandle.TempDir())
	configPath := filepath.Join(testingHandle.TempDir(), missingConfigName)
	return runCommandWithConfig(testingHandle, copier, configPath, arguments...)
}

func runCommandWithConfig(testingHandle *testing.T, copier *stubCopier, configPath string, arguments ...string) (string, error) {
	testingHandle.Helper()
	stdout, _, executeError := runCommandStreams(testingHandle, copier, configPath, arguments...)
	return stdout, executeError
}

// runCommandStreams executes the root command and returns stdout and stderr separately.
func runCommandStreams(testingHandle *testing.T, copier *stubCopier, configPath string, arguments ...string) (string, string, error) {
	testingHandle.Helper()
	if copier == nil {
		copier = &stubCopier{}
	}
	return executeApplication(testingHandle, &application{logger: zap.NewNop(), copier: copier}, configPath, arguments...)
}

func executeApplication(testingHandle *testing.T, app *application, configPath string, arguments ...string) (string, string, error) {
	testingHandle.Helper()
	rootCommand := createRootCommand(app)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	rootCommand.SetOut(&stdout)
	rootCommand.SetErr(&stderr)
	fullArguments := append([]string{"--" + configFlagName, configPath}, arguments...)
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, fullArguments))
	executeError := rootCommand.Execute()
	return stdout.String(), stderr.String(), executeError
}

func TestPlantRawOutput(t *testing.T) {
	rootDirectory := createProjectFixture(t)

	outputText, err := runCommand(t, nil, "plant", rootDirectory)
	if err != nil {
		t.Fatalf("plant failed: %v", err)
	}

	expectedFragments := []string{
		"- " + rootDirectory + " [DIR] (",
		"  - " + filepath.Join(rootDirectory, firstFileName) + " [FILE] (8b, 2 lines)",
		"  - " + filepath.Join(rootDirectory, nestedDirectory) + " [DIR] (",
		"    - " + filepath.Join(rootDirectory, nestedDirectory, secondFileName) + " [FILE] (12b, 1 line)",
		"Summary: 2 files, 1 directory, 20b, 3 lines",
		"Updated: ",
	}
	for _, fragment := range expectedFragments {
		if !strings.Contains(outputText, fragment) {
			t.Fatalf("expected fragment %q in output:\n%s", fragment, outputText)
		}
	}
}

func TestPlantReportsUnreadableMetricsOnStderr(t *testing.T) {
	rootDirectory := createProjectFixture(t)
	blobPath := filepath.Join(rootDirectory, "blob.bin")
	if err := os.WriteFile(blobPath, []byte{0xff, 0xfe}, 0o600); err != nil {
		t.Fatalf("write blob: %v", err)
	}
	t.Setenv("HOME", t.TempDir())

	stdout, stderr, err := runCommandStreams(t, nil, filepath.Join(t.TempDir(), missingConfigName), "plant", "--format", types.FormatJSON, rootDirectory)
	if err != nil {
		t.Fatalf("plant failed: %v", err)
	}
	if !strings.Contains(stderr, "lines unavailable for "+blobPath) {
		t.Fatalf("expected a fallback warning on stderr, got %q", stderr)
	}
	var document types.ProjectDocument
	if decodeError := json.Unmarshal([]byte(stdout), &document); decodeError != nil {
		t.Fatalf("expected clean json on stdout: %v\n%s", decodeError, stdout)
	}
	if document.Summary == nil || document.Summary.TotalLines != 3 {
		t.Fatalf("expected the blob to add no lines, got %+v", document.Summary)
	}

	_, _, strictError := runCommandStreams(t, nil, filepath.Join(t.TempDir(), missingConfigName), "plant", "--strict", rootDirectory)
	if !errors.Is(strictError, tree.ErrInvalidEncoding) {
		t.Fatalf("expected strict plant to fail with ErrInvalidEncoding, got %v", strictError)
	}
}

func TestPlantJSONOutput(t *testing.T) {
	rootDirectory := createProjectFixture(t)

	outputText, err := runCommand(t, nil, "plant", "--format", types.FormatJSON, projectNameFlag, "fixture", rootDirectory)
	if err != nil {
		t.Fatalf("plant failed: %v", err)
	}

	var document types.ProjectDocument
	if decodeError := json.Unmarshal([]byte(outputText), &document); decodeError != nil {
		t.Fatalf("decode json output: %v\n%s", decodeError, outputText)
	}
	if document.Name != "fixture" {
		t.Fatalf("expected project name fixture, got %q", document.Name)
	}
	if len(document.ID) != 36 {
		t.Fatalf("expected uuid project id, got %q", document.ID)
	}
	if document.Summary == nil {
		t.Fatalf("expected summary in document")
	}
	if document.Summary.TotalFiles != 2 || document.Summary.TotalDirectories != 1 {
		t.Fatalf("unexpected totals: %+v", document.Summary)
	}
	if document.Summary.TotalLines != expectedTotalLines {
		t.Fatalf("expected %d lines, got %d", expectedTotalLines, document.Summary.TotalLines)
	}
	if document.Tree == nil || len(document.Tree.Children) != 2 {
		t.Fatalf("expected root with two children, got %+v", document.Tree)
	}
}

func TestPlantExclusionFlag(t *testing.T) {
	rootDirectory := createProjectFixture(t)

	outputText, err := runCommand(t, nil, "plant", "-e", nestedDirectory+"/", rootDirectory)
	if err != nil {
		t.Fatalf("plant failed: %v", err)
	}
	if strings.Contains(outputText, secondFileName) {
		t.Fatalf("expected %s to be excluded:\n%s", secondFileName, outputText)
	}
	if !strings.Contains(outputText, "Summary: 1 file, 0 directories, 8b, 2 lines") {
		t.Fatalf("unexpected summary:\n%s", outputText)
	}
}

func TestPlantGitignoreFlag(t *testing.T) {
	rootDirectory := createProjectFixture(t)
	writeFixtureFile(t, filepath.Join(rootDirectory, utils.GitIgnoreFileName), firstFileName+"\n")

	withoutIgnore, err := runCommand(t, nil, "plant", "--summary=false", rootDirectory)
	if err != nil {
		t.Fatalf("plant failed: %v", err)
	}
	if !strings.Contains(withoutIgnore, firstFileName) {
		t.Fatalf("expected %s without --gitignore:\n%s", firstFileName, withoutIgnore)
	}

	withIgnore, err := runCommand(t, nil, "plant", "--gitignore", "--summary=false", rootDirectory)
	if err != nil {
		t.Fatalf("plant failed: %v", err)
	}
	if strings.Contains(withIgnore, firstFileName) {
		t.Fatalf("expected %s to be ignored:\n%s", firstFileName, withIgnore)
	}
	if strings.Contains(withIgnore, utils.GitIgnoreFileName) {
		t.Fatalf("expected ignore file itself to be excluded:\n%s", withIgnore)
	}
}

func TestPlantRejectsUnknownFormat(t *testing.T) {
	rootDirectory := createProjectFixture(t)

	_, err := runCommand(t, nil, "plant", "--format", "toml", rootDirectory)
	if err == nil || !strings.Contains(err.Error(), "invalid format value") {
		t.Fatalf("expected invalid format error, got %v", err)
	}
}

func TestPlantMissingPath(t *testing.T) {
	missingPath := filepath.Join(t.TempDir(), "absent")

	_, err := runCommand(t, nil, "plant", missingPath)
	if !errors.Is(err, tree.ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath, got %v", err)
	}
}

func TestPlantClipboard(t *testing.T) {
	testCases := []struct {
		name           string
		available      bool
		expectedCopies int
	}{
		{name: "copies when available", available: true, expectedCopies: 1},
		{name: "skips when unavailable", available: false, expectedCopies: 0},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			rootDirectory := createProjectFixture(t)
			copier := &stubCopier{available: testCase.available}

			outputText, err := runCommand(t, copier, "plant", "--clipboard", rootDirectory)
			if err != nil {
				t.Fatalf("plant failed: %v", err)
			}
			if len(copier.copied) != testCase.expectedCopies {
				t.Fatalf("expected %d copies, got %d", testCase.expectedCopies, len(copier.copied))
			}
			if testCase.expectedCopies > 0 && copier.copied[0] != outputText {
				t.Fatalf("expected clipboard to hold the rendered output")
			}
		})
	}
}

func TestConfigurationSuppliesDefaults(t *testing.T) {
	rootDirectory := createProjectFixture(t)
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), utils.ConfigFileName)
	writeFixtureFile(t, configPath, "tree:\n  format: json\n  exclude:\n    - nested/\n")

	configuredOutput, err := runCommandWithConfig(t, nil, configPath, "plant", rootDirectory)
	if err != nil {
		t.Fatalf("plant failed: %v", err)
	}
	var document types.ProjectDocument
	if decodeError := json.Unmarshal([]byte(configuredOutput), &document); decodeError != nil {
		t.Fatalf("expected json from configuration: %v", decodeError)
	}
	if document.Summary == nil || document.Summary.TotalFiles != 1 {
		t.Fatalf("expected configured exclusion to apply, got %+v", document.Summary)
	}

	flagOutput, err := runCommandWithConfig(t, nil, configPath, "plant", "--format", types.FormatRaw, "-e", "none", rootDirectory)
	if err != nil {
		t.Fatalf("plant failed: %v", err)
	}
	if !strings.HasPrefix(flagOutput, "- "+rootDirectory+" [DIR]") {
		t.Fatalf("expected explicit flag to override configured format:\n%s", flagOutput)
	}
	if !strings.Contains(flagOutput, secondFileName) {
		t.Fatalf("expected explicit exclusions to replace configured ones:\n%s", flagOutput)
	}
}

func TestTreeCommandListsStructure(t *testing.T) {
	rootDirectory := createProjectFixture(t)

	outputText, err := runCommand(t, nil, "tree", rootDirectory)
	if err != nil {
		t.Fatalf("tree failed: %v", err)
	}
	expectedFragments := []string{
		"- " + rootDirectory + " [DIR]\n",
		"  - " + filepath.Join(rootDirectory, firstFileName) + " [FILE]\n",
		"    - " + filepath.Join(rootDirectory, nestedDirectory, secondFileName) + " [FILE]\n",
	}
	for _, fragment := range expectedFragments {
		if !strings.Contains(outputText, fragment) {
			t.Fatalf("expected fragment %q in output:\n%s", fragment, outputText)
		}
	}
}

func TestTreeCommandSkipsSummarizing(t *testing.T) {
	rootDirectory := createProjectFixture(t)
	if err := os.WriteFile(filepath.Join(rootDirectory, "blob.bin"), []byte{0xff, 0xfe}, 0o644); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), missingConfigName)

	testCases := []struct {
		command           string
		expectSummarizing bool
	}{
		{command: "tree", expectSummarizing: false},
		{command: "plant", expectSummarizing: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.command, func(t *testing.T) {
			core, observed := observer.New(zapcore.DebugLevel)
			app := &application{logger: zap.New(core), copier: &stubCopier{}}

			_, stderr, err := executeApplication(t, app, configPath, testCase.command, rootDirectory)
			if err != nil {
				t.Fatalf("%s failed: %v", testCase.command, err)
			}
			if observed.FilterMessage(logBuildingMessage).Len() != 1 {
				t.Fatalf("expected one build log entry, got %v", observed.All())
			}
			summarized := observed.FilterMessage(logSummarizedMessage).Len() == 1
			if summarized != testCase.expectSummarizing {
				t.Fatalf("expected summarizing %t, got log entries %v", testCase.expectSummarizing, observed.All())
			}
			if reportsFallback := strings.Contains(stderr, "lines unavailable"); reportsFallback != testCase.expectSummarizing {
				t.Fatalf("expected metric warnings only when summarizing, got stderr %q", stderr)
			}
		})
	}
}

func TestInfoCommandShowsHeader(t *testing.T) {
	testCases := []struct {
		name          string
		path          func(t *testing.T) string
		expectedValid string
	}{
		{name: "existing path", path: createProjectFixture, expectedValid: "Valid: true"},
		{name: "missing path", path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent") }, expectedValid: "Valid: false"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			projectPath := testCase.path(t)
			outputText, err := runCommand(t, nil, "info", projectNameFlag, "demo", projectPath)
			if err != nil {
				t.Fatalf("info failed: %v", err)
			}
			for _, fragment := range []string{"Project Tree:", testCase.expectedValid, "Name: demo", "Path: " + projectPath} {
				if !strings.Contains(outputText, fragment) {
					t.Fatalf("expected fragment %q in output:\n%s", fragment, outputText)
				}
			}
		})
	}
}

func TestInitCommandWritesGlobalConfiguration(t *testing.T) {
	homeDirectory := t.TempDir()

	t.Setenv("HOME", homeDirectory)
	configPath := filepath.Join(t.TempDir(), missingConfigName)
	outputText, err := runCommandWithConfig(t, nil, configPath, "init", "--global")
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	expectedPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
	if !strings.Contains(outputText, expectedPath) {
		t.Fatalf("expected written path %s in output: %s", expectedPath, outputText)
	}
	if _, statError := os.Stat(expectedPath); statError != nil {
		t.Fatalf("expected configuration file: %v", statError)
	}

	_, err = runCommandWithConfig(t, nil, configPath, "init", "--global")
	if err == nil {
		t.Fatalf("expected second init without --force to fail")
	}
	if _, err = runCommandWithConfig(t, nil, configPath, "init", "--global", "--force"); err != nil {
		t.Fatalf("init with --force failed: %v", err)
	}
}

func TestDispatchStreamPropagatesConsumerError(t *testing.T) {
	t.Parallel()

	consumerError := errors.New("consumer failed")
	producer := func(ctx context.Context, events chan<- stream.Event) error {
		for index := 0; index < 3; index++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case events <- stream.Event{Kind: stream.EventKindFile}:
			}
		}
		return nil
	}
	consumed := 0
	consumer := func(event stream.Event) error {
		consumed++
		if consumed == 2 {
			return consumerError
		}
		return nil
	}

	if err := dispatchStream(context.Background(), producer, consumer); !errors.Is(err, consumerError) {
		t.Fatalf("expected consumer error, got %v", err)
	}
}

func TestDispatchStreamDeliversAllEvents(t *testing.T) {
	t.Parallel()

	producer := func(ctx context.Context, events chan<- stream.Event) error {
		for _, kind := range []stream.EventKind{stream.EventKindStart, stream.EventKindTree, stream.EventKindDone} {
			events <- stream.Event{Kind: kind}
		}
		return nil
	}
	var received []stream.EventKind
	consumer := func(event stream.Event) error {
		received = append(received, event.Kind)
		return nil
	}

	if err := dispatchStream(context.Background(), producer, consumer); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if len(received) != 3 || received[0] != stream.EventKindStart || received[2] != stream.EventKindDone {
		t.Fatalf("unexpected events: %v", received)
	}
}
