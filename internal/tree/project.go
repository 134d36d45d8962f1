package tree

import (
	"github.com/google/uuid"
)

// State is the lifecycle position of a ProjectTree.
type State int

const (
	// StateUnbuilt means no root has been built yet.
	StateUnbuilt State = iota
	// StateBuilt means a root exists but its summaries may be zero or stale.
	StateBuilt
	// StateSummarized means summaries reflect the last aggregation pass.
	StateSummarized
)

var stateLabels = map[State]string{
	StateUnbuilt:    "unbuilt",
	StateBuilt:      "built",
	StateSummarized: "summarized",
}

func (state State) String() string {
	return stateLabels[state]
}

// NewProjectID returns a fresh random identifier for a project tree.
func NewProjectID() string {
	return uuid.NewString()
}

// ProjectOptions supplies collaborators for a ProjectTree. Zero values select
// the filesystem validator and a default Aggregator.
type ProjectOptions struct {
	Validator  PathValidator
	Aggregator *Aggregator
}

// ProjectTree is one analysis session over a root path.
// It is not safe for concurrent use.
type ProjectTree struct {
	ID     string
	Name   string
	Path   string
	Root   *TreeNode
	Config *ProjectConfig

	state      State
	validator  PathValidator
	aggregator *Aggregator
	fallbacks  []MetricFallback
}

// New constructs an unbuilt project tree with default collaborators.
//
// Build discovers the tree shape and Summarize computes the summaries:
//
//	project := tree.New("example", ".", nil)
//	if err := project.Build(); err != nil { ... }
//	if err := project.Summarize(); err != nil { ... }
func New(name string, path string, config *ProjectConfig) *ProjectTree {
	return NewWithOptions(name, path, config, ProjectOptions{})
}

// NewWithOptions constructs an unbuilt project tree with the provided collaborators.
func NewWithOptions(name string, path string, config *ProjectConfig, options ProjectOptions) *ProjectTree {
	validator := options.Validator
	if validator == nil {
		validator = NewFilesystemValidator()
	}
	aggregator := options.Aggregator
	if aggregator == nil {
		aggregator = NewAggregator(AggregatorOptions{})
	}
	return &ProjectTree{
		ID:         NewProjectID(),
		Name:       name,
		Path:       path,
		Config:     config,
		state:      StateUnbuilt,
		validator:  validator,
		aggregator: aggregator,
	}
}

// Plant constructs a project tree, builds it and summarizes it.
func Plant(name string, path string, config *ProjectConfig) (*ProjectTree, error) {
	return PlantWithOptions(name, path, config, ProjectOptions{})
}

// PlantWithOptions is Plant with explicit collaborators.
func PlantWithOptions(name string, path string, config *ProjectConfig, options ProjectOptions) (*ProjectTree, error) {
	project := NewWithOptions(name, path, config, options)
	if buildError := project.Build(); buildError != nil {
		return nil, buildError
	}
	if summarizeError := project.Summarize(); summarizeError != nil {
		return nil, summarizeError
	}
	return project, nil
}

// State reports the lifecycle position of the project.
func (project *ProjectTree) State() State {
	return project.state
}

// IsValid reports whether the root path currently exists.
func (project *ProjectTree) IsValid() bool {
	_, validationError := project.validator.Validate(project.Path)
	return validationError == nil
}

// Build walks Path and replaces Root wholesale. On failure Root keeps its
// previous value and the state is unchanged.
func (project *ProjectTree) Build() error {
	builder := NewBuilder(project.validator, project.Config)
	rootNode, buildError := builder.Build(project.Path)
	if buildError != nil {
		return buildError
	}
	project.Root = rootNode
	project.state = StateBuilt
	project.fallbacks = nil
	return nil
}

// Summarize recomputes every summary under Root. It fails with ErrNotBuilt
// when Root is absent and with ErrInvalidPath when Path no longer exists.
func (project *ProjectTree) Summarize() error {
	if project.Root == nil {
		return ErrNotBuilt
	}
	if _, validationError := project.validator.Validate(project.Path); validationError != nil {
		return validationError
	}
	rootSummary, fallbacks, aggregateError := project.aggregator.AggregateWithFallbacks(project.Root)
	if aggregateError != nil {
		return aggregateError
	}
	project.Root.Summary = rootSummary
	project.fallbacks = fallbacks
	project.state = StateSummarized
	return nil
}

// Fallbacks lists the metrics the last Summarize counted as zero.
func (project *ProjectTree) Fallbacks() []MetricFallback {
	return append([]MetricFallback(nil), project.fallbacks...)
}
