package tree

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/ptree/internal/tokenizer"
)

// MetricPolicy decides what happens when a file metric cannot be read.
type MetricPolicy int

const (
	// PolicyBestEffort substitutes zero for unreadable metrics and keeps going.
	PolicyBestEffort MetricPolicy = iota
	// PolicyStrict aborts the pass on the first unreadable metric.
	PolicyStrict
)

const (
	metricSize   = "size"
	metricLines  = "lines"
	metricTokens = "tokens"

	logMetricFallbackMessage = "metric unavailable, counting as zero"
)

var errNilNode = errors.New("cannot summarize a nil node")

// MetricFallback records a metric that could not be read under
// PolicyBestEffort and was counted as zero.
type MetricFallback struct {
	Path   string
	Metric string
	Err    error
}

// AggregatorOptions configures an Aggregator. Zero values select defaults:
// disk metrics without caching, best-effort policy, time.Now and a no-op logger.
type AggregatorOptions struct {
	Metrics      FileMetrics
	Policy       MetricPolicy
	Clock        func() time.Time
	Logger       *zap.Logger
	TokenCounter tokenizer.Counter
}

// Aggregator computes node summaries bottom-up.
type Aggregator struct {
	metrics      FileMetrics
	policy       MetricPolicy
	clock        func() time.Time
	logger       *zap.Logger
	tokenCounter tokenizer.Counter
}

// NewAggregator returns an Aggregator with defaults applied to options.
func NewAggregator(options AggregatorOptions) *Aggregator {
	aggregator := &Aggregator{
		metrics:      options.Metrics,
		policy:       options.Policy,
		clock:        options.Clock,
		logger:       options.Logger,
		tokenCounter: options.TokenCounter,
	}
	if aggregator.metrics == nil {
		aggregator.metrics = &DiskMetrics{}
	}
	if aggregator.clock == nil {
		aggregator.clock = time.Now
	}
	if aggregator.logger == nil {
		aggregator.logger = zap.NewNop()
	}
	return aggregator
}

type aggregateFrame struct {
	node       *TreeNode
	nextChild  int
	accumulate NodeSummary
}

type summaryAssignment struct {
	node    *TreeNode
	summary NodeSummary
}

// Aggregate computes the summary of node and assigns fresh summaries to every
// descendant. The summary of node itself is returned, not assigned; the caller
// decides where it goes. Under PolicyStrict a metric failure returns an error
// and no node in the subtree is modified.
func (aggregator *Aggregator) Aggregate(node *TreeNode) (NodeSummary, error) {
	summary, _, aggregateError := aggregator.AggregateWithFallbacks(node)
	return summary, aggregateError
}

// AggregateWithFallbacks is Aggregate that also returns, in traversal order,
// the metrics that were counted as zero under PolicyBestEffort.
func (aggregator *Aggregator) AggregateWithFallbacks(node *TreeNode) (NodeSummary, []MetricFallback, error) {
	if node == nil {
		return NodeSummary{}, nil, errNilNode
	}
	var fallbacks []MetricFallback
	if !node.IsDirectory() {
		summary, fileError := aggregator.summarizeFile(node, &fallbacks)
		if fileError != nil {
			return NodeSummary{}, nil, fileError
		}
		return summary, fallbacks, nil
	}

	var assignments []summaryAssignment
	stack := []*aggregateFrame{{node: node, accumulate: newSummary(aggregator.clock())}}
	for {
		frame := stack[len(stack)-1]
		children := frame.node.Children()

		if frame.nextChild == len(children) {
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				for _, assignment := range assignments {
					assignment.node.Summary = assignment.summary
				}
				return frame.accumulate, fallbacks, nil
			}
			assignments = append(assignments, summaryAssignment{node: frame.node, summary: frame.accumulate})
			stack[len(stack)-1].accumulate.fold(frame.accumulate)
			continue
		}

		child := children[frame.nextChild]
		frame.nextChild++
		if child.IsDirectory() {
			stack = append(stack, &aggregateFrame{node: child, accumulate: newSummary(aggregator.clock())})
			continue
		}

		childSummary, childError := aggregator.summarizeFile(child, &fallbacks)
		if childError != nil {
			return NodeSummary{}, nil, childError
		}
		assignments = append(assignments, summaryAssignment{node: child, summary: childSummary})
		frame.accumulate.fold(childSummary)
	}
}

func (summary *NodeSummary) fold(child NodeSummary) {
	summary.Size += child.Size
	summary.Count += child.Count
	summary.Tokens += child.Tokens
}

func (aggregator *Aggregator) summarizeFile(node *TreeNode, fallbacks *[]MetricFallback) (NodeSummary, error) {
	summary := newSummary(aggregator.clock())

	size, sizeError := aggregator.metrics.Size(node.Path)
	if fallbackError := aggregator.fallback(fallbacks, node.Path, metricSize, sizeError); fallbackError != nil {
		return NodeSummary{}, fallbackError
	}
	lineCount, lineError := aggregator.metrics.LineCount(node.Path)
	if fallbackError := aggregator.fallback(fallbacks, node.Path, metricLines, lineError); fallbackError != nil {
		return NodeSummary{}, fallbackError
	}
	if sizeError == nil {
		summary.Size = size
	}
	if lineError == nil {
		summary.Count = lineCount
	}

	if aggregator.tokenCounter != nil {
		countResult, tokenError := tokenizer.CountFile(aggregator.tokenCounter, node.Path)
		if fallbackError := aggregator.fallback(fallbacks, node.Path, metricTokens, tokenError); fallbackError != nil {
			return NodeSummary{}, fallbackError
		}
		if tokenError == nil && countResult.Counted && countResult.Tokens > 0 {
			summary.Tokens = uint64(countResult.Tokens)
		}
	}
	return summary, nil
}

// fallback applies the metric policy to a metric error. It returns a non-nil
// error only when the pass has to stop; otherwise the failure is recorded.
func (aggregator *Aggregator) fallback(fallbacks *[]MetricFallback, path string, metric string, metricError error) error {
	if metricError == nil {
		return nil
	}
	if aggregator.policy == PolicyStrict {
		return newPathError(operationMeasure, path, nil, metricError)
	}
	aggregator.logger.Debug(logMetricFallbackMessage,
		zap.String("path", path),
		zap.String("metric", metric),
		zap.Error(metricError),
	)
	*fallbacks = append(*fallbacks, MetricFallback{Path: path, Metric: metric, Err: metricError})
	return nil
}
