package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/codefionn/codereview/internal/llm"
	"github.com/codefionn/codereview/internal/logger"
	"github.com/codefionn/codereview/internal/progress"
)

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// MaxIterations stops the loop once iterations exceed it.
	MaxIterations int
	// Classifier selects the resolution check ("keyword" or "strict").
	Classifier string
	// Temperature is passed to every generator call; 0 keeps the provider default.
	Temperature float64
	// Progress receives status lines and decisions. May be nil.
	Progress progress.Callback
	// Logger defaults to the global logger.
	Logger *logger.Logger
}

// DefaultRunnerConfig returns the configuration matching the classic loop.
func DefaultRunnerConfig() *RunnerConfig {
	return &RunnerConfig{
		MaxIterations: DefaultMaxIterations,
		Classifier:    ClassifierKeyword,
	}
}

// Result describes a finished run.
type Result struct {
	RunID        string
	State        *ConversationState
	ReviewerRuns int
	CoderRuns    int
	Reason       string
	Duration     time.Duration
}

// Report returns the process output of the run.
func (r *Result) Report() Report {
	return NewReport(r.State)
}

// Runner drives the review graph. It is safe to reuse across runs; each run
// owns its state.
type Runner struct {
	graph    *Graph
	policy   *TerminationPolicy
	steps    map[Node]Step
	seed     generator
	progress progress.Callback
	log      *logger.Logger
	newID    func() string
	now      func() time.Time
}

// NewRunner wires the default steps and classifier around client.
func NewRunner(client llm.Client, config *RunnerConfig) (*Runner, error) {
	if client == nil {
		return nil, fmt.Errorf("runner requires a generator client")
	}
	if config == nil {
		config = DefaultRunnerConfig()
	}

	classifier, err := NewClassifier(config.Classifier, client, config.Temperature)
	if err != nil {
		return nil, err
	}
	policy, err := NewTerminationPolicy(config.MaxIterations, classifier)
	if err != nil {
		return nil, err
	}

	log := config.Logger
	if log == nil {
		log = logger.Global()
	}

	return &Runner{
		graph:  NewGraph(),
		policy: policy,
		steps: map[Node]Step{
			NodeReviewer:  NewReviewerStep(client, config.Temperature),
			NodeCoder:     NewCoderStep(client, config.Temperature),
			NodeFinalizer: NewFinalizerStep(client, config.Temperature),
		},
		seed:     generator{client: client, temperature: config.Temperature},
		progress: config.Progress,
		log:      log,
		newID:    uuid.NewString,
		now:      time.Now,
	}, nil
}

// withClassifier returns a copy of the runner using classifier for the
// resolution check.
func (r *Runner) withClassifier(classifier ResolutionClassifier) *Runner {
	if classifier == nil {
		return r
	}
	c := *r
	c.policy = &TerminationPolicy{MaxIterations: r.policy.MaxIterations, Classifier: classifier}
	return &c
}

// Bootstrap generates the seed code for problem.
func (r *Runner) Bootstrap(ctx context.Context, problem string) (string, error) {
	code, err := bootstrap(ctx, r.seed, problem)
	if err != nil {
		return "", fmt.Errorf("bootstrap: %w", err)
	}
	return code, nil
}

// RunProblem bootstraps seed code for problem and reviews it. The seed is
// also the baseline.
func (r *Runner) RunProblem(ctx context.Context, problem, specialization string) (*Result, error) {
	code, err := r.Bootstrap(ctx, problem)
	if err != nil {
		return nil, err
	}
	state, err := NewConversationState(code, specialization, code)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return r.Run(ctx, state)
}

// Run executes the graph from its entry until End. Any failure aborts the run.
func (r *Runner) Run(ctx context.Context, state *ConversationState) (*Result, error) {
	if state == nil {
		return nil, missingField("state")
	}
	if state.Finalized() {
		return nil, errAlreadyFinalized
	}

	runID := r.newID()
	log := r.log.WithPrefix("run:" + shortID(runID))
	start := r.now()
	result := &Result{RunID: runID}

	log.Info("Starting review of %s code (max iterations %d)", state.Specialization(), r.policy.MaxIterations)

	node := r.graph.Entry()
	for node != NodeEnd {
		if err := ctx.Err(); err != nil {
			log.Warn("Run canceled before %s: %v", node, err)
			return nil, err
		}

		step, ok := r.steps[node]
		if !ok {
			return nil, fmt.Errorf("no step registered for %s", node)
		}

		r.report(progress.Update{
			Kind:       progress.KindStatus,
			Step:       node.String(),
			Message:    statusLine(node),
			Iteration:  state.Iterations(),
			AddNewLine: true,
		})

		stepStart := r.now()
		if err := step.Execute(ctx, state); err != nil {
			if llm.IsKind(err, llm.KindTimeout) {
				log.Error("%s step timed out: %v", node, err)
			} else {
				log.Error("%s step failed: %v", node, err)
			}
			return nil, &StepError{Node: node, Iteration: state.Iterations(), Err: err}
		}
		log.Debug("%s step finished in %s", node, r.now().Sub(stepStart))
		r.report(progress.Update{
			Kind:      progress.KindStepDone,
			Step:      node.String(),
			Message:   stepOutput(node, state),
			Iteration: state.Iterations(),
		})

		var decision *Decision
		switch node {
		case NodeReviewer:
			result.ReviewerRuns++
			d, err := r.policy.Decide(ctx, state)
			if err != nil {
				log.Error("Termination policy failed: %v", err)
				return nil, fmt.Errorf("termination policy at iteration %d: %w", state.Iterations(), err)
			}
			decision = &d
			log.Info("Iteration %d: terminate=%t resolved=%t cap=%t", state.Iterations(), d.Terminate, d.Resolved, d.CapReached)
			if d.Terminate {
				result.Reason = d.Reason
				r.report(progress.Update{
					Kind:       progress.KindDecision,
					Step:       node.String(),
					Message:    fmt.Sprintf("Stopping after %d review(s): %s", state.Iterations(), d.Reason),
					Iteration:  state.Iterations(),
					AddNewLine: true,
				})
			}
		case NodeCoder:
			result.CoderRuns++
		}

		next, err := r.graph.Next(node, decision)
		if err != nil {
			return nil, err
		}
		node = next
	}

	if ratings := ParseRatings(state.Rating()); len(ratings) > 0 {
		log.Info("Coder rating: %.1f/10", ratings[0])
	}
	if scores, err := ParseComparison(state.ComparisonSummary()); err == nil {
		log.Info("Comparison: revised %.1f/10, original %.1f/10", scores.Revised, scores.Original)
	} else {
		log.Debug("Comparison summary has no parseable scores: %v", err)
	}

	result.State = state.Clone()
	result.Duration = r.now().Sub(start)
	log.Info("Run finished after %d review(s) and %d revision(s) in %s (%s)",
		result.ReviewerRuns, result.CoderRuns, result.Duration, result.Reason)
	return result, nil
}

func (r *Runner) report(update progress.Update) {
	_ = progress.Dispatch(r.progress, update)
}

func statusLine(node Node) string {
	switch node {
	case NodeReviewer:
		return "Reviewer working..."
	case NodeCoder:
		return "CODER rewriting..."
	case NodeFinalizer:
		return "Review done..."
	default:
		return node.String()
	}
}

func stepOutput(node Node, state *ConversationState) string {
	switch node {
	case NodeReviewer:
		return state.Feedback()
	case NodeCoder:
		return state.Code()
	case NodeFinalizer:
		return state.Rating()
	default:
		return ""
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
