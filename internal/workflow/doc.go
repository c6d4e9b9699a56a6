// Package workflow implements the iterative code review loop.
//
// # Overview
//
// A run threads one ConversationState through a fixed graph:
//
//   - Reviewer: asks the generator for feedback on the current code
//   - TerminationPolicy: decides after every review whether to stop
//   - Coder: asks the generator to rewrite the code from the feedback
//   - Finalizer: rates the review cycle and compares the final code to the baseline
//
// Control flow is Reviewer → policy → (Coder → Reviewer) | Finalizer → End.
// The graph is an immutable transition table built by NewGraph; every run gets
// a fresh state.
//
// # Usage
//
//	runner, err := workflow.NewRunner(client, workflow.DefaultRunnerConfig())
//	if err != nil {
//	    return err
//	}
//	result, err := runner.RunProblem(ctx, problem, "python")
//	if err != nil {
//	    return err
//	}
//	_, err = result.Report().WriteTo(os.Stdout)
//
// The resolution check is pluggable through ResolutionClassifier. KeywordClassifier
// treats any answer containing "yes" as approval, negations included;
// StrictClassifier only accepts a leading yes token.
package workflow
