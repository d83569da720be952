// Mergevet decides whether a set of code changes is safe to merge
// without human review. It combines static risk-pattern detection, a
// cached summary of the surrounding project, and an LLM reviewer, and
// emits a can_submit or needs_review conclusion with a confidence
// score.
//
// Usage:
//
//	mergevet review staged                # review staged changes
//	mergevet review range origin/main..HEAD
//	mergevet review pr 42 --post          # review a pull request and comment
//	mergevet review file changes.json     # review a prepared change set
//	mergevet context refresh              # rebuild the project context cache
//
// The exit code is 1 when the conclusion is needs_review, so the
// command can gate merges directly in CI.
package main
