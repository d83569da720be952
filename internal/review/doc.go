// Package review runs the end-to-end merge review: it triages the
// diff into effort tiers, classifies each file with the pattern
// detector and the configured model under a bounded worker pool, and
// folds the per-file verdicts into a single conclusion with a
// confidence score.
//
// No per-file failure aborts a review. Provider errors, unparsable
// model output, and deadline overruns all degrade the affected file
// to a conservative medium-risk verdict with an explanatory issue.
package review
