// Package triage decides how much review attention each changed file
// receives under a bounded budget.
//
// Assignment is deterministic and side-effect free: files are ranked by
// total line churn with filenames breaking ties, and the configured cap
// on full-detail reviews holds regardless of diff size. Skipped files
// still appear in results so coverage gaps are visible.
package triage
