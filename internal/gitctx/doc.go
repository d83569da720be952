// Package gitctx gathers local change sets from git: unstaged, staged,
// single-commit, and revision-range diffs, parsed into review entries.
package gitctx
