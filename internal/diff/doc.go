// Package diff defines the immutable per-file change entries that feed
// a review, and the decoders that produce them.
//
// Entries arrive from three sources: a JSON entry list (either a bare
// array or a {"files": [...]} wrapper), raw unified diff text parsed
// with go-gitdiff, or the GitHub pull-request API (see the github
// package). Callers are expected to have applied exclude patterns
// before handing entries to the review engine.
package diff
