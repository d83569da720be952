// Package output renders review results in the supported formats:
// markdown for terminals and files, JSON for tooling, and a condensed
// pr-comment variant for posting to pull requests.
package output
