// Package github fetches pull request diffs from the GitHub API and
// posts review reports back as PR comments.
package github
