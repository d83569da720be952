package gitctx

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mergevet/mergevet/internal/diff"
)

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

// GetRepoMeta collects repository metadata from git.
func GetRepoMeta() (RepoMeta, error) {
	root, err := gitOutput("rev-parse", "--show-toplevel")
	if err != nil {
		return RepoMeta{}, fmt.Errorf("not a git repository: %w", err)
	}
	head, err := gitOutput("rev-parse", "HEAD")
	if err != nil {
		head = "" // new repo with no commits
	}
	branch, err := gitOutput("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		branch = ""
	}
	return RepoMeta{
		Root:   strings.TrimSpace(root),
		Head:   strings.TrimSpace(head),
		Branch: strings.TrimSpace(branch),
	}, nil
}

// Unstaged returns the working tree vs index changes.
func Unstaged(exclude []string) ([]diff.Entry, error) {
	return gitDiff([]string{"diff"}, exclude)
}

// Staged returns the index vs HEAD changes.
func Staged(exclude []string) ([]diff.Entry, error) {
	return gitDiff([]string{"diff", "--cached"}, exclude)
}

// Commit returns the changes introduced by one commit.
func Commit(sha string, exclude []string) ([]diff.Entry, error) {
	entries, err := gitDiff([]string{"diff", sha + "~1", sha}, exclude)
	if err != nil {
		// Initial commits have no parent.
		return gitDiff([]string{"show", "--format=", sha}, exclude)
	}
	return entries, nil
}

// Range returns the combined changes of a revision range such as
// origin/main..HEAD. With mergeBase, two-dot ranges are widened to
// three dots so the comparison starts at the merge base.
func Range(revRange string, mergeBase bool, exclude []string) ([]diff.Entry, error) {
	if mergeBase && strings.Contains(revRange, "..") && !strings.Contains(revRange, "...") {
		revRange = strings.Replace(revRange, "..", "...", 1)
	}
	return gitDiff([]string{"diff", revRange}, exclude)
}

func gitDiff(args []string, exclude []string) ([]diff.Entry, error) {
	out, err := gitOutput(args...)
	if err != nil {
		return nil, fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	entries, err := diff.ParseUnified(strings.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("parsing git output: %w", err)
	}
	return Filter(entries, exclude), nil
}

// Filter drops entries whose path matches any exclude pattern.
func Filter(entries []diff.Entry, exclude []string) []diff.Entry {
	if len(exclude) == 0 {
		return entries
	}
	kept := entries[:0]
	for _, e := range entries {
		if !MatchesAny(e.Filename, exclude) {
			kept = append(kept, e)
		}
	}
	return kept
}

// MatchesAny reports whether the path matches any of the glob
// patterns. A leading **/ also matches against the basename and the
// bare remainder, since filepath.Match has no recursive wildcard.
func MatchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := filepath.Match(pattern, path)
		if err == nil && matched {
			return true
		}
		clean := strings.TrimPrefix(pattern, "**/")
		if clean != pattern {
			matched, err = filepath.Match(clean, filepath.Base(path))
			if err == nil && matched {
				return true
			}
			matched, err = filepath.Match(clean, path)
			if err == nil && matched {
				return true
			}
		}
		if dir, ok := strings.CutSuffix(pattern, "/**"); ok {
			if path == dir || strings.HasPrefix(path, dir+"/") {
				return true
			}
		}
	}
	return false
}

func gitOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}
