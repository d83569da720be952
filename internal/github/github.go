package github

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	gh "github.com/google/go-github/v84/github"
	"golang.org/x/oauth2"

	"github.com/mergevet/mergevet/internal/diff"
)

// commentMarker identifies the bot's own PR comment so reruns update
// it instead of stacking new ones.
const commentMarker = "<!-- mergevet-report -->"

// Client wraps the GitHub API for pull request review runs.
type Client struct {
	gh *gh.Client
}

// NewClient builds a client from token. GITHUB_API_URL switches to a
// GitHub Enterprise endpoint when set.
func NewClient(ctx context.Context, token string) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("github token is empty; set GITHUB_TOKEN")
	}
	httpCli := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	client := gh.NewClient(httpCli)

	if base := os.Getenv("GITHUB_API_URL"); base != "" {
		var err error
		client, err = client.WithEnterpriseURLs(base, base)
		if err != nil {
			return nil, fmt.Errorf("configuring enterprise endpoint: %w", err)
		}
	}
	return &Client{gh: client}, nil
}

// ListFiles fetches the changed files of a pull request as diff
// entries, following pagination.
func (c *Client) ListFiles(ctx context.Context, owner, repo string, number int) ([]diff.Entry, error) {
	var entries []diff.Entry
	opts := &gh.ListOptions{PerPage: 100}
	for {
		files, resp, err := c.gh.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing files of %s/%s#%d: %w", owner, repo, number, err)
		}
		for _, f := range files {
			entries = append(entries, diff.Entry{
				Filename:  f.GetFilename(),
				Status:    diff.Status(f.GetStatus()),
				Additions: f.GetAdditions(),
				Deletions: f.GetDeletions(),
				Patch:     f.GetPatch(),
			})
		}
		if resp.NextPage == 0 {
			return entries, nil
		}
		opts.Page = resp.NextPage
	}
}

// UpsertComment posts the report as a PR conversation comment,
// replacing the previous run's comment when one exists.
func (c *Client) UpsertComment(ctx context.Context, owner, repo string, number int, body string) error {
	body = commentMarker + "\n" + body

	existing, err := c.findComment(ctx, owner, repo, number)
	if err != nil {
		return err
	}
	if existing != 0 {
		_, _, err := c.gh.Issues.EditComment(ctx, owner, repo, existing, &gh.IssueComment{Body: &body})
		if err != nil {
			return fmt.Errorf("updating comment on %s/%s#%d: %w", owner, repo, number, err)
		}
		return nil
	}

	_, _, err = c.gh.Issues.CreateComment(ctx, owner, repo, number, &gh.IssueComment{Body: &body})
	if err != nil {
		return fmt.Errorf("posting comment on %s/%s#%d: %w", owner, repo, number, err)
	}
	return nil
}

func (c *Client) findComment(ctx context.Context, owner, repo string, number int) (int64, error) {
	opts := &gh.IssueListCommentsOptions{ListOptions: gh.ListOptions{PerPage: 100}}
	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return 0, fmt.Errorf("listing comments on %s/%s#%d: %w", owner, repo, number, err)
		}
		for _, comment := range comments {
			if strings.HasPrefix(comment.GetBody(), commentMarker) {
				return comment.GetID(), nil
			}
		}
		if resp.NextPage == 0 {
			return 0, nil
		}
		opts.Page = resp.NextPage
	}
}

var (
	httpsRemoteRe = regexp.MustCompile(`https?://[^/]+/([^/]+)/([^/.\s]+)`)
	sshRemoteRe   = regexp.MustCompile(`[^@]+@[^:]+:([^/]+)/([^/.\s]+)`)
)

// DetectRepo parses owner/repo from the git remote origin URL of the
// working directory.
func DetectRepo() (owner, repo string, err error) {
	out, err := exec.Command("git", "remote", "get-url", "origin").Output()
	if err != nil {
		return "", "", fmt.Errorf("cannot detect repo: git remote get-url origin failed: %w", err)
	}
	return ParseRemoteURL(strings.TrimSpace(string(out)))
}

// ParseRemoteURL extracts owner/repo from an HTTPS or SSH git remote
// URL.
func ParseRemoteURL(url string) (owner, repo string, err error) {
	url = strings.TrimSuffix(url, ".git")

	if m := httpsRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	if m := sshRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	return "", "", fmt.Errorf("cannot parse owner/repo from remote URL: %s", url)
}
