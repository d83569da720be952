package review

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mergevet/mergevet/internal/diff"
	"github.com/mergevet/mergevet/internal/model"
	"github.com/mergevet/mergevet/internal/projctx"
)

const systemPrompt = `You are a strict, expert code reviewer. You review one code change at a time and decide how risky it is to merge unattended.

Rules:
1. Only judge the changes shown in the diff. Do not comment on unchanged code.
2. Rate risk as "high" (security vulnerabilities, hardcoded secrets, auth issues, breaking changes), "medium" (code smells, likely bugs, maintainability problems), or "low" (style and minor improvements).
3. Be strict but fair. Focus on real issues, not style preferences.
4. Reference line numbers of the new file version from the diff hunks.

You MUST respond with ONLY a JSON object in this exact shape. No preamble, no trailing prose.
{
  "risk_level": "high|medium|low",
  "issues": [
    {
      "line_number": 123,
      "risk_level": "high|medium|low",
      "description": "What is wrong and why it matters",
      "suggestion": "How to fix it"
    }
  ],
  "summary": "Brief summary of the review"
}

If the change is clean, respond with an empty issues array and risk_level "low".`

const batchSystemPrompt = `You are a strict, expert code reviewer performing a quick pass over several files at once. For each file, judge merge risk from its change statistics and excerpt alone.

Rate risk as "high", "medium", or "low" using the same bar as a full review: security and correctness problems outrank style.

You MUST respond with ONLY a JSON object in this exact shape:
{
  "files": [
    {"file_path": "path/to/file", "risk_level": "high|medium|low", "note": "one-line reason"}
  ]
}`

// maxPatchBytes bounds how much of a single patch is embedded in a
// prompt; the rest is elided with a marker so the model knows it is
// looking at a truncated change.
const maxPatchBytes = 16000

// maxBatchExcerptBytes bounds the per-file excerpt in batched prompts.
const maxBatchExcerptBytes = 1500

// SystemPrompt returns the full-review system prompt.
func SystemPrompt() string { return systemPrompt }

// BatchSystemPrompt returns the summarized-pass system prompt.
func BatchSystemPrompt() string { return batchSystemPrompt }

// BuildFilePrompt assembles the user prompt for a full-tier review:
// project background, any detector findings, and the patch itself.
func BuildFilePrompt(entry diff.Entry, project projctx.Context, detected []model.Issue) string {
	var b strings.Builder

	writeProjectSection(&b, project)

	if len(detected) > 0 {
		b.WriteString("## Static Findings\n")
		b.WriteString("Heuristic scanners already flagged the following; confirm, refine, or add to them:\n")
		for _, issue := range detected {
			fmt.Fprintf(&b, "- line %d [%s]: %s\n", issue.LineNumber, issue.RiskLevel, issue.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Code Diff\n")
	fmt.Fprintf(&b, "File: %s\n", entry.Filename)
	fmt.Fprintf(&b, "Status: %s\n", entry.Status)
	fmt.Fprintf(&b, "Changes: +%d -%d\n", entry.Additions, entry.Deletions)
	b.WriteString("Diff:\n")
	b.WriteString(truncate(entry.Patch, maxPatchBytes))
	b.WriteString("\n\nReview this code change.")

	return b.String()
}

// BuildBatchPrompt assembles the user prompt for one summarized-tier
// batch: per-file statistics plus a short excerpt of each patch.
func BuildBatchPrompt(entries []diff.Entry, project projctx.Context) string {
	var b strings.Builder

	writeProjectSection(&b, project)

	fmt.Fprintf(&b, "## Files (%d)\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(&b, "### %s (%s, +%d -%d)\n", e.Filename, e.Status, e.Additions, e.Deletions)
		if e.Patch != "" {
			b.WriteString(truncate(e.Patch, maxBatchExcerptBytes))
			b.WriteString("\n")
		}
	}
	b.WriteString("\nAssess each file.")

	return b.String()
}

func writeProjectSection(b *strings.Builder, project projctx.Context) {
	if len(project.TechStack) == 0 && len(project.CriticalDirectories) == 0 && project.Conventions == "" {
		return
	}

	b.WriteString("## Project Context\n")
	if len(project.TechStack) > 0 {
		fmt.Fprintf(b, "Tech stack: %s\n", strings.Join(project.TechStack, ", "))
	}
	if project.Conventions != "" {
		fmt.Fprintf(b, "Conventions: %s\n", project.Conventions)
	}
	if len(project.Dependencies) > 0 {
		names := make([]string, 0, len(project.Dependencies))
		for name := range project.Dependencies {
			names = append(names, name)
		}
		sort.Strings(names)
		if len(names) > 20 {
			names = names[:20]
		}
		fmt.Fprintf(b, "Key dependencies: %s\n", strings.Join(names, ", "))
	}
	if len(project.CriticalDirectories) > 0 {
		fmt.Fprintf(b, "Critical paths (high-risk areas): %s\n", strings.Join(project.CriticalDirectories, ", "))
	}
	b.WriteString("\n")
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "\n... [patch truncated] ..."
}
