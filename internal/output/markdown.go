package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/mergevet/mergevet/internal/model"
	"github.com/mergevet/mergevet/internal/triage"
)

// MarkdownWriter renders a human-readable markdown report. With
// PRComment set it emits the condensed variant posted to pull
// requests: per-file detail goes behind a collapsible section and
// clean files are elided.
type MarkdownWriter struct {
	PRComment bool
}

func (m *MarkdownWriter) Write(w io.Writer, result model.ReviewResult) error {
	fmt.Fprintf(w, "## Merge Review: %s\n\n", conclusionLabel(result.Conclusion))
	fmt.Fprintf(w, "**Confidence:** %.0f%%\n\n", result.Confidence)

	if len(result.FilesReviewed) == 0 {
		fmt.Fprintln(w, "No files to review.")
		return nil
	}

	var high, medium, low int
	for _, v := range result.FilesReviewed {
		switch v.RiskLevel {
		case model.RiskHigh:
			high++
		case model.RiskMedium:
			medium++
		default:
			low++
		}
	}
	fmt.Fprintf(w, "| Risk | Files |\n")
	fmt.Fprintf(w, "|------|-------|\n")
	fmt.Fprintf(w, "| High | %d |\n", high)
	fmt.Fprintf(w, "| Medium | %d |\n", medium)
	fmt.Fprintf(w, "| Low | %d |\n\n", low)

	compact := m.PRComment || triage.CompactRendering(len(result.FilesReviewed))
	if compact {
		m.writeCompact(w, result)
	} else {
		m.writeDetailed(w, result)
	}

	if ci := result.CacheInfo; ci != nil && ci.UsedCache {
		fmt.Fprintf(w, "*Project context from cache (generation %s, built %s).*\n",
			ci.CacheVersion, ci.CacheTimestamp.Format("2006-01-02 15:04"))
	}
	return nil
}

func (m *MarkdownWriter) writeDetailed(w io.Writer, result model.ReviewResult) {
	for _, v := range result.FilesReviewed {
		fmt.Fprintf(w, "### %s %s\n\n", riskIcon(v.RiskLevel), v.FilePath)
		fmt.Fprintf(w, "**Risk:** %s | **Changes:** %s\n\n", v.RiskLevel, v.Changes)
		writeIssues(w, v.Issues)
	}
}

func (m *MarkdownWriter) writeCompact(w io.Writer, result model.ReviewResult) {
	fmt.Fprintf(w, "| File | Risk | Changes | Issues |\n")
	fmt.Fprintf(w, "|------|------|---------|--------|\n")
	for _, v := range result.FilesReviewed {
		if m.PRComment && v.RiskLevel == model.RiskLow && len(v.Issues) == 0 {
			continue
		}
		fmt.Fprintf(w, "| `%s` | %s %s | %s | %d |\n",
			v.FilePath, riskIcon(v.RiskLevel), v.RiskLevel, v.Changes, len(v.Issues))
	}
	fmt.Fprintln(w)

	flagged := flaggedVerdicts(result.FilesReviewed)
	if len(flagged) == 0 {
		return
	}
	fmt.Fprintf(w, "<details>\n<summary>Issue detail (%d files)</summary>\n\n", len(flagged))
	for _, v := range flagged {
		fmt.Fprintf(w, "### %s\n\n", v.FilePath)
		writeIssues(w, v.Issues)
	}
	fmt.Fprintf(w, "</details>\n\n")
}

func writeIssues(w io.Writer, issues []model.Issue) {
	for _, issue := range issues {
		if issue.LineNumber > 0 {
			fmt.Fprintf(w, "- **line %d** (%s): %s\n", issue.LineNumber, issue.RiskLevel, issue.Description)
		} else {
			fmt.Fprintf(w, "- (%s): %s\n", issue.RiskLevel, issue.Description)
		}
		if issue.Suggestion != "" {
			fmt.Fprintf(w, "  - *Suggestion:* %s\n", issue.Suggestion)
		}
	}
	if len(issues) > 0 {
		fmt.Fprintln(w)
	}
}

func flaggedVerdicts(verdicts []model.FileVerdict) []model.FileVerdict {
	var flagged []model.FileVerdict
	for _, v := range verdicts {
		if len(v.Issues) > 0 {
			flagged = append(flagged, v)
		}
	}
	return flagged
}

func conclusionLabel(c model.Conclusion) string {
	switch c {
	case model.CanSubmit:
		return "safe to merge"
	case model.NeedsReview:
		return "needs human review"
	default:
		return string(c)
	}
}

func riskIcon(r model.RiskLevel) string {
	switch r {
	case model.RiskHigh:
		return ":red_circle:"
	case model.RiskMedium:
		return ":orange_circle:"
	default:
		return ":green_circle:"
	}
}

// Banner is the one-line terminal summary printed alongside the
// report.
func Banner(result model.ReviewResult) string {
	return fmt.Sprintf("%s (confidence %.0f%%, %d files)",
		strings.ToUpper(string(result.Conclusion)), result.Confidence, len(result.FilesReviewed))
}
