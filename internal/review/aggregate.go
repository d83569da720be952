package review

import (
	"fmt"
	"strings"

	"github.com/mergevet/mergevet/internal/model"
)

// Tunables are the aggregation knobs. Zero fields take the defaults
// via withDefaults.
type Tunables struct {
	MediumIssuePenalty int
	HighIssuePenalty   int
	SkippedFilePenalty int
	MaxMediumFiles     int
}

// DefaultTunables returns the stock penalty weights.
func DefaultTunables() Tunables {
	return Tunables{
		MediumIssuePenalty: 10,
		HighIssuePenalty:   25,
		SkippedFilePenalty: 15,
		MaxMediumFiles:     2,
	}
}

func (t Tunables) withDefaults() Tunables {
	d := DefaultTunables()
	if t.MediumIssuePenalty <= 0 {
		t.MediumIssuePenalty = d.MediumIssuePenalty
	}
	if t.HighIssuePenalty <= 0 {
		t.HighIssuePenalty = d.HighIssuePenalty
	}
	if t.SkippedFilePenalty <= 0 {
		t.SkippedFilePenalty = d.SkippedFilePenalty
	}
	if t.MaxMediumFiles <= 0 {
		t.MaxMediumFiles = d.MaxMediumFiles
	}
	return t
}

// Aggregate folds per-file verdicts into the overall conclusion and
// confidence score. Verdicts must already be in input order; the
// summary lists them in that order.
func Aggregate(verdicts []model.FileVerdict, skippedFiles int, t Tunables) model.ReviewResult {
	t = t.withDefaults()

	var mediumIssues, highIssues, mediumFiles int
	anyHigh := false
	for _, v := range verdicts {
		switch v.RiskLevel {
		case model.RiskHigh:
			anyHigh = true
		case model.RiskMedium:
			mediumFiles++
		}
		for _, issue := range v.Issues {
			switch issue.RiskLevel {
			case model.RiskHigh:
				highIssues++
			case model.RiskMedium:
				mediumIssues++
			}
		}
	}

	conclusion := model.CanSubmit
	if anyHigh || mediumFiles > t.MaxMediumFiles {
		conclusion = model.NeedsReview
	}

	confidence := float64(100)
	confidence -= float64(mediumIssues * t.MediumIssuePenalty)
	confidence -= float64(highIssues * t.HighIssuePenalty)
	confidence -= float64(skippedFiles * t.SkippedFilePenalty)
	if confidence < 0 {
		confidence = 0
	}
	switch conclusion {
	case model.CanSubmit:
		if confidence < 50 {
			confidence = 50
		}
	case model.NeedsReview:
		if confidence > 95 {
			confidence = 95
		}
	}

	return model.ReviewResult{
		Conclusion:    conclusion,
		Confidence:    confidence,
		FilesReviewed: verdicts,
		Summary:       buildSummary(verdicts, skippedFiles),
	}
}

// buildSummary renders the per-file breakdown in input order.
func buildSummary(verdicts []model.FileVerdict, skippedFiles int) string {
	if len(verdicts) == 0 {
		return "No files to review."
	}

	var b strings.Builder
	counts := map[model.RiskLevel]int{}
	for _, v := range verdicts {
		counts[v.RiskLevel]++
	}
	fmt.Fprintf(&b, "Reviewed %d files: %d high risk, %d medium risk, %d low risk.\n",
		len(verdicts), counts[model.RiskHigh], counts[model.RiskMedium], counts[model.RiskLow])
	if skippedFiles > 0 {
		fmt.Fprintf(&b, "%d files received only a static scan under the review budget.\n", skippedFiles)
	}
	b.WriteString("\n")

	for _, v := range verdicts {
		fmt.Fprintf(&b, "- %s: %s", v.FilePath, v.RiskLevel)
		switch n := len(v.Issues); n {
		case 0:
		case 1:
			b.WriteString(" (1 issue)")
		default:
			fmt.Fprintf(&b, " (%d issues)", n)
		}
		b.WriteString("\n")
		for _, issue := range v.Issues {
			if issue.LineNumber > 0 {
				fmt.Fprintf(&b, "  - line %d (%s): %s\n", issue.LineNumber, issue.RiskLevel, issue.Description)
			} else {
				fmt.Fprintf(&b, "  - (%s): %s\n", issue.RiskLevel, issue.Description)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
