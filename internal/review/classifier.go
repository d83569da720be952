package review

import (
	"context"
	"errors"

	"github.com/chainguard-dev/clog"
	"github.com/mergevet/mergevet/internal/diff"
	"github.com/mergevet/mergevet/internal/llm"
	"github.com/mergevet/mergevet/internal/model"
	"github.com/mergevet/mergevet/internal/patterns"
	"github.com/mergevet/mergevet/internal/projctx"
	"github.com/mergevet/mergevet/internal/redact"
)

// bigSkippedChange is the line-churn threshold above which a skipped
// file is considered medium risk on size alone.
const bigSkippedChange = 300

// classifier produces one FileVerdict per entry, combining the pattern
// detector, the project context, and the model's judgment. It never
// returns an error: every failure mode degrades to a conservative
// verdict for the affected file.
type classifier struct {
	gateway       *llm.Gateway
	project       projctx.Context
	redactSecrets bool
}

// classifyFull runs the complete per-file pipeline: detector scan,
// prompt, model call, merge.
func (c *classifier) classifyFull(ctx context.Context, entry diff.Entry) model.FileVerdict {
	detected := patterns.Scan(entry.Filename, entry.Patch)

	prompt := llm.Prompt{
		System: SystemPrompt(),
		User:   BuildFilePrompt(c.promptEntry(entry), c.project, detected),
	}

	text, err := c.gateway.Complete(ctx, prompt)
	if err != nil {
		clog.FromContext(ctx).With("file", entry.Filename).
			With("error", err.Error()).
			Warn("Provider call failed, demoting to conservative verdict")
		return c.conservative(entry, detected, "model review unavailable: "+unavailableReason(err))
	}

	parsed, err := llm.ExtractVerdict(text)
	if err != nil {
		clog.FromContext(ctx).With("file", entry.Filename).
			Warn("Unparsable model output, demoting to conservative verdict")
		return c.conservative(entry, detected, "unparsable model output")
	}

	verdict := model.FileVerdict{
		FilePath:  entry.Filename,
		RiskLevel: model.ParseRisk(parsed.RiskLevel),
		Changes:   entry.Changes(),
		Issues:    mergeIssues(entry.Filename, detected, parsed.Issues),
	}
	// Combining signals never lowers risk.
	verdict.RiskLevel = model.MaxRisk(verdict.RiskLevel, patterns.MaxRisk(detected))
	return c.applyFloor(verdict)
}

// classifyBatch handles one summarized-tier batch with a single
// lighter model pass; per-line issue detail is not guaranteed.
func (c *classifier) classifyBatch(ctx context.Context, entries []diff.Entry) []model.FileVerdict {
	detectedByFile := make(map[string][]model.Issue, len(entries))
	promptEntries := make([]diff.Entry, len(entries))
	for i, entry := range entries {
		detectedByFile[entry.Filename] = patterns.Scan(entry.Filename, entry.Patch)
		promptEntries[i] = c.promptEntry(entry)
	}

	riskByFile := make(map[string]model.RiskLevel, len(entries))
	noteByFile := make(map[string]string, len(entries))

	var failReason string
	text, err := c.gateway.Complete(ctx, llm.Prompt{
		System: BatchSystemPrompt(),
		User:   BuildBatchPrompt(promptEntries, c.project),
	})
	if err != nil {
		failReason = unavailableReason(err)
		clog.FromContext(ctx).With("error", err.Error()).
			Warn("Batch provider call failed, demoting batch to conservative verdicts")
	} else if items, perr := llm.ExtractBatch(text); perr != nil {
		failReason = "unparsable model output"
		clog.FromContext(ctx).Warn("Unparsable batch output, demoting batch to conservative verdicts")
	} else {
		for _, item := range items {
			riskByFile[item.FilePath] = model.ParseRisk(item.RiskLevel)
			noteByFile[item.FilePath] = item.Note
		}
	}

	verdicts := make([]model.FileVerdict, len(entries))
	for i, entry := range entries {
		detected := detectedByFile[entry.Filename]
		risk := patterns.MaxRisk(detected)
		issues := detected
		if modelRisk, ok := riskByFile[entry.Filename]; ok {
			risk = model.MaxRisk(risk, modelRisk)
			if note := noteByFile[entry.Filename]; note != "" && risk.Rank() >= model.RiskMedium.Rank() {
				issues = append(issues, model.Issue{
					FilePath:    entry.Filename,
					RiskLevel:   risk,
					Description: note,
				})
			}
		} else {
			// No model judgment for this file, either because the whole
			// batch failed or because the response omitted it. Stay
			// conservative per file.
			reason := failReason
			if reason == "" {
				reason = "no assessment in batch response"
			}
			risk = model.MaxRisk(risk, model.RiskMedium)
			issues = append(issues, model.Issue{
				FilePath:    entry.Filename,
				RiskLevel:   model.RiskMedium,
				Description: "model review unavailable: " + reason,
				Suggestion:  "Review this file manually.",
			})
		}

		verdicts[i] = c.applyFloor(model.FileVerdict{
			FilePath:  entry.Filename,
			RiskLevel: risk,
			Changes:   entry.Changes(),
			Issues:    issues,
		})
	}
	return verdicts
}

// classifySkipped builds a verdict without any model call: detector
// hits plus a size heuristic, marked as skipped under budget.
func (c *classifier) classifySkipped(entry diff.Entry) model.FileVerdict {
	detected := patterns.Scan(entry.Filename, entry.Patch)

	risk := patterns.MaxRisk(detected)
	if entry.TotalLines() >= bigSkippedChange {
		risk = model.MaxRisk(risk, model.RiskMedium)
	}

	return c.applyFloor(model.FileVerdict{
		FilePath:  entry.Filename,
		RiskLevel: risk,
		Changes:   entry.Changes() + " (full review skipped under budget)",
		Issues:    detected,
	})
}

// conservative is the fallback verdict when the model's judgment is
// unavailable for a full-tier file: medium risk with an explanatory
// issue, on top of whatever the detector found.
func (c *classifier) conservative(entry diff.Entry, detected []model.Issue, reason string) model.FileVerdict {
	issues := append([]model.Issue{}, detected...)
	issues = append(issues, model.Issue{
		FilePath:    entry.Filename,
		RiskLevel:   model.RiskMedium,
		Description: reason,
		Suggestion:  "Review this file manually.",
	})
	return c.applyFloor(model.FileVerdict{
		FilePath:  entry.Filename,
		RiskLevel: model.MaxRisk(model.RiskMedium, patterns.MaxRisk(detected)),
		Changes:   entry.Changes(),
		Issues:    issues,
	})
}

// applyFloor enforces the critical-path risk floor: files under a
// critical directory are never reported below medium.
func (c *classifier) applyFloor(v model.FileVerdict) model.FileVerdict {
	if c.project.IsCritical(v.FilePath) {
		v.RiskLevel = model.MaxRisk(v.RiskLevel, model.RiskMedium)
	}
	return v
}

// promptEntry returns the entry as it may be embedded in a prompt,
// with secrets scrubbed from the patch when redaction is on. The
// detector always sees the original text.
func (c *classifier) promptEntry(entry diff.Entry) diff.Entry {
	if c.redactSecrets {
		entry.Patch = redact.Patch(entry.Patch, entry.Filename)
	}
	return entry
}

// mergeIssues unions detector and model issues, de-duplicated by
// (line number, description).
func mergeIssues(filePath string, detected []model.Issue, fromModel []llm.VerdictIssue) []model.Issue {
	type key struct {
		line int
		desc string
	}
	seen := make(map[key]bool, len(detected)+len(fromModel))

	merged := make([]model.Issue, 0, len(detected)+len(fromModel))
	for _, issue := range detected {
		k := key{issue.LineNumber, issue.Description}
		if seen[k] {
			continue
		}
		seen[k] = true
		merged = append(merged, issue)
	}
	for _, issue := range fromModel {
		k := key{issue.LineNumber, issue.Description}
		if seen[k] {
			continue
		}
		seen[k] = true
		merged = append(merged, model.Issue{
			FilePath:    filePath,
			LineNumber:  issue.LineNumber,
			RiskLevel:   model.ParseRisk(issue.RiskLevel),
			Description: issue.Description,
			Suggestion:  issue.Suggestion,
		})
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}

// unavailableReason distinguishes a review-deadline overrun from an
// ordinary provider failure when picking the conservative reason text.
func unavailableReason(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "review deadline exceeded"
	}
	return "provider call failed"
}
