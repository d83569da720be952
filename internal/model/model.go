// Package model defines the core data types shared across mergevet.
package model

import "time"

// RiskLevel categorizes the risk of a change.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Rank returns a numeric rank for comparison (higher = riskier).
func (r RiskLevel) Rank() int {
	switch r {
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}

// MaxRisk returns the higher of two risk levels. Combining assessment
// sources never lowers risk.
func MaxRisk(a, b RiskLevel) RiskLevel {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// ParseRisk normalizes a risk-level string from model output. Unknown
// values degrade to low rather than failing the parse.
func ParseRisk(s string) RiskLevel {
	switch RiskLevel(s) {
	case RiskHigh, RiskMedium, RiskLow:
		return RiskLevel(s)
	default:
		return RiskLow
	}
}

// Issue is a single problem found in a reviewed file. Issues are
// immutable once emitted.
type Issue struct {
	FilePath    string    `json:"file_path"`
	LineNumber  int       `json:"line_number,omitempty"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Description string    `json:"description"`
	Suggestion  string    `json:"suggestion,omitempty"`
}

// FileVerdict is the risk assessment for one reviewed file, including
// files whose review was summarized or skipped under budget.
type FileVerdict struct {
	FilePath  string    `json:"file_path"`
	RiskLevel RiskLevel `json:"risk_level"`
	Changes   string    `json:"changes"`
	Issues    []Issue   `json:"issues"`
}

// Conclusion is the binary top-level recommendation.
type Conclusion string

const (
	CanSubmit   Conclusion = "can_submit"
	NeedsReview Conclusion = "needs_review"
)

// CacheInfo records whether the project-context cache served this
// review, and from which generation.
type CacheInfo struct {
	UsedCache      bool      `json:"used_cache"`
	CacheTimestamp time.Time `json:"cache_timestamp,omitempty"`
	CacheVersion   string    `json:"cache_version,omitempty"`
}

// ReviewResult is the terminal output of one pipeline run. It is never
// mutated after construction; renderers consume it read-only.
type ReviewResult struct {
	Conclusion    Conclusion    `json:"conclusion"`
	Confidence    float64       `json:"confidence"`
	FilesReviewed []FileVerdict `json:"files_reviewed"`
	Summary       string        `json:"summary"`
	CacheInfo     *CacheInfo    `json:"cache_info,omitempty"`
}
