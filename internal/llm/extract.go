package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Verdict is the structured judgment extracted from free-form model
// output for a single file.
type Verdict struct {
	RiskLevel string         `json:"risk_level"`
	Issues    []VerdictIssue `json:"issues"`
	Summary   string         `json:"summary"`
}

// VerdictIssue is one issue the model reported.
type VerdictIssue struct {
	LineNumber  int    `json:"line_number"`
	RiskLevel   string `json:"risk_level"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion"`
}

// BatchItem is one file's entry in a batched (summarized-tier) model
// response.
type BatchItem struct {
	FilePath  string `json:"file_path"`
	RiskLevel string `json:"risk_level"`
	Note      string `json:"note"`
}

// batchPayload is the object shape of a batched response.
type batchPayload struct {
	Files []BatchItem `json:"files"`
}

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*\\n(.*?)```")

// extractionStrategies is the ordered list of ways model output may
// carry a parseable object. Each strategy returns candidate JSON text
// or false. They are tried in order; exhaustion is a parse failure.
var extractionStrategies = []func(string) (string, bool){
	// A fenced code block tagged as structured data.
	func(text string) (string, bool) {
		m := fencedBlock.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return strings.TrimSpace(m[1]), true
	},
	// A bare object or array occupying the entire response.
	func(text string) (string, bool) {
		trimmed := strings.TrimSpace(text)
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			return trimmed, true
		}
		return "", false
	},
}

// extractJSON runs the strategies in order and returns the first
// candidate that decodes into target.
func extractJSON(text string, target any) error {
	for _, strategy := range extractionStrategies {
		candidate, ok := strategy(text)
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(candidate), target); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: no strategy yielded a parseable object", ErrParseFailure)
}

// ExtractVerdict pulls a per-file verdict out of model output.
// Failure is ErrParseFailure; the caller substitutes a conservative
// default verdict instead of aborting.
func ExtractVerdict(text string) (Verdict, error) {
	var v Verdict
	if err := extractJSON(text, &v); err != nil {
		return Verdict{}, err
	}
	return v, nil
}

// ExtractBatch pulls the per-file items out of a batched model
// response. Both {"files":[...]} and a bare array are accepted.
func ExtractBatch(text string) ([]BatchItem, error) {
	var payload batchPayload
	if err := extractJSON(text, &payload); err == nil && len(payload.Files) > 0 {
		return payload.Files, nil
	}
	var items []BatchItem
	if err := extractJSON(text, &items); err != nil {
		return nil, err
	}
	return items, nil
}
