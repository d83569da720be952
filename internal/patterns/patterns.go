package patterns

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mergevet/mergevet/internal/model"
)

// Rule is a single heuristic detector: a predicate over added patch
// lines plus the risk level and description it reports when it fires.
// Rules fire independently and may each produce multiple issues per
// file.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Risk        model.RiskLevel
	Description string
	Suggestion  string
}

// defaultRules covers the known high-risk idioms worth flagging before
// any model call.
var defaultRules = []Rule{
	{
		Name: "hardcoded-secret",
		Pattern: regexp.MustCompile(
			`(?i)(api[_-]?key|apikey|secret|token|password|passwd|credential)\s*[:=]\s*["'][^"']{8,}["']`),
		Risk:        model.RiskHigh,
		Description: "possible hardcoded secret",
		Suggestion:  "Load credentials from the environment or a secret manager instead of source code.",
	},
	{
		Name:        "aws-access-key",
		Pattern:     regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
		Risk:        model.RiskHigh,
		Description: "AWS access key ID committed to source",
		Suggestion:  "Revoke this key and load it from the environment or a secret manager.",
	},
	{
		Name:        "private-key-block",
		Pattern:     regexp.MustCompile(`-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`),
		Risk:        model.RiskHigh,
		Description: "private key material committed to source",
		Suggestion:  "Remove the key from the repository and rotate it.",
	},
	{
		Name: "sql-string-concat",
		Pattern: regexp.MustCompile(
			`(?i)(SELECT|INSERT|UPDATE|DELETE)\s[^"']*["'][^"']*["']\s*\+|\+\s*["'][^"']*(WHERE|FROM|VALUES)`),
		Risk:        model.RiskHigh,
		Description: "SQL built by string concatenation",
		Suggestion:  "Use parameterized queries or a query builder.",
	},
	{
		Name: "sql-format-string",
		Pattern: regexp.MustCompile(
			`(?i)(Sprintf|format|f["'])\s*\(?["'][^"']*(SELECT|INSERT|UPDATE|DELETE)\b[^"']*%`),
		Risk:        model.RiskHigh,
		Description: "SQL built with a format string",
		Suggestion:  "Use parameterized queries instead of interpolating values.",
	},
	{
		Name: "tls-verify-disabled",
		Pattern: regexp.MustCompile(
			`(?i)InsecureSkipVerify\s*:\s*true|verify\s*=\s*False|rejectUnauthorized\s*:\s*false|CURLOPT_SSL_VERIFYPEER\s*,\s*(0|false)`),
		Risk:        model.RiskHigh,
		Description: "TLS certificate verification disabled",
		Suggestion:  "Keep certificate verification enabled; pin or provision the expected CA instead.",
	},
	{
		Name: "credential-in-url",
		Pattern: regexp.MustCompile(
			`(?i)https?://[^\s"'/]+:[^\s"'@]+@[^\s"']+|[?&](api[_-]?key|access[_-]?token|auth)=[A-Za-z0-9/+=_-]{8,}`),
		Risk:        model.RiskMedium,
		Description: "outbound call carries credentials in the URL",
		Suggestion:  "Send credentials in an Authorization header, not the URL, so they stay out of logs.",
	},
	{
		Name:        "bearer-token-literal",
		Pattern:     regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`),
		Risk:        model.RiskMedium,
		Description: "bearer token literal in source",
		Suggestion:  "Read the token from configuration at runtime.",
	},
	{
		Name:        "eval-of-input",
		Pattern:     regexp.MustCompile(`(?i)\beval\s*\(|\bexec\s*\(\s*["']`),
		Risk:        model.RiskMedium,
		Description: "dynamic code evaluation",
		Suggestion:  "Avoid eval/exec on data; use an explicit dispatch table.",
	},
}

var hunkHeader = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// Scan applies every detector rule to the added lines of a patch and
// returns the issues that fired, with line numbers resolved from the
// hunk headers. It is stateless and never calls out.
func Scan(filePath, patch string) []model.Issue {
	return ScanWithRules(filePath, patch, defaultRules)
}

// ScanWithRules is Scan with an explicit rule set, for callers that
// extend or trim the defaults.
func ScanWithRules(filePath, patch string, rules []Rule) []model.Issue {
	if patch == "" {
		return nil
	}

	var issues []model.Issue
	lineNum := 0

	for _, line := range strings.Split(patch, "\n") {
		if m := hunkHeader.FindStringSubmatch(line); m != nil {
			lineNum, _ = strconv.Atoi(m[1])
			continue
		}

		switch {
		case strings.HasPrefix(line, "+++"):
			continue
		case strings.HasPrefix(line, "+"):
			content := line[1:]
			for _, rule := range rules {
				if rule.Pattern.MatchString(content) {
					issues = append(issues, model.Issue{
						FilePath:    filePath,
						LineNumber:  lineNum,
						RiskLevel:   rule.Risk,
						Description: fmt.Sprintf("%s: %s", rule.Description, strings.TrimSpace(content)),
						Suggestion:  rule.Suggestion,
					})
				}
			}
			lineNum++
		case strings.HasPrefix(line, "-"):
			// removed line, does not advance the new-file line counter
		default:
			lineNum++
		}
	}

	return issues
}

// MaxRisk returns the highest risk level among the given issues, or
// low when there are none.
func MaxRisk(issues []model.Issue) model.RiskLevel {
	risk := model.RiskLow
	for _, issue := range issues {
		risk = model.MaxRisk(risk, issue.RiskLevel)
	}
	return risk
}
