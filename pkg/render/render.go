// Package render turns analyzer results into text and HTML for people to read.
//
// Matching lines in an Issue are raw user input. The HTML renderer escapes
// them; callers that build their own markup must do the same.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/supporttools/pod-doctor/pkg/types"
)

// EmptyInputMessage is shown when a user submits nothing to analyze.
const EmptyInputMessage = "Please paste your kubectl logs or describe output"

// ErrEmptyInput is returned by CheckInput for blank submissions.
var ErrEmptyInput = errors.New(EmptyInputMessage)

// NoIssuesTitle heads the result shown when nothing was detected.
const NoIssuesTitle = "No Common Issues Detected"

// NoIssuesSuggestions are the generic hints shown when nothing was detected.
var NoIssuesSuggestions = []string{
	"Check application-specific logs for custom errors",
	"Review your application's dependencies and configuration",
	"Verify external services your app depends on",
}

const noIssuesDescription = "The analyzer didn't find any common Kubernetes issues in your logs. " +
	"If you're still experiencing problems, consider:"

// CheckInput trims surrounding whitespace and rejects blank input.
// The analyzer itself accepts anything; this guard belongs to the presentation layer.
func CheckInput(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrEmptyInput
	}
	return trimmed, nil
}

// Icon maps a severity to the glyph shown next to an issue.
func Icon(severity types.Severity) string {
	switch severity {
	case types.SeverityError:
		return "🚨"
	case types.SeverityWarning:
		return "⚠️"
	case types.SeverityInfo:
		return "ℹ️"
	default:
		return "🔍"
	}
}

// Summarize counts issues by severity.
func Summarize(issues []types.Issue) types.Summary {
	var s types.Summary
	for _, issue := range issues {
		s.Add(issue.Severity)
	}
	return s
}

// Heading returns the results title, e.g. "Analysis Results (2 issues found)".
func Heading(issueCount int) string {
	plural := "s"
	if issueCount == 1 {
		plural = ""
	}
	return fmt.Sprintf("Analysis Results (%d issue%s found)", issueCount, plural)
}

// Text writes a plain-text report of issues to w.
func Text(w io.Writer, issues []types.Issue) error {
	var b strings.Builder

	if len(issues) == 0 {
		fmt.Fprintf(&b, "✅ %s\n\n%s\n", NoIssuesTitle, noIssuesDescription)
		for _, suggestion := range NoIssuesSuggestions {
			fmt.Fprintf(&b, "  • %s\n", suggestion)
		}
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "🔍 %s\n", Heading(len(issues)))
	for _, issue := range issues {
		fmt.Fprintf(&b, "\n%s %s [%s]\n", Icon(issue.Severity), issue.Name, issue.Severity)
		fmt.Fprintf(&b, "  %s\n", issue.Description)

		if len(issue.MatchingLines) > 0 {
			b.WriteString("  Matching lines:\n")
			for _, line := range issue.MatchingLines {
				fmt.Fprintf(&b, "    | %s\n", strings.TrimRight(line, "\r"))
			}
		}

		b.WriteString("  Suggestions:\n")
		for _, suggestion := range issue.Suggestions {
			fmt.Fprintf(&b, "    • %s\n", suggestion)
		}
		fmt.Fprintf(&b, "  📚 Documentation: %s\n", issue.Docs)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
