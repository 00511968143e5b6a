// Package analyzer detects common Kubernetes pod failures in raw diagnostic text
// such as kubectl logs or kubectl describe pod output.
//
// Detection has two stages. A fixed catalog of case-insensitive regular
// expressions is scanned first; every rule that matches anywhere in the text
// produces an Issue, in catalog order. A small set of heuristics then inspects
// structured fields in the same text (restart count, pod phase, age) and
// appends derived issues.
//
// Analysis never fails: text that matches nothing yields an empty result.
// The analyzer holds no mutable state and is safe for concurrent use.
package analyzer

import (
	"strings"

	"github.com/supporttools/pod-doctor/pkg/types"
)

// MaxMatchingLines is the number of example lines kept per catalog issue.
const MaxMatchingLines = 3

// Analyzer scans diagnostic text against an ordered rule catalog.
type Analyzer struct {
	rules []Rule
}

// New returns an Analyzer using the built-in catalog.
func New() *Analyzer {
	return &Analyzer{rules: defaultRules}
}

var defaultAnalyzer = New()

// Analyze runs the built-in analyzer over text.
func Analyze(text string) []types.Issue {
	return defaultAnalyzer.Analyze(text)
}

// Rules returns a copy of the analyzer's catalog in reporting order.
func (a *Analyzer) Rules() []Rule {
	return cloneRules(a.rules)
}

// Analyze returns the issues detected in text. Catalog issues come first, in
// catalog order, followed by heuristic issues in the order AddHeuristicChecks
// evaluates them. The result is never nil.
func (a *Analyzer) Analyze(text string) []types.Issue {
	return AddHeuristicChecks(text, a.scan(text))
}

// scan applies every catalog rule to the whole text.
func (a *Analyzer) scan(text string) []types.Issue {
	issues := make([]types.Issue, 0, len(a.rules))
	lines := strings.Split(text, "\n")

	for i := range a.rules {
		rule := &a.rules[i]
		if !rule.Matcher.MatchString(text) {
			continue
		}
		issues = append(issues, rule.issue(matchingLines(rule, lines)))
	}

	return issues
}

// matchingLines returns the first MaxMatchingLines lines the rule matches on
// their own. A rule can match the whole text without matching any single line,
// in which case the result is empty but non-nil.
func matchingLines(rule *Rule, lines []string) []string {
	matched := make([]string, 0, MaxMatchingLines)
	for _, line := range lines {
		if len(matched) == MaxMatchingLines {
			break
		}
		if rule.Matcher.MatchString(line) {
			matched = append(matched, line)
		}
	}
	return matched
}
