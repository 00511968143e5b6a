// Package types defines the core data types shared by Pod Doctor's analyzer
// and its presentation adapters.
package types

// Severity classifies how urgent a detected issue is.
// Ordering from most to least urgent is error > warning > info.
type Severity string

const (
	// SeverityError marks a failure that keeps the pod from running.
	SeverityError Severity = "error"

	// SeverityWarning marks a degraded state that may turn into a failure.
	SeverityWarning Severity = "warning"

	// SeverityInfo marks context that is worth knowing but not actionable on its own.
	SeverityInfo Severity = "info"
)

// Rank returns a sort weight for the severity. Unknown values rank lowest.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether s is one of the known severities.
func (s Severity) IsValid() bool {
	return s.Rank() > 0
}

// Issue is one detected problem in a piece of pod diagnostic text.
type Issue struct {
	// Name identifies the rule or heuristic that produced the issue.
	Name string `json:"name"`

	// Severity of the issue.
	Severity Severity `json:"severity"`

	// Description is a short human-readable explanation.
	Description string `json:"description"`

	// Suggestions are remediation hints in presentation order.
	Suggestions []string `json:"suggestions"`

	// Docs is a reference URL. It is never validated or fetched.
	Docs string `json:"docs"`

	// MatchingLines holds up to three input lines that triggered a catalog rule,
	// in input order. Catalog issues always carry a non-nil slice (possibly empty);
	// heuristic issues leave it nil.
	//
	// These lines are raw user input and must be escaped before display.
	MatchingLines []string `json:"matchingLines"`
}

// Summary counts issues by severity.
type Summary struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
}

// Add counts one issue of the given severity.
func (s *Summary) Add(severity Severity) {
	s.Total++
	switch severity {
	case SeverityError:
		s.Errors++
	case SeverityWarning:
		s.Warnings++
	case SeverityInfo:
		s.Info++
	}
}
