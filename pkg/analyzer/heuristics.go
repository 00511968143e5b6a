package analyzer

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/supporttools/pod-doctor/pkg/types"
)

const (
	// restartCountThreshold is exclusive: more than this many restarts is reported.
	restartCountThreshold = 5

	// Age thresholds (exclusive) for considering a pod long-running.
	oldAgeMinutes = 30
	oldAgeHours   = 2
)

var (
	restartCountRegex = regexp.MustCompile(`(?i)Restart Count:\s*(\d+)`)
	pendingRegex      = regexp.MustCompile(`(?i)Status:\s*Pending`)
	ageRegex          = regexp.MustCompile(`(?i)Age:\s*(\d+)([mhd])`)
)

// AddHeuristicChecks appends issues derived from structured fields in text to
// issues and returns the extended slice. The checks run in a fixed order
// (restart count, pending phase, age) and each one sees the issues appended by
// the checks before it; the age check only fires when at least one issue is
// already present.
//
// Only the first occurrence of each field in text is considered. Entries
// already in issues are not modified.
func AddHeuristicChecks(text string, issues []types.Issue) []types.Issue {
	if issue, ok := checkRestartCount(text); ok {
		issues = append(issues, issue)
	}

	if issue, ok := checkPending(text); ok {
		issues = append(issues, issue)
	}

	if issue, ok := checkAge(text, len(issues)); ok {
		issues = append(issues, issue)
	}

	return issues
}

func checkRestartCount(text string) (types.Issue, bool) {
	match := restartCountRegex.FindStringSubmatch(text)
	if match == nil {
		return types.Issue{}, false
	}

	// The capture is all digits, so Atoi can only fail on overflow,
	// which is certainly above the threshold.
	count, err := strconv.Atoi(match[1])
	if err == nil && count <= restartCountThreshold {
		return types.Issue{}, false
	}

	return types.Issue{
		Name:        "High Restart Count",
		Severity:    types.SeverityWarning,
		Description: fmt.Sprintf("Pod has restarted %s times", match[1]),
		Suggestions: []string{
			"Investigate why the container keeps crashing",
			"Check application logs for recurring errors",
			"Review startup dependencies and timing",
		},
		Docs: "https://kubernetes.io/docs/concepts/workloads/pods/pod-lifecycle/",
	}, true
}

func checkPending(text string) (types.Issue, bool) {
	if !pendingRegex.MatchString(text) {
		return types.Issue{}, false
	}

	return types.Issue{
		Name:        "Pod Stuck in Pending",
		Severity:    types.SeverityWarning,
		Description: "Pod is not being scheduled",
		Suggestions: []string{
			"Check node resources and availability",
			"Review node selectors and affinity rules",
			"Check for taints and tolerations",
			"Verify resource requests don't exceed node capacity",
		},
		Docs: "https://kubernetes.io/docs/concepts/scheduling-eviction/",
	}, true
}

func checkAge(text string, priorIssues int) (types.Issue, bool) {
	if priorIssues == 0 {
		return types.Issue{}, false
	}

	match := ageRegex.FindStringSubmatch(text)
	if match == nil || !isOldAge(match[1], match[2]) {
		return types.Issue{}, false
	}

	return types.Issue{
		Name:        "Long-running Issues",
		Severity:    types.SeverityInfo,
		Description: "Pod has been experiencing issues for an extended period",
		Suggestions: []string{
			"Consider recreating the pod",
			"Check if the issue is intermittent",
			"Review recent changes to the deployment",
		},
		Docs: "https://kubernetes.io/docs/concepts/workloads/pods/",
	}, true
}

// isOldAge classifies an age value. The unit comparison is exact: kubectl
// prints lower-case units, and an upper-case unit is not treated as old.
func isOldAge(digits, unit string) bool {
	value, err := strconv.Atoi(digits)
	overflow := err != nil

	switch unit {
	case "m":
		return overflow || value > oldAgeMinutes
	case "h":
		return overflow || value > oldAgeHours
	case "d":
		return true
	default:
		return false
	}
}
