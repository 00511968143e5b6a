package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSeverityRank(t *testing.T) {
	tests := []struct {
		severity Severity
		rank     int
		valid    bool
	}{
		{SeverityError, 3, true},
		{SeverityWarning, 2, true},
		{SeverityInfo, 1, true},
		{Severity("critical"), 0, false},
		{Severity(""), 0, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			if got := tt.severity.Rank(); got != tt.rank {
				t.Errorf("Rank() = %d, want %d", got, tt.rank)
			}
			if got := tt.severity.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}

	if !(SeverityError.Rank() > SeverityWarning.Rank() && SeverityWarning.Rank() > SeverityInfo.Rank()) {
		t.Error("severity ranks are not ordered error > warning > info")
	}
}

func TestSummaryAdd(t *testing.T) {
	var s Summary
	for _, sev := range []Severity{SeverityError, SeverityError, SeverityWarning, SeverityInfo, Severity("other")} {
		s.Add(sev)
	}

	want := Summary{Total: 5, Errors: 2, Warnings: 1, Info: 1}
	if s != want {
		t.Errorf("Summary = %+v, want %+v", s, want)
	}
}

func TestIssueJSON(t *testing.T) {
	tests := []struct {
		name  string
		issue Issue
		want  string
	}{
		{
			name:  "catalog issue with no matching lines",
			issue: Issue{Name: "DNS Issues", Severity: SeverityError, MatchingLines: []string{}},
			want:  `"matchingLines":[]`,
		},
		{
			name:  "heuristic issue",
			issue: Issue{Name: "Pod Stuck in Pending", Severity: SeverityWarning},
			want:  `"matchingLines":null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.issue)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("Marshal() = %s, want it to contain %s", data, tt.want)
			}
		})
	}
}
