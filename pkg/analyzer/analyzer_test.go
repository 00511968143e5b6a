package analyzer

import (
	"reflect"
	"strings"
	"testing"

	"github.com/supporttools/pod-doctor/pkg/types"
)

func issueNames(issues []types.Issue) []string {
	names := make([]string, 0, len(issues))
	for _, issue := range issues {
		names = append(names, issue.Name)
	}
	return names
}

func findIssue(issues []types.Issue, name string) (types.Issue, bool) {
	for _, issue := range issues {
		if issue.Name == name {
			return issue, true
		}
	}
	return types.Issue{}, false
}

// TestDefaultRules verifies the catalog contents and order.
func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()

	expected := []struct {
		name     string
		severity types.Severity
	}{
		{"ImagePullBackOff", types.SeverityError},
		{"CrashLoopBackOff", types.SeverityError},
		{"OOMKilled", types.SeverityError},
		{"Failed Mount", types.SeverityError},
		{"Resource Limits", types.SeverityWarning},
		{"Readiness Probe Failed", types.SeverityWarning},
		{"DNS Issues", types.SeverityError},
		{"Permission Denied", types.SeverityError},
		{"Network Issues", types.SeverityWarning},
	}

	if len(rules) != len(expected) {
		t.Fatalf("DefaultRules() returned %d rules, expected %d", len(rules), len(expected))
	}

	seen := make(map[string]bool)
	for i, rule := range rules {
		if rule.Name != expected[i].name {
			t.Errorf("rule %d: name = %q, want %q", i, rule.Name, expected[i].name)
		}
		if rule.Severity != expected[i].severity {
			t.Errorf("rule %q: severity = %q, want %q", rule.Name, rule.Severity, expected[i].severity)
		}
		if seen[rule.Name] {
			t.Errorf("duplicate rule name %q", rule.Name)
		}
		seen[rule.Name] = true

		if rule.Matcher == nil {
			t.Errorf("rule %q has no matcher", rule.Name)
		}
		if rule.Description == "" {
			t.Errorf("rule %q has no description", rule.Name)
		}
		if n := len(rule.Suggestions); n < 3 || n > 5 {
			t.Errorf("rule %q has %d suggestions, want 3-5", rule.Name, n)
		}
		if !strings.HasPrefix(rule.Docs, "https://kubernetes.io/docs/") {
			t.Errorf("rule %q docs = %q", rule.Name, rule.Docs)
		}
	}

	// Verify it's a copy
	if &rules[0] == &defaultRules[0] {
		t.Error("DefaultRules() returned the catalog itself, expected a copy")
	}
}

// TestAnalyze_CatalogTriggers checks that each trigger phrase fires its rule and only its rule.
func TestAnalyze_CatalogTriggers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"image pull backoff", "Back-off pulling image: ImagePullBackOff", "ImagePullBackOff"},
		{"err image pull", "Reason: ErrImagePull", "ImagePullBackOff"},
		{"failed to pull", `Failed to pull image "nginx:latst": not found`, "ImagePullBackOff"},
		{"crash loop", "Reason: CrashLoopBackOff", "CrashLoopBackOff"},
		{"backoff restarting", "Warning BackOff Back-off restarting failed container", "CrashLoopBackOff"},
		{"oom killed", "Reason: OOMKilled", "OOMKilled"},
		{"out of memory", "fatal error: Out Of Memory", "OOMKilled"},
		{"oom killer", "process 1234 killed by oom-killer", "OOMKilled"},
		{"mount setup", `MountVolume.SetUp failed for volume "data"`, "Failed Mount"},
		{"failed to mount", "kubelet failed to mount nfs share", "Failed Mount"},
		{"attach or mount", "Unable to attach or mount volumes: unmounted=[data]", "Failed Mount"},
		{"insufficient", "0/3 nodes are available: 3 Insufficient cpu resources.", "Resource Limits"},
		{"max limit", "requested memory exceeds the maximum limit", "Resource Limits"},
		{"readiness probe", "Readiness probe failed: HTTP probe failed with statuscode: 500", "Readiness Probe Failed"},
		{"liveness probe", "Liveness probe failed: HTTP probe failed", "Readiness Probe Failed"},
		{"no such host", "lookup db.internal: no such host", "DNS Issues"},
		{"dns failed", "DNS resolution failed for api.example.com", "DNS Issues"},
		{"permission denied", "open /data/db: permission denied", "Permission Denied"},
		{"access denied", "S3 returned Access Denied", "Permission Denied"},
		{"forbidden", `pods is Forbidden: User "system:serviceaccount:default:app" cannot list`, "Permission Denied"},
		{"connection refused", "dial tcp 10.0.0.1:5432: connect: connection refused", "Network Issues"},
		{"network unreachable", "connect: network unreachable", "Network Issues"},
		{"timeout", "context deadline exceeded (Client.Timeout exceeded)", "Network Issues"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := Analyze(tt.input)
			names := issueNames(issues)
			if len(names) != 1 || names[0] != tt.want {
				t.Errorf("Analyze(%q) = %v, want [%s]", tt.input, names, tt.want)
			}
		})
	}
}

// TestAnalyze_CatalogOrder verifies catalog order wins over input order.
func TestAnalyze_CatalogOrder(t *testing.T) {
	input := strings.Join([]string{
		"connect: connection refused",
		"Last State: Terminated, Reason: OOMKilled",
		"State: Waiting, Reason: CrashLoopBackOff",
		"Failed to pull image",
	}, "\n")

	got := issueNames(Analyze(input))
	want := []string{"ImagePullBackOff", "CrashLoopBackOff", "OOMKilled", "Network Issues"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Analyze() order = %v, want %v", got, want)
	}
}

func TestAnalyze_CrashLoopAndOOM(t *testing.T) {
	got := issueNames(Analyze("Reason: OOMKilled\nReason: CrashLoopBackOff"))
	want := []string{"CrashLoopBackOff", "OOMKilled"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Analyze() = %v, want %v", got, want)
	}
}

func TestAnalyze_AllRulesFire(t *testing.T) {
	input := strings.Join([]string{
		"ErrImagePull",
		"CrashLoopBackOff",
		"OOMKilled",
		"failed to mount",
		"exceeds the maximum limit",
		"Liveness probe failed",
		"no such host",
		"forbidden",
		"timeout",
	}, "\n")

	issues := Analyze(input)
	rules := DefaultRules()
	if len(issues) != len(rules) {
		t.Fatalf("Analyze() returned %d issues, want %d: %v", len(issues), len(rules), issueNames(issues))
	}
	for i, rule := range rules {
		if issues[i].Name != rule.Name {
			t.Errorf("issue %d = %q, want %q", i, issues[i].Name, rule.Name)
		}
	}
}

func TestAnalyze_MatchingLines(t *testing.T) {
	input := strings.Join([]string{
		"line 1: permission denied",
		"line 2: fine",
		"line 3: Forbidden",
		"line 4: ACCESS DENIED",
		"line 5: permission denied again",
	}, "\n")

	issues := Analyze(input)
	if len(issues) != 1 {
		t.Fatalf("Analyze() returned %v, want one issue", issueNames(issues))
	}

	want := []string{
		"line 1: permission denied",
		"line 3: Forbidden",
		"line 4: ACCESS DENIED",
	}
	if !reflect.DeepEqual(issues[0].MatchingLines, want) {
		t.Errorf("MatchingLines = %q, want %q", issues[0].MatchingLines, want)
	}
}

func TestAnalyze_MatchingLinesKeepsRawLine(t *testing.T) {
	issues := Analyze("  <b>OOMKilled</b>\r\nok")
	if len(issues) != 1 {
		t.Fatalf("Analyze() returned %v, want one issue", issueNames(issues))
	}
	if got := issues[0].MatchingLines; len(got) != 1 || got[0] != "  <b>OOMKilled</b>\r" {
		t.Errorf("MatchingLines = %q", got)
	}
}

func TestAnalyze_CatalogIssueHasNonNilMatchingLines(t *testing.T) {
	for _, issue := range Analyze(SamplePodDescription) {
		isHeuristic := issue.Name == "High Restart Count"
		if isHeuristic && issue.MatchingLines != nil {
			t.Errorf("heuristic issue %q has matching lines %q", issue.Name, issue.MatchingLines)
		}
		if !isHeuristic && issue.MatchingLines == nil {
			t.Errorf("catalog issue %q has nil matching lines", issue.Name)
		}
	}
}

func TestAnalyze_NoIssues(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"blank", "   \n\t\n"},
		{"healthy describe", "Name: web-0\nStatus: Running\nRestart Count: 0\nReady: True"},
		{"binary junk", "\x00\xff\xfe\x01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := Analyze(tt.input)
			if issues == nil {
				t.Fatal("Analyze() returned nil, want empty slice")
			}
			if len(issues) != 0 {
				t.Errorf("Analyze() = %v, want none", issueNames(issues))
			}
		})
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	first := Analyze(SamplePodDescription)
	second := Analyze(SamplePodDescription)
	if !reflect.DeepEqual(first, second) {
		t.Error("Analyze() returned different results for identical input")
	}
}

func TestAnalyze_ResultDoesNotAliasCatalog(t *testing.T) {
	issues := Analyze("OOMKilled")
	issues[0].Suggestions[0] = "mutated"

	again := Analyze("OOMKilled")
	if again[0].Suggestions[0] == "mutated" {
		t.Error("mutating a returned issue changed the catalog")
	}
}

func TestAnalyze_SamplePodDescription(t *testing.T) {
	issues := Analyze(SamplePodDescription)

	want := []string{"CrashLoopBackOff", "Readiness Probe Failed", "Network Issues", "High Restart Count"}
	if got := issueNames(issues); !reflect.DeepEqual(got, want) {
		t.Fatalf("Analyze(sample) = %v, want %v", got, want)
	}

	for _, absent := range []string{"Pod Stuck in Pending", "Long-running Issues"} {
		if _, ok := findIssue(issues, absent); ok {
			t.Errorf("Analyze(sample) unexpectedly contains %q", absent)
		}
	}

	crash, _ := findIssue(issues, "CrashLoopBackOff")
	if len(crash.MatchingLines) != 2 {
		t.Errorf("CrashLoopBackOff matching lines = %q, want 2", crash.MatchingLines)
	}

	restart, _ := findIssue(issues, "High Restart Count")
	if restart.Description != "Pod has restarted 8 times" {
		t.Errorf("High Restart Count description = %q", restart.Description)
	}
}

func TestAnalyzer_Rules(t *testing.T) {
	a := New()
	rules := a.Rules()
	rules[0].Name = "changed"

	if a.Rules()[0].Name != "ImagePullBackOff" {
		t.Error("Rules() exposed the analyzer's catalog")
	}
}

func TestRules_SuggestionsAreCopies(t *testing.T) {
	tests := []struct {
		name  string
		rules func() []Rule
	}{
		{"Analyzer.Rules", func() []Rule { return New().Rules() }},
		{"DefaultRules", DefaultRules},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := Analyze("CrashLoopBackOff")[0].Suggestions[0]

			rules := tt.rules()
			for i := range rules {
				for j := range rules[i].Suggestions {
					rules[i].Suggestions[j] = "changed"
				}
			}

			if after := Analyze("CrashLoopBackOff")[0].Suggestions[0]; after != before {
				t.Errorf("catalog suggestion changed through %s: before %q, after %q", tt.name, before, after)
			}
			if got := tt.rules()[1].Suggestions[0]; got != before {
				t.Errorf("fresh copy suggestion = %q, want %q", got, before)
			}
		})
	}
}

func TestAnalyze_ConcurrentCallers(t *testing.T) {
	want := Analyze(SamplePodDescription)

	done := make(chan []types.Issue)
	for i := 0; i < 8; i++ {
		go func() {
			done <- Analyze(SamplePodDescription)
		}()
	}
	for i := 0; i < 8; i++ {
		if got := <-done; !reflect.DeepEqual(got, want) {
			t.Error("concurrent Analyze() returned a different result")
		}
	}
}
