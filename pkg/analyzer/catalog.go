package analyzer

import (
	"regexp"

	"github.com/supporttools/pod-doctor/pkg/types"
)

// Rule is a known failure signature in pod diagnostic text.
//
// Matcher is compiled once when the package is initialized and never modified
// afterwards. regexp.Regexp is safe for concurrent use, so a Rule may be shared
// freely between goroutines.
type Rule struct {
	Name        string
	Matcher     *regexp.Regexp
	Severity    types.Severity
	Description string
	Suggestions []string
	Docs        string
}

// issue builds an Issue carrying the rule metadata and the given matching lines.
func (r *Rule) issue(matchingLines []string) types.Issue {
	return types.Issue{
		Name:          r.Name,
		Severity:      r.Severity,
		Description:   r.Description,
		Suggestions:   cloneStrings(r.Suggestions),
		Docs:          r.Docs,
		MatchingLines: matchingLines,
	}
}

// defaultRules is the ordered catalog. Order here is the order issues are reported in.
var defaultRules = []Rule{
	{
		Name:        "ImagePullBackOff",
		Matcher:     regexp.MustCompile(`(?i)ImagePullBackOff|ErrImagePull|Failed to pull image`),
		Severity:    types.SeverityError,
		Description: "Pod cannot pull the specified container image",
		Suggestions: []string{
			"Check if the image name and tag are correct",
			"Verify the image exists in the registry",
			"Check if you have access to the private registry",
			"Verify imagePullSecrets are configured correctly",
		},
		Docs: "https://kubernetes.io/docs/concepts/containers/images/",
	},
	{
		Name:        "CrashLoopBackOff",
		Matcher:     regexp.MustCompile(`(?i)CrashLoopBackOff|Back-off restarting failed container`),
		Severity:    types.SeverityError,
		Description: "Container keeps crashing and restarting",
		Suggestions: []string{
			"Check application logs for startup errors",
			"Verify readiness and liveness probes",
			"Check if the application exits immediately",
			"Review resource limits and requests",
			"Ensure proper signal handling in your application",
		},
		Docs: "https://kubernetes.io/docs/concepts/workloads/pods/pod-lifecycle/#restart-policy",
	},
	{
		Name:        "OOMKilled",
		Matcher:     regexp.MustCompile(`(?i)OOMKilled|out of memory|killed by oom-killer`),
		Severity:    types.SeverityError,
		Description: "Container was killed due to memory limits",
		Suggestions: []string{
			"Increase memory limits in pod spec",
			"Optimize application memory usage",
			"Check for memory leaks in your application",
			"Review memory requests vs limits",
		},
		Docs: "https://kubernetes.io/docs/concepts/configuration/manage-resources-containers/",
	},
	{
		Name:        "Failed Mount",
		Matcher:     regexp.MustCompile(`(?i)MountVolume.SetUp failed|failed to mount|Unable to attach or mount volumes`),
		Severity:    types.SeverityError,
		Description: "Volume mounting failed",
		Suggestions: []string{
			"Check if PersistentVolume exists and is available",
			"Verify StorageClass configuration",
			"Check node permissions for volume access",
			"Ensure volume is not already mounted elsewhere",
		},
		Docs: "https://kubernetes.io/docs/concepts/storage/persistent-volumes/",
	},
	{
		Name:        "Resource Limits",
		Matcher:     regexp.MustCompile(`(?i)Insufficient.*resources|exceeds the maximum limit`),
		Severity:    types.SeverityWarning,
		Description: "Resource constraints preventing pod scheduling",
		Suggestions: []string{
			"Check cluster resource availability",
			"Review pod resource requests and limits",
			"Consider node scaling if needed",
			"Check for resource quotas in namespace",
		},
		Docs: "https://kubernetes.io/docs/concepts/policy/resource-quotas/",
	},
	{
		Name:        "Readiness Probe Failed",
		Matcher:     regexp.MustCompile(`(?i)Readiness probe failed|Liveness probe failed`),
		Severity:    types.SeverityWarning,
		Description: "Health check probes are failing",
		Suggestions: []string{
			"Check if the probe endpoint is correct",
			"Verify application startup time vs probe timing",
			"Review probe configuration (path, port, headers)",
			"Check if the application is actually ready",
		},
		Docs: "https://kubernetes.io/docs/tasks/configure-pod-container/configure-liveness-readiness-startup-probes/",
	},
	{
		Name:        "DNS Issues",
		Matcher:     regexp.MustCompile(`(?i)no such host|dial.*no such host|DNS resolution failed`),
		Severity:    types.SeverityError,
		Description: "DNS resolution problems",
		Suggestions: []string{
			"Check CoreDNS pod status",
			"Verify service names and namespaces",
			"Check network policies blocking DNS",
			"Verify DNS configuration in pod spec",
		},
		Docs: "https://kubernetes.io/docs/concepts/services-networking/dns-pod-service/",
	},
	{
		Name:        "Permission Denied",
		Matcher:     regexp.MustCompile(`(?i)permission denied|access denied|forbidden`),
		Severity:    types.SeverityError,
		Description: "Permission or access issues",
		Suggestions: []string{
			"Check ServiceAccount permissions",
			"Review RBAC configuration",
			"Verify file/directory permissions",
			"Check SecurityContext settings",
		},
		Docs: "https://kubernetes.io/docs/reference/access-authn-authz/rbac/",
	},
	{
		Name:        "Network Issues",
		Matcher:     regexp.MustCompile(`(?i)connection refused|network unreachable|timeout`),
		Severity:    types.SeverityWarning,
		Description: "Network connectivity problems",
		Suggestions: []string{
			"Check service endpoints",
			"Verify network policies",
			"Check if target service is running",
			"Review firewall rules",
		},
		Docs: "https://kubernetes.io/docs/concepts/services-networking/",
	},
}

// DefaultRules returns a copy of the catalog in reporting order.
func DefaultRules() []Rule {
	return cloneRules(defaultRules)
}

// cloneRules copies rules deeply enough that callers cannot reach the
// catalog's suggestion slices. Matchers are shared; they are immutable.
func cloneRules(rules []Rule) []Rule {
	out := make([]Rule, len(rules))
	for i, rule := range rules {
		rule.Suggestions = cloneStrings(rule.Suggestions)
		out[i] = rule
	}
	return out
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
