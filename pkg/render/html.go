package render

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/supporttools/pod-doctor/pkg/types"
)

// resultsTemplate renders the results fragment. html/template escapes every
// interpolated value, including matching lines taken from user input.
var resultsTemplate = template.Must(template.New("results").Funcs(template.FuncMap{
	"icon": Icon,
}).Parse(`{{if not .Issues -}}
<div class="issue info">
  <h3>✅ {{.NoIssuesTitle}}</h3>
  <p>{{.NoIssuesDescription}}</p>
  <div class="suggestions">
  {{- range .NoIssuesSuggestions}}
    <div class="suggestion">{{.}}</div>
  {{- end}}
  </div>
</div>
{{- else -}}
<h2>🔍 {{.Heading}}</h2>
{{- range .Issues}}
<div class="issue {{.Severity}}">
  <h3>{{icon .Severity}} {{.Name}}</h3>
  <p>{{.Description}}</p>
  {{- if .MatchingLines}}
  <div class="matching-lines">
  {{- range .MatchingLines}}
    <div>{{.}}</div>
  {{- end}}
  </div>
  {{- end}}
  <div class="suggestions">
    <strong>Suggestions:</strong>
  {{- range .Suggestions}}
    <div class="suggestion">• {{.}}</div>
  {{- end}}
  </div>
  <div class="docs"><a href="{{.Docs}}" target="_blank" rel="noopener" class="docs-link">📚 View Documentation</a></div>
</div>
{{- end}}
{{- end}}
`))

type resultsView struct {
	Heading             string
	Issues              []types.Issue
	NoIssuesTitle       string
	NoIssuesDescription string
	NoIssuesSuggestions []string
}

// HTML writes an HTML fragment describing issues to w.
func HTML(w io.Writer, issues []types.Issue) error {
	view := resultsView{
		Heading:             Heading(len(issues)),
		Issues:              issues,
		NoIssuesTitle:       NoIssuesTitle,
		NoIssuesDescription: noIssuesDescription,
		NoIssuesSuggestions: NoIssuesSuggestions,
	}
	if err := resultsTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("failed to render results: %w", err)
	}
	return nil
}

// HTMLString renders issues as an HTML fragment for embedding in a page template.
func HTMLString(issues []types.Issue) (template.HTML, error) {
	var b strings.Builder
	if err := HTML(&b, issues); err != nil {
		return "", err
	}
	// The fragment was produced by html/template and is already escaped.
	return template.HTML(b.String()), nil
}
