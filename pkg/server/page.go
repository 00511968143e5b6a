package server

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/supporttools/pod-doctor/pkg/analyzer"
	"github.com/supporttools/pod-doctor/pkg/render"
)

// maxFormMemory bounds the in-memory part of multipart form parsing.
const maxFormMemory = 1 << 20

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Pod Doctor</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; color: #1f2933; }
textarea { width: 100%; min-height: 18rem; font-family: monospace; font-size: 0.85rem; }
.actions { margin: 0.75rem 0 1.5rem; }
.issue { border-left: 4px solid #9aa5b1; padding: 0.5rem 1rem; margin: 1rem 0; background: #f5f7fa; }
.issue.error { border-color: #e12d39; }
.issue.warning { border-color: #f0b429; }
.issue.info { border-color: #2186eb; }
.matching-lines { font-family: monospace; white-space: pre-wrap; background: #fff; padding: 0.5rem; margin: 0.5rem 0; }
.message { color: #e12d39; font-weight: bold; }
</style>
</head>
<body>
<h1>🩺 Pod Doctor</h1>
<p>Paste the output of <code>kubectl logs</code> or <code>kubectl describe pod</code> below.</p>
<form method="post" action="/">
  <textarea name="logs" placeholder="Paste your kubectl logs or describe output here...">{{.Logs}}</textarea>
  <div class="actions">
    <button type="submit">Analyze</button>
    <a href="/?sample=1">Load Sample Data</a>
  </div>
</form>
{{- if .Message}}
<p class="message">{{.Message}}</p>
{{- end}}
{{- if .Results}}
<div class="results">
{{.Results}}
</div>
{{- end}}
</body>
</html>
`))

type pageView struct {
	Logs    string
	Message string
	Results template.HTML
}

// handleIndex serves the paste form. GET shows it (pre-filled with the sample
// when ?sample is set); POST analyzes the "logs" field and renders results.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	var view pageView
	status := http.StatusOK

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if r.URL.Query().Has("sample") {
			view.Logs = analyzer.SamplePodDescription
		}

	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxInputBytes)
		if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.rejected(sourceForm, "too_large")
				http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			s.rejected(sourceForm, "invalid")
			http.Error(w, "malformed form submission", http.StatusBadRequest)
			return
		}

		view.Logs = r.PostFormValue("logs")
		text, err := render.CheckInput(view.Logs)
		if err != nil {
			s.rejected(sourceForm, "empty")
			view.Message = err.Error()
			status = http.StatusBadRequest
			break
		}

		results, err := render.HTMLString(s.analyze(sourceForm, text))
		if err != nil {
			s.log.WithError(err).Error("Failed to render results")
			http.Error(w, "failed to render results", http.StatusInternalServerError)
			return
		}
		view.Results = results

	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, view); err != nil {
		s.log.WithError(err).Warn("Failed to write page")
	}
}
