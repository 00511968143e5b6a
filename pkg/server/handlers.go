package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/supporttools/pod-doctor/pkg/analyzer"
	"github.com/supporttools/pod-doctor/pkg/render"
	"github.com/supporttools/pod-doctor/pkg/types"
)

// AnalyzeRequest is the JSON body accepted by /api/v1/analyze.
type AnalyzeRequest struct {
	Logs string `json:"logs"`
}

// AnalyzeResponse is the JSON body returned by /api/v1/analyze.
type AnalyzeResponse struct {
	Issues  []types.Issue `json:"issues"`
	Summary types.Summary `json:"summary"`
}

// ErrorResponse is returned for rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RuleResponse describes one catalog rule for /api/v1/rules.
type RuleResponse struct {
	Name        string         `json:"name"`
	Pattern     string         `json:"pattern"`
	Severity    types.Severity `json:"severity"`
	Description string         `json:"description"`
	Suggestions []string       `json:"suggestions"`
	Docs        string         `json:"docs"`
}

// HealthResponse represents the JSON response for /healthz endpoint.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
	Rules     int       `json:"rules"`
}

// ReadinessResponse represents the JSON response for /ready endpoint.
type ReadinessResponse struct {
	Ready     bool      `json:"ready"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// readLogs extracts the submitted text from a JSON or raw request body.
func (s *Server) readLogs(w http.ResponseWriter, r *http.Request) (string, int, error) {
	body := http.MaxBytesReader(w, r.Body, s.config.MaxInputBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", http.StatusRequestEntityTooLarge, errors.New("request body too large")
		}
		return "", http.StatusBadRequest, errors.New("failed to read request body")
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return string(data), http.StatusOK, nil
	}

	var req AnalyzeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return "", http.StatusBadRequest, errors.New("invalid JSON body")
	}
	return req.Logs, http.StatusOK, nil
}

// handleAnalyze handles POST /api/v1/analyze.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	logs, status, err := s.readLogs(w, r)
	if err != nil {
		reason := "invalid"
		if status == http.StatusRequestEntityTooLarge {
			reason = "too_large"
		}
		s.rejected(sourceAPI, reason)
		writeError(w, status, err.Error())
		return
	}

	text, err := render.CheckInput(logs)
	if err != nil {
		s.rejected(sourceAPI, "empty")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	issues := s.analyze(sourceAPI, text)
	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Issues:  issues,
		Summary: render.Summarize(issues),
	})
}

// handleSample handles GET /api/v1/sample.
func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, analyzer.SamplePodDescription)
}

// handleRules handles GET /api/v1/rules.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rules := s.analyzer.Rules()
	response := make([]RuleResponse, 0, len(rules))
	for _, rule := range rules {
		response = append(response, RuleResponse{
			Name:        rule.Name,
			Pattern:     rule.Matcher.String(),
			Severity:    rule.Severity,
			Description: rule.Description,
			Suggestions: rule.Suggestions,
			Docs:        rule.Docs,
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// handleHealthz handles the /healthz endpoint (liveness probe).
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Rules:     len(s.analyzer.Rules()),
	})
}

// handleReady handles the /ready endpoint (readiness probe).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()

	response := ReadinessResponse{
		Ready:     ready,
		Timestamp: time.Now(),
		Message:   "Ready",
	}

	status := http.StatusOK
	if !ready {
		response.Message = "Not ready: server not serving"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, response)
}
