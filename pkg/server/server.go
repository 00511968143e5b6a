// Package server provides Pod Doctor's HTTP surface: a browser page for pasting
// kubectl output, a JSON analysis API, Kubernetes probe endpoints, and metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/supporttools/pod-doctor/pkg/analyzer"
	"github.com/supporttools/pod-doctor/pkg/logger"
	"github.com/supporttools/pod-doctor/pkg/metrics"
	"github.com/supporttools/pod-doctor/pkg/types"
)

const shutdownTimeout = 5 * time.Second

// Metric source labels
const (
	sourceForm = "form"
	sourceAPI  = "api"
)

// Server serves the Pod Doctor HTTP endpoints.
type Server struct {
	config        types.ServerConfig
	metricsConfig types.MetricsConfig
	analyzer      *analyzer.Analyzer
	metrics       *metrics.Metrics
	registry      *prometheus.Registry
	log           *logrus.Entry

	mu         sync.RWMutex
	httpServer *http.Server
	listener   net.Listener
	stopCh     chan struct{}
	started    bool
	ready      bool
	startTime  time.Time
}

// Option customizes a Server.
type Option func(*Server)

// WithMetrics records analyses in m and serves registry on the configured metrics path.
func WithMetrics(m *metrics.Metrics, registry *prometheus.Registry) Option {
	return func(s *Server) {
		s.metrics = m
		s.registry = registry
	}
}

// WithAnalyzer overrides the analyzer used for requests.
func WithAnalyzer(a *analyzer.Analyzer) Option {
	return func(s *Server) {
		s.analyzer = a
	}
}

// NewServer creates a server from configuration. The configuration must
// already have defaults applied.
func NewServer(config *types.PodDoctorConfig, opts ...Option) (*Server, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := config.Server.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}

	s := &Server{
		config:        config.Server,
		metricsConfig: config.Metrics,
		analyzer:      analyzer.New(),
		log:           logger.WithComponent("server"),
		startTime:     time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/v1/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/v1/sample", s.handleSample)
	mux.HandleFunc("/api/v1/rules", s.handleRules)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/ready", s.handleReady)

	if s.registry != nil && s.metricsConfig.IsEnabled() {
		mux.Handle(s.metricsConfig.Path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.ContinueOnError,
		}))
	}

	return mux
}

// Start binds the listen address and serves in the background until Stop is
// called or ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("server already started")
	}

	addr := net.JoinHostPort(s.config.BindAddress, fmt.Sprintf("%d", s.config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	httpServer := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	stopCh := make(chan struct{})

	s.listener = listener
	s.httpServer = httpServer
	s.stopCh = stopCh

	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("HTTP server failed")
			s.setReady(false)
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			if err := s.Stop(); err != nil {
				s.log.WithError(err).Warn("Shutdown after context cancellation failed")
			}
		case <-stopCh:
		}
	}()

	s.started = true
	s.ready = true
	s.log.WithField("address", listener.Addr().String()).Info("Pod Doctor server started")

	return nil
}

// Addr returns the bound address, or an empty string before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down gracefully. It is safe to call more than once.
// The lock is released before waiting on in-flight requests, which may
// themselves read server state.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	httpServer := s.httpServer
	s.started = false
	s.ready = false
	close(s.stopCh)
	s.mu.Unlock()

	s.log.Info("Stopping Pod Doctor server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.log.Info("Pod Doctor server stopped")

	return nil
}

// SetReady sets the readiness status reported by /ready.
func (s *Server) SetReady(ready bool) {
	s.setReady(ready)
}

func (s *Server) setReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// analyze runs the analyzer and records metrics and a debug log line.
func (s *Server) analyze(source, text string) []types.Issue {
	start := time.Now()
	issues := s.analyzer.Analyze(text)
	elapsed := time.Since(start)

	if s.metrics != nil {
		s.metrics.ObserveAnalysis(source, len(text), elapsed, issues)
	}

	s.log.WithFields(logrus.Fields{
		"source":   source,
		"bytes":    len(text),
		"issues":   len(issues),
		"duration": elapsed.String(),
	}).Debug("Analysis complete")

	return issues
}

func (s *Server) rejected(source, reason string) {
	if s.metrics != nil {
		s.metrics.ObserveRejected(source, reason)
	}
	s.log.WithFields(logrus.Fields{
		"source": source,
		"reason": reason,
	}).Debug("Submission rejected")
}
