// Pod Doctor - diagnoses common Kubernetes pod failures from kubectl output
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/supporttools/pod-doctor/pkg/analyzer"
	"github.com/supporttools/pod-doctor/pkg/logger"
	"github.com/supporttools/pod-doctor/pkg/metrics"
	"github.com/supporttools/pod-doctor/pkg/reload"
	"github.com/supporttools/pod-doctor/pkg/render"
	"github.com/supporttools/pod-doctor/pkg/server"
	"github.com/supporttools/pod-doctor/pkg/types"
	"github.com/supporttools/pod-doctor/pkg/util"
)

// Build-time variables set by goreleaser or make
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// Output formats for analyze mode
const (
	outputText = "text"
	outputJSON = "json"
	outputHTML = "html"
)

// options holds the parsed command line.
type options struct {
	configPath string
	file       string
	output     string
	sample     bool
	serve      bool
	bind       string
	port       int
	logLevel   string
	logFormat  string
	version    bool
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("pod-doctor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "/etc/pod-doctor/config.yaml", "Path to configuration file")
	fs.StringVar(&opts.file, "file", "", "Read kubectl output from this file instead of stdin (\"-\" for stdin)")
	fs.StringVar(&opts.output, "output", outputText, "Report format for analyze mode (text, json, html)")
	fs.BoolVar(&opts.sample, "sample", false, "Print the sample pod description and exit")
	fs.BoolVar(&opts.serve, "serve", false, "Serve the web UI and API instead of analyzing once")
	fs.StringVar(&opts.bind, "bind", "", "Override server bind address")
	fs.IntVar(&opts.port, "port", 0, "Override server port")
	fs.StringVar(&opts.logLevel, "log-level", "", "Override log level (debug, info, warn, error, fatal)")
	fs.StringVar(&opts.logFormat, "log-format", "", "Override log format (json, text)")
	fs.BoolVar(&opts.version, "version", false, "Show version information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	switch opts.output {
	case outputText, outputJSON, outputHTML:
	default:
		return nil, fmt.Errorf("invalid -output %q: must be text, json, or html", opts.output)
	}

	return opts, nil
}

// run executes the command and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	if opts.version {
		printVersion(stdout)
		return exitOK
	}

	if opts.sample {
		fmt.Fprintln(stdout, analyzer.SamplePodDescription)
		return exitOK
	}

	config, err := loadConfiguration(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	if !opts.serve && config.Settings.LogOutput == "stdout" {
		// Keep stdout for the report.
		config.Settings.LogOutput = "stderr"
	}
	if err := logger.Configure(config.Settings); err != nil {
		fmt.Fprintf(stderr, "Error: failed to configure logging: %v\n", err)
		return exitError
	}
	defer logger.Close()

	if opts.serve {
		if err := runServer(ctx, config, opts); err != nil {
			logger.WithError(err).Error("Server failed")
			return exitError
		}
		return exitOK
	}

	if err := analyzeInput(opts, stdin, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

// loadConfiguration loads the file (or defaults), applies flag overrides and
// re-validates.
func loadConfiguration(opts *options) (*types.PodDoctorConfig, error) {
	config, err := util.LoadConfigOrDefault(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", opts.configPath, err)
	}

	applyFlagOverrides(config, opts)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed after applying overrides: %w", err)
	}

	return config, nil
}

func applyFlagOverrides(config *types.PodDoctorConfig, opts *options) {
	if opts.logLevel != "" {
		config.Settings.LogLevel = opts.logLevel
	}
	if opts.logFormat != "" {
		config.Settings.LogFormat = opts.logFormat
	}
	if opts.bind != "" {
		config.Server.BindAddress = opts.bind
	}
	if opts.port != 0 {
		config.Server.Port = opts.port
	}
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func analyzeInput(opts *options, stdin io.Reader, stdout io.Writer) error {
	raw, err := readInput(opts.file, stdin)
	if err != nil {
		return err
	}

	text, err := render.CheckInput(raw)
	if err != nil {
		return err
	}

	start := time.Now()
	issues := analyzer.Analyze(text)
	logger.WithFields(logrus.Fields{
		"bytes":    len(text),
		"issues":   len(issues),
		"duration": time.Since(start).String(),
	}).Debug("Analysis complete")

	return writeReport(stdout, opts.output, issues)
}

func writeReport(w io.Writer, format string, issues []types.Issue) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(server.AnalyzeResponse{
			Issues:  issues,
			Summary: render.Summarize(issues),
		})
	case outputHTML:
		return render.HTML(w, issues)
	default:
		return render.Text(w, issues)
	}
}

// runServer serves HTTP until ctx is cancelled or SIGINT/SIGTERM arrives.
func runServer(ctx context.Context, config *types.PodDoctorConfig, opts *options) error {
	log := logger.WithComponent("main")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var serverOpts []server.Option
	if config.Metrics.IsEnabled() {
		registry := metrics.NewRegistry()
		m, err := metrics.NewMetrics(config.Metrics.Namespace, nil)
		if err != nil {
			return fmt.Errorf("failed to create metrics: %w", err)
		}
		if err := m.Register(registry); err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		m.SetBuildInfo(Version, GitCommit, time.Now())
		serverOpts = append(serverOpts, server.WithMetrics(m, registry))
	}

	srv, err := server.NewServer(config, serverOpts...)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if err := srv.Start(ctx); err != nil {
		return err
	}

	if config.Reload.Enabled {
		watcher, err := startReload(ctx, config, opts)
		if err != nil {
			log.WithError(err).Warn("Configuration reload disabled")
		} else {
			defer watcher.Stop()
		}
	}

	log.WithField("version", Version).Info("Pod Doctor started successfully")

	<-ctx.Done()
	log.Info("Shutdown requested")

	return srv.Stop()
}

func startReload(ctx context.Context, config *types.PodDoctorConfig, opts *options) (*reload.ConfigWatcher, error) {
	configPath := opts.configPath
	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file %s not available: %w", configPath, err)
	}

	watcher, err := reload.NewConfigWatcher(configPath, config.Reload.DebounceInterval)
	if err != nil {
		return nil, err
	}

	changes, err := watcher.Start(ctx)
	if err != nil {
		watcher.Stop()
		return nil, err
	}

	coordinator := reload.NewReloadCoordinator(configPath, config, settingsApplier(opts))
	go coordinator.Run(ctx, changes)

	return watcher, nil
}

// settingsApplier returns a reload callback that re-applies log settings.
// Command line overrides win over the reloaded file, as they do at startup.
func settingsApplier(opts *options) reload.ReloadCallback {
	return func(ctx context.Context, config *types.PodDoctorConfig, diff *reload.ConfigDiff) error {
		applyFlagOverrides(config, opts)
		if err := config.Validate(); err != nil {
			return fmt.Errorf("reloaded configuration invalid after applying overrides: %w", err)
		}
		if !diff.SettingsChanged {
			return nil
		}
		return logger.Configure(config.Settings)
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "pod-doctor %s\n", Version)
	fmt.Fprintf(w, "  Git Commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Built: %s\n", BuildTime)
	fmt.Fprintf(w, "  Go Version: %s\n", runtime.Version())
	fmt.Fprintf(w, "  OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
