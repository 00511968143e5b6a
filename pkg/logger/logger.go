// Package logger provides the process-wide structured logger for Pod Doctor, built on Logrus.
// It supports JSON and text formats and writes to stdout, stderr, or a buffered file.
package logger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/supporttools/pod-doctor/pkg/types"
)

var (
	log            *logrus.Logger
	mu             sync.RWMutex
	currentLogFile io.Closer
)

func init() {
	log = logrus.New()
	log.SetLevel(logrus.InfoLevel)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	log.SetOutput(os.Stderr)
}

// Initialize replaces the global logger with one configured by the arguments.
// It is safe to call repeatedly; a previously opened log file is flushed and closed.
//   - level: debug, info, warn, error, fatal
//   - format: json, text
//   - output: stdout, stderr, file
//   - outputFile: path used when output is "file"
func Initialize(level, format, output, outputFile string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var formatter logrus.Formatter
	switch format {
	case "json":
		formatter = &logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		}
	case "text":
		formatter = &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		}
	default:
		return fmt.Errorf("invalid log format %q: must be json or text", format)
	}

	mu.Lock()
	defer mu.Unlock()

	var writer io.Writer
	var closer io.Closer
	switch output {
	case "stdout":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	case "file":
		if outputFile == "" {
			return fmt.Errorf("logFile must be specified when logOutput is 'file'")
		}
		file, err := os.OpenFile(outputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %q: %w", outputFile, err)
		}
		buffered := &bufferedFileWriter{
			Writer: bufio.NewWriterSize(file, 64*1024),
			file:   file,
		}
		writer = buffered
		closer = buffered
	default:
		return fmt.Errorf("invalid log output %q: must be stdout, stderr, or file", output)
	}

	if currentLogFile != nil {
		if err := currentLogFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close previous log file: %v\n", err)
		}
	}
	currentLogFile = closer

	next := logrus.New()
	next.SetLevel(lvl)
	next.SetFormatter(formatter)
	next.SetOutput(writer)
	log = next

	return nil
}

// Configure initializes the global logger from configuration settings.
func Configure(settings types.GlobalSettings) error {
	return Initialize(settings.LogLevel, settings.LogFormat, settings.LogOutput, settings.LogFile)
}

// bufferedFileWriter wraps a buffered writer and file for proper cleanup
type bufferedFileWriter struct {
	*bufio.Writer
	file *os.File
}

// Close flushes the buffer and closes the file
func (w *bufferedFileWriter) Close() error {
	if err := w.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to flush log buffer: %w", err)
	}
	return w.file.Close()
}

// Get returns the global logger instance
func Get() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// WithComponent returns an entry tagged with the component field.
func WithComponent(component string) *logrus.Entry {
	return Get().WithField("component", component)
}

// WithFields returns a logger entry with structured fields:
//
//	logger.WithFields(logrus.Fields{
//	    "component": "server",
//	    "issues":    len(issues),
//	}).Debug("Analysis complete")
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Get().WithFields(fields)
}

// WithField returns a logger entry with a single structured field
func WithField(key string, value interface{}) *logrus.Entry {
	return Get().WithField(key, value)
}

// WithError returns a logger entry with an error field
func WithError(err error) *logrus.Entry {
	return Get().WithError(err)
}

// Debugf logs a formatted message at level Debug
func Debugf(format string, args ...interface{}) {
	Get().Debugf(format, args...)
}

// Infof logs a formatted message at level Info
func Infof(format string, args ...interface{}) {
	Get().Infof(format, args...)
}

// Warnf logs a formatted message at level Warn
func Warnf(format string, args ...interface{}) {
	Get().Warnf(format, args...)
}

// Errorf logs a formatted message at level Error
func Errorf(format string, args ...interface{}) {
	Get().Errorf(format, args...)
}

// Fatalf logs a formatted message at level Fatal then calls os.Exit(1)
func Fatalf(format string, args ...interface{}) {
	Get().Fatalf(format, args...)
}

// GetLevel returns the current log level
func GetLevel() logrus.Level {
	return Get().GetLevel()
}

// Flush writes any buffered log data to the underlying file.
func Flush() error {
	mu.RLock()
	defer mu.RUnlock()

	if flusher, ok := log.Out.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close flushes and closes the log file if one is open. Safe to call multiple times.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if currentLogFile != nil {
		err := currentLogFile.Close()
		currentLogFile = nil
		return err
	}
	return nil
}
