package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger represents the application logger
type Logger struct {
	*logrus.Logger
}

// LogFormat represents log output formats
type LogFormat string

const (
	JSONFormat LogFormat = "json"
	TextFormat LogFormat = "text"
)

// Config represents logger configuration
type Config struct {
	Level  string
	Format LogFormat
	Output string // file path or "stdout"
	// Development adds stack traces to LogError.
	Development bool
}

var (
	mu       sync.RWMutex
	instance = &Logger{Logger: logrus.New()}
	devMode  bool
	once     sync.Once
)

// Init replaces the default stderr logger. Later calls are ignored.
func Init(config Config) {
	once.Do(func() {
		l := NewLogger(config)
		mu.Lock()
		instance = l
		devMode = config.Development
		mu.Unlock()
	})
}

// NewLogger creates a new logger instance
func NewLogger(config Config) *Logger {
	logger := &Logger{
		Logger: logrus.New(),
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if config.Format == TextFormat {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				filename := filepath.Base(f.File)
				return fmt.Sprintf("%s()", f.Function), fmt.Sprintf("%s:%d", filename, f.Line)
			},
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
				logrus.FieldKeyFunc:  "caller",
			},
		})
	}

	logger.SetOutput(openOutput(config.Output))
	logger.SetReportCaller(true)

	return logger
}

func openOutput(output string) io.Writer {
	if output == "" || output == "stdout" {
		return os.Stdout
	}
	if output == "stderr" {
		return os.Stderr
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "logger: create log dir: %v\n", err)
		return os.Stdout
	}
	file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: open log file: %v\n", err)
		return os.Stdout
	}
	return file
}

func get() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// SetOutput redirects the active logger, mainly for tests.
func SetOutput(w io.Writer) {
	get().SetOutput(w)
}

func Debug(args ...interface{})                 { get().Debug(args...) }
func Debugf(format string, args ...interface{}) { get().Debugf(format, args...) }
func Info(args ...interface{})                  { get().Info(args...) }
func Infof(format string, args ...interface{})  { get().Infof(format, args...) }
func Warn(args ...interface{})                  { get().Warn(args...) }
func Warnf(format string, args ...interface{})  { get().Warnf(format, args...) }
func Error(args ...interface{})                 { get().Error(args...) }
func Errorf(format string, args ...interface{}) { get().Errorf(format, args...) }
func Fatal(args ...interface{})                 { get().Fatal(args...) }

// WithField creates a logger with a single field
func WithField(key string, value interface{}) *logrus.Entry {
	return get().WithField(key, value)
}

// WithFields creates a logger with multiple fields
func WithFields(fields logrus.Fields) *logrus.Entry {
	return get().WithFields(fields)
}

// WithError creates a logger with an error field
func WithError(err error) *logrus.Entry {
	return get().WithError(err)
}

// LogRequest logs HTTP request information
func LogRequest(requestID, method, path, ip string, duration time.Duration, statusCode int) {
	entry := WithFields(logrus.Fields{
		"request_id":  requestID,
		"method":      method,
		"path":        path,
		"ip":          ip,
		"duration_ms": duration.Milliseconds(),
		"status_code": statusCode,
		"type":        "request",
	})
	switch {
	case statusCode >= 500:
		entry.Error("HTTP Request")
	case statusCode >= 400:
		entry.Warn("HTTP Request")
	default:
		entry.Info("HTTP Request")
	}
}

// LogUserAction logs user actions
func LogUserAction(userID, action string, metadata map[string]interface{}) {
	fields := logrus.Fields{
		"user_id": userID,
		"action":  action,
		"type":    "user_action",
	}
	for k, v := range metadata {
		fields[k] = v
	}

	WithFields(fields).Info("User Action")
}

// LogChatEvent logs chat message events
func LogChatEvent(event, messageID, userID string, metadata map[string]interface{}) {
	fields := logrus.Fields{
		"event":      event,
		"message_id": messageID,
		"user_id":    userID,
		"type":       "chat_event",
	}
	for k, v := range metadata {
		fields[k] = v
	}

	WithFields(fields).Info("Chat Event")
}

// LogSecurityEvent logs security-related events
func LogSecurityEvent(event, userID, ip string, metadata map[string]interface{}) {
	fields := logrus.Fields{
		"event":   event,
		"user_id": userID,
		"ip":      ip,
		"type":    "security_event",
	}
	for k, v := range metadata {
		fields[k] = v
	}

	WithFields(fields).Warn("Security Event")
}

// LogError logs detailed error information
func LogError(err error, context string, metadata map[string]interface{}) {
	fields := logrus.Fields{
		"error":   err.Error(),
		"context": context,
		"type":    "error_detail",
	}
	for k, v := range metadata {
		fields[k] = v
	}

	mu.RLock()
	withStack := devMode
	mu.RUnlock()
	if withStack {
		fields["stack_trace"] = getStackTrace()
	}

	WithFields(fields).Error("Application Error")
}

// getStackTrace returns stack trace for debugging
func getStackTrace() string {
	buf := make([]byte, 1024)
	for {
		n := runtime.Stack(buf, false)
		if n < len(buf) {
			return string(buf[:n])
		}
		buf = make([]byte, 2*len(buf))
	}
}

// Close closes the logger output when it is a file
func Close() error {
	if file, ok := get().Out.(*os.File); ok && file != os.Stdout && file != os.Stderr {
		return file.Close()
	}
	return nil
}
