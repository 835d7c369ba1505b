// Package log is the leveled, structured logger used across stagr.
// It is a thin layer over logrus that keeps call sites short
// (log.Info, log.LogWithFields(log.F(k, v)).Warn) and knows how to
// flatten the application's kinded errors into fields.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"stagr/internal/errors"

	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02 15:04:05"

var (
	debugMu sync.RWMutex
	isDebug = false
	logger  = NewLogger()
)

// Field is a single structured key/value pair.
type Field struct {
	Key   string
	Value interface{}
}

// F creates a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger writes leveled entries with an attached set of fields.
type Logger struct {
	base   *logrus.Logger
	fields logrus.Fields
	file   *os.File
}

// Option configures a Logger.
type Option func(*Logger)

// WithOutput sends entries to w.
func WithOutput(w io.Writer) Option {
	return func(l *Logger) {
		l.base.SetOutput(w)
	}
}

// WithJSON switches to one JSON object per entry.
func WithJSON() Option {
	return func(l *Logger) {
		l.base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	}
}

// WithFile appends entries to the file at path. The TUI uses this so
// log output never lands on the terminal it is drawing.
func WithFile(path string) Option {
	return func(l *Logger) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "log: cannot create directory for %s: %v\n", path, err)
			return
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log: cannot open %s: %v\n", path, err)
			return
		}
		l.file = f
		l.base.SetOutput(f)
	}
}

// NewLogger creates a logger writing text entries to stderr unless
// configured otherwise.
func NewLogger(opts ...Option) *Logger {
	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetLevel(logrus.DebugLevel)
	base.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: timestampFormat,
	})

	l := &Logger{base: base, fields: logrus.Fields{}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Configure replaces the package-level logger.
func Configure(opts ...Option) {
	logger = NewLogger(opts...)
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Close releases the package-level logger's file.
func Close() error {
	return logger.Close()
}

// SetDebug enables or disables debug entries for every logger.
func SetDebug(debug bool) {
	debugMu.Lock()
	isDebug = debug
	debugMu.Unlock()
}

func debugEnabled() bool {
	debugMu.RLock()
	defer debugMu.RUnlock()
	return isDebug
}

// With returns a child logger carrying the extra fields.
func (l *Logger) With(fields ...Field) *Logger {
	merged := make(logrus.Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for _, f := range fields {
		merged[f.Key] = f.Value
	}
	return &Logger{base: l.base, fields: merged, file: l.file}
}

// WithError attaches err and, for application errors, its kind and
// subject (path, config param or repository).
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l.With(F("error", "<nil>"))
	}

	fields := []Field{
		F("error", err.Error()),
		F("error_kind", int(errors.KindOf(err))),
	}

	var fileErr *errors.FileError
	if errors.As(err, &fileErr) && fileErr.Path() != "" {
		fields = append(fields, F("path", fileErr.Path()))
	}
	var configErr *errors.ConfigError
	if errors.As(err, &configErr) && configErr.Param() != "" {
		fields = append(fields, F("param", configErr.Param()))
	}
	var repoErr *errors.RepoError
	if errors.As(err, &repoErr) && repoErr.Repo() != "" {
		fields = append(fields, F("repo", repoErr.Repo()))
	}

	return l.With(fields...)
}

func (l *Logger) Info(msg string)                          { l.log(logrus.InfoLevel, 2, msg) }
func (l *Logger) Infof(format string, args ...interface{}) { l.log(logrus.InfoLevel, 2, fmt.Sprintf(format, args...)) }
func (l *Logger) Warn(msg string)                          { l.log(logrus.WarnLevel, 2, msg) }
func (l *Logger) Warnf(format string, args ...interface{}) { l.log(logrus.WarnLevel, 2, fmt.Sprintf(format, args...)) }
func (l *Logger) Error(msg string)                         { l.log(logrus.ErrorLevel, 2, msg) }
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(logrus.ErrorLevel, 2, fmt.Sprintf(format, args...))
}

// Debug logs msg only when debug output is enabled.
func (l *Logger) Debug(msg string) {
	if debugEnabled() {
		l.log(logrus.DebugLevel, 2, msg)
	}
}

// Debugf logs a formatted message only when debug output is enabled.
func (l *Logger) Debugf(format string, args ...interface{}) {
	if debugEnabled() {
		l.log(logrus.DebugLevel, 2, fmt.Sprintf(format, args...))
	}
}

// log writes one entry. skip counts frames above log itself so the
// caller field points at the user's call site.
func (l *Logger) log(level logrus.Level, skip int, msg string) {
	entry := l.base.WithFields(l.fields)
	if _, file, line, ok := runtime.Caller(skip); ok {
		entry = entry.WithField("caller", fmt.Sprintf("%s:%d", filepath.Base(file), line))
	}
	entry.Log(level, msg)
}

// Package-level helpers write through the configured logger.

func Info(msg string)                           { logger.log(logrus.InfoLevel, 2, msg) }
func Infof(format string, args ...interface{})  { logger.log(logrus.InfoLevel, 2, fmt.Sprintf(format, args...)) }
func Warn(msg string)                           { logger.log(logrus.WarnLevel, 2, msg) }
func Warnf(format string, args ...interface{})  { logger.log(logrus.WarnLevel, 2, fmt.Sprintf(format, args...)) }
func Error(msg string)                          { logger.log(logrus.ErrorLevel, 2, msg) }
func Errorf(format string, args ...interface{}) { logger.log(logrus.ErrorLevel, 2, fmt.Sprintf(format, args...)) }

// Debug logs msg when debug output is enabled.
func Debug(msg string) {
	if debugEnabled() {
		logger.log(logrus.DebugLevel, 2, msg)
	}
}

// Debugf logs a formatted message when debug output is enabled.
func Debugf(format string, args ...interface{}) {
	if debugEnabled() {
		logger.log(logrus.DebugLevel, 2, fmt.Sprintf(format, args...))
	}
}

// LogWithFields returns the package logger with fields attached.
func LogWithFields(fields ...Field) *Logger {
	return logger.With(fields...)
}

// LogWithError returns the package logger with err attached.
func LogWithError(err error) *Logger {
	return logger.WithError(err)
}

// LogError logs err at error level with msg.
func LogError(err error, msg string) {
	logger.WithError(err).log(logrus.ErrorLevel, 2, msg)
}
