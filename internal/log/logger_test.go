package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stagr/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicLogging(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	l.Info("info message")
	assert.Contains(t, buf.String(), "level=info")
	assert.Contains(t, buf.String(), "info message")
	buf.Reset()

	l.Warn("warn message")
	assert.Contains(t, buf.String(), "level=warning")
	assert.Contains(t, buf.String(), "warn message")
	buf.Reset()

	l.Error("error message")
	assert.Contains(t, buf.String(), "level=error")
	buf.Reset()

	l.Infof("formatted %s", "message")
	assert.Contains(t, buf.String(), "formatted message")
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	SetDebug(false)
	l.Debug("debug message")
	assert.Empty(t, buf.String())

	SetDebug(true)
	defer SetDebug(false)
	l.Debug("debug message")
	assert.Contains(t, buf.String(), "level=debug")
	assert.Contains(t, buf.String(), "debug message")
	buf.Reset()

	l.Debugf("formatted %s", "debug")
	assert.Contains(t, buf.String(), "formatted debug")
}

func TestStructuredLogging(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	l.With(F("entries", 5), F("selection", "a/b")).Info("tree rebuilt")
	output := buf.String()
	assert.Contains(t, output, "tree rebuilt")
	assert.Contains(t, output, "entries=5")
	assert.Contains(t, output, "selection=a/b")
	buf.Reset()

	// Chained fields accumulate without mutating the parent
	child := l.With(F("key1", "value1"))
	child.With(F("key2", 123)).Info("chained fields")
	output = buf.String()
	assert.Contains(t, output, "key1=value1")
	assert.Contains(t, output, "key2=123")
	buf.Reset()

	child.Info("parent fields only")
	assert.NotContains(t, buf.String(), "key2=123")
}

func TestJSONLogging(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf), WithJSON())

	l.With(F("key1", "value1"), F("key2", 123)).Info("json message")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))

	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "json message", entry["message"])
	assert.Equal(t, "value1", entry["key1"])
	assert.Equal(t, float64(123), entry["key2"])
	assert.Contains(t, entry, "timestamp")
	assert.Contains(t, entry, "caller")
}

func TestCallerInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	l.Info("caller test")
	assert.Contains(t, buf.String(), "logger_test.go:")
	buf.Reset()

	originalLogger := logger
	Configure(WithOutput(&buf))
	defer func() { logger = originalLogger }()

	Info("global caller test")
	assert.Contains(t, buf.String(), "logger_test.go:")
}

func TestErrorLogging(t *testing.T) {
	var buf bytes.Buffer
	originalLogger := logger
	Configure(WithOutput(&buf))
	defer func() { logger = originalLogger }()

	LogWithFields(F("error", fmt.Errorf("standard error").Error())).Error("error occurred")
	output := buf.String()
	assert.Contains(t, output, "error occurred")
	assert.Contains(t, output, "standard error")
	buf.Reset()

	appErr := errors.New("application error")
	LogWithError(appErr).Error("app error occurred")
	output = buf.String()
	assert.Contains(t, output, "application error")
	assert.Contains(t, output, "error_kind=0")
	buf.Reset()

	repoErr := errors.NewRepoError("git status failed", "/work/repo", errors.GitCommandFailed, nil)
	LogWithError(repoErr).Error("refresh failed")
	output = buf.String()
	assert.Contains(t, output, "repo=/work/repo")
	assert.Contains(t, output, fmt.Sprintf("error_kind=%d", errors.GitCommandFailed))
	buf.Reset()

	configErr := errors.NewConfigError("invalid ignore pattern", "src/[", errors.InvalidPattern, nil)
	LogError(configErr, "config rejected")
	output = buf.String()
	assert.Contains(t, output, "config rejected")
	assert.Contains(t, output, "param=\"src/[\"")
	buf.Reset()

	fileErr := errors.NewFileError("cannot watch", "/work/repo/src", errors.WatchFailed, nil)
	LogWithError(fileErr).Warn("watch degraded")
	assert.Contains(t, buf.String(), "path=/work/repo/src")
}

func TestNestedErrors(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	baseErr := fmt.Errorf("base error")
	fileErr := errors.NewFileError("file error", "/path/file", errors.FileNotFound, baseErr)
	configErr := errors.NewConfigError("config error", "setting", errors.InvalidConfig, fileErr)

	l.WithError(configErr).Error("nested error occurred")
	output := buf.String()
	assert.Contains(t, output, "config error: setting: file error: /path/file: base error")
	assert.Contains(t, output, fmt.Sprintf("error_kind=%d", errors.InvalidConfig))
	assert.Contains(t, output, "param=setting")
	assert.Contains(t, output, "path=/path/file")
}

func TestWrappedErrorKind(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	repoErr := errors.NewRepoError("not a git repository", "/work/repo", errors.RepoNotFound, nil)
	l.WithError(errors.Wrap(repoErr, "open repository")).Error("startup failed")
	output := buf.String()
	assert.Contains(t, output, fmt.Sprintf("error_kind=%d", errors.RepoNotFound))
	assert.Contains(t, output, "repo=/work/repo")
}

func TestNilErrorHandling(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	l.WithError(nil).Error("nil error test")
	output := buf.String()
	assert.Contains(t, output, "nil error test")
	assert.Contains(t, output, "error=\"<nil>\"")
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "stagr.log")
	l := NewLogger(WithFile(path))
	defer l.Close()

	l.Info("file test message")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "file test message")

	require.NoError(t, l.Close())
	assert.NoError(t, l.Close(), "closing twice is harmless")
}
