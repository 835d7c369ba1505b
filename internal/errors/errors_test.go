package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())

	err = Newf("formatted %s", "error")
	assert.NotNil(t, err)
	assert.Equal(t, "formatted error", err.Error())

	var appErr *ApplicationError
	assert.True(t, As(err, &appErr))
	assert.Equal(t, "formatted error", appErr.Error())
	assert.Equal(t, Unknown, appErr.Kind())
}

func TestWrapping(t *testing.T) {
	origErr := New("original error")
	wrappedErr := Wrap(origErr, "wrapped")
	assert.NotNil(t, wrappedErr)
	assert.Equal(t, "wrapped: original error", wrappedErr.Error())

	assert.Equal(t, origErr, Unwrap(wrappedErr))

	wrappedFormatted := Wrapf(origErr, "formatted %s", "wrapper")
	assert.Equal(t, "formatted wrapper: original error", wrappedFormatted.Error())

	// Wrapping nil returns nil
	assert.Nil(t, Wrap(nil, "wrapper"))
	assert.Nil(t, Wrapf(nil, "formatted %s", "wrapper"))

	deepWrapped := Wrap(wrappedErr, "deeper")
	assert.Equal(t, "deeper: wrapped: original error", deepWrapped.Error())

	assert.True(t, Is(wrappedErr, origErr))
	assert.True(t, Is(deepWrapped, origErr))
}

func TestFileError(t *testing.T) {
	fileErr := NewFileError("cannot watch", "/repo/src", WatchFailed, nil)
	assert.Equal(t, "cannot watch: /repo/src", fileErr.Error())
	assert.Equal(t, "/repo/src", fileErr.Path())
	assert.Equal(t, WatchFailed, fileErr.Kind())

	origErr := fmt.Errorf("too many open files")
	fileErr = NewFileError("cannot watch", "/repo/src", WatchFailed, origErr)
	assert.Equal(t, "cannot watch: /repo/src: too many open files", fileErr.Error())
	assert.Equal(t, origErr, Unwrap(fileErr))

	assert.Equal(t, "file not found", ErrFileNotFound.Error())
	assert.Equal(t, FileNotFound, ErrFileNotFound.Kind())

	notFoundErr := NewFileError("file not found", "/missing", FileNotFound, nil)
	assert.True(t, IsFileNotFound(notFoundErr))
	assert.False(t, IsFileNotFound(fileErr))
	assert.True(t, IsWatchFailed(fileErr))
	assert.False(t, IsWatchFailed(notFoundErr))
}

func TestConfigError(t *testing.T) {
	configErr := NewConfigError("invalid value", "refresh.interval", InvalidConfig, nil)
	assert.Equal(t, "invalid value: refresh.interval", configErr.Error())
	assert.Equal(t, "refresh.interval", configErr.Param())
	assert.Equal(t, InvalidConfig, configErr.Kind())

	origErr := fmt.Errorf("value out of range")
	configErr = NewConfigError("invalid value", "refresh.interval", InvalidConfig, origErr)
	assert.Equal(t, "invalid value: refresh.interval: value out of range", configErr.Error())
	assert.Equal(t, origErr, Unwrap(configErr))

	assert.Equal(t, "invalid configuration", ErrInvalidConfig.Error())
	assert.True(t, IsInvalidConfig(configErr))
	assert.False(t, IsInvalidConfig(New("some other error")))

	patternErr := NewConfigError("invalid ignore pattern", "[a-", InvalidPattern, nil)
	assert.True(t, IsInvalidPattern(patternErr))
	assert.False(t, IsInvalidConfig(patternErr))

	var ce *ConfigError
	assert.True(t, As(patternErr, &ce))
	assert.Equal(t, "[a-", ce.Param())
}

func TestRepoError(t *testing.T) {
	repoErr := NewRepoError("git status failed", "/work/repo", GitCommandFailed, nil)
	assert.Equal(t, "git status failed: /work/repo", repoErr.Error())
	assert.Equal(t, "/work/repo", repoErr.Repo())
	assert.Equal(t, GitCommandFailed, repoErr.Kind())

	origErr := fmt.Errorf("exit status 128")
	repoErr = NewRepoError("git status failed", "/work/repo", GitCommandFailed, origErr)
	assert.Equal(t, "git status failed: /work/repo: exit status 128", repoErr.Error())

	assert.True(t, IsGitCommandFailed(repoErr))
	assert.False(t, IsRepoNotFound(repoErr))
	assert.True(t, IsRepoNotFound(ErrNotARepo))
	assert.True(t, IsStatusParseFailed(NewRepoError("bad record", "", StatusParseFailed, nil)))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Unknown, KindOf(nil))
	assert.Equal(t, Unknown, KindOf(fmt.Errorf("plain")))
	assert.Equal(t, InvalidPattern, KindOf(NewConfigError("bad", "x", InvalidPattern, nil)))

	wrapped := fmt.Errorf("outer: %w", NewRepoError("missing", "/r", RepoNotFound, nil))
	assert.Equal(t, RepoNotFound, KindOf(wrapped))

	// Wrap layers carry no kind of their own.
	inner := NewRepoError("missing", "/r", RepoNotFound, nil)
	assert.Equal(t, RepoNotFound, KindOf(Wrap(inner, "open")))
	assert.Equal(t, RepoNotFound, KindOf(Wrapf(Wrap(inner, "open"), "status %s", "/r")))
	assert.Equal(t, Unknown, KindOf(Wrap(fmt.Errorf("plain"), "ctx")))
}

func TestErrorChains(t *testing.T) {
	baseErr := errors.New("base error")
	fileErr := NewFileError("file error", "/path/to/file", FileNotFound, baseErr)
	configErr := NewConfigError("config error", "repository.path", InvalidConfig, fileErr)
	repoErr := NewRepoError("repo error", "/repo", RepoNotFound, configErr)

	assert.Equal(t, "repo error: /repo: config error: repository.path: file error: /path/to/file: base error", repoErr.Error())

	assert.True(t, Is(repoErr, baseErr))
	assert.True(t, Is(repoErr, fileErr))
	assert.True(t, Is(repoErr, configErr))

	var fe *FileError
	assert.True(t, As(repoErr, &fe))
	assert.Equal(t, "/path/to/file", fe.Path())

	assert.True(t, IsFileNotFound(repoErr))
	assert.True(t, IsInvalidConfig(repoErr))
	assert.True(t, IsRepoNotFound(repoErr))
}
