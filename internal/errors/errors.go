// Package errors provides standardized error handling for stagr.
// It defines the error kinds raised around the status tree (repository access,
// configuration, file watching) and helpers for creating and wrapping them.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// Common error constants for frequently occurring errors
var (
	ErrFileNotFound  = NewFileError("file not found", "", FileNotFound, nil)
	ErrInvalidPath   = NewFileError("invalid file path", "", InvalidPath, nil)
	ErrInvalidConfig = NewConfigError("invalid configuration", "", InvalidConfig, nil)
	ErrNotARepo      = NewRepoError("not a git repository", "", RepoNotFound, nil)
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// File error kinds
	FileNotFound
	FileAccessDenied
	InvalidPath
	WatchFailed
	// Config error kinds
	InvalidConfig
	ConfigNotFound
	InvalidPattern
	// Repository error kinds
	RepoNotFound
	GitCommandFailed
	StatusParseFailed
)

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// FileError represents errors related to file operations
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the file error message
func (e *FileError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.path
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// RepoError represents errors raised while talking to the git repository
type RepoError struct {
	ApplicationError
	repo string
}

// NewRepoError creates a new repository error
func NewRepoError(msg string, repo string, kind ErrorKind, err error) *RepoError {
	return &RepoError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		repo: repo,
	}
}

// Error returns the repository error message
func (e *RepoError) Error() string {
	if e.repo != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.repo, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.repo)
	}
	return e.ApplicationError.Error()
}

// Repo returns the repository path associated with the error
func (e *RepoError) Repo() string {
	return e.repo
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: Unknown,
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: Unknown,
	}
}

// KindOf returns the first kind other than Unknown found in err's chain,
// or Unknown when there is none. Wrap adds Unknown layers, so they are
// skipped.
func KindOf(err error) ErrorKind {
	for ; err != nil; err = errors.Unwrap(err) {
		if kinded, ok := err.(interface{ Kind() ErrorKind }); ok && kinded.Kind() != Unknown {
			return kinded.Kind()
		}
	}
	return Unknown
}

// IsFileNotFound checks if the error is a file not found error
func IsFileNotFound(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == FileNotFound
	}
	return false
}

// IsWatchFailed checks if the error came from the file watcher
func IsWatchFailed(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == WatchFailed
	}
	return false
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}

// IsInvalidPattern checks if the error is an invalid glob pattern error
func IsInvalidPattern(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidPattern
	}
	return false
}

// IsRepoNotFound checks if the error reports a missing repository
func IsRepoNotFound(err error) bool {
	var repoErr *RepoError
	if errors.As(err, &repoErr) {
		return repoErr.Kind() == RepoNotFound
	}
	return false
}

// IsGitCommandFailed checks if the error reports a failed git invocation
func IsGitCommandFailed(err error) bool {
	var repoErr *RepoError
	if errors.As(err, &repoErr) {
		return repoErr.Kind() == GitCommandFailed
	}
	return false
}

// IsStatusParseFailed checks if the error reports unparsable git status output
func IsStatusParseFailed(err error) bool {
	var repoErr *RepoError
	if errors.As(err, &repoErr) {
		return repoErr.Kind() == StatusParseFailed
	}
	return false
}
