// Package errors defines the error taxonomy for the template engine:
// source read failures, empty or unusable templates, and a collector
// used by the update sweep to aggregate per-template failures.
package errors

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrTemplateNotFound indicates the source provider has no document
// for the requested template name.
var ErrTemplateNotFound = errors.New("template not found")

// ErrEmptyTemplate indicates a template loaded successfully but carried
// no usable text.
var ErrEmptyTemplate = errors.New("template content is empty")

// SourceError wraps a source provider failure for a named template.
// The cache entry for the template, if any, is left untouched when
// this error is returned.
type SourceError struct {
	Template string
	Op       string // "read" or "stat"
	Err      error
}

// Error implements the error interface
func (e *SourceError) Error() string {
	return fmt.Sprintf("template %q: source %s failed: %v", e.Template, e.Op, e.Err)
}

// Unwrap returns the underlying provider error
func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError creates a SourceError for the given template and operation.
func NewSourceError(template, op string, err error) *SourceError {
	return &SourceError{Template: template, Op: op, Err: err}
}

// IsNotFound reports whether err indicates a missing template document.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}

// TemplateError records a failure observed for one template during a
// sweep or load, with the time it was observed.
type TemplateError struct {
	Template  string
	Message   string
	Err       error
	Timestamp time.Time
}

// Error implements the error interface
func (e *TemplateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Template, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Template, e.Message)
}

// Unwrap returns the underlying error
func (e *TemplateError) Unwrap() error {
	return e.Err
}

// ErrorCollector aggregates template errors across a sweep. Safe for
// concurrent use.
type ErrorCollector struct {
	errors []TemplateError
	mutex  sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		errors: make([]TemplateError, 0),
	}
}

// Add records an error for a template
func (ec *ErrorCollector) Add(template, message string, err error) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.errors = append(ec.errors, TemplateError{
		Template:  template,
		Message:   message,
		Err:       err,
		Timestamp: time.Now(),
	})
}

// Errors returns a copy of all collected errors
func (ec *ErrorCollector) Errors() []TemplateError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	result := make([]TemplateError, len(ec.errors))
	copy(result, ec.errors)
	return result
}

// ByTemplate returns collected errors for a specific template
func (ec *ErrorCollector) ByTemplate(template string) []TemplateError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	var out []TemplateError
	for _, e := range ec.errors {
		if e.Template == template {
			out = append(out, e)
		}
	}
	return out
}

// HasErrors returns true if any errors were collected
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	return len(ec.errors) > 0
}

// Clear removes all collected errors
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.errors = ec.errors[:0]
}
