package errors

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/vango-dev/vuey/pkg/persist"
	"github.com/vango-dev/vuey/pkg/store"
)

// Category represents the type of error.
type Category string

const (
	CategoryStore   Category = "store"
	CategoryPersist Category = "persist"
	CategoryConfig  Category = "config"
	CategoryCLI     Category = "cli"
)

// Location represents a position in a file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// VuError is a structured error with an optional location and suggestion.
type VuError struct {
	// Code is a unique error identifier (e.g., "V001").
	Code string

	Category Category
	Message  string
	Detail   string

	// Location and Context point into a file, usually vuey.json.
	Location *Location
	Context  []string

	Suggestion string
	DocURL     string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *VuError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *VuError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a file location and the lines around it.
func (e *VuError) WithLocation(file string, line, column int) *VuError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithOffset adds a location given as a byte offset into data, as reported
// by encoding/json syntax errors.
func (e *VuError) WithOffset(file string, data []byte, offset int64) *VuError {
	line, col := 1, 1
	for i := int64(0); i < offset && i < int64(len(data)); i++ {
		if data[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return e.WithLocation(file, line, col)
}

// WithSuggestion adds a fix suggestion to the error.
func (e *VuError) WithSuggestion(s string) *VuError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *VuError) WithDetail(d string) *VuError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *VuError) Wrap(err error) *VuError {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates a VuError from a registered error code.
func New(code string) *VuError {
	template, ok := registry[code]
	if !ok {
		return &VuError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &VuError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new VuError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *VuError {
	return &VuError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError classifies err into a coded VuError. Errors that are already
// VuErrors are returned as is; unrecognized errors get fallback.
func FromError(err error, fallback string) *VuError {
	if err == nil {
		return nil
	}
	var ve *VuError
	if stderrors.As(err, &ve) {
		return ve
	}
	code := fallback
	for _, c := range classes {
		if stderrors.Is(err, c.target) {
			code = c.code
			break
		}
	}
	e := New(code).Wrap(err)
	var se *store.StoreError
	if stderrors.As(err, &se) {
		e.Detail = fmt.Sprintf("store %q, operation %s", se.Name, se.Op)
	}
	return e
}

var classes = []struct {
	target error
	code   string
}{
	{store.ErrDuplicateName, "V001"},
	{store.ErrNotBound, "V002"},
	{store.ErrAlreadyBound, "V003"},
	{store.ErrMissingAction, "V004"},
	{store.ErrMissingGetter, "V005"},
	{store.ErrArgument, "V006"},
	{store.ErrUnknownProperty, "V007"},
	{persist.ErrClosed, "V021"},
}
