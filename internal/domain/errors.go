package domain

import (
	"fmt"
	"strings"
)

// IOError reports a dataset file that could not be opened or read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("read dataset %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ParseError reports a line that is not a JSON object, or whose properties or
// geometry value is not an object.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse record")
	writeLocation(&b, e.Path, e.Line)
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError reports a record that does not match the expected event shape:
// a missing or unexpected key, a wrongly typed value, or a discriminator that
// is not constant across the dataset.
type SchemaError struct {
	Path   string
	Line   int
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("schema mismatch")
	writeLocation(&b, e.Path, e.Line)
	if e.Column != "" {
		fmt.Fprintf(&b, ": column %q", e.Column)
	}
	fmt.Fprintf(&b, ": %s", e.Reason)
	return b.String()
}

func writeLocation(b *strings.Builder, path string, line int) {
	if path != "" {
		fmt.Fprintf(b, " in %s", path)
	}
	if line > 0 {
		fmt.Fprintf(b, " at line %d", line)
	}
}

func schemaErr(line int, column, format string, args ...any) *SchemaError {
	return &SchemaError{Line: line, Column: column, Reason: fmt.Sprintf(format, args...)}
}

// WithPath stamps the dataset path onto a core error so callers can report
// which file failed. Other errors are returned unchanged.
func WithPath(err error, path string) error {
	switch e := err.(type) { //nolint:errorlint // only direct core errors carry a path
	case *ParseError:
		e.Path = path
	case *SchemaError:
		e.Path = path
	case *IOError:
		e.Path = path
	}
	return err
}
