package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when no unit in the store has the requested slug.
var ErrNotFound = errors.New("content not found")

// MalformedFrontMatterError reports a front matter block that could not be
// parsed as structured data: broken key/value syntax, an unterminated
// delimiter, or an unparseable date value.
type MalformedFrontMatterError struct {
	Path string
	Err  error
}

func (e *MalformedFrontMatterError) Error() string {
	return fmt.Sprintf("malformed front matter in %s: %v", e.Path, e.Err)
}

func (e *MalformedFrontMatterError) Unwrap() error {
	return e.Err
}

// MissingFieldError reports a unit that lacks a front matter field required
// for its kind: posts require title and date, pages require title.
type MissingFieldError struct {
	Path  string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required front matter field %q in %s", e.Field, e.Path)
}

// DuplicateSlugError reports two files resolving to the same identity.
// Both offending paths are named so the operator can pick one.
type DuplicateSlugError struct {
	Slug  string
	Paths []string
}

func (e *DuplicateSlugError) Error() string {
	return fmt.Sprintf("duplicate slug %q: %s", e.Slug, strings.Join(e.Paths, ", "))
}
