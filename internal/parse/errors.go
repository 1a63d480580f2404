// Package parse recovers typed records from the text output of OS
// inspection utilities (ps, df, smartctl -A, sensors -u, lsblk, free, top).
package parse

import (
	"errors"
	"fmt"
)

var (
	// ErrShortRow is returned when a tabular row has fewer fields than headers.
	ErrShortRow = errors.New("row has fewer fields than headers")
	// ErrMalformedBlock is returned when a sensor block lacks its name lines.
	ErrMalformedBlock = errors.New("malformed sensor block")
	// ErrDepthJump is returned when a device listing nests more than one level at once.
	ErrDepthJump = errors.New("nesting depth increased by more than one level")
	// ErrOrphanChild is returned when a device listing starts with a nested entry.
	ErrOrphanChild = errors.New("nested entry has no parent")
	// ErrOddIndent is returned when tree glyphs do not form whole levels.
	ErrOddIndent = errors.New("indentation is not a whole number of levels")
	// ErrBadNumber is returned when a numeric column does not parse.
	ErrBadNumber = errors.New("invalid number")
)

// ParseError describes input that does not have the shape a parser expects.
type ParseError struct {
	Parser string // "lines", "sensors", "drives", "memory", "cpu"
	Line   int    // 1-based line number within the input, 0 when not applicable
	Text   string // offending line
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d %q: %v", e.Parser, e.Line, e.Text, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Parser, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
