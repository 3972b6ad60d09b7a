package card

import (
	"errors"
	"fmt"
)

// ErrUnknownType is matched by every UnknownTypeError
var ErrUnknownType = errors.New("unknown card type")

// ParseError reports an input document that is not a YAML sequence of mappings
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	loc := e.Path
	if loc == "" {
		loc = "input"
	}
	if e.Line > 0 {
		return fmt.Sprintf("error parsing %s (line %d): %v", loc, e.Line, e.Err)
	}
	return fmt.Sprintf("error parsing %s: %v", loc, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// KeyMissingError reports a record of a known type without one of its required keys
type KeyMissingError struct {
	Index int
	Line  int
	Type  Type
	Key   string
}

func (e *KeyMissingError) Error() string {
	return fmt.Sprintf("card %d (line %d): %s card is missing required key %q", e.Index+1, e.Line, e.Type, e.Key)
}

// UnknownTypeError reports a record whose type is not supported. It is
// never fatal: the record is skipped.
type UnknownTypeError struct {
	Index int
	Line  int
	Type  Type
}

func (e *UnknownTypeError) Error() string {
	t := string(e.Type)
	if t == "" {
		t = "<none>"
	}
	return fmt.Sprintf("card %d (line %d): unknown card type: %s", e.Index+1, e.Line, t)
}

func (e *UnknownTypeError) Unwrap() error { return ErrUnknownType }
