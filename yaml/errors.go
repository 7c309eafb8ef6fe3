package yaml

import (
	"errors"
	"fmt"
)

// ErrSyntax marks malformed structural syntax, such as an unterminated flow
// collection or verbatim tag.
var ErrSyntax = errors.New("syntax error")

// ErrUnsupported marks a construct of unrecognized shape at a structurally
// valid position. Reserved for graceful degradation; the core grammar does
// not currently raise it.
var ErrUnsupported = errors.New("unsupported construct")

// UnresolvedAliasError reports an alias referencing an anchor never defined
// in the active document scope.
type UnresolvedAliasError struct {
	Name string
}

func (e *UnresolvedAliasError) Error() string {
	return fmt.Sprintf("unresolved alias *%s", e.Name)
}

// ParseError wraps any failure raised while advancing the tokenizer with
// the position where detection occurred. Callers never see a raw internal
// error. Once returned, the tokenizer's state is not guaranteed consistent
// and the instance must be discarded.
type ParseError struct {
	Pos Position
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("yaml: %v at %s", e.Err, e.Pos)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func syntaxErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSyntax, fmt.Sprintf(format, args...))
}
