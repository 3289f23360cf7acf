// Package diagnostics implements the five-member compile/runtime error
// taxonomy shared by the lexer, compiler, and VM.
package diagnostics

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code classifies where in the pipeline an error originated.
type Code string

const (
	Lexical  Code = "LEXICAL"
	Syntax   Code = "SYNTAX"
	Semantic Code = "SEMANTIC"
	Type     Code = "TYPE"
	Range    Code = "RANGE"
)

// Error is a positioned, classified error returned by the lexer, compiler,
// or VM.
type Error struct {
	Code    Code
	Line    int
	Column  int
	Message string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s error at %d:%d: %s", e.Code, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Code, e.Message)
}

// New builds an Error at the given position.
func New(code Code, line, col int, message string) *Error {
	return &Error{Code: code, Line: line, Column: col, Message: message}
}

// Newf builds an Error with a formatted message.
func Newf(code Code, line, col int, format string, args ...interface{}) *Error {
	return New(code, line, col, fmt.Sprintf(format, args...))
}

// Wrap re-surfaces a lower-level error (e.g. a capacity-growth failure)
// as a classified Error at the given position, keeping the original cause
// in the formatted message.
func Wrap(code Code, line, col int, err error, message string) *Error {
	return New(code, line, col, errors.Wrap(err, message).Error())
}

// As reports whether err is a *Error and, if so, returns it.
func As(err error) (*Error, bool) {
	e, ok := err.(*Error)
	return e, ok
}
