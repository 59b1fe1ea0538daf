package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes bundling errors.
type ErrorCode string

const (
	// ErrCodeCycle indicates modules that depend on each other.
	ErrCodeCycle ErrorCode = "DEPENDENCY_CYCLE"

	// ErrCodeCollision indicates two modules mapped to the same global.
	ErrCodeCollision ErrorCode = "GLOBAL_COLLISION"

	// ErrCodeDangling indicates a dependency outside the bundled set (strict mode).
	ErrCodeDangling ErrorCode = "DANGLING_DEPENDENCY"

	// ErrCodeDuplicateID indicates two files that derive the same module ID.
	ErrCodeDuplicateID ErrorCode = "DUPLICATE_ID"
)

// Error is a bundling error tied to a module file.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// File is the offending module's path, if known.
	File string

	// Path is the module ID chain for cycle errors: ["a", "b", "a"].
	Path []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s (file=%s)", e.Code, e.Message, e.File)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCode reports whether err is a compiler *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

func newCycleError(path []string, file string) *Error {
	return &Error{
		Code:    ErrCodeCycle,
		Message: "dependency cycle: " + strings.Join(path, " → "),
		File:    file,
		Path:    path,
	}
}
