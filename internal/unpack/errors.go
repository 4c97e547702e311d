// Package unpack implements the resolution and rendering engine that
// turns a parsed MHTML part tree into a single self-contained document.
package unpack

import "fmt"

// RenderError represents a failure while rendering a part.
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("render error: %s", e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// StoreError represents a failure writing a rendered part to the blob
// directory. It is fatal for the conversion that triggered it.
type StoreError struct {
	Path  string
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error for %s: %v", e.Path, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}
