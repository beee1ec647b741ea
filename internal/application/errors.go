package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotFound         = errors.New("not found")
	ErrEmptyQuery       = errors.New("empty query")
	ErrRenderFailed     = errors.New("render failed")
	ErrExtractionFailed = errors.New("extraction failed")
	ErrNoBackend        = errors.New("no backend available")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RenderError represents a failed page rasterization
type RenderError struct {
	Path string
	Page int
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("cannot render %s page %d: %v", e.Path, e.Page, e.Err)
}

func (e *RenderError) Is(target error) bool {
	return target == ErrRenderFailed
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// ExtractionError represents a document whose text cannot be page-mapped
type ExtractionError struct {
	Path   string
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("cannot extract %s: %s", e.Path, e.Reason)
}

func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtractionFailed
}
