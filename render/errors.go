package render

import (
	"errors"
	"fmt"
)

// Sentinel errors for rendering.
var (
	ErrRender         = errors.New("render: rendering failed")
	ErrUnknownFormat  = errors.New("render: unknown format")
	ErrUnknownVariant = errors.New("render: unknown variant")
	ErrInvalidVariant = errors.New("render: variant is invalid")
)

// RenderError wraps a format-specific layout or asset failure.
type RenderError struct {
	Format  Format
	Variant string
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render: %s/%s: %v", e.Format, e.Variant, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrRender.
func (e *RenderError) Is(target error) bool {
	return target == ErrRender
}
