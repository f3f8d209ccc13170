package service

import (
	"errors"

	"github.com/jonwraymond/coverforge/render"
)

var (
	// ErrUnknownFormat is returned for a format with no renderer.
	ErrUnknownFormat = render.ErrUnknownFormat

	// ErrUnknownVariant is returned for a variant name that is not
	// registered.
	ErrUnknownVariant = render.ErrUnknownVariant

	// ErrDeliveryFailed is returned when the print shop sender reports a
	// failure. It wraps the sender's error.
	ErrDeliveryFailed = errors.New("service: delivery failed")

	// ErrNilRecord is returned when a nil record is passed in.
	ErrNilRecord = errors.New("service: nil record")
)
