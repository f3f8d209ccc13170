package render

import (
	"context"
	"time"

	"github.com/jonwraymond/coverforge/cover"
)

// Renderer writes a cover sheet in one format.
//
// Contract:
//   - Concurrency: implementations are safe for concurrent use.
//   - Determinism: for a cacheable variant, equal records yield equal bytes.
//   - Errors: malformed records return the *cover.MalformedInputError from
//     Plan unchanged; layout and asset failures return *RenderError.
type Renderer interface {
	Render(ctx context.Context, rec *cover.Record, v Variant) ([]byte, error)
	Format() Format
}

// Options configures the built-in renderers.
type Options struct {
	Institution Institution
	Assets      *Assets
	// Now stamps footer-bearing variants. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Institution.Name == "" {
		o.Institution = DefaultInstitution()
	}
	if o.Assets == nil {
		o.Assets = NoAssets()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// New returns the renderer for format f.
func New(f Format, opts Options) (Renderer, error) {
	switch f {
	case FormatPDF:
		return NewPDF(opts), nil
	case FormatDOCX:
		return NewDOCX(opts), nil
	default:
		return nil, ErrUnknownFormat
	}
}

// pinnedTime is written wherever a format demands a timestamp and the
// variant carries none of its own.
var pinnedTime = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// plan builds the layout and the document timestamp for one render.
func plan(rec *cover.Record, v Variant, opts Options) (Layout, time.Time, error) {
	stamp := pinnedTime
	if v.Footer {
		stamp = opts.Now()
	}
	layout, err := Plan(rec, v, opts.Institution, stamp)
	return layout, stamp, err
}
