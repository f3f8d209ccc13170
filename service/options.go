package service

import (
	"time"

	"github.com/jonwraymond/coverforge/cache"
	"github.com/jonwraymond/coverforge/mail"
	"github.com/jonwraymond/coverforge/observe"
	"github.com/jonwraymond/coverforge/render"
)

// Options configures a Service. Zero values select the defaults noted on
// each field.
type Options struct {
	// Policy configures the shared document store. Default:
	// cache.DefaultPolicy().
	Policy *cache.Policy
	// Render is passed to the built-in renderers.
	Render render.Options
	// Variant names the default variant. Default: render.DefaultVariant.
	Variant string
	// MaxConcurrent caps renders in progress. Default: 4.
	MaxConcurrent int
	// MaxWait bounds the wait for a render slot. Default: 10s.
	MaxWait time.Duration

	Sender     mail.Sender
	Logger     observe.Logger
	Middleware *observe.Middleware
	// Recorder receives cache lookup outcomes for every format.
	Recorder cache.Recorder
	// Now drives the token clock and the cache clock. Default: time.Now.
	Now func() time.Time
}

const (
	defaultMaxConcurrent = 4
	defaultMaxWait       = 10 * time.Second
)

func (o Options) withDefaults() Options {
	if o.Policy == nil {
		p := cache.DefaultPolicy()
		o.Policy = &p
	}
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = defaultMaxConcurrent
	}
	if o.MaxWait == 0 {
		o.MaxWait = defaultMaxWait
	}
	if o.Logger == nil {
		o.Logger = observe.NopLogger()
	}
	if o.Sender == nil {
		o.Sender = mail.NewLogSender(o.Logger)
	}
	if o.Middleware == nil {
		o.Middleware = observe.NewMiddleware(nil, nil, o.Logger)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Render.Now == nil {
		o.Render.Now = o.Now
	}
	return o
}
