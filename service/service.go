package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonwraymond/coverforge/cache"
	"github.com/jonwraymond/coverforge/cover"
	"github.com/jonwraymond/coverforge/mail"
	"github.com/jonwraymond/coverforge/observe"
	"github.com/jonwraymond/coverforge/render"
	"github.com/jonwraymond/coverforge/resilience"
	"github.com/jonwraymond/coverforge/token"
)

// job is one render request as the document cache sees it.
type job struct {
	rec     *cover.Record
	variant render.Variant
}

// Delivery reports a print request the shop accepted.
type Delivery struct {
	// ID correlates the delivery in logs. The token is kept out of logs.
	ID        string
	Token     string
	MessageID string
}

// Service renders cover sheets, memoizes them and delivers them to the
// print shop.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: malformed records surface as cover.ErrMalformedInput,
//     renderer failures as render.ErrRender, a full render bulkhead as
//     resilience.ErrBulkheadFull and sender failures as ErrDeliveryFailed.
type Service struct {
	store     *cache.MemoryCache
	docs      map[render.Format]*cache.DocumentCache[job]
	renderers map[render.Format]render.Renderer
	variant   render.Variant
	slots     *resilience.Bulkhead
	exec      *resilience.Executor
	mw        *observe.Middleware
	sender    mail.Sender
	tokens    *token.Generator
	logger    observe.Logger
}

// New creates a Service.
func New(opts Options) (*Service, error) {
	opts = opts.withDefaults()

	variant, err := render.LookupVariant(opts.Variant)
	if err != nil {
		return nil, err
	}
	store, err := cache.NewMemoryCache(*opts.Policy, cache.WithNow(opts.Now))
	if err != nil {
		return nil, err
	}
	slots := resilience.NewBulkhead(resilience.BulkheadConfig{
		MaxConcurrent: opts.MaxConcurrent,
		MaxWait:       opts.MaxWait,
	})

	s := &Service{
		store:     store,
		docs:      make(map[render.Format]*cache.DocumentCache[job], 2),
		renderers: make(map[render.Format]render.Renderer, 2),
		variant:   variant,
		slots:     slots,
		exec:      resilience.NewExecutor(resilience.WithBulkhead(slots)),
		mw:        opts.Middleware,
		sender:    opts.Sender,
		tokens:    token.NewGenerator(opts.Now),
		logger:    opts.Logger,
	}

	docOpts := []cache.DocumentOption[job]{
		cache.WithSkipRule(func(j job) bool { return !j.variant.Cacheable }),
	}
	if opts.Recorder != nil {
		docOpts = append(docOpts, cache.WithRecorder[job](opts.Recorder))
	}

	for _, f := range []render.Format{render.FormatPDF, render.FormatDOCX} {
		r, err := render.New(f, opts.Render)
		if err != nil {
			return nil, err
		}
		s.renderers[f] = r
		doc, err := cache.NewDocumentCache[job](store, keyerFor(f), *opts.Policy, s.renderFunc(r), docOpts...)
		if err != nil {
			return nil, err
		}
		s.docs[f] = doc
	}
	return s, nil
}

// keyerFor namespaces record keys by format and variant.
func keyerFor(f render.Format) cache.Keyer[job] {
	return cache.KeyerFunc[job](func(j job) (string, error) {
		return cover.NewKeyer(string(f) + "/" + j.variant.Name).Key(j.rec)
	})
}

func (s *Service) renderFunc(r render.Renderer) cache.RenderFunc[job] {
	return func(ctx context.Context, j job) ([]byte, error) {
		meta := observe.RenderMeta{
			Format:    string(r.Format()),
			Variant:   j.variant.Name,
			Cacheable: j.variant.Cacheable,
		}
		wrapped := s.mw.Wrap(func(ctx context.Context, _ observe.RenderMeta) ([]byte, error) {
			return r.Render(ctx, j.rec, j.variant)
		})
		return resilience.Do(ctx, s.exec, func(ctx context.Context) ([]byte, error) {
			return wrapped(ctx, meta)
		})
	}
}

// Render renders rec in format f with the default variant.
func (s *Service) Render(ctx context.Context, f render.Format, rec *cover.Record) ([]byte, error) {
	return s.RenderVariant(ctx, f, "", rec)
}

// RenderVariant renders rec in format f with the named variant. An empty
// name selects the service default.
func (s *Service) RenderVariant(ctx context.Context, f render.Format, variant string, rec *cover.Record) ([]byte, error) {
	if rec == nil {
		return nil, ErrNilRecord
	}
	doc, ok := s.docs[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	v := s.variant
	if variant != "" {
		var err error
		if v, err = render.LookupVariant(variant); err != nil {
			return nil, err
		}
	}
	return doc.GetOrRender(ctx, job{rec: rec, variant: v})
}

// RenderAndTokenize renders the PDF with the default variant and issues a
// token for it.
func (s *Service) RenderAndTokenize(ctx context.Context, rec *cover.Record) ([]byte, string, error) {
	pdf, err := s.Render(ctx, render.FormatPDF, rec)
	if err != nil {
		return nil, "", err
	}
	return pdf, s.tokens.Next(rec), nil
}

// SendToShop renders the PDF, issues a token and hands both to the print
// shop sender. The token is returned only once the sender confirms.
func (s *Service) SendToShop(ctx context.Context, rec *cover.Record) (Delivery, error) {
	pdf, tok, err := s.RenderAndTokenize(ctx, rec)
	if err != nil {
		return Delivery{}, err
	}

	id := uuid.NewString()
	res := s.sender.Send(ctx, rec, pdf, tok)
	if !res.Success {
		s.logger.Error(ctx, "delivery failed",
			observe.Field{Key: "delivery_id", Value: id},
			observe.Field{Key: "error", Value: errorText(res.Error)},
		)
		if res.Error == nil {
			return Delivery{}, ErrDeliveryFailed
		}
		return Delivery{}, fmt.Errorf("%w: %w", ErrDeliveryFailed, res.Error)
	}

	s.logger.Info(ctx, "delivery accepted",
		observe.Field{Key: "delivery_id", Value: id},
		observe.Field{Key: "message_id", Value: res.MessageID},
	)
	return Delivery{ID: id, Token: tok, MessageID: res.MessageID}, nil
}

// Invalidate drops every cached rendering of rec.
func (s *Service) Invalidate(ctx context.Context, rec *cover.Record) error {
	for _, doc := range s.docs {
		for _, name := range render.VariantNames() {
			v, err := render.LookupVariant(name)
			if err != nil {
				return err
			}
			if err := doc.Invalidate(ctx, job{rec: rec, variant: v}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Stats returns the document cache counters for format f.
func (s *Service) Stats(f render.Format) (cache.Stats, bool) {
	doc, ok := s.docs[f]
	if !ok {
		return cache.Stats{}, false
	}
	return doc.Stats(), true
}

// Store returns the shared document store.
func (s *Service) Store() *cache.MemoryCache {
	return s.store
}

// Bulkhead returns the render slot limiter.
func (s *Service) Bulkhead() *resilience.Bulkhead {
	return s.slots
}

func errorText(err error) string {
	if err == nil {
		return "sender reported failure"
	}
	return err.Error()
}
