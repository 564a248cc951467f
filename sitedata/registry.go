// Package sitedata holds the site's content datasets and binds each one to the
// priority cache through a stale-while-revalidate hook.
//
// The datasets are declared once, as a table (see datasets.go). A Registry
// turns that table into typed hooks sharing one Manager and one Subscriber.
package sitedata

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	pc "github.com/unkn0wn-root/prioritycache"
	"github.com/unkn0wn-root/prioritycache/sched"
	"github.com/unkn0wn-root/prioritycache/swr"
)

var ErrUnknownDataset = errors.New("sitedata: unknown dataset")

type RegistryOptions struct {
	Scheduler sched.Scheduler // nil => sched.Go
	Logger    pc.Logger       // nil => NopLogger
	Hooks     pc.Hooks        // nil => NopHooks
}

// View is the untyped form of swr.View served over HTTP.
type View struct {
	Key       string      `json:"key"`
	Priority  pc.Priority `json:"priority"`
	Data      any         `json:"data"`
	IsLoading bool        `json:"isLoading"`
	IsCached  bool        `json:"isCached"`
	Error     string      `json:"error,omitempty"`
}

// binding is the type-erased side of one dataset.
type binding interface {
	key() string
	update(ctx context.Context) View
	current(ctx context.Context) View
	refresh(ctx context.Context) error
	watch(ctx context.Context) <-chan View
}

type typed[V any] struct {
	hook *swr.Hook[V]
	raw  RawSource
}

func (b typed[V]) key() string { return b.hook.Key() }

func (b typed[V]) update(ctx context.Context) View  { return b.view(b.hook.Update(ctx)) }
func (b typed[V]) current(ctx context.Context) View { return b.view(b.hook.Current(ctx)) }
func (b typed[V]) refresh(ctx context.Context) error {
	return b.hook.Refresh(ctx)
}

func (b typed[V]) watch(ctx context.Context) <-chan View {
	out := make(chan View)
	go func() {
		defer close(out)
		for v := range b.hook.Watch(ctx, b.raw.Changes()) {
			select {
			case out <- b.view(v):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (b typed[V]) view(v swr.View[V]) View {
	out := View{
		Key:       b.hook.Key(),
		Priority:  b.hook.Priority(),
		Data:      v.Data,
		IsLoading: v.IsLoading,
		IsCached:  v.IsCached,
	}
	if v.Err != nil {
		out.Error = v.Err.Error()
	}
	return out
}

// Registry owns one hook per dataset. It is safe for concurrent use.
type Registry struct {
	m   *pc.Manager
	log pc.Logger

	statistics   *swr.Hook[[]Statistic]
	services     *swr.Hook[[]Service]
	zones        *swr.Hook[[]Zone]
	testimonials *swr.Hook[[]Testimonial]
	portfolio    *swr.Hook[[]Project]
	hero         *swr.Hook[*Hero]
	about        *swr.Hook[*About]
	contact      *swr.Hook[*Contact]
	company      *swr.Hook[*CompanyInfo]
	seo          *swr.Hook[*SEO]

	byKey map[string]binding
	keys  []string
}

func NewRegistry(m *pc.Manager, sub Subscriber, opts RegistryOptions) *Registry {
	if opts.Logger == nil {
		opts.Logger = pc.NopLogger{}
	}
	r := &Registry{m: m, log: opts.Logger, byKey: make(map[string]binding)}

	r.statistics = bind(r, sub, StatisticsSet, opts)
	r.services = bind(r, sub, ServicesSet, opts)
	r.zones = bind(r, sub, ZonesSet, opts)
	r.testimonials = bind(r, sub, TestimonialsSet, opts)
	r.portfolio = bind(r, sub, PortfolioSet, opts)
	r.hero = bind(r, sub, HeroSet, opts)
	r.about = bind(r, sub, AboutSet, opts)
	r.contact = bind(r, sub, ContactSet, opts)
	r.company = bind(r, sub, CompanySet, opts)
	r.seo = bind(r, sub, SEOSet, opts)

	sort.Strings(r.keys)
	return r
}

func bind[V any](r *Registry, sub Subscriber, d Dataset[V], opts RegistryOptions) *swr.Hook[V] {
	raw := sub.Subscribe(d.Query)
	h := swr.New(r.m, swr.Options[V]{
		Key:         d.Key,
		Source:      jsonSource[V]{raw: raw, query: d.Query, log: opts.Logger},
		Fallback:    d.Fallback,
		HasFallback: true,
		Priority:    d.Priority,
		Usable:      d.Usable,
		Scheduler:   opts.Scheduler,
		Logger:      opts.Logger,
		Hooks:       opts.Hooks,
	})
	r.byKey[d.Key] = typed[V]{hook: h, raw: raw}
	r.keys = append(r.keys, d.Key)
	return h
}

func (r *Registry) Statistics() *swr.Hook[[]Statistic]     { return r.statistics }
func (r *Registry) Services() *swr.Hook[[]Service]         { return r.services }
func (r *Registry) Zones() *swr.Hook[[]Zone]               { return r.zones }
func (r *Registry) Testimonials() *swr.Hook[[]Testimonial] { return r.testimonials }
func (r *Registry) Portfolio() *swr.Hook[[]Project]        { return r.portfolio }
func (r *Registry) Hero() *swr.Hook[*Hero]                 { return r.hero }
func (r *Registry) About() *swr.Hook[*About]               { return r.about }
func (r *Registry) Contact() *swr.Hook[*Contact]           { return r.contact }
func (r *Registry) Company() *swr.Hook[*CompanyInfo]       { return r.company }
func (r *Registry) SEO() *swr.Hook[*SEO]                   { return r.seo }

// Keys lists the dataset cache keys, sorted.
func (r *Registry) Keys() []string {
	return append([]string(nil), r.keys...)
}

func (r *Registry) lookup(key string) (binding, error) {
	b, ok := r.byKey[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, key)
	}
	return b, nil
}

// Update resolves one dataset and returns its view.
func (r *Registry) Update(ctx context.Context, key string) (View, error) {
	b, err := r.lookup(key)
	if err != nil {
		return View{}, err
	}
	return b.update(ctx), nil
}

// Refresh pulls one dataset from the remote now. The returned view carries
// the refresh error, if any.
func (r *Registry) Refresh(ctx context.Context, key string) (View, error) {
	b, err := r.lookup(key)
	if err != nil {
		return View{}, err
	}
	err = b.refresh(ctx)
	return b.current(ctx), err
}

// Views resolves every dataset and returns the views keyed by cache key.
func (r *Registry) Views(ctx context.Context) map[string]View {
	out := make(map[string]View, len(r.keys))
	for _, k := range r.keys {
		out[k] = r.byKey[k].update(ctx)
	}
	return out
}

// WarmUp resolves every dataset concurrently so the cache holds either a
// remote value or a fallback for each of them.
func (r *Registry) WarmUp(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, k := range r.keys {
		b := r.byKey[k]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b.update(ctx)
			return nil
		})
	}
	return g.Wait()
}

// Invalidate drops the cached entry of one dataset. The next update adopts
// the remote snapshot or the fallback again.
func (r *Registry) Invalidate(ctx context.Context, key string) error {
	if _, err := r.lookup(key); err != nil {
		return err
	}
	r.m.Delete(ctx, key)
	r.log.Info("dataset invalidated", pc.Fields{"key": key})
	return nil
}

// Run re-resolves each dataset whenever its remote value changes, until ctx
// is done. onView, when set, receives every resulting view; it is called from
// several goroutines.
func (r *Registry) Run(ctx context.Context, onView func(View)) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, k := range r.keys {
		b := r.byKey[k]
		g.Go(func() error {
			for v := range b.watch(gctx) {
				if onView != nil {
					onView(v)
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}
