// Package searchq is the entry point of the query engine: it inspects
// the source operand, selects the matching backend, validates the query
// against that backend's operator subset, and runs it.
package searchq

import (
	"context"

	"gorm.io/gorm"

	"github.com/oxhq/searchq/core"
	"github.com/oxhq/searchq/providers"
	"github.com/oxhq/searchq/providers/memory"
	"github.com/oxhq/searchq/providers/sqlbackend"
	"github.com/oxhq/searchq/registry"
	"github.com/oxhq/searchq/resolve"
)

// Options tune one search invocation.
type Options struct {
	Hooks     []resolve.Hook
	Schema    resolve.Schema
	RootModel string
	MaxDepth  int
}

// Option mutates Options.
type Option func(*Options)

// WithHooks registers path-resolution hooks for SQL translation.
func WithHooks(hooks ...resolve.Hook) Option {
	return func(o *Options) { o.Hooks = append(o.Hooks, hooks...) }
}

// WithSchema supplies a custom schema introspector instead of deriving
// one from the model struct.
func WithSchema(s resolve.Schema, rootModel string) Option {
	return func(o *Options) {
		o.Schema = s
		o.RootModel = rootModel
	}
}

// WithMaxDepth overrides the validator's depth limit.
func WithMaxDepth(depth int) Option {
	return func(o *Options) { o.MaxDepth = depth }
}

// Search runs the query and materializes the result. A *gorm.DB source
// selects the SQL backend and requires a model; any iterable source
// selects the memory backend and the model is ignored.
func Search(ctx context.Context, source, model any, q *core.Query, opts ...Option) ([]core.Record, error) {
	p, err := dispatch(source, model, opts)
	if err != nil {
		return nil, err
	}
	if err := validateFor(p, q, opts); err != nil {
		return nil, err
	}
	return p.Search(ctx, q)
}

// SearchStream runs the query lazily. The caller owns the returned
// stream and must close it.
func SearchStream(ctx context.Context, source, model any, q *core.Query, opts ...Option) (providers.Stream, error) {
	p, err := dispatch(source, model, opts)
	if err != nil {
		return nil, err
	}
	if err := validateFor(p, q, opts); err != nil {
		return nil, err
	}
	return p.SearchStream(ctx, q)
}

// Validate checks the query against one backend's operator subset
// without executing anything.
func Validate(q *core.Query, backend registry.Backend, opts ...Option) error {
	options := collect(opts)
	v := core.NewValidator(backend)
	if options.MaxDepth > 0 {
		v.MaxDepth = options.MaxDepth
	}
	return v.Validate(q)
}

func dispatch(source, model any, opts []Option) (providers.Provider, error) {
	options := collect(opts)
	if db, ok := source.(*gorm.DB); ok {
		var sqlOpts []sqlbackend.Option
		if len(options.Hooks) > 0 {
			sqlOpts = append(sqlOpts, sqlbackend.WithHooks(options.Hooks...))
		}
		if options.Schema != nil {
			sqlOpts = append(sqlOpts, sqlbackend.WithSchema(options.Schema, options.RootModel))
		}
		return sqlbackend.New(db, model, sqlOpts...)
	}
	return memory.New(source)
}

func validateFor(p providers.Provider, q *core.Query, opts []Option) error {
	options := collect(opts)
	v := core.NewValidator(p.Backend())
	if options.MaxDepth > 0 {
		v.MaxDepth = options.MaxDepth
	}
	return v.Validate(q)
}

func collect(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
