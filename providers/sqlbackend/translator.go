// Package sqlbackend translates a validated query AST into one
// parameterized SELECT against a root model, executing it through a
// caller-owned gorm session either eagerly or as a server-side cursor.
package sqlbackend

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/oxhq/searchq/core"
	"github.com/oxhq/searchq/registry"
	"github.com/oxhq/searchq/resolve"
)

// Provider is the SQL backend bound to one session and root model.
type Provider struct {
	db        *gorm.DB
	schema    resolve.Schema
	rootModel string
	hooks     []resolve.Hook
}

// Option configures a Provider.
type Option func(*Provider)

// WithHooks registers path-resolution hooks, tried in order.
func WithHooks(hooks ...resolve.Hook) Option {
	return func(p *Provider) { p.hooks = append(p.hooks, hooks...) }
}

// WithSchema overrides the introspector derived from the model struct.
func WithSchema(s resolve.Schema, rootModel string) Option {
	return func(p *Provider) {
		p.schema = s
		p.rootModel = rootModel
	}
}

// New builds a provider for the session and root model struct. The
// schema is introspected from the model's gorm metadata unless
// WithSchema overrides it.
func New(db *gorm.DB, model any, opts ...Option) (*Provider, error) {
	p := &Provider{db: db}
	for _, opt := range opts {
		opt(p)
	}
	if p.schema == nil {
		gs, err := resolve.NewGormSchema(model)
		if err != nil {
			return nil, err
		}
		name, err := gs.ModelName(model)
		if err != nil {
			return nil, err
		}
		p.schema = gs
		p.rootModel = name
	}
	return p, nil
}

// Backend reports the SQL operator subset.
func (p *Provider) Backend() registry.Backend { return registry.SQL }

// Statement is a translated query: parameterized SQL plus its bound
// parameter vector and the join plan it was built from.
type Statement struct {
	SQL    string
	Params []any
	Plan   *resolve.JoinPlan
}

// Translate renders the query to a single SELECT. All scalar values
// become bound parameters; identifiers come from the schema, never
// from user input.
func (p *Provider) Translate(ctx context.Context, q *core.Query) (*Statement, error) {
	resolver, err := resolve.NewResolver(p.schema, p.rootModel, p.hooks...)
	if err != nil {
		return nil, err
	}
	t := &translator{resolver: resolver}

	// Pre-resolve every field path in traversal order so the join plan
	// is complete before fragments are rendered.
	for _, c := range q.Conditions() {
		r, err := resolver.Resolve(ctx, c.Field)
		if err != nil {
			return nil, err
		}
		t.resolved = append(t.resolved, r)
	}
	orderRefs := make([]*resolve.ColumnRef, len(q.OrderBy))
	for i, key := range q.OrderBy {
		r, err := resolver.Resolve(ctx, key.Path)
		if err != nil {
			return nil, err
		}
		if r.Column == nil {
			return nil, &core.ResolutionError{
				Code:   core.CodeInvalidLeaf,
				Path:   key.Path,
				Reason: "order key must resolve to a scalar column",
			}
		}
		orderRefs[i] = r.Column
	}

	var where []string
	var params []any
	for _, g := range q.Groups {
		frag, fragParams, err := t.renderNode(g)
		if err != nil {
			return nil, err
		}
		where = append(where, frag)
		params = append(params, fragParams...)
	}

	plan := resolver.Plan()
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s.* FROM %s", plan.RootTable, plan.RootTable)
	for _, step := range plan.Steps {
		fmt.Fprintf(&b, " %s JOIN %s %s ON %s.%s = %s.%s",
			step.Kind, step.Table, step.Alias,
			step.ParentAlias, step.ParentColumn,
			step.Alias, step.ChildColumn)
	}
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	if len(orderRefs) > 0 {
		b.WriteString(" ORDER BY ")
		for i, ref := range orderRefs {
			if i > 0 {
				b.WriteString(", ")
			}
			if q.OrderBy[i].Desc {
				fmt.Fprintf(&b, "%s.%s DESC NULLS FIRST", ref.Alias, ref.Column)
			} else {
				fmt.Fprintf(&b, "%s.%s ASC NULLS LAST", ref.Alias, ref.Column)
			}
		}
	}
	if q.Limit != nil {
		b.WriteString(" LIMIT ?")
		params = append(params, *q.Limit)
	}
	if q.Offset != nil {
		b.WriteString(" OFFSET ?")
		params = append(params, *q.Offset)
	}

	return &Statement{SQL: b.String(), Params: params, Plan: plan}, nil
}

// translator walks the AST once; conditions consume pre-resolved
// entries in the same traversal order they were collected.
type translator struct {
	resolver *resolve.Resolver
	resolved []*resolve.Resolved
	next     int
}

func (t *translator) renderNode(n core.Node) (string, []any, error) {
	switch node := n.(type) {
	case *core.Group:
		return t.renderGroup(node)
	case *core.Condition:
		return t.renderCondition(node)
	}
	return "", nil, &core.BackendError{Code: core.CodeTranslationFailed, Detail: fmt.Sprintf("unknown node type %T", n)}
}

func (t *translator) renderGroup(g *core.Group) (string, []any, error) {
	if g.Op == core.OpNot {
		frag, params, err := t.renderNode(g.Children[0])
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("NOT (%s)", frag), params, nil
	}
	sep := " AND "
	if g.Op == core.OpOr {
		sep = " OR "
	}
	var frags []string
	var params []any
	for _, c := range g.Children {
		frag, childParams, err := t.renderNode(c)
		if err != nil {
			return "", nil, err
		}
		frags = append(frags, frag)
		params = append(params, childParams...)
	}
	return "(" + strings.Join(frags, sep) + ")", params, nil
}

func (t *translator) renderCondition(c *core.Condition) (string, []any, error) {
	r := t.resolved[t.next]
	t.next++
	if r.Fragment != "" {
		// Hook-produced predicate, inserted verbatim.
		return r.Fragment, r.Params, nil
	}
	column := fmt.Sprintf("%s.%s", r.Column.Alias, r.Column.Column)
	return emitOperator(c.Operator, column, c.Value)
}
