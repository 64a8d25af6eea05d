package core

import "fmt"

// Builder accumulates conditions into an implicit top-level AND group
// and emits an immutable Query. The builder keeps no reference to the
// result, so one builder can produce several independent queries.
type Builder struct {
	root    *Group
	limit   *int
	offset  *int
	orderBy []OrderKey
	err     error
}

// NewBuilder creates a builder with an empty top-level AND group.
func NewBuilder() *Builder {
	return &Builder{root: &Group{Op: OpAnd}}
}

// Where appends a condition to the top-level group. The value is
// converted with FromGo; conversion failures surface from Build.
func (b *Builder) Where(field, operator string, value any) *Builder {
	b.root.Children = append(b.root.Children, b.condition(field, operator, value))
	return b
}

// WhereUnary appends a condition without a value (is_null and friends).
func (b *Builder) WhereUnary(field, operator string) *Builder {
	b.root.Children = append(b.root.Children, &Condition{Field: field, Operator: operator})
	return b
}

// Group nests a sub-group built by fn under the top-level group.
func (b *Builder) Group(op GroupOp, fn func(*GroupBuilder)) *Builder {
	gb := &GroupBuilder{b: b, group: &Group{Op: op}}
	fn(gb)
	b.root.Children = append(b.root.Children, gb.group)
	return b
}

// Not nests a single-child negation group built by fn.
func (b *Builder) Not(fn func(*GroupBuilder)) *Builder {
	return b.Group(OpNot, fn)
}

// OrderBy appends sort keys in textual form ("-field" for descending).
func (b *Builder) OrderBy(keys ...string) *Builder {
	for _, k := range keys {
		b.orderBy = append(b.orderBy, ParseOrderKey(k))
	}
	return b
}

// Limit caps the number of emitted records.
func (b *Builder) Limit(n int) *Builder {
	b.limit = &n
	return b
}

// Offset skips the first n matching records.
func (b *Builder) Offset(n int) *Builder {
	b.offset = &n
	return b
}

// Build emits the accumulated query and resets the builder's tree so a
// later Build never aliases the returned AST.
func (b *Builder) Build() (*Query, error) {
	if b.err != nil {
		return nil, b.err
	}
	q := &Query{Limit: b.limit, Offset: b.offset, OrderBy: b.orderBy}
	if len(b.root.Children) > 0 {
		q.Groups = []*Group{b.root}
	}
	b.root = &Group{Op: OpAnd}
	b.limit, b.offset, b.orderBy = nil, nil, nil
	return q, nil
}

func (b *Builder) condition(field, operator string, value any) *Condition {
	v, err := FromGo(value)
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("condition on %q: %w", field, err)
	}
	return &Condition{Field: field, Operator: operator, Value: v}
}

// GroupBuilder builds the children of one nested group.
type GroupBuilder struct {
	b     *Builder
	group *Group
}

// Where appends a condition to this group.
func (g *GroupBuilder) Where(field, operator string, value any) *GroupBuilder {
	g.group.Children = append(g.group.Children, g.b.condition(field, operator, value))
	return g
}

// WhereUnary appends a valueless condition to this group.
func (g *GroupBuilder) WhereUnary(field, operator string) *GroupBuilder {
	g.group.Children = append(g.group.Children, &Condition{Field: field, Operator: operator})
	return g
}

// Group nests a further sub-group.
func (g *GroupBuilder) Group(op GroupOp, fn func(*GroupBuilder)) *GroupBuilder {
	gb := &GroupBuilder{b: g.b, group: &Group{Op: op}}
	fn(gb)
	g.group.Children = append(g.group.Children, gb.group)
	return g
}
