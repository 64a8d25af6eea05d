package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GroupOp combines the children of a Group.
type GroupOp string

const (
	OpAnd GroupOp = "and"
	OpOr  GroupOp = "or"
	OpNot GroupOp = "not"
)

// Node is either a *Group or a *Condition.
type Node interface {
	isNode()
}

// Group is an internal AST node combining children under a boolean
// operator. NOT groups carry exactly one child.
type Group struct {
	Op       GroupOp
	Children []Node
}

// Condition is a leaf predicate: field, operator, value.
type Condition struct {
	Field    string
	Operator string
	Value    Value
}

func (*Group) isNode()     {}
func (*Condition) isNode() {}

// OrderKey names a sort path and direction. The textual form prefixes
// the path with "-" for descending.
type OrderKey struct {
	Path string
	Desc bool
}

// ParseOrderKey decodes the textual "-field" form.
func ParseOrderKey(s string) OrderKey {
	if strings.HasPrefix(s, "-") {
		return OrderKey{Path: s[1:], Desc: true}
	}
	return OrderKey{Path: s}
}

func (k OrderKey) String() string {
	if k.Desc {
		return "-" + k.Path
	}
	return k.Path
}

// Query is the root of the AST. Top-level groups are conjoined. Nil
// Limit/Offset mean unbounded and zero respectively.
type Query struct {
	Groups  []*Group
	Limit   *int
	Offset  *int
	OrderBy []OrderKey
}

// Segments splits a dotted path into its identifiers.
func Segments(path string) []string {
	return strings.Split(path, ".")
}

// Equal reports structural equality of two queries.
func (q *Query) Equal(o *Query) bool {
	if q == nil || o == nil {
		return q == o
	}
	if len(q.Groups) != len(o.Groups) || len(q.OrderBy) != len(o.OrderBy) {
		return false
	}
	if !intPtrEqual(q.Limit, o.Limit) || !intPtrEqual(q.Offset, o.Offset) {
		return false
	}
	for i := range q.OrderBy {
		if q.OrderBy[i] != o.OrderBy[i] {
			return false
		}
	}
	for i := range q.Groups {
		if !nodeEqual(q.Groups[i], o.Groups[i]) {
			return false
		}
	}
	return true
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func nodeEqual(a, b Node) bool {
	switch an := a.(type) {
	case *Group:
		bn, ok := b.(*Group)
		if !ok || an.Op != bn.Op || len(an.Children) != len(bn.Children) {
			return false
		}
		for i := range an.Children {
			if !nodeEqual(an.Children[i], bn.Children[i]) {
				return false
			}
		}
		return true
	case *Condition:
		bn, ok := b.(*Condition)
		if !ok {
			return false
		}
		return an.Field == bn.Field && an.Operator == bn.Operator && an.Value.Equal(bn.Value)
	}
	return false
}

// Walk visits every node of the query depth-first, left to right.
// Returning false from fn stops the walk.
func (q *Query) Walk(fn func(Node) bool) {
	for _, g := range q.Groups {
		if !walkNode(g, fn) {
			return
		}
	}
}

func walkNode(n Node, fn func(Node) bool) bool {
	if !fn(n) {
		return false
	}
	if g, ok := n.(*Group); ok {
		for _, c := range g.Children {
			if !walkNode(c, fn) {
				return false
			}
		}
	}
	return true
}

// Conditions collects every leaf condition in traversal order.
func (q *Query) Conditions() []*Condition {
	var out []*Condition
	q.Walk(func(n Node) bool {
		if c, ok := n.(*Condition); ok {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Wire format, see the query document schema: groups carry a
// "group_operator" (default and) and a "conditions" array whose entries
// are either nested groups or leaf conditions.

type wireQuery struct {
	Groups  []json.RawMessage `json:"groups"`
	Limit   *int              `json:"limit,omitempty"`
	Offset  *int              `json:"offset,omitempty"`
	OrderBy []string          `json:"order_by,omitempty"`
}

type wireGroup struct {
	Operator   string            `json:"group_operator,omitempty"`
	Conditions []json.RawMessage `json:"conditions"`
}

type wireCondition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    *Value `json:"value,omitempty"`
}

// MarshalJSON renders the query in the wire document shape.
func (q *Query) MarshalJSON() ([]byte, error) {
	wire := wireQuery{Limit: q.Limit, Offset: q.Offset}
	for _, g := range q.Groups {
		raw, err := marshalGroup(g)
		if err != nil {
			return nil, err
		}
		wire.Groups = append(wire.Groups, raw)
	}
	for _, k := range q.OrderBy {
		wire.OrderBy = append(wire.OrderBy, k.String())
	}
	return json.Marshal(wire)
}

func marshalGroup(g *Group) (json.RawMessage, error) {
	wire := wireGroup{Operator: string(g.Op)}
	for _, child := range g.Children {
		var (
			raw json.RawMessage
			err error
		)
		switch n := child.(type) {
		case *Group:
			raw, err = marshalGroup(n)
		case *Condition:
			raw, err = marshalCondition(n)
		default:
			err = fmt.Errorf("unknown node type %T", child)
		}
		if err != nil {
			return nil, err
		}
		wire.Conditions = append(wire.Conditions, raw)
	}
	return json.Marshal(wire)
}

func marshalCondition(c *Condition) (json.RawMessage, error) {
	wire := wireCondition{Field: c.Field, Operator: c.Operator}
	if !c.Value.IsMissing() {
		v := c.Value
		wire.Value = &v
	}
	return json.Marshal(wire)
}

// UnmarshalJSON parses the wire document shape.
func (q *Query) UnmarshalJSON(data []byte) error {
	var wire wireQuery
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("invalid query document: %w", err)
	}
	parsed := Query{Limit: wire.Limit, Offset: wire.Offset}
	for _, raw := range wire.Groups {
		g, err := unmarshalGroup(raw)
		if err != nil {
			return err
		}
		parsed.Groups = append(parsed.Groups, g)
	}
	for _, s := range wire.OrderBy {
		parsed.OrderBy = append(parsed.OrderBy, ParseOrderKey(s))
	}
	*q = parsed
	return nil
}

func unmarshalGroup(data json.RawMessage) (*Group, error) {
	var wire wireGroup
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("invalid group: %w", err)
	}
	op := OpAnd
	if wire.Operator != "" {
		op = GroupOp(strings.ToLower(wire.Operator))
	}
	switch op {
	case OpAnd, OpOr, OpNot:
	default:
		return nil, fmt.Errorf("invalid group operator %q", wire.Operator)
	}
	g := &Group{Op: op}
	for _, raw := range wire.Conditions {
		node, err := unmarshalNode(raw)
		if err != nil {
			return nil, err
		}
		g.Children = append(g.Children, node)
	}
	return g, nil
}

func unmarshalNode(data json.RawMessage) (Node, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("invalid node: %w", err)
	}
	if _, isLeaf := probe["field"]; isLeaf {
		var wire wireCondition
		if err := json.Unmarshal(data, &wire); err != nil {
			return nil, fmt.Errorf("invalid condition: %w", err)
		}
		c := &Condition{Field: wire.Field, Operator: wire.Operator}
		switch {
		case wire.Value != nil:
			c.Value = *wire.Value
		case hasKey(probe, "value"):
			// An explicit JSON null is a null value, not an absent one.
			c.Value = Null()
		}
		return c, nil
	}
	return unmarshalGroup(data)
}

func hasKey(probe map[string]json.RawMessage, key string) bool {
	_, ok := probe[key]
	return ok
}

// ParseQuery decodes a wire query document.
func ParseQuery(data []byte) (*Query, error) {
	var q Query
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, err
	}
	return &q, nil
}
