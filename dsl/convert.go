package dsl

import (
	"fmt"
	"strings"
	"time"

	"github.com/oxhq/searchq/core"
)

// Parse converts a textual condition expression into a query AST. The
// resulting query carries a single top-level group; ordering and paging
// are supplied by the caller.
func Parse(input string) (*core.Query, error) {
	ast, err := dslParser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", input, err)
	}
	root, err := convertExpression(ast)
	if err != nil {
		return nil, err
	}
	return &core.Query{Groups: []*core.Group{root}}, nil
}

func convertExpression(e *Expression) (*core.Group, error) {
	if len(e.Or) == 1 {
		return convertAnd(e.Or[0])
	}
	g := &core.Group{Op: core.OpOr}
	for _, a := range e.Or {
		child, err := convertAnd(a)
		if err != nil {
			return nil, err
		}
		g.Children = append(g.Children, collapse(child))
	}
	return g, nil
}

func convertAnd(a *AndExpr) (*core.Group, error) {
	g := &core.Group{Op: core.OpAnd}
	for _, u := range a.And {
		child, err := convertUnary(u)
		if err != nil {
			return nil, err
		}
		g.Children = append(g.Children, child)
	}
	return g, nil
}

func convertUnary(u *UnaryExpr) (core.Node, error) {
	if u.Not != nil {
		inner, err := convertUnary(u.Not)
		if err != nil {
			return nil, err
		}
		return &core.Group{Op: core.OpNot, Children: []core.Node{inner}}, nil
	}
	if u.Primary.Sub != nil {
		g, err := convertExpression(u.Primary.Sub)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	return convertCond(u.Primary.Cond)
}

// collapse unwraps single-child AND groups so "a or b" does not nest
// each side in its own group.
func collapse(g *core.Group) core.Node {
	if g.Op == core.OpAnd && len(g.Children) == 1 {
		return g.Children[0]
	}
	return g
}

func convertCond(c *Cond) (core.Node, error) {
	rhs := c.Rhs
	switch {
	case rhs.Is != nil:
		tag := "is_null"
		switch {
		case rhs.Is.What == "empty" && rhs.Is.Not:
			tag = "is_not_empty"
		case rhs.Is.What == "empty":
			tag = "is_empty"
		case rhs.Is.Not:
			tag = "is_not_null"
		}
		return &core.Condition{Field: c.Path, Operator: tag}, nil
	case rhs.In != nil:
		return listCondition(c.Path, "in", rhs.In)
	case rhs.NotIn != nil:
		return listCondition(c.Path, "not_in", rhs.NotIn)
	case rhs.Between != nil:
		return pairCondition(c.Path, "between", rhs.Between)
	case rhs.NotBetween != nil:
		return pairCondition(c.Path, "not_between", rhs.NotBetween)
	case rhs.NotLike != nil:
		return &core.Condition{Field: c.Path, Operator: "not_like", Value: literalValue(rhs.NotLike)}, nil
	case rhs.Word != nil:
		return &core.Condition{Field: c.Path, Operator: strings.ToLower(rhs.Word.Op), Value: literalValue(rhs.Word.Value)}, nil
	case rhs.Sym != nil:
		return &core.Condition{Field: c.Path, Operator: rhs.Sym.Op, Value: literalValue(rhs.Sym.Value)}, nil
	}
	return nil, fmt.Errorf("condition on %q has no operator", c.Path)
}

func listCondition(path, tag string, list *ValueList) (core.Node, error) {
	values := make([]core.Value, len(list.Values))
	for i, l := range list.Values {
		values[i] = literalValue(l)
	}
	return &core.Condition{Field: path, Operator: tag, Value: core.List(values...)}, nil
}

func pairCondition(path, tag string, pair *Pair) (core.Node, error) {
	return &core.Condition{
		Field:    path,
		Operator: tag,
		Value:    core.Range(literalValue(pair.Lo), literalValue(pair.Hi)),
	}, nil
}

func literalValue(l *Literal) core.Value {
	switch {
	case l.Str != nil:
		if ts, err := time.Parse(time.RFC3339, *l.Str); err == nil {
			return core.Time(ts)
		}
		return core.String(*l.Str)
	case l.Float != nil:
		return core.Number(*l.Float)
	case l.Int != nil:
		return core.Number(float64(*l.Int))
	case l.True:
		return core.Bool(true)
	case l.False:
		return core.Bool(false)
	case l.Null:
		return core.Null()
	}
	return core.Null()
}
