package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderBasic(t *testing.T) {
	q, err := NewBuilder().
		Where("status", "=", "active").
		Where("priority", ">", 5).
		OrderBy("-created_at").
		Limit(10).
		Build()
	require.NoError(t, err)

	require.Len(t, q.Groups, 1)
	assert.Len(t, q.Groups[0].Children, 2)
	require.NotNil(t, q.Limit)
	assert.Equal(t, 10, *q.Limit)
	assert.Equal(t, []OrderKey{{Path: "created_at", Desc: true}}, q.OrderBy)
}

func TestBuilderNestedGroups(t *testing.T) {
	q, err := NewBuilder().
		Group(OpOr, func(g *GroupBuilder) {
			g.Group(OpAnd, func(inner *GroupBuilder) {
				inner.Where("status", "=", "active")
				inner.Where("priority", ">", 5)
			})
			g.Where("urgent", "=", true)
		}).
		Build()
	require.NoError(t, err)

	top := q.Groups[0]
	require.Len(t, top.Children, 1)
	or, ok := top.Children[0].(*Group)
	require.True(t, ok)
	assert.Equal(t, OpOr, or.Op)
	assert.Len(t, or.Children, 2)
}

func TestBuilderUnaryAndNot(t *testing.T) {
	q, err := NewBuilder().
		WhereUnary("deleted_at", "is_null").
		Not(func(g *GroupBuilder) {
			g.Where("status", "=", "archived")
		}).
		Build()
	require.NoError(t, err)

	children := q.Groups[0].Children
	require.Len(t, children, 2)
	cond := children[0].(*Condition)
	assert.True(t, cond.Value.IsMissing())
	not := children[1].(*Group)
	assert.Equal(t, OpNot, not.Op)
	assert.Len(t, not.Children, 1)
}

func TestBuilderRetainsNoReference(t *testing.T) {
	b := NewBuilder().Where("a", "=", 1)
	first, err := b.Build()
	require.NoError(t, err)

	second, err := b.Where("b", "=", 2).Build()
	require.NoError(t, err)

	assert.Len(t, first.Groups[0].Children, 1)
	assert.Len(t, second.Groups[0].Children, 1)
}

func TestBuilderRoundTrip(t *testing.T) {
	q, err := NewBuilder().
		Group(OpOr, func(g *GroupBuilder) {
			g.Where("status", "=", "active")
			g.Where("priority", "between", []any{1, 5})
		}).
		Where("owner", "in", []string{"alice", "bob"}).
		OrderBy("name", "-priority").
		Limit(20).
		Offset(5).
		Build()
	require.NoError(t, err)

	data, err := json.Marshal(q)
	require.NoError(t, err)
	back, err := ParseQuery(data)
	require.NoError(t, err)
	assert.True(t, q.Equal(back), "round trip changed the tree: %s", data)
}

func TestBuilderConversionError(t *testing.T) {
	_, err := NewBuilder().Where("x", "=", struct{ A int }{1}).Build()
	assert.Error(t, err)
}
