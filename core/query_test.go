package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedDocument = `{
	"groups": [{
		"conditions": [
			{"field": "status", "operator": "=", "value": "active"},
			{"field": "priority", "operator": ">", "value": 5}
		]
	}],
	"order_by": ["-created_at"],
	"limit": 10
}`

func TestParseQueryDocument(t *testing.T) {
	q, err := ParseQuery([]byte(seedDocument))
	require.NoError(t, err)

	require.Len(t, q.Groups, 1)
	g := q.Groups[0]
	assert.Equal(t, OpAnd, g.Op, "group_operator defaults to and")
	require.Len(t, g.Children, 2)

	first, ok := g.Children[0].(*Condition)
	require.True(t, ok)
	assert.Equal(t, "status", first.Field)
	assert.Equal(t, "=", first.Operator)
	assert.Equal(t, "active", first.Value.StringVal())

	require.NotNil(t, q.Limit)
	assert.Equal(t, 10, *q.Limit)
	assert.Nil(t, q.Offset)
	require.Len(t, q.OrderBy, 1)
	assert.Equal(t, OrderKey{Path: "created_at", Desc: true}, q.OrderBy[0])
}

func TestParseNestedGroups(t *testing.T) {
	doc := `{
		"groups": [{
			"group_operator": "or",
			"conditions": [
				{"conditions": [
					{"field": "status", "operator": "=", "value": "active"},
					{"field": "priority", "operator": ">", "value": 5}
				]},
				{"field": "urgent", "operator": "=", "value": true}
			]
		}]
	}`
	q, err := ParseQuery([]byte(doc))
	require.NoError(t, err)

	g := q.Groups[0]
	assert.Equal(t, OpOr, g.Op)
	require.Len(t, g.Children, 2)
	inner, ok := g.Children[0].(*Group)
	require.True(t, ok)
	assert.Equal(t, OpAnd, inner.Op)
	assert.Len(t, inner.Children, 2)
}

func TestParseRejectsBadGroupOperator(t *testing.T) {
	_, err := ParseQuery([]byte(`{"groups":[{"group_operator":"xor","conditions":[{"field":"a","operator":"=","value":1}]}]}`))
	assert.Error(t, err)
}

func TestParseExplicitNullValue(t *testing.T) {
	q, err := ParseQuery([]byte(`{"groups":[{"conditions":[
		{"field": "owner_id", "operator": "=", "value": null},
		{"field": "deleted_at", "operator": "is_null"}
	]}]}`))
	require.NoError(t, err)

	withNull := q.Groups[0].Children[0].(*Condition)
	assert.Equal(t, KindNull, withNull.Value.Kind())
	unary := q.Groups[0].Children[1].(*Condition)
	assert.True(t, unary.Value.IsMissing())
}

func TestQueryJSONRoundTrip(t *testing.T) {
	q, err := ParseQuery([]byte(seedDocument))
	require.NoError(t, err)

	data, err := json.Marshal(q)
	require.NoError(t, err)

	back, err := ParseQuery(data)
	require.NoError(t, err)
	assert.True(t, q.Equal(back), "re-parsed query differs: %s", data)
}

func TestConditionsTraversalOrder(t *testing.T) {
	q := &Query{Groups: []*Group{
		{Op: OpAnd, Children: []Node{
			&Condition{Field: "a", Operator: "=", Value: Number(1)},
			&Group{Op: OpOr, Children: []Node{
				&Condition{Field: "b", Operator: "=", Value: Number(2)},
				&Condition{Field: "c", Operator: "=", Value: Number(3)},
			}},
		}},
		{Op: OpAnd, Children: []Node{
			&Condition{Field: "d", Operator: "=", Value: Number(4)},
		}},
	}}
	var fields []string
	for _, c := range q.Conditions() {
		fields = append(fields, c.Field)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, fields)
}

func TestOrderKeyText(t *testing.T) {
	assert.Equal(t, OrderKey{Path: "name"}, ParseOrderKey("name"))
	assert.Equal(t, OrderKey{Path: "name", Desc: true}, ParseOrderKey("-name"))
	assert.Equal(t, "-name", OrderKey{Path: "name", Desc: true}.String())
}
