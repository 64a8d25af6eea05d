package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/searchq/registry"
)

func cond(field, op string, v Value) *Condition {
	return &Condition{Field: field, Operator: op, Value: v}
}

func singleGroup(children ...Node) *Query {
	return &Query{Groups: []*Group{{Op: OpAnd, Children: children}}}
}

func TestValidateAccepts(t *testing.T) {
	v := NewValidator(registry.Memory)
	tests := []struct {
		name string
		q    *Query
	}{
		{"simple comparison", singleGroup(cond("status", "=", String("active")))},
		{"unary operator", singleGroup(&Condition{Field: "deleted_at", Operator: "is_null"})},
		{"in list", singleGroup(cond("status", "in", List(String("a"), String("b"))))},
		{"between", singleGroup(cond("priority", "between", List(Number(1), Number(10))))},
		{"nested not", singleGroup(&Group{Op: OpNot, Children: []Node{
			cond("status", "=", String("archived")),
		}})},
		{"dotted path", singleGroup(cond("profile.address.city", "=", String("NY")))},
		{"empty query", &Query{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, v.Validate(tt.q))
		})
	}
}

func TestValidateRejects(t *testing.T) {
	neg := -1
	deep := "a.b.c.d.e.f.g.h.i"
	v := NewValidator(registry.Memory)
	tests := []struct {
		name string
		q    *Query
		code int
	}{
		{"unknown operator", singleGroup(cond("a", "equals", String("x"))), CodeUnknownOperator},
		{"sql-only operator on memory", singleGroup(cond("a", "fts", String("hello"))), CodeOperatorNotSupported},
		{"value on unary", singleGroup(cond("a", "is_null", String("x"))), CodeValueShapeMismatch},
		{"scalar operator with list", singleGroup(cond("a", "=", List(Number(1)))), CodeValueShapeMismatch},
		{"missing value on binary", singleGroup(&Condition{Field: "a", Operator: "="}), CodeValueShapeMismatch},
		{"between descending", singleGroup(cond("a", "between", List(Number(10), Number(1)))), CodeValueShapeMismatch},
		{"between mixed kinds", singleGroup(cond("a", "between", List(Number(1), String("x")))), CodeValueShapeMismatch},
		{"empty group", singleGroup(&Group{Op: OpAnd}), CodeEmptyGroup},
		{"not with two children", singleGroup(&Group{Op: OpNot, Children: []Node{
			cond("a", "=", Number(1)), cond("b", "=", Number(2)),
		}}), CodeInvalidNot},
		{"negative limit", &Query{Limit: &neg}, CodeInvalidPaging},
		{"negative offset", &Query{Offset: &neg}, CodeInvalidPaging},
		{"path too deep", singleGroup(cond(deep, "=", Number(1))), CodeDepthExceeded},
		{"malformed path", singleGroup(cond("user..name", "=", Number(1))), CodeMalformedPath},
		{"digit-leading segment", singleGroup(cond("user.1name", "=", Number(1))), CodeMalformedPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.q)
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.code, verr.Code)
		})
	}
}

func TestValidateFuzzySuggestion(t *testing.T) {
	v := NewValidator(registry.Memory)

	err := v.Validate(singleGroup(cond("a", "equals", String("x"))))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "=", verr.Suggestion)

	err = v.Validate(singleGroup(cond("a", "betwen", List(Number(1), Number(2)))))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "between", verr.Suggestion)
}

func TestValidateSQLBackendAllowsExtensions(t *testing.T) {
	v := NewValidator(registry.SQL)
	q := singleGroup(
		cond("attrs", "jsonb_has_key", String("env")),
		cond("title", "fts", String("rotate")),
	)
	assert.NoError(t, v.Validate(q))
}

func TestValidateDepthLimitOverride(t *testing.T) {
	v := NewValidator(registry.Memory)
	v.MaxDepth = 2
	err := v.Validate(singleGroup(cond("a.b.c", "=", Number(1))))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeDepthExceeded, verr.Code)
}

func TestValidatorNeverPanics(t *testing.T) {
	v := NewValidator(registry.Memory)
	// Defective trees must produce typed errors, not panics.
	queries := []*Query{
		nil,
		{Groups: []*Group{nil}},
		singleGroup(nil),
	}
	for _, q := range queries {
		assert.NotPanics(t, func() { _ = v.Validate(q) })
	}
}
