package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxhq/searchq/core"
)

func TestAccessScalar(t *testing.T) {
	rec := core.Record{"status": "active"}
	assert.Equal(t, []any{"active"}, Access(rec, []string{"status"}))
}

func TestAccessNested(t *testing.T) {
	rec := core.Record{
		"profile": map[string]any{
			"address": map[string]any{"city": "NY"},
		},
	}
	assert.Equal(t, []any{"NY"}, Access(rec, []string{"profile", "address", "city"}))
}

func TestAccessListTraversal(t *testing.T) {
	rec := core.Record{
		"users": []any{
			map[string]any{"name": "Alice"},
			map[string]any{"name": "Bob"},
		},
	}
	assert.Equal(t, []any{"Alice", "Bob"}, Access(rec, []string{"users", "name"}))
}

func TestAccessMissing(t *testing.T) {
	rec := core.Record{"status": "active"}
	assert.Nil(t, Access(rec, []string{"priority"}))
	assert.Nil(t, Access(rec, []string{"status", "deeper"}))
}

func TestAccessPartialLists(t *testing.T) {
	// Only some elements carry the attribute; the others are skipped.
	rec := core.Record{
		"items": []any{
			map[string]any{"sku": "a"},
			map[string]any{"name": "b"},
		},
	}
	assert.Equal(t, []any{"a"}, Access(rec, []string{"items", "sku"}))
}

func TestAccessTerminalList(t *testing.T) {
	rec := core.Record{"tags": []any{"infra", "urgent"}}
	got := Access(rec, []string{"tags"})
	// The terminal list is returned as-is; operators flatten it.
	assert.Equal(t, []any{[]any{"infra", "urgent"}}, got)
}

func TestFlatten(t *testing.T) {
	assert.Equal(t, []any{1, 2}, Flatten([]any{1, 2}))
	assert.Equal(t, []any{"x"}, Flatten("x"))
	assert.Equal(t, []any{nil}, Flatten(nil))
	assert.Equal(t, []any{1, 2}, Flatten([]int{1, 2}))
}
