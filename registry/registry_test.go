package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	op, ok := Lookup("between")
	require.True(t, ok)
	assert.Equal(t, FamilySet, op.Family)
	assert.Equal(t, Binary, op.Arity)
	assert.Equal(t, KindRange, op.Value)
	assert.True(t, op.Supports(Memory))
	assert.True(t, op.Supports(SQL))

	_, ok = Lookup("nope")
	assert.False(t, ok)
}

func TestBackendSupport(t *testing.T) {
	tests := []struct {
		tag    string
		memory bool
		sql    bool
	}{
		{"=", true, true},
		{"iregex", true, true},
		{"is_not_empty", true, true},
		{"jsonb_contains", false, true},
		{"dwithin", false, true},
		{"bbox_intersects", false, true},
		{"fts", false, true},
		{"fts_phrase", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.memory, Supported(tt.tag, Memory))
			assert.Equal(t, tt.sql, Supported(tt.tag, SQL))
		})
	}
}

func TestUnaryOperatorsForbidValues(t *testing.T) {
	for _, tag := range []string{"is_null", "is_not_null", "is_empty", "is_not_empty"} {
		op, ok := Lookup(tag)
		require.True(t, ok, tag)
		assert.Equal(t, Unary, op.Arity, tag)
		assert.Equal(t, KindNone, op.Value, tag)
	}
}

func TestTags(t *testing.T) {
	memTags := Tags(Memory)
	sqlTags := Tags(SQL)
	assert.Less(t, len(memTags), len(sqlTags), "sql superset carries the extension families")
	assert.Contains(t, sqlTags, "jsonb_path_exists")
	assert.NotContains(t, memTags, "jsonb_path_exists")
	// Every memory operator is also a SQL operator.
	for _, tag := range memTags {
		assert.Contains(t, sqlTags, tag)
	}
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"equals", "="},
		{"gte", ">="},
		{"betwen", "between"},
		{"lke", "like"},
		{"contians", "contains"},
		{"is_nul", "is_null"},
		{"completely_wrong", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Suggest(tt.input))
		})
	}
}

func TestTableIsComplete(t *testing.T) {
	families := map[string]int{}
	for _, op := range All() {
		families[op.Family]++
	}
	assert.Equal(t, 6, families[FamilyComparison])
	assert.Equal(t, 5, families[FamilySet])
	assert.Equal(t, 11, families[FamilyString])
	assert.Equal(t, 4, families[FamilyNull])
	assert.Equal(t, 6, families[FamilyJSONB])
	assert.Equal(t, 11, families[FamilyGeometry])
	assert.Equal(t, 2, families[FamilyFullText])
}
