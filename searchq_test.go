package searchq

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oxhq/searchq/core"
	"github.com/oxhq/searchq/models"
	"github.com/oxhq/searchq/providers"
	"github.com/oxhq/searchq/registry"
)

func mustQuery(t *testing.T, doc string) *core.Query {
	t.Helper()
	q, err := core.ParseQuery([]byte(doc))
	require.NoError(t, err)
	return q
}

func TestDispatchMemory(t *testing.T) {
	records := []map[string]any{
		{"status": "active", "priority": 10},
		{"status": "inactive", "priority": 20},
	}
	q := mustQuery(t, `{"groups":[{"conditions":[{"field":"status","operator":"=","value":"active"}]}]}`)
	out, err := Search(context.Background(), records, nil, q)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestDispatchSQL(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	require.NoError(t, models.Seed(db))

	q := mustQuery(t, `{"groups":[{"conditions":[{"field":"owner.name","operator":"=","value":"Alice"}]}]}`)
	out, err := Search(context.Background(), db, &models.Task{}, q)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "rotate keys", out[0]["title"])
}

func TestDispatchRejectsBackendForeignOperator(t *testing.T) {
	// SQL-only operator dispatched to the memory backend.
	q := mustQuery(t, `{"groups":[{"conditions":[{"field":"title","operator":"fts","value":"x"}]}]}`)
	_, err := Search(context.Background(), []map[string]any{{"title": "x"}}, nil, q)
	require.Error(t, err)
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, core.CodeOperatorNotSupported, verr.Code)
	assert.Contains(t, err.Error(), "memory")
}

func TestDispatchStream(t *testing.T) {
	records := []map[string]any{
		{"id": 1}, {"id": 2}, {"id": 3},
	}
	q := mustQuery(t, `{"groups":[{"conditions":[{"field":"id","operator":">","value":1}]}]}`)
	stream, err := SearchStream(context.Background(), records, nil, q)
	require.NoError(t, err)
	out, err := providers.Drain(context.Background(), stream)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestValidateEntryPoint(t *testing.T) {
	q := mustQuery(t, `{"groups":[{"conditions":[{"field":"attrs","operator":"jsonb_has_key","value":"env"}]}]}`)
	assert.Error(t, Validate(q, registry.Memory))
	assert.NoError(t, Validate(q, registry.SQL))
}

func TestWithMaxDepth(t *testing.T) {
	q := mustQuery(t, `{"groups":[{"conditions":[{"field":"a.b.c","operator":"=","value":1}]}]}`)
	_, err := Search(context.Background(), []map[string]any{{}}, nil, q, WithMaxDepth(2))
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, core.CodeDepthExceeded, verr.Code)
}
