package db

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMigrateCreatesSchema(t *testing.T) {
	session, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(session))

	for _, table := range []string{"tasks", "users", "profiles", "addresses", "nodes"} {
		assert.True(t, session.Migrator().HasTable(table), table)
	}
}

func TestIsURL(t *testing.T) {
	assert.True(t, isURL("libsql://db.example.io"))
	assert.True(t, isURL("https://db.example.io"))
	assert.False(t, isURL("./search.db"))
	assert.False(t, isURL(":memory:"))
}
