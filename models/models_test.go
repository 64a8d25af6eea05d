package models

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(All()...))
	return db
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "tasks", Task{}.TableName())
	assert.Equal(t, "users", User{}.TableName())
	assert.Equal(t, "profiles", Profile{}.TableName())
	assert.Equal(t, "addresses", Address{}.TableName())
	assert.Equal(t, "nodes", Node{}.TableName())
}

func TestSeed(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Seed(db))

	var taskCount, userCount, nodeCount int64
	db.Model(&Task{}).Count(&taskCount)
	db.Model(&User{}).Count(&userCount)
	db.Model(&Node{}).Count(&nodeCount)
	assert.Equal(t, int64(3), taskCount)
	assert.Equal(t, int64(3), userCount)
	assert.Equal(t, int64(3), nodeCount)

	var task Task
	require.NoError(t, db.Preload("Owner").Where("status = ?", "active").Order("priority desc").First(&task).Error)
	require.NotNil(t, task.Owner)
	assert.Equal(t, "Alice", task.Owner.Name)

	var leaf Node
	require.NoError(t, db.Preload("Parent").Where("name = ?", "leaf").First(&leaf).Error)
	require.NotNil(t, leaf.Parent)
	assert.Equal(t, "A", leaf.Parent.Name)
}
