package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snippetvault/snippetvault/internal/models"
)

func TestOpenDefaultsToSQLite(t *testing.T) {
	db, err := Open(Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, Close(db))
	})

	require.NoError(t, Ping(db))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported database driver")
}

func TestOpenAndMigrateCreatesSchema(t *testing.T) {
	db, err := OpenAndMigrate(Config{Driver: "sqlite"})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, Close(db))
	})

	require.True(t, db.Migrator().HasTable(&models.Snippet{}))
	require.True(t, db.Migrator().HasTable(&models.AuditLog{}))

	var count int64
	require.NoError(t, db.Model(&models.Snippet{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestPingNilHandle(t *testing.T) {
	require.Error(t, Ping(nil))
}

func TestCloseNilHandle(t *testing.T) {
	require.NoError(t, Close(nil))
}
