package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalrelay/src/model"
)

func TestDialector(t *testing.T) {
	assert.Equal(t, "postgres", Dialector("postgres://u:p@localhost/db").Name())
	assert.Equal(t, "postgres", Dialector("POSTGRESQL://u:p@localhost/db").Name())
	assert.Equal(t, "sqlite", Dialector("file::memory:").Name())
}

func TestOpenMigratesSQLite(t *testing.T) {
	db, err := Open("file::memory:?cache=shared", 1)
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable(&model.TradeEvent{}))
	assert.True(t, db.Migrator().HasTable(&model.WebhookAlert{}))
	assert.True(t, db.Migrator().HasIndex(&model.TradeEvent{}, "Ticker"))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestInitMainDBDisabled(t *testing.T) {
	t.Setenv("ENABLE_DB", "false")
	MainDB = nil

	require.NoError(t, InitMainDB())
	assert.Nil(t, MainDB)
	assert.NoError(t, Close())
}
