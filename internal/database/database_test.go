package database_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"securemail/internal/config"
	"securemail/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	return db
}

func TestMigrate_SQLiteSchemaAndSeed(t *testing.T) {
	db := openSQLite(t)

	require.NoError(t, database.Migrate(context.Background(), db, config.DriverSQLite, zap.NewNop()))

	var users, messages int64
	require.NoError(t, db.Table("users").Count(&users).Error)
	require.NoError(t, db.Table("messages").Count(&messages).Error)
	assert.Equal(t, int64(2), users)
	assert.Equal(t, int64(1), messages)

	// a second run has nothing left to apply
	assert.NoError(t, database.Migrate(context.Background(), db, config.DriverSQLite, zap.NewNop()))
}

func TestMigrate_LogsThroughZap(t *testing.T) {
	db := openSQLite(t)
	core, logs := observer.New(zap.InfoLevel)

	require.NoError(t, database.Migrate(context.Background(), db, config.DriverSQLite, zap.New(core)))

	migrateLogs := logs.FilterLoggerName("migrate").All()
	require.NotEmpty(t, migrateLogs)
	var applied bool
	for _, entry := range migrateLogs {
		if strings.Contains(entry.Message, "00001_schema.sql") {
			applied = true
		}
	}
	assert.True(t, applied, "schema migration should be reported")
}

func TestOpen_SQLiteEnforcesForeignKeys(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, database.Migrate(context.Background(), db, config.DriverSQLite, zap.NewNop()))

	var enabled int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)

	err := db.Exec("INSERT INTO messages (sender_id, recipient_id, subject, body) VALUES (999, 1, 's', 'b')").Error
	assert.Error(t, err)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := database.Open("oracle", "dsn")
	assert.Error(t, err)
}
