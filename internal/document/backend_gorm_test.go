package document

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupBlobTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestGormBackendRequiresConnection(t *testing.T) {
	_, err := NewGormBackend(nil)
	require.Error(t, err)
}

func TestGormBackendMigratesBlobsTable(t *testing.T) {
	db := setupBlobTestDB(t)

	_, err := NewGormBackend(db)
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable("blobs"))
}

func TestGormBackendUpsertsUnderKey(t *testing.T) {
	backend, err := NewGormBackend(setupBlobTestDB(t))
	require.NoError(t, err)
	ctx := context.Background()

	_, ok, err := backend.Read(ctx, KeyState)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, backend.Write(ctx, KeyState, []byte(`{"v":1}`)))
	require.NoError(t, backend.Write(ctx, KeyState, []byte(`{"v":2}`)))

	data, ok, err := backend.Read(ctx, KeyState)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"v":2}`, string(data))

	var count int64
	require.NoError(t, backend.(*gormBackend).db.Model(&blobRecord{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGormBackendKeysAreIndependent(t *testing.T) {
	backend, err := NewGormBackend(setupBlobTestDB(t))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, backend.Write(ctx, KeyState, []byte("state")))
	require.NoError(t, backend.Write(ctx, KeySession, []byte("session")))

	require.NoError(t, backend.Delete(ctx, KeySession))

	_, ok, err := backend.Read(ctx, KeySession)
	require.NoError(t, err)
	assert.False(t, ok)

	data, ok, err := backend.Read(ctx, KeyState)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "state", string(data))
}
