package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

func TestNewDBTracingPlugin_Defaults(t *testing.T) {
	p := NewDBTracingPlugin(DBTracingConfig{}, nil)
	assert.Equal(t, 200*time.Millisecond, p.config.SlowQueryThresh)
	assert.NotNil(t, p.logger)
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	rec := useRecorder(t)
	db := openSQLite(t)

	require.NoError(t, NewDBTracingPlugin(DBTracingConfig{Enabled: false}, nil).Register(db))
	require.NoError(t, db.WithContext(context.Background()).Create(&tracedRow{Name: "a"}).Error)

	assert.Empty(t, rec.Ended())
}

func TestDBTracingPlugin_RecordsStatementSpans(t *testing.T) {
	rec := useRecorder(t)
	db := openSQLite(t)

	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, DBName: "crm"}, nil)
	require.NoError(t, plugin.Register(db))

	ctx, parent := StartSpan(context.Background(), "test")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "a"}).Error)

	var got tracedRow
	require.NoError(t, db.WithContext(ctx).First(&got).Error)
	parent.End()

	assert.Equal(t, "a", got.Name)
	assert.GreaterOrEqual(t, len(rec.Ended()), 3)
}
