package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// blobRecord is the single key/value table backing the sqlite driver.
type blobRecord struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Data      []byte    `gorm:"column:data;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (blobRecord) TableName() string {
	return "blobs"
}

type gormBackend struct {
	db *gorm.DB
}

// NewSQLiteBackend opens (or creates) the sqlite database at path and
// ensures the blobs table exists.
func NewSQLiteBackend(path string) (Backend, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path required")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return NewGormBackend(db)
}

// NewGormBackend wraps an existing gorm connection.
func NewGormBackend(db *gorm.DB) (Backend, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm connection required")
	}
	if err := db.AutoMigrate(&blobRecord{}); err != nil {
		return nil, fmt.Errorf("migrate blobs table: %w", err)
	}
	return &gormBackend{db: db}, nil
}

func (g *gormBackend) Read(ctx context.Context, key string) ([]byte, bool, error) {
	var record blobRecord
	err := g.db.WithContext(ctx).First(&record, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read blob %q: %w", key, err)
	}
	return record.Data, true, nil
}

func (g *gormBackend) Write(ctx context.Context, key string, data []byte) error {
	record := blobRecord{Key: key, Data: data}
	err := g.db.WithContext(ctx).Save(&record).Error
	if err != nil {
		return fmt.Errorf("write blob %q: %w", key, err)
	}
	return nil
}

func (g *gormBackend) Delete(ctx context.Context, key string) error {
	err := g.db.WithContext(ctx).Delete(&blobRecord{}, "key = ?", key).Error
	if err != nil {
		return fmt.Errorf("delete blob %q: %w", key, err)
	}
	return nil
}
