// Package testutil 提供测试辅助工具
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/ashwinyue/travacasa/internal/database"
	"github.com/ashwinyue/travacasa/internal/model"
	"github.com/ashwinyue/travacasa/internal/seed"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// FixtureBaseTime 示例房源的起始创建时间，序号越大越新
var FixtureBaseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// NewTestDB 创建已迁移的内存 sqlite 数据库
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// :memory: 数据库按连接隔离，只保留一个连接
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// FixtureListings 返回一组示例房源
func FixtureListings() []*model.Listing {
	return seed.Listings(FixtureBaseTime)
}

// SeedListings 写入示例房源并返回
func SeedListings(t *testing.T, db *gorm.DB) []*model.Listing {
	t.Helper()

	listings := FixtureListings()
	for _, l := range listings {
		if err := db.WithContext(context.Background()).Create(l).Error; err != nil {
			t.Fatalf("seed listing %q: %v", l.Title, err)
		}
	}
	return listings
}
