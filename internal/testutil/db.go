// Package testutil 提供测试用的内存数据库与种子数据
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/twitter-core/internal/model"
	"github.com/d60-Lab/twitter-core/pkg/database"
)

// NewDB 打开一个独立的 sqlite 内存库并建表。
// 单连接保证事务串行，同时让共享缓存库在测试期间一直存在。
func NewDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		tb.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// NewFileDB 打开临时目录下的 sqlite 文件库，允许多个连接并发写。
// 写锁冲突由 busy timeout 等待，用于验证并发更新不丢失。
func NewFileDB(tb testing.TB, maxConns int) *gorm.DB {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "twitter.db")
	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_journal_mode=WAL", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		tb.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(maxConns)
	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// SeedUser 插入一个用户，id 与用户名相同便于断言
func SeedUser(tb testing.TB, db *gorm.DB, username string) *model.User {
	tb.Helper()
	u := &model.User{ID: username, Username: username, Email: username + "@example.com"}
	if err := db.WithContext(context.Background()).Create(u).Error; err != nil {
		tb.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

// SeedFollow 让 follower 关注 followee
func SeedFollow(tb testing.TB, db *gorm.DB, followerID, followeeID string) {
	tb.Helper()
	f := &model.Follow{ID: uuid.NewString(), FollowerID: followerID, FolloweeID: followeeID}
	if err := db.Create(f).Error; err != nil {
		tb.Fatalf("seed follow: %v", err)
	}
}

// CountRows 统计某个模型的行数
func CountRows(tb testing.TB, db *gorm.DB, m interface{}) int64 {
	tb.Helper()
	var n int64
	if err := db.Model(m).Count(&n).Error; err != nil {
		tb.Fatalf("count: %v", err)
	}
	return n
}
