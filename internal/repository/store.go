package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound 查询目标不存在
	ErrNotFound = errors.New("record not found")
	// ErrUnknownCounter 不允许的计数器列
	ErrUnknownCounter = errors.New("unknown counter")
)

// Store 聚合各仓储，Commit 内的写入要么全部生效要么全部回滚
type Store interface {
	Users() UserRepository
	Tweets() TweetRepository
	Favorites() FavoriteRepository
	Follows() FollowRepository
	Notifications() NotificationRepository
	Commit(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct{ db *gorm.DB }

func NewStore(db *gorm.DB) Store { return &gormStore{db: db} }

func (s *gormStore) Users() UserRepository                 { return NewUserRepository(s.db) }
func (s *gormStore) Tweets() TweetRepository               { return NewTweetRepository(s.db) }
func (s *gormStore) Favorites() FavoriteRepository         { return NewFavoriteRepository(s.db) }
func (s *gormStore) Follows() FollowRepository             { return NewFollowRepository(s.db) }
func (s *gormStore) Notifications() NotificationRepository { return NewNotificationRepository(s.db) }

// Commit 在单个事务内执行 fn；fn 返回错误则整体回滚
func (s *gormStore) Commit(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
