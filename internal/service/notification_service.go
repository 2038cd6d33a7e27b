package service

import (
	"context"

	"github.com/d60-Lab/twitter-core/internal/model"
	"github.com/d60-Lab/twitter-core/internal/repository"
)

// NotificationService 通知的读取与已读标记
type NotificationService interface {
	List(ctx context.Context, userID string, page, pageSize int) ([]*model.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) List(ctx context.Context, userID string, page, pageSize int) ([]*model.Notification, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	items, err := s.repo.ListByUser(ctx, userID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, storeErr(err)
	}
	return items, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.CountUnread(ctx, userID)
	return n, storeErr(err)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	return n, storeErr(err)
}
