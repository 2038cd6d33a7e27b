package service

import (
	"context"

	"github.com/d60-Lab/twitter-core/internal/repository"
)

// RelationshipService 关系链服务，Follow 关系的唯一写入方
type RelationshipService interface {
	Follow(ctx context.Context, fromUserID, toUserID string) error
	Unfollow(ctx context.Context, fromUserID, toUserID string) error
	ListFollowing(ctx context.Context, userID string, page, pageSize int) ([]string, error)
	ListFollowers(ctx context.Context, userID string, page, pageSize int) ([]string, error)
}

type relationshipService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

func NewRelationshipService(userRepo repository.UserRepository, followRepo repository.FollowRepository) RelationshipService {
	return &relationshipService{userRepo: userRepo, followRepo: followRepo}
}

func (s *relationshipService) Follow(ctx context.Context, fromUserID, toUserID string) error {
	if fromUserID == toUserID {
		return ErrFollowSelf
	}
	if _, err := s.userRepo.FindByID(ctx, toUserID); err != nil {
		return storeErr(notFound("user", err))
	}
	return storeErr(s.followRepo.Create(ctx, fromUserID, toUserID))
}

func (s *relationshipService) Unfollow(ctx context.Context, fromUserID, toUserID string) error {
	return storeErr(s.followRepo.Delete(ctx, fromUserID, toUserID))
}

func (s *relationshipService) ListFollowing(ctx context.Context, userID string, page, pageSize int) ([]string, error) {
	offset, limit := pageBounds(page, pageSize)
	items, err := s.followRepo.ListFollowings(ctx, userID, offset, limit)
	if err != nil {
		return nil, storeErr(err)
	}
	res := make([]string, len(items))
	for i, it := range items {
		res[i] = it.FolloweeID
	}
	return res, nil
}

func (s *relationshipService) ListFollowers(ctx context.Context, userID string, page, pageSize int) ([]string, error) {
	offset, limit := pageBounds(page, pageSize)
	items, err := s.followRepo.ListFollowers(ctx, userID, offset, limit)
	if err != nil {
		return nil, storeErr(err)
	}
	res := make([]string, len(items))
	for i, it := range items {
		res[i] = it.FollowerID
	}
	return res, nil
}

func pageBounds(page, pageSize int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return (page - 1) * pageSize, pageSize
}
