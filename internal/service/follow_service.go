package service

import (
	"context"
	"errors"

	"github.com/dom/socialnet/internal/domain"
	"github.com/dom/socialnet/internal/pagination"
	"github.com/dom/socialnet/internal/repository"
	"gorm.io/gorm"
)

// FollowService mutates and queries the directed follow graph. Every mutation
// is made on behalf of an explicit caller.
type FollowService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

func NewFollowService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *FollowService {
	return &FollowService{
		userRepo:   userRepo,
		followRepo: followRepo,
	}
}

func (s *FollowService) Follow(ctx context.Context, caller *domain.User, targetID uint) error {
	if err := s.ensureUser(ctx, targetID); err != nil {
		return err
	}

	following, err := s.followRepo.Exists(ctx, caller.ID, targetID)
	if err != nil {
		return err
	}
	if following {
		return ErrAlreadyFollowing
	}

	if err := s.followRepo.Create(ctx, caller.ID, targetID); err != nil {
		// lost a race with a concurrent follow of the same user
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyFollowing
		}
		return err
	}
	return nil
}

func (s *FollowService) Unfollow(ctx context.Context, caller *domain.User, targetID uint) error {
	if err := s.ensureUser(ctx, targetID); err != nil {
		return err
	}

	deleted, err := s.followRepo.Delete(ctx, caller.ID, targetID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFollowing
	}
	return nil
}

func (s *FollowService) IsFollowing(ctx context.Context, caller *domain.User, targetID uint) (bool, error) {
	if err := s.ensureUser(ctx, targetID); err != nil {
		return false, err
	}
	return s.followRepo.Exists(ctx, caller.ID, targetID)
}

// ListFollowing pages through the accounts userID follows.
func (s *FollowService) ListFollowing(ctx context.Context, userID uint, req pagination.PageRequest) (pagination.Page[*domain.User], error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return pagination.Page[*domain.User]{}, err
	}
	return pagination.Paginate(ctx, req, func(ctx context.Context, start, count int) ([]*domain.User, error) {
		return s.followRepo.ListFollowees(ctx, userID, start, count)
	})
}

// ListFollowers pages through the accounts following userID.
func (s *FollowService) ListFollowers(ctx context.Context, userID uint, req pagination.PageRequest) (pagination.Page[*domain.User], error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return pagination.Page[*domain.User]{}, err
	}
	return pagination.Paginate(ctx, req, func(ctx context.Context, start, count int) ([]*domain.User, error) {
		return s.followRepo.ListFollowers(ctx, userID, start, count)
	})
}

func (s *FollowService) ensureUser(ctx context.Context, id uint) error {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
