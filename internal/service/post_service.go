package service

import (
	"context"
	"errors"
	"time"

	"github.com/dom/socialnet/internal/domain"
	"github.com/dom/socialnet/internal/pagination"
	"github.com/dom/socialnet/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// PostPublisher delivers a newly created post to connected recipients.
type PostPublisher interface {
	PublishPost(post *domain.Post, recipientIDs []uint)
}

type PostService struct {
	postRepo   repository.PostRepository
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	publisher  PostPublisher
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository, followRepo repository.FollowRepository, publisher PostPublisher) *PostService {
	return &PostService{
		postRepo:   postRepo,
		userRepo:   userRepo,
		followRepo: followRepo,
		publisher:  publisher,
	}
}

type CreatePostInput struct {
	Title   string `json:"title" validate:"required,max=50"`
	Content string `json:"content" validate:"required"`
}

// UpdatePostInput holds a partial update; nil fields are left unchanged.
type UpdatePostInput struct {
	Title   *string `json:"title" validate:"omitnil,min=1,max=50"`
	Content *string `json:"content" validate:"omitnil,min=1"`
}

func (s *PostService) Create(ctx context.Context, author *domain.User, input CreatePostInput) (*domain.Post, error) {
	if verr := validateInput(input); !verr.empty() {
		return nil, verr
	}

	post := &domain.Post{
		Title:     input.Title,
		Content:   input.Content,
		CreatedAt: time.Now().UTC(),
		AuthorID:  author.ID,
	}
	if err := post.Validate(); err != nil {
		return nil, postValidationError(err)
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	post.Author = author

	s.publish(ctx, post)
	return post, nil
}

func (s *PostService) publish(ctx context.Context, post *domain.Post) {
	if s.publisher == nil {
		return
	}
	recipients, err := s.followRepo.FollowerIDs(ctx, post.AuthorID)
	if err != nil {
		log.Warn().Err(err).Uint("post_id", post.ID).Msg("failed to load followers for feed")
		return
	}
	if len(recipients) > 0 {
		s.publisher.PublishPost(post, recipients)
	}
}

func (s *PostService) Get(ctx context.Context, id uint) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *PostService) List(ctx context.Context, req pagination.PageRequest) (pagination.Page[*domain.Post], error) {
	return pagination.Paginate(ctx, req, s.postRepo.List)
}

// ListByUsername pages through the posts written by username.
func (s *PostService) ListByUsername(ctx context.Context, username string, req pagination.PageRequest) (pagination.Page[*domain.Post], error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pagination.Page[*domain.Post]{}, ErrUserNotFound
		}
		return pagination.Page[*domain.Post]{}, err
	}
	return pagination.Paginate(ctx, req, func(ctx context.Context, start, count int) ([]*domain.Post, error) {
		return s.postRepo.ListByAuthor(ctx, author.ID, start, count)
	})
}

// Update applies a partial edit. Only the author may edit a post.
func (s *PostService) Update(ctx context.Context, caller *domain.User, id uint, input UpdatePostInput) (*domain.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.OwnedBy(caller.ID) {
		return nil, ErrNotPostAuthor
	}

	if verr := validateInput(input); !verr.empty() {
		return nil, verr
	}
	if input.Title != nil {
		post.Title = *input.Title
	}
	if input.Content != nil {
		post.Content = *input.Content
	}
	if err := post.Validate(); err != nil {
		return nil, postValidationError(err)
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post. Only the author may delete it.
func (s *PostService) Delete(ctx context.Context, caller *domain.User, id uint) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !post.OwnedBy(caller.ID) {
		return ErrNotPostAuthor
	}
	return s.postRepo.Delete(ctx, id)
}

func postValidationError(err error) *ValidationError {
	verr := &ValidationError{}
	switch {
	case errors.Is(err, domain.ErrEmptyTitle), errors.Is(err, domain.ErrTitleTooLong):
		verr.Add("title", err.Error())
	case errors.Is(err, domain.ErrEmptyContent):
		verr.Add("content", err.Error())
	default:
		verr.Add("non_field_errors", err.Error())
	}
	return verr
}
