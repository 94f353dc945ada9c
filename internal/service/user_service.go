package service

import (
	"context"
	"errors"
	"time"

	"github.com/dom/socialnet/internal/domain"
	"github.com/dom/socialnet/internal/pagination"
	"github.com/dom/socialnet/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,max=150,username"`
	Email    string `json:"email" validate:"required,max=254,email"`
	Password string `json:"password" validate:"required,max=128"`
	AboutMe  string `json:"about_me" validate:"max=128"`
}

// UpdateProfileInput holds a partial update; nil fields are left unchanged.
type UpdateProfileInput struct {
	Username *string `json:"username" validate:"omitnil,min=1,max=150,username"`
	Email    *string `json:"email" validate:"omitnil,min=1,max=254,email"`
	Password *string `json:"password" validate:"omitnil,min=1,max=128"`
	AboutMe  *string `json:"about_me" validate:"omitnil,max=128"`
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	verr := validateInput(input)
	if err := s.checkUnique(ctx, verr, &input.Username, &input.Email, 0); err != nil {
		return nil, err
	}
	if !verr.empty() {
		return nil, verr
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		AboutMe:      input.AboutMe,
		LastSeen:     now,
		MemberSince:  now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			verr.Add("username", "A user with that username or email already exists.")
			return nil, verr
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) checkUnique(ctx context.Context, verr *ValidationError, username, email *string, exceptID uint) error {
	if username != nil && *username != "" {
		taken, err := s.userRepo.UsernameTaken(ctx, *username, exceptID)
		if err != nil {
			return err
		}
		if taken {
			verr.Add("username", "A user with that username already exists.")
		}
	}
	if email != nil && *email != "" {
		taken, err := s.userRepo.EmailTaken(ctx, *email, exceptID)
		if err != nil {
			return err
		}
		if taken {
			verr.Add("email", "This field must be unique.")
		}
	}
	return nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, req pagination.PageRequest) (pagination.Page[*domain.User], error) {
	return pagination.Paginate(ctx, req, s.userRepo.List)
}

// UpdateProfile applies a partial update to the caller's own account.
func (s *UserService) UpdateProfile(ctx context.Context, caller *domain.User, input UpdateProfileInput) (*domain.User, error) {
	verr := validateInput(input)
	if err := s.checkUnique(ctx, verr, input.Username, input.Email, caller.ID); err != nil {
		return nil, err
	}
	if !verr.empty() {
		return nil, verr
	}

	user, err := s.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.AboutMe != nil {
		user.AboutMe = *input.AboutMe
	}
	if input.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hashedPassword)
	}
	if err := user.Validate(); err != nil {
		verr.Add("about_me", err.Error())
		return nil, verr
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			verr.Add("username", "A user with that username or email already exists.")
			return nil, verr
		}
		return nil, err
	}
	return user, nil
}

// Touch records that the user was just seen.
func (s *UserService) Touch(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	if err := s.userRepo.TouchLastSeen(ctx, user.ID, now); err != nil {
		return err
	}
	user.LastSeen = now
	return nil
}
