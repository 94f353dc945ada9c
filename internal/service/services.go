package service

import (
	"github.com/dom/socialnet/internal/config"
	"github.com/dom/socialnet/internal/repository"
)

type Services struct {
	Token  *TokenService
	User   *UserService
	Follow *FollowService
	Post   *PostService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, publisher PostPublisher) *Services {
	return &Services{
		Token:  NewTokenService(repos.User, repos.Token, cfg),
		User:   NewUserService(repos.User),
		Follow: NewFollowService(repos.User, repos.Follow),
		Post:   NewPostService(repos.Post, repos.User, repos.Follow, publisher),
	}
}
