package admin

import (
	"context"

	"github.com/cloudyhq/cloudy-server/internal/models"
	"github.com/cloudyhq/cloudy-server/internal/repositories"
)

type UserService interface {
	GetProfile(ctx context.Context, userID uint64) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
}

var _ UserService = (*userService)(nil)

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetProfile(ctx context.Context, userID uint64) (*models.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}
