package admin

import (
	"context"
	"fmt"

	"github.com/cloudyhq/cloudy-server/internal/config"
	"github.com/cloudyhq/cloudy-server/internal/models"
	"github.com/cloudyhq/cloudy-server/internal/pkg/logger"
	"github.com/cloudyhq/cloudy-server/internal/pkg/utils"
	"github.com/cloudyhq/cloudy-server/internal/pkg/xerr"
	"github.com/cloudyhq/cloudy-server/internal/repositories"
	"go.uber.org/zap"
)

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresInSeconds int64  `json:"expires_in_seconds"`
}

type AuthService interface {
	Register(ctx context.Context, username, password, email string) (*models.User, error)
	// Login accepts the username or the email address.
	Login(ctx context.Context, login, password string) (*TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type authService struct {
	userRepo repositories.UserRepository
	cfg      *config.JWTConfig
}

var _ AuthService = (*authService)(nil)

func NewAuthService(userRepo repositories.UserRepository, cfg *config.JWTConfig) AuthService {
	return &authService{userRepo: userRepo, cfg: cfg}
}

func (s *authService) Register(ctx context.Context, username, password, email string) (*models.User, error) {
	if username == "" || password == "" || email == "" {
		return nil, fmt.Errorf("%w: username, password and email are required", xerr.ErrInvalidParams)
	}

	taken, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, xerr.ErrUserAlreadyExists
	}
	taken, err = s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, xerr.ErrEmailAlreadyExists
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Email:        email,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("User registered", zap.Uint64("userID", user.ID), zap.String("username", username))
	return user, nil
}

func (s *authService) Login(ctx context.Context, login, password string) (*TokenPair, error) {
	user, err := s.userRepo.FindByLogin(ctx, login)
	if err != nil {
		// Do not reveal whether the account exists.
		return nil, xerr.ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, xerr.ErrInvalidCredentials
	}
	return s.issueTokens(user)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := utils.ParseToken(refreshToken, s.cfg.SecretKey)
	if err != nil {
		return nil, xerr.ErrTokenInvalid
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, xerr.ErrTokenInvalid
	}
	return s.issueTokens(user)
}

func (s *authService) issueTokens(user *models.User) (*TokenPair, error) {
	access, err := utils.GenerateToken(user.ID, user.Username, user.Email, s.cfg.SecretKey, s.cfg.Issuer, s.cfg.ExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refresh, err := utils.GenerateToken(user.ID, user.Username, user.Email, s.cfg.SecretKey, s.cfg.Issuer, s.cfg.RefreshExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		ExpiresInSeconds: int64(s.cfg.ExpiresIn.Seconds()),
	}, nil
}
