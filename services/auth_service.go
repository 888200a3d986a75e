package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/prediction-league/cache"
	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"github.com/Dosada05/prediction-league/utils"
)

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)
}

type RegisterInput struct {
	Username    string  `json:"username"`
	Phone       *string `json:"phone,omitempty"`
	Password    string  `json:"password"`
	IsSuperuser bool    `json:"is_superuser"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authService struct {
	userRepo repositories.UserRepository
	cache    cache.Cache
	logger   *slog.Logger
}

func NewAuthService(userRepo repositories.UserRepository, c cache.Cache, logger *slog.Logger) AuthService {
	if c == nil {
		c = cache.NopCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		userRepo: userRepo,
		cache:    c,
		logger:   logger,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	user := &models.User{
		Username:     username,
		Phone:        input.Phone,
		PasswordHash: hashedPassword,
		IsSuperuser:  input.IsSuperuser,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserUsernameConflict):
			return nil, ErrUsernameConflict
		case errors.Is(err, repositories.ErrUserPhoneConflict):
			return nil, ErrPhoneConflict
		default:
			return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "user registered", slog.Int("user_id", user.ID), slog.Bool("is_superuser", user.IsSuperuser))
	// Новый участник должен сразу попасть в таблицу.
	cache.Invalidate(ctx, s.cache, s.logger, cache.KeyLeaderboard)
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}

	if !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, ErrAuthInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}
