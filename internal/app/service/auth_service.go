package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smartcart/smartcart-backend/config"
	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/internal/app/repository"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	appRedis "github.com/smartcart/smartcart-backend/pkg/redis"
	"github.com/smartcart/smartcart-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrUsernameExists     = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
)

const welcomeMessage = "Welcome to SmartCart! Start shopping for fresh groceries and pharmacy essentials."

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Phone    string
}

type AuthService interface {
	Register(input RegisterInput) (*model.User, *util.TokenPair, error)
	Login(email, password string) (*model.User, *util.TokenPair, error)
	Logout(ctx context.Context, token string, userID uint) error
	RefreshToken(refreshToken string) (*util.TokenPair, error)
	GetProfile(userID uint) (*model.User, error)
	UpdateProfile(userID uint, phone string) (*model.User, error)
}

type authService struct {
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
	auditService     AuditService
	jwtConfig        config.JWTConfig
}

func NewAuthService(
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
	auditService AuditService,
	jwtConfig config.JWTConfig,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		auditService:     auditService,
		jwtConfig:        jwtConfig,
	}
}

func (s *authService) Register(input RegisterInput) (*model.User, *util.TokenPair, error) {
	logger.Info("Registering new user", map[string]interface{}{
		"username": input.Username,
		"email":    input.Email,
	})

	if _, err := s.userRepo.FindByEmail(input.Email); err == nil {
		return nil, nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	if _, err := s.userRepo.FindByUsername(input.Username); err == nil {
		return nil, nil, ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	passwordHash, err := util.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, nil)
		return nil, nil, err
	}

	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
		Phone:        input.Phone,
		Role:         model.RoleUser,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, nil, err
	}

	// Welcome notification failure must not break registration.
	if err := s.notificationRepo.Create(model.NewNotification(user.ID, welcomeMessage)); err != nil {
		logger.Error("Failed to create welcome notification", err, map[string]interface{}{
			"user_id": user.ID,
		})
	}

	s.auditService.Log(&user.ID, AuditActionRegister, fmt.Sprintf("user %q registered", user.Username))

	tokens, err := util.GenerateTokenPair(
		user.ID, user.Email, string(user.Role),
		s.jwtConfig.Secret, s.jwtConfig.AccessTokenExpiry, s.jwtConfig.RefreshTokenExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, tokens, nil
}

func (s *authService) Login(email, password string) (*model.User, *util.TokenPair, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.auditService.Log(nil, AuditActionLoginFailed, fmt.Sprintf("unknown email %q", email))
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: wrong password", map[string]interface{}{
			"user_id": user.ID,
		})
		s.auditService.Log(&user.ID, AuditActionLoginFailed, "wrong password")
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := util.GenerateTokenPair(
		user.ID, user.Email, string(user.Role),
		s.jwtConfig.Secret, s.jwtConfig.AccessTokenExpiry, s.jwtConfig.RefreshTokenExpiry,
	)
	if err != nil {
		return nil, nil, err
	}

	s.auditService.Log(&user.ID, AuditActionLogin, "login successful")

	logger.Info("User logged in", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, tokens, nil
}

// Logout blacklists the current access token for its remaining lifetime.
func (s *authService) Logout(ctx context.Context, token string, userID uint) error {
	if appRedis.GetClient() != nil {
		if err := appRedis.BlacklistToken(ctx, token, s.jwtConfig.AccessTokenExpiry); err != nil {
			return err
		}
	}

	s.auditService.Log(&userID, AuditActionLogout, "logout")

	logger.Info("User logged out", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

func (s *authService) RefreshToken(refreshToken string) (*util.TokenPair, error) {
	claims, err := util.ValidateToken(refreshToken, s.jwtConfig.Secret)
	if err != nil {
		return nil, err
	}

	// Re-read the user so role changes take effect on refresh.
	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return util.GenerateTokenPair(
		user.ID, user.Email, string(user.Role),
		s.jwtConfig.Secret, s.jwtConfig.AccessTokenExpiry, s.jwtConfig.RefreshTokenExpiry,
	)
}

func (s *authService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) UpdateProfile(userID uint, phone string) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.Phone = phone
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
