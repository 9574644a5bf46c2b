package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/auth"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/pkg/utils"
)

// AuthService signs users up and in
type AuthService interface {
	Signup(ctx context.Context, email, password, userType string) (*entity.Session, error)
	Login(ctx context.Context, email, password string) (*entity.Session, error)
	Authenticate(token string) (*entity.Session, error)
}

// AuthServiceConfig configures AuthService
type AuthServiceConfig struct {
	// AllowAdminSignup lets the public signup endpoint create Admin accounts
	AllowAdminSignup bool
}

type authServiceImpl struct {
	userRepo port.UserRepository
	jwt      *auth.JWTManager
	config   AuthServiceConfig
	logger   Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo port.UserRepository, jwt *auth.JWTManager, config AuthServiceConfig, logger Logger) AuthService {
	return &authServiceImpl{
		userRepo: userRepo,
		jwt:      jwt,
		config:   config,
		logger:   logger,
	}
}

// Signup registers a user and returns a signed-in session
func (s *authServiceImpl) Signup(ctx context.Context, email, password, userType string) (*entity.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := utils.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrBadRequest, err)
	}
	if userType == "" {
		userType = entity.UserTypeEmployee
	}
	if userType != entity.UserTypeEmployee && userType != entity.UserTypeAdmin {
		return nil, fmt.Errorf("%w: unknown user type %q", port.ErrBadRequest, userType)
	}
	if userType == entity.UserTypeAdmin && !s.config.AllowAdminSignup {
		return nil, fmt.Errorf("admin signup is disabled: %w", ErrForbidden)
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrBadRequest, err)
	}

	user := &entity.User{
		ID:           uuid.NewString(),
		Email:        email,
		Type:         userType,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", "email", email, "error", err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("User signed up", "email", email, "type", userType)
	return s.session(user)
}

// Login checks the credentials and returns a session carrying a fresh token
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*entity.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		s.logger.Warn("Login rejected", "email", email)
		return nil, ErrInvalidCredentials
	}

	return s.session(user)
}

// Authenticate turns a bearer token back into a session
func (s *authServiceImpl) Authenticate(token string) (*entity.Session, error) {
	claims, err := s.jwt.Validate(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrUnauthorized, err)
	}
	session := claims.Session(token)
	return &session, nil
}

func (s *authServiceImpl) session(user *entity.User) (*entity.Session, error) {
	token, err := s.jwt.Generate(user)
	if err != nil {
		return nil, err
	}
	return &entity.Session{Type: user.Type, Email: user.Email, Token: token}, nil
}
