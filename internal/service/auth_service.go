package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yourorg/itemvault/internal/domain"
	"github.com/yourorg/itemvault/internal/security/auth"
)

// AuthService orchestrates registration and login over the credential store,
// password hasher, and token manager. It holds no mutable state; every
// request runs independently.
type AuthService struct {
	userRepo domain.UserRepository
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenManager
	logger   *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo domain.UserRepository,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenManager,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger,
	}
}

// LoginResult represents a successful login. The password hash is never part
// of any result.
type LoginResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Register creates a new user account. Registration issues no token; login is
// a separate step.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = NormalizeEmail(email)

	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email, and password are required", domain.ErrValidation)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// duplicate errors pass through untouched so the handler can name
		// the violated field
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login authenticates by username or email and mints a token. A nonexistent
// identifier and a wrong password produce the same ErrInvalidCredentials so
// account existence cannot be probed.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)

	if identifier == "" || password == "" {
		return nil, fmt.Errorf("%w: identifier and password are required", domain.ErrValidation)
	}

	var user *domain.User
	var err error
	if strings.Contains(identifier, "@") {
		user, err = s.userRepo.GetByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.userRepo.GetByUsername(ctx, identifier)
	}
	if err != nil || user == nil {
		if err != nil && err != domain.ErrNotFound {
			s.logger.Error("login lookup failed", slog.String("error", err.Error()))
		}
		return nil, domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Info("login failed", slog.String("user_id", user.ID))
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Username, user.Email)
	if err != nil {
		s.logger.Error("failed to sign token",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return &LoginResult{
		Token:    token,
		Username: user.Username,
		Email:    user.Email,
	}, nil
}

// NormalizeEmail lowercases and trims an email address. Email comparison is
// case-insensitive everywhere, so the normalized form is what gets stored and
// looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
