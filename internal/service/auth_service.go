package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"hospital-equipment-tracker/internal/models"
	"hospital-equipment-tracker/internal/repository"
	"hospital-equipment-tracker/pkg/utils"

	"go.uber.org/zap"
)

type AuthService struct {
	userRepo *repository.UserRepository
	audit    auditor
	log      *zap.Logger
}

func NewAuthService(userRepo *repository.UserRepository, auditRepo *repository.AuditRepository, log *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		audit:    auditor{repo: auditRepo, log: log},
		log:      log,
	}
}

// LoginResponse represents the response structure for login
type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(username, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindUserByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !utils.ComparePassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	resp, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	s.audit.record(user.ID, "user_login", "User %s logged in", username)
	return resp, nil
}

// RefreshAccessToken generates a new access token from a refresh token
func (s *AuthService) RefreshAccessToken(refreshToken string) (string, error) {
	token, err := s.userRepo.FindRefreshTokenByHash(utils.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("failed to load refresh token: %w", err)
	}

	if time.Now().After(token.ExpiresAt) {
		return "", fmt.Errorf("%w: refresh token expired", ErrInvalidToken)
	}

	accessToken, err := utils.GenerateAccessToken(token.User.ID, token.User.Role)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return accessToken, nil
}

// Logout revokes a refresh token
func (s *AuthService) Logout(refreshToken string) error {
	if err := s.userRepo.RevokeRefreshTokenByHash(utils.HashRefreshToken(refreshToken)); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Register bootstraps the administrator account. It only succeeds while no
// user exists; later accounts are created by an administrator.
func (s *AuthService) Register(in RegisterInput) (*LoginResponse, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	// fail fast before paying for bcrypt; CreateFirstUser has the final say
	count, err := s.userRepo.CountUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil, ErrRegistrationClosed
	}

	passwordHash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     in.Username,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
	}
	created, err := s.userRepo.CreateFirstUser(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if !created {
		return nil, ErrRegistrationClosed
	}

	resp, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	s.audit.record(user.ID, "user_registration", "User %s registered as %s", user.Username, user.Role)
	s.log.Info("Administrator registered", zap.String("username", user.Username))

	return resp, nil
}

func (s *AuthService) issueTokens(user *models.User) (*LoginResponse, error) {
	accessToken, err := utils.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	// Only the hash is stored
	refreshTokenModel := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: utils.HashRefreshToken(refreshToken),
		ExpiresAt: time.Now().Add(utils.GetRefreshTokenExpiry()),
	}
	if err := s.userRepo.CreateRefreshToken(refreshTokenModel); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role,
		},
	}, nil
}
