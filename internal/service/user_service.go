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

type UserInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
}

// UserUpdateInput changes the role, the password or both. Empty fields are
// left alone.
type UserUpdateInput struct {
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
	Password string `json:"password" validate:"omitempty,min=6,max=72"`
}

type UserView struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserView(u *models.User) UserView {
	return UserView{ID: u.ID, Username: u.Username, Role: u.Role, CreatedAt: u.CreatedAt}
}

// UserService manages accounts on behalf of an administrator
type UserService struct {
	userRepo *repository.UserRepository
	audit    auditor
	log      *zap.Logger
}

func NewUserService(userRepo *repository.UserRepository, auditRepo *repository.AuditRepository, log *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		audit:    auditor{repo: auditRepo, log: log},
		log:      log,
	}
}

func (s *UserService) List() ([]UserView, error) {
	users, err := s.userRepo.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, newUserView(&users[i]))
	}
	return views, nil
}

func (s *UserService) Create(in UserInput, actorID uint) (*UserView, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = models.RoleUser
	}

	if _, err := s.userRepo.FindUserByUsername(in.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	passwordHash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     in.Username,
		PasswordHash: passwordHash,
		Role:         in.Role,
	}
	if err := s.userRepo.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.audit.record(actorID, "user_create", "Created user %s as %s", user.Username, user.Role)
	s.log.Info("User created", zap.String("username", user.Username), zap.String("role", user.Role))

	view := newUserView(user)
	return &view, nil
}

// Update changes a user's role or password. A new password revokes the
// user's refresh tokens. The last administrator cannot be demoted.
func (s *UserService) Update(id uint, in UserUpdateInput, actorID uint) (*UserView, error) {
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Role == "" && in.Password == "" {
		return nil, invalidInput("role or password is required")
	}

	user, err := s.userRepo.FindUserByID(id)
	if err != nil {
		return nil, err
	}

	var changes []string
	if in.Role != "" && in.Role != user.Role {
		if user.Role == models.RoleAdmin {
			if err := s.keepAnAdmin(); err != nil {
				return nil, err
			}
		}
		user.Role = in.Role
		changes = append(changes, "role "+in.Role)
	}
	if in.Password != "" {
		passwordHash, err := utils.HashPassword(in.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = passwordHash
		changes = append(changes, "password")
	}

	if len(changes) > 0 {
		if err := s.userRepo.UpdateUser(user); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
		if in.Password != "" {
			if err := s.userRepo.RevokeUserRefreshTokens(user.ID); err != nil {
				return nil, fmt.Errorf("failed to revoke refresh tokens: %w", err)
			}
		}
		s.audit.record(actorID, "user_update", "Updated user %s: %s", user.Username, strings.Join(changes, ", "))
	}

	view := newUserView(user)
	return &view, nil
}

func (s *UserService) Delete(id uint, actorID uint) error {
	if id == actorID {
		return ErrSelfDelete
	}
	user, err := s.userRepo.FindUserByID(id)
	if err != nil {
		return err
	}
	if user.Role == models.RoleAdmin {
		if err := s.keepAnAdmin(); err != nil {
			return err
		}
	}

	if err := s.userRepo.DeleteUser(id); err != nil {
		return err
	}
	s.audit.record(actorID, "user_delete", "Deleted user %s", user.Username)
	s.log.Info("User deleted", zap.String("username", user.Username))
	return nil
}

// keepAnAdmin fails when removing one administrator would leave none
func (s *UserService) keepAnAdmin() error {
	admins, err := s.userRepo.CountAdmins()
	if err != nil {
		return fmt.Errorf("failed to count administrators: %w", err)
	}
	if admins <= 1 {
		return ErrLastAdmin
	}
	return nil
}
