package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Ayush3323/crm-backend/internal/apierror"
	"github.com/Ayush3323/crm-backend/internal/authz"
	"github.com/Ayush3323/crm-backend/internal/dto"
	"github.com/Ayush3323/crm-backend/internal/model"
	"github.com/Ayush3323/crm-backend/internal/repository"
	"github.com/Ayush3323/crm-backend/internal/worker"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	msgUserNotFound    = "User not found"
	msgDuplicateEmail  = "User with this email already exists"
	sentinelUnassigned = "Unassigned"
)

type UserService interface {
	List(ctx context.Context, filter dto.UserFilter) ([]dto.UserResponse, error)
	ListEmployees(ctx context.Context) ([]dto.UserResponse, error)
	Get(ctx context.Context, id uint) (*dto.UserResponse, error)
	Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	// Delete is refused while any task is assigned to the user.
	Delete(ctx context.Context, id uint) error
	// ResetPassword replaces the password with a random one and returns it.
	ResetPassword(ctx context.Context, id uint) (string, error)
	Stats(ctx context.Context) (*dto.UserStatsResponse, error)
}

type userService struct {
	users     repository.UserRepository
	tasks     repository.TaskRepository
	analytics repository.AnalyticsRepository
	notifier  Notifier
	hashCost  int
}

// NewUserService creates the user service. notifier may be nil, in which case
// no email is sent on password reset.
func NewUserService(users repository.UserRepository, tasks repository.TaskRepository, analytics repository.AnalyticsRepository, notifier Notifier) UserService {
	return &userService{users: users, tasks: tasks, analytics: analytics, notifier: notifier, hashCost: 12}
}

func (s *userService) List(ctx context.Context, filter dto.UserFilter) ([]dto.UserResponse, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.MapUsers(users), nil
}

func (s *userService) ListEmployees(ctx context.Context) ([]dto.UserResponse, error) {
	return s.List(ctx, dto.UserFilter{Role: string(authz.RoleEmployee)})
}

func (s *userService) Get(ctx context.Context, id uint) (*dto.UserResponse, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgUserNotFound)
	}
	resp := dto.MapUser(u)
	return &resp, nil
}

func (s *userService) Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	if strings.TrimSpace(req.Name) == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		return nil, apierror.Validation("Name, email, password, and role are required")
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	email := strings.ToLower(req.Email)
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apierror.Conflict(msgDuplicateEmail)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, err
	}
	dept := model.DefaultDepartment
	if req.Department != nil && *req.Department != "" {
		dept = *req.Department
	}
	status := req.Status
	if status == "" {
		status = model.UserStatusActive
	}
	u := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Status:       status,
		Avatar:       req.Avatar,
		Department:   &dept,
		Phone:        req.Phone,
		Address:      req.Address,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, conflictOnDuplicate(err, msgDuplicateEmail)
	}
	log.Info().Uint("user_id", u.ID).Str("role", u.Role).Msg("user created")
	resp := dto.MapUser(u)
	return &resp, nil
}

func (s *userService) Update(ctx context.Context, id uint, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgUserNotFound)
	}

	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := strings.ToLower(*req.Email)
		if email != u.Email {
			other, err := s.users.FindByEmail(ctx, email)
			if err == nil && other.ID != u.ID {
				return nil, apierror.Conflict(msgDuplicateEmail)
			}
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}
		u.Email = email
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.hashCost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = string(hash)
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.Status != nil {
		u.Status = *req.Status
	}
	if req.Department.Set {
		u.Department = req.Department.Value
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.Address != nil {
		u.Address = *req.Address
	}
	if req.Avatar != nil {
		u.Avatar = *req.Avatar
	}
	if req.EmailVerified != nil {
		u.EmailVerified = *req.EmailVerified
	}
	if req.TwoFactorEnabled != nil {
		u.TwoFactorEnabled = *req.TwoFactorEnabled
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, conflictOnDuplicate(err, msgDuplicateEmail)
	}
	resp := dto.MapUser(u)
	return &resp, nil
}

func (s *userService) Delete(ctx context.Context, id uint) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return notFound(err, msgUserNotFound)
	}
	n, err := s.tasks.CountByAssignee(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apierror.Conflict("Cannot delete user with assigned tasks. Please reassign tasks first.")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return notFound(err, msgUserNotFound)
	}
	log.Info().Uint("user_id", id).Msg("user deleted")
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, id uint) (string, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return "", notFound(err, msgUserNotFound)
	}
	password, err := randomPassword()
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", err
	}
	u.PasswordHash = string(hash)
	if err := s.users.Update(ctx, u); err != nil {
		return "", err
	}
	log.Info().Uint("user_id", u.ID).Msg("user password reset")

	if s.notifier != nil {
		payload := worker.EmailJobPayload{
			ToEmail: u.Email,
			Subject: "Your password has been reset",
			Body:    fmt.Sprintf("Hello %s,\n\nAn administrator reset your password. Your new password is: %s\n\nPlease change it after signing in.\n", u.Name, password),
		}
		if err := s.notifier.EnqueueEmail(ctx, payload); err != nil {
			log.Error().Err(err).Uint("user_id", u.ID).Msg("failed to enqueue password reset email")
		}
	}
	return password, nil
}

func (s *userService) Stats(ctx context.Context) (*dto.UserStatsResponse, error) {
	users, err := s.users.List(ctx, dto.UserFilter{})
	if err != nil {
		return nil, err
	}
	perAssignee, err := s.analytics.TasksPerAssignee(ctx)
	if err != nil {
		return nil, err
	}

	stats := &dto.UserStatsResponse{
		TotalUsers:      int64(len(users)),
		RoleStats:       make(map[string]int64, len(authz.Roles)),
		StatusStats:     make(map[string]int64, len(model.UserStatuses)),
		DepartmentStats: make(map[string]int64),
		TasksPerUser:    make(map[string]int64, len(perAssignee)),
	}
	for _, r := range authz.Roles {
		stats.RoleStats[string(r)] = 0
	}
	for _, st := range model.UserStatuses {
		stats.StatusStats[st] = 0
	}
	for _, u := range users {
		if _, ok := stats.RoleStats[u.Role]; ok {
			stats.RoleStats[u.Role]++
		}
		if _, ok := stats.StatusStats[u.Status]; ok {
			stats.StatusStats[u.Status]++
		}
		stats.DepartmentStats[labelOr(u.Department, sentinelUnassigned)]++
	}
	for _, a := range perAssignee {
		stats.TasksPerUser[strconv.FormatUint(uint64(a.UserID), 10)] = a.Count
	}
	return stats, nil
}

// randomPassword returns 8 random bytes as 16 hex characters.
func randomPassword() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// labelOr returns *v, or sentinel when v is nil or empty.
func labelOr(v *string, sentinel string) string {
	if v == nil || *v == "" {
		return sentinel
	}
	return *v
}
