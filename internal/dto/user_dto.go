package dto

import (
	"time"

	"github.com/Ayush3323/crm-backend/internal/model"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CreateUserRequest leaves the required fields unvalidated by tag so the
// service can report them together with a single message.
type CreateUserRequest struct {
	Name       string  `json:"name"       validate:"omitempty,max=50"`
	Email      string  `json:"email"      validate:"omitempty,email"`
	Password   string  `json:"password"   validate:"omitempty,min=6,max=255"`
	Role       string  `json:"role"       validate:"omitempty,oneof=Admin 'Sub Admin' Manager Employee"`
	Status     string  `json:"status"     validate:"omitempty,oneof=Active Inactive Suspended"`
	Department *string `json:"department"`
	Phone      string  `json:"phone"`
	Address    string  `json:"address"`
	Avatar     string  `json:"avatar"`
}

type UpdateUserRequest struct {
	Name             *string          `json:"name"     validate:"omitempty,min=1,max=50"`
	Email            *string          `json:"email"    validate:"omitempty,email"`
	Password         *string          `json:"password" validate:"omitempty,min=6,max=255"`
	Role             *string          `json:"role"     validate:"omitempty,oneof=Admin 'Sub Admin' Manager Employee"`
	Status           *string          `json:"status"   validate:"omitempty,oneof=Active Inactive Suspended"`
	Department       Nullable[string] `json:"department"`
	Phone            *string          `json:"phone"`
	Address          *string          `json:"address"`
	Avatar           *string          `json:"avatar"`
	EmailVerified    *bool            `json:"emailVerified"`
	TwoFactorEnabled *bool            `json:"twoFactorEnabled"`
}

type UserFilter struct {
	Role       string `form:"role"`
	Department string `form:"department"`
	Status     string `form:"status"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UserResponse struct {
	ID               uint       `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Role             string     `json:"role"`
	Status           string     `json:"status"`
	Avatar           string     `json:"avatar"`
	Department       *string    `json:"department"`
	Phone            string     `json:"phone"`
	Address          string     `json:"address"`
	LastLogin        *time.Time `json:"lastLogin"`
	EmailVerified    bool       `json:"emailVerified"`
	TwoFactorEnabled bool       `json:"twoFactorEnabled"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// UserSummary is the joined form of a user inside another record.
type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

type ResetPasswordResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	NewPassword string `json:"newPassword"`
}

type UserStatsResponse struct {
	TotalUsers      int64            `json:"totalUsers"`
	RoleStats       map[string]int64 `json:"roleStats"`
	StatusStats     map[string]int64 `json:"statusStats"`
	DepartmentStats map[string]int64 `json:"departmentStats"`
	TasksPerUser    map[string]int64 `json:"tasksPerUser"`
}

func MapUser(u *model.User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Role:             u.Role,
		Status:           u.Status,
		Avatar:           u.Avatar,
		Department:       u.Department,
		Phone:            u.Phone,
		Address:          u.Address,
		LastLogin:        u.LastLogin,
		EmailVerified:    u.EmailVerified,
		TwoFactorEnabled: u.TwoFactorEnabled,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func MapUsers(users []model.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = MapUser(&users[i])
	}
	return out
}

// MapUserSummary returns nil for an unloaded association.
func MapUserSummary(u *model.User, withContact bool) *UserSummary {
	if u == nil || u.ID == 0 {
		return nil
	}
	s := &UserSummary{ID: u.ID, Name: u.Name}
	if withContact {
		s.Email = u.Email
		s.Role = u.Role
	}
	return s
}
