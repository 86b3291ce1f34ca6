package model

import "time"

// User statuses.
const (
	UserStatusActive    = "Active"
	UserStatusInactive  = "Inactive"
	UserStatusSuspended = "Suspended"
)

// UserStatuses lists every status in display order.
var UserStatuses = []string{UserStatusActive, UserStatusInactive, UserStatusSuspended}

// DefaultDepartment is assigned to users created without one.
const DefaultDepartment = "General"

// User is a CRM account.
// Role: "Admin" | "Sub Admin" | "Manager" | "Employee" (see authz.Role).
type User struct {
	ID    uint   `gorm:"primaryKey"`
	Name  string `gorm:"size:50;not null"`
	Email string `gorm:"size:255;uniqueIndex;not null"`
	// PasswordHash is a bcrypt hash; it is never mapped into a response.
	PasswordHash     string `gorm:"column:password;not null"`
	Role             string `gorm:"type:varchar(20);not null;index"`
	Status           string `gorm:"type:varchar(20);not null"`
	Avatar           string `gorm:"not null"`
	Department       *string
	Phone            string `gorm:"not null"`
	Address          string `gorm:"not null"`
	LastLogin        *time.Time
	EmailVerified    bool `gorm:"not null"`
	TwoFactorEnabled bool `gorm:"not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
