package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Task statuses.
const (
	TaskStatusPending    = "Pending"
	TaskStatusInProgress = "In Progress"
	TaskStatusCompleted  = "Completed"
	TaskStatusCancelled  = "Cancelled"
)

// Task priorities.
const (
	PriorityLow      = "Low"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

// Task categories.
const (
	CategoryProduction   = "Production"
	CategoryMaintenance  = "Maintenance"
	CategoryQualityCheck = "Quality Check"
	CategoryTraining     = "Training"
	CategoryOther        = "Other"
)

// Recurrence patterns.
const (
	RecurDaily   = "Daily"
	RecurWeekly  = "Weekly"
	RecurMonthly = "Monthly"
	RecurYearly  = "Yearly"
)

// DefaultDeadlineOffset is added to the creation time when a task has no deadline.
const DefaultDeadlineOffset = 7 * 24 * time.Hour

// Task is a work assignment. AssignedTo is always a Manager; Employees are
// the users doing the work and hold no access rights on the task.
type Task struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:100;not null"`
	Description string `gorm:"type:text;not null"`
	AssignedTo  uint   `gorm:"not null;index:idx_tasks_assigned_status,priority:1"`
	// Employees holds user ids, each of role Employee at creation time.
	Employees        datatypes.JSONSlice[uint]        `gorm:"type:json"`
	Deadline         time.Time                        `gorm:"not null;index"`
	Priority         string                           `gorm:"type:varchar(20);not null;index"`
	Status           string                           `gorm:"type:varchar(20);not null;index:idx_tasks_assigned_status,priority:2"`
	Progress         int                              `gorm:"not null"`
	MachineID        *uint                            `gorm:"index"`
	Category         string                           `gorm:"type:varchar(20);not null"`
	Comments         datatypes.JSONSlice[TaskComment] `gorm:"type:json"`
	EstimatedHours   decimal.Decimal                  `gorm:"type:decimal(8,2);not null"`
	ActualHours      decimal.Decimal                  `gorm:"type:decimal(8,2);not null"`
	Tags             datatypes.JSONSlice[string]      `gorm:"type:json"`
	Location         string                           `gorm:"not null"`
	IsRecurring      bool                             `gorm:"not null"`
	RecurringPattern string                           `gorm:"type:varchar(10);not null"`
	CreatedBy        *uint
	CreatedAt        time.Time
	UpdatedAt        time.Time

	AssignedUser   *User    `gorm:"foreignKey:AssignedTo"`
	CreatedByUser  *User    `gorm:"foreignKey:CreatedBy;constraint:OnDelete:SET NULL"`
	MachineDetails *Machine `gorm:"foreignKey:MachineID;constraint:OnDelete:SET NULL"`
}

// TaskComment is one entry of a task's comment thread. Comments are only appended.
type TaskComment struct {
	ID        string    `json:"id"`
	User      uint      `json:"user"`
	UserName  string    `json:"userName"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// SetProgress stores p and derives the status from it: 100 completes the task,
// anything above zero puts it in progress, zero leaves the status alone.
func (t *Task) SetProgress(p int) {
	t.Progress = p
	switch {
	case p == 100:
		t.Status = TaskStatusCompleted
	case p > 0:
		t.Status = TaskStatusInProgress
	}
}
