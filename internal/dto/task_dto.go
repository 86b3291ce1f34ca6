package dto

import (
	"time"

	"github.com/Ayush3323/crm-backend/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CreateTaskRequest carries the required fields untagged; the service rejects
// any missing one with a single message.
type CreateTaskRequest struct {
	Title            string           `json:"title"            validate:"omitempty,max=100"`
	Description      string           `json:"description"`
	AssignedTo       Ref              `json:"assignedTo"`
	Employees        []Ref            `json:"employees"`
	Deadline         *time.Time       `json:"deadline"`
	Priority         string           `json:"priority"         validate:"omitempty,oneof=Low Medium High Critical"`
	Machine          Ref              `json:"machine"`
	Category         string           `json:"category"         validate:"omitempty,oneof=Production Maintenance 'Quality Check' Training Other"`
	EstimatedHours   *decimal.Decimal `json:"estimatedHours"   validate:"omitempty,min=0"`
	Tags             []string         `json:"tags"`
	Location         string           `json:"location"`
	IsRecurring      bool             `json:"isRecurring"`
	RecurringPattern string           `json:"recurringPattern" validate:"omitempty,oneof=Daily Weekly Monthly Yearly"`
}

// UpdateTaskRequest holds a partial update. Nil fields are left unchanged.
type UpdateTaskRequest struct {
	Title            *string          `json:"title"            validate:"omitempty,min=1,max=100"`
	Description      *string          `json:"description"      validate:"omitempty,min=1"`
	AssignedTo       *Ref             `json:"assignedTo"`
	Employees        *[]Ref           `json:"employees"`
	Deadline         *time.Time       `json:"deadline"`
	Priority         *string          `json:"priority"         validate:"omitempty,oneof=Low Medium High Critical"`
	Status           *string          `json:"status"           validate:"omitempty,oneof=Pending 'In Progress' Completed Cancelled"`
	Progress         *int             `json:"progress"         validate:"omitempty,min=0,max=100"`
	Machine          Nullable[Ref]    `json:"machine"`
	Category         *string          `json:"category"         validate:"omitempty,oneof=Production Maintenance 'Quality Check' Training Other"`
	EstimatedHours   *decimal.Decimal `json:"estimatedHours"   validate:"omitempty,min=0"`
	ActualHours      *decimal.Decimal `json:"actualHours"      validate:"omitempty,min=0"`
	Tags             *[]string        `json:"tags"`
	Location         *string          `json:"location"`
	IsRecurring      *bool            `json:"isRecurring"`
	RecurringPattern *string          `json:"recurringPattern" validate:"omitempty,oneof=Daily Weekly Monthly Yearly"`
}

// Retain clears every field whose JSON name keep rejects.
func (r *UpdateTaskRequest) Retain(keep func(field string) bool) {
	drop := func(name string) bool { return !keep(name) }
	if drop("title") {
		r.Title = nil
	}
	if drop("description") {
		r.Description = nil
	}
	if drop("assignedTo") {
		r.AssignedTo = nil
	}
	if drop("employees") {
		r.Employees = nil
	}
	if drop("deadline") {
		r.Deadline = nil
	}
	if drop("priority") {
		r.Priority = nil
	}
	if drop("status") {
		r.Status = nil
	}
	if drop("progress") {
		r.Progress = nil
	}
	if drop("machine") {
		r.Machine = Nullable[Ref]{}
	}
	if drop("category") {
		r.Category = nil
	}
	if drop("estimatedHours") {
		r.EstimatedHours = nil
	}
	if drop("actualHours") {
		r.ActualHours = nil
	}
	if drop("tags") {
		r.Tags = nil
	}
	if drop("location") {
		r.Location = nil
	}
	if drop("isRecurring") {
		r.IsRecurring = nil
	}
	if drop("recurringPattern") {
		r.RecurringPattern = nil
	}
}

type ProgressRequest struct {
	Progress *int `json:"progress"`
}

type CommentRequest struct {
	Comment string `json:"comment"`
}

type TaskFilter struct {
	Status     string `form:"status"`
	Priority   string `form:"priority"`
	AssignedTo uint   `form:"assignedTo"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TaskResponse struct {
	ID               uint                `json:"id"`
	Title            string              `json:"title"`
	Description      string              `json:"description"`
	AssignedTo       uint                `json:"assignedTo"`
	Employees        []uint              `json:"employees"`
	Deadline         time.Time           `json:"deadline"`
	Priority         string              `json:"priority"`
	Status           string              `json:"status"`
	Progress         int                 `json:"progress"`
	Machine          *uint               `json:"machine"`
	Category         string              `json:"category"`
	Comments         []model.TaskComment `json:"comments"`
	EstimatedHours   decimal.Decimal     `json:"estimatedHours"`
	ActualHours      decimal.Decimal     `json:"actualHours"`
	Tags             []string            `json:"tags"`
	Location         string              `json:"location"`
	IsRecurring      bool                `json:"isRecurring"`
	RecurringPattern string              `json:"recurringPattern"`
	CreatedBy        *uint               `json:"createdBy"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`

	AssignedUser   *UserSummary    `json:"assignedUser,omitempty"`
	CreatedByUser  *UserSummary    `json:"createdByUser,omitempty"`
	MachineDetails *MachineSummary `json:"machineDetails,omitempty"`
}

func MapTask(t *model.Task) TaskResponse {
	employees := []uint(t.Employees)
	if employees == nil {
		employees = []uint{}
	}
	comments := []model.TaskComment(t.Comments)
	if comments == nil {
		comments = []model.TaskComment{}
	}
	tags := []string(t.Tags)
	if tags == nil {
		tags = []string{}
	}
	return TaskResponse{
		ID:               t.ID,
		Title:            t.Title,
		Description:      t.Description,
		AssignedTo:       t.AssignedTo,
		Employees:        employees,
		Deadline:         t.Deadline,
		Priority:         t.Priority,
		Status:           t.Status,
		Progress:         t.Progress,
		Machine:          t.MachineID,
		Category:         t.Category,
		Comments:         comments,
		EstimatedHours:   t.EstimatedHours,
		ActualHours:      t.ActualHours,
		Tags:             tags,
		Location:         t.Location,
		IsRecurring:      t.IsRecurring,
		RecurringPattern: t.RecurringPattern,
		CreatedBy:        t.CreatedBy,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
		AssignedUser:     MapUserSummary(t.AssignedUser, true),
		CreatedByUser:    MapUserSummary(t.CreatedByUser, true),
		MachineDetails:   MapMachineSummary(t.MachineDetails),
	}
}

func MapTasks(ts []model.Task) []TaskResponse {
	out := make([]TaskResponse, len(ts))
	for i := range ts {
		out[i] = MapTask(&ts[i])
	}
	return out
}
