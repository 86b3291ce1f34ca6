package service

import (
	"context"
	"strings"
	"time"

	"github.com/Ayush3323/crm-backend/internal/apierror"
	"github.com/Ayush3323/crm-backend/internal/authz"
	"github.com/Ayush3323/crm-backend/internal/dto"
	"github.com/Ayush3323/crm-backend/internal/model"
	"github.com/Ayush3323/crm-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const msgTaskNotFound = "Task not found"

type TaskService interface {
	List(ctx context.Context, filter dto.TaskFilter, page dto.Page) ([]dto.TaskResponse, int64, error)
	// ListForUser returns the tasks visible to the given user: only the tasks
	// assigned to them when they are an Employee, every task otherwise.
	ListForUser(ctx context.Context, userID uint) ([]dto.TaskResponse, error)
	ListForEmployee(ctx context.Context, employeeID uint, page dto.Page) ([]dto.TaskResponse, int64, error)
	Get(ctx context.Context, caller authz.Caller, id uint) (*dto.TaskResponse, error)
	Create(ctx context.Context, caller authz.Caller, req dto.CreateTaskRequest) (*dto.TaskResponse, error)
	Update(ctx context.Context, caller authz.Caller, id uint, req dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	UpdateProgress(ctx context.Context, caller authz.Caller, id uint, req dto.ProgressRequest) (*dto.TaskResponse, error)
	AddComment(ctx context.Context, caller authz.Caller, id uint, req dto.CommentRequest) (*dto.TaskResponse, error)
	Delete(ctx context.Context, id uint) error
	// Check runs the ownership check of action against the task without
	// changing it.
	Check(ctx context.Context, caller authz.Caller, action authz.Action, id uint) error
}

type taskService struct {
	tasks    repository.TaskRepository
	users    repository.UserRepository
	resolver *Resolver
	now      func() time.Time
}

func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository, resolver *Resolver) TaskService {
	return &taskService{tasks: tasks, users: users, resolver: resolver, now: time.Now}
}

func (s *taskService) List(ctx context.Context, filter dto.TaskFilter, page dto.Page) ([]dto.TaskResponse, int64, error) {
	tasks, total, err := s.tasks.List(ctx, filter, page)
	if err != nil {
		return nil, 0, err
	}
	return dto.MapTasks(tasks), total, nil
}

func (s *taskService) ListForUser(ctx context.Context, userID uint) ([]dto.TaskResponse, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, msgUserNotFound)
	}
	var assignedTo *uint
	if authz.Role(u.Role) == authz.RoleEmployee {
		assignedTo = &u.ID
	}
	tasks, err := s.tasks.ListAll(ctx, assignedTo)
	if err != nil {
		return nil, err
	}
	return dto.MapTasks(tasks), nil
}

func (s *taskService) ListForEmployee(ctx context.Context, employeeID uint, page dto.Page) ([]dto.TaskResponse, int64, error) {
	if _, err := s.users.FindByID(ctx, employeeID); err != nil {
		return nil, 0, notFound(err, "Employee not found")
	}
	return s.List(ctx, dto.TaskFilter{AssignedTo: employeeID}, page)
}

func (s *taskService) Get(ctx context.Context, caller authz.Caller, id uint) (*dto.TaskResponse, error) {
	t, err := s.load(ctx, &caller, authz.ReadTask, id)
	if err != nil {
		return nil, err
	}
	resp := dto.MapTask(t)
	return &resp, nil
}

// Create validates every cross-record reference before anything is written.
func (s *taskService) Create(ctx context.Context, caller authz.Caller, req dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	if err := authz.Allow(&caller, authz.CreateTask); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" ||
		req.AssignedTo.IsZero() || len(req.Employees) == 0 {
		return nil, apierror.Validation("Title, description, assignedTo (Manager), and employees are required")
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	manager, err := s.resolver.Manager(ctx, req.AssignedTo)
	if err != nil {
		return nil, err
	}
	employees, err := s.resolver.Employees(ctx, req.Employees)
	if err != nil {
		return nil, err
	}
	var machineID *uint
	if !req.Machine.IsZero() {
		m, err := s.resolver.Machine(ctx, req.Machine)
		if err != nil {
			return nil, err
		}
		machineID = &m.ID
	}

	now := s.now()
	creator := caller.ID
	t := &model.Task{
		Title:            req.Title,
		Description:      req.Description,
		AssignedTo:       manager.ID,
		Employees:        datatypes.JSONSlice[uint](employees),
		Deadline:         now.Add(model.DefaultDeadlineOffset),
		Priority:         orDefault(req.Priority, model.PriorityMedium),
		Status:           model.TaskStatusPending,
		MachineID:        machineID,
		Category:         orDefault(req.Category, model.CategoryProduction),
		Comments:         datatypes.JSONSlice[model.TaskComment]{},
		EstimatedHours:   decimal.Zero,
		ActualHours:      decimal.Zero,
		Tags:             datatypes.JSONSlice[string](req.Tags),
		Location:         req.Location,
		IsRecurring:      req.IsRecurring,
		RecurringPattern: orDefault(req.RecurringPattern, model.RecurWeekly),
		CreatedBy:        &creator,
	}
	if req.Deadline != nil {
		t.Deadline = *req.Deadline
	}
	if req.EstimatedHours != nil {
		t.EstimatedHours = req.EstimatedHours.Round(2)
	}
	if t.Tags == nil {
		t.Tags = datatypes.JSONSlice[string]{}
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	log.Info().Uint("task_id", t.ID).Uint("assigned_to", t.AssignedTo).Uint("created_by", caller.ID).Msg("task created")
	return s.reload(ctx, t.ID)
}

// Update applies a partial change. Fields an Employee may not write are
// dropped before validation.
func (s *taskService) Update(ctx context.Context, caller authz.Caller, id uint, req dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	t, err := s.load(ctx, &caller, authz.UpdateTask, id)
	if err != nil {
		return nil, err
	}
	req.Retain(func(field string) bool { return authz.TaskFieldWritable(caller, field) })
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.AssignedTo != nil {
		manager, err := s.resolver.Manager(ctx, *req.AssignedTo)
		if err != nil {
			return nil, err
		}
		t.AssignedTo = manager.ID
	}
	if req.Employees != nil {
		if len(*req.Employees) == 0 {
			return nil, apierror.Validation("At least one employee is required")
		}
		employees, err := s.resolver.Employees(ctx, *req.Employees)
		if err != nil {
			return nil, err
		}
		t.Employees = datatypes.JSONSlice[uint](employees)
	}
	if req.Machine.Set {
		if req.Machine.Value == nil || req.Machine.Value.IsZero() {
			t.MachineID = nil
		} else {
			m, err := s.resolver.Machine(ctx, *req.Machine.Value)
			if err != nil {
				return nil, err
			}
			t.MachineID = &m.ID
		}
	}
	if req.Deadline != nil {
		t.Deadline = *req.Deadline
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.Progress != nil {
		t.SetProgress(*req.Progress)
	}
	if req.Category != nil {
		t.Category = *req.Category
	}
	if req.EstimatedHours != nil {
		t.EstimatedHours = req.EstimatedHours.Round(2)
	}
	if req.ActualHours != nil {
		t.ActualHours = req.ActualHours.Round(2)
	}
	if req.Tags != nil {
		t.Tags = datatypes.JSONSlice[string](*req.Tags)
	}
	if req.Location != nil {
		t.Location = *req.Location
	}
	if req.IsRecurring != nil {
		t.IsRecurring = *req.IsRecurring
	}
	if req.RecurringPattern != nil {
		t.RecurringPattern = *req.RecurringPattern
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	return s.reload(ctx, t.ID)
}

func (s *taskService) UpdateProgress(ctx context.Context, caller authz.Caller, id uint, req dto.ProgressRequest) (*dto.TaskResponse, error) {
	t, err := s.load(ctx, &caller, authz.UpdateTaskProgress, id)
	if err != nil {
		return nil, err
	}
	if req.Progress == nil || *req.Progress < 0 || *req.Progress > 100 {
		return nil, apierror.Validation("Progress must be between 0 and 100")
	}
	t.SetProgress(*req.Progress)
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	return s.reload(ctx, t.ID)
}

// AddComment appends to the comment thread. The append is a read-modify-write
// of the whole task; concurrent comments on one task may overwrite each other.
func (s *taskService) AddComment(ctx context.Context, caller authz.Caller, id uint, req dto.CommentRequest) (*dto.TaskResponse, error) {
	t, err := s.load(ctx, &caller, authz.CommentTask, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Comment) == "" {
		return nil, apierror.Validation("Comment is required")
	}
	t.Comments = append(t.Comments, model.TaskComment{
		ID:        uuid.NewString(),
		User:      caller.ID,
		UserName:  caller.Name,
		Comment:   req.Comment,
		CreatedAt: s.now(),
	})
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	return s.reload(ctx, t.ID)
}

func (s *taskService) Delete(ctx context.Context, id uint) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		return notFound(err, msgTaskNotFound)
	}
	log.Info().Uint("task_id", id).Msg("task deleted")
	return nil
}

func (s *taskService) Check(ctx context.Context, caller authz.Caller, action authz.Action, id uint) error {
	_, err := s.load(ctx, &caller, action, id)
	return err
}

// load fetches the task and runs the ownership check for action on it.
func (s *taskService) load(ctx context.Context, caller *authz.Caller, action authz.Action, id uint) (*model.Task, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgTaskNotFound)
	}
	if err := authz.AllowOn(caller, action, authz.Resource{AssignedTo: t.AssignedTo}); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *taskService) reload(ctx context.Context, id uint) (*dto.TaskResponse, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgTaskNotFound)
	}
	resp := dto.MapTask(t)
	return &resp, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
