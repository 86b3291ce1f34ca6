package repository

import (
	"context"

	"github.com/Ayush3323/crm-backend/internal/dto"
	"github.com/Ayush3323/crm-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskRepository interface {
	Create(ctx context.Context, t *model.Task) error
	// FindByID loads the task with its assignee, creator and machine joined.
	FindByID(ctx context.Context, id uint) (*model.Task, error)
	List(ctx context.Context, filter dto.TaskFilter, page dto.Page) ([]model.Task, int64, error)
	// ListAll returns every task, or only those assigned to *assignedTo when set.
	ListAll(ctx context.Context, assignedTo *uint) ([]model.Task, error)
	Update(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, id uint) error
	CountByAssignee(ctx context.Context, userID uint) (int64, error)
}

type taskRepo struct{ db *gorm.DB }

func NewTaskRepository(db *gorm.DB) TaskRepository { return &taskRepo{db: db} }

func withTaskJoins(q *gorm.DB) *gorm.DB {
	return q.
		Preload("AssignedUser", preloadTechnician).
		Preload("CreatedByUser", preloadTechnician).
		Preload("MachineDetails", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "model", "status")
		})
}

func (r *taskRepo) Create(ctx context.Context, t *model.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(t).Error
}

func (r *taskRepo) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var t model.Task
	if err := withTaskJoins(r.db.WithContext(ctx)).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *taskRepo) List(ctx context.Context, filter dto.TaskFilter, page dto.Page) ([]model.Task, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Task{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.AssignedTo != 0 {
		q = q.Where("assigned_to = ?", filter.AssignedTo)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var tasks []model.Task
	err := withTaskJoins(q).Order("id ASC").Limit(page.Limit).Offset(page.Offset()).Find(&tasks).Error
	return tasks, total, err
}

func (r *taskRepo) ListAll(ctx context.Context, assignedTo *uint) ([]model.Task, error) {
	q := withTaskJoins(r.db.WithContext(ctx))
	if assignedTo != nil {
		q = q.Where("assigned_to = ?", *assignedTo)
	}
	var tasks []model.Task
	err := q.Order("id ASC").Find(&tasks).Error
	return tasks, err
}

func (r *taskRepo) Update(ctx context.Context, t *model.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(t).Error
}

func (r *taskRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Task{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *taskRepo) CountByAssignee(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).Where("assigned_to = ?", userID).Count(&n).Error
	return n, err
}
