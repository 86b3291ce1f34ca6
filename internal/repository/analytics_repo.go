package repository

import (
	"context"
	"fmt"

	"github.com/Ayush3323/crm-backend/internal/model"

	"gorm.io/gorm"
)

// Table names a store the analytics queries aggregate over.
type Table string

const (
	TableUsers    Table = "users"
	TableTasks    Table = "tasks"
	TableMachines Table = "machines"
)

// Only these columns may be grouped or averaged; they are interpolated into SQL.
var (
	groupColumns = map[Table]map[string]bool{
		TableUsers:    {"role": true, "status": true, "department": true},
		TableTasks:    {"status": true, "priority": true, "category": true},
		TableMachines: {"status": true, "department": true, "location": true},
	}
	averageColumns = map[Table]map[string]bool{
		TableTasks:    {"progress": true},
		TableMachines: {"efficiency": true},
	}
)

// GroupCount is one row of a grouped count. Value is nil for a NULL group.
type GroupCount struct {
	Value *string `gorm:"column:group_value"`
	Count int64   `gorm:"column:group_count"`
}

// AssigneeCount is the number of tasks assigned to one user.
type AssigneeCount struct {
	UserID uint   `gorm:"column:user_id"`
	Name   string `gorm:"column:name"`
	Count  int64  `gorm:"column:task_count"`
}

type AnalyticsRepository interface {
	// Count counts the rows of t, only those with the given status when it is non-empty.
	Count(ctx context.Context, t Table, status string) (int64, error)
	GroupCount(ctx context.Context, t Table, column string) ([]GroupCount, error)
	// Average returns the mean of column over t, 0 for an empty table.
	Average(ctx context.Context, t Table, column string) (float64, error)
	TasksPerAssignee(ctx context.Context) ([]AssigneeCount, error)
	MaintenanceHistories(ctx context.Context) ([]model.Machine, error)
	RecentTasks(ctx context.Context, n int) ([]model.Task, error)
	RecentUsers(ctx context.Context, n int) ([]model.User, error)
}

type analyticsRepo struct{ db *gorm.DB }

func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository { return &analyticsRepo{db: db} }

func (r *analyticsRepo) Count(ctx context.Context, t Table, status string) (int64, error) {
	q := r.db.WithContext(ctx).Table(string(t))
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

func (r *analyticsRepo) GroupCount(ctx context.Context, t Table, column string) ([]GroupCount, error) {
	if !groupColumns[t][column] {
		return nil, fmt.Errorf("analytics: column %s.%s is not groupable", t, column)
	}
	var rows []GroupCount
	err := r.db.WithContext(ctx).Table(string(t)).
		Select(column + " AS group_value, COUNT(*) AS group_count").
		Group(column).
		Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepo) Average(ctx context.Context, t Table, column string) (float64, error) {
	if !averageColumns[t][column] {
		return 0, fmt.Errorf("analytics: column %s.%s cannot be averaged", t, column)
	}
	var avg float64
	err := r.db.WithContext(ctx).Table(string(t)).
		Select("COALESCE(AVG(" + column + "), 0)").
		Row().Scan(&avg)
	return avg, err
}

func (r *analyticsRepo) TasksPerAssignee(ctx context.Context) ([]AssigneeCount, error) {
	var rows []AssigneeCount
	err := r.db.WithContext(ctx).Table("tasks").
		Select("users.id AS user_id, users.name AS name, COUNT(tasks.id) AS task_count").
		Joins("JOIN users ON users.id = tasks.assigned_to").
		Group("users.id, users.name").
		Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepo) MaintenanceHistories(ctx context.Context) ([]model.Machine, error) {
	var machines []model.Machine
	err := r.db.WithContext(ctx).Select("id", "name", "maintenance_history").
		Order("id ASC").Find(&machines).Error
	return machines, err
}

func (r *analyticsRepo) RecentTasks(ctx context.Context, n int) ([]model.Task, error) {
	idName := func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Preload("AssignedUser", idName).
		Preload("CreatedByUser", idName).
		Order("created_at DESC").Limit(n).Find(&tasks).Error
	return tasks, err
}

func (r *analyticsRepo) RecentUsers(ctx context.Context, n int) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(n).Find(&users).Error
	return users, err
}
