package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Ayush3323/crm-backend/internal/dto"
	"github.com/Ayush3323/crm-backend/internal/model"
	"github.com/Ayush3323/crm-backend/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	sentinelUncategorized = "Uncategorized"
	recentLimit           = 10
)

type AnalyticsService interface {
	Dashboard(ctx context.Context) (*dto.DashboardAnalytics, error)
	Tasks(ctx context.Context) (*dto.TaskAnalytics, error)
	Machines(ctx context.Context) (*dto.MachineAnalytics, error)
	Users(ctx context.Context) (*dto.UserAnalytics, error)
}

type analyticsService struct {
	repo  repository.AnalyticsRepository
	cache Cache
	ttl   time.Duration
}

// NewAnalyticsService creates the reporting service. Results are cached for ttl
// when cache is non-nil and ttl is positive.
func NewAnalyticsService(repo repository.AnalyticsRepository, cache Cache, ttl time.Duration) AnalyticsService {
	return &analyticsService{repo: repo, cache: cache, ttl: ttl}
}

func (s *analyticsService) Dashboard(ctx context.Context) (*dto.DashboardAnalytics, error) {
	return cached(ctx, s, "analytics:dashboard", s.dashboard)
}

func (s *analyticsService) Tasks(ctx context.Context) (*dto.TaskAnalytics, error) {
	return cached(ctx, s, "analytics:tasks", s.taskStats)
}

func (s *analyticsService) Machines(ctx context.Context) (*dto.MachineAnalytics, error) {
	return cached(ctx, s, "analytics:machines", s.machineStats)
}

func (s *analyticsService) Users(ctx context.Context) (*dto.UserAnalytics, error) {
	return cached(ctx, s, "analytics:users", s.userStats)
}

func (s *analyticsService) dashboard(ctx context.Context) (*dto.DashboardAnalytics, error) {
	var (
		out dto.DashboardAnalytics
		err error
	)
	if out.Overview.TotalUsers, err = s.repo.Count(ctx, repository.TableUsers, ""); err != nil {
		return nil, err
	}
	if out.Overview.TotalTasks, err = s.repo.Count(ctx, repository.TableTasks, ""); err != nil {
		return nil, err
	}
	if out.Overview.TotalMachines, err = s.repo.Count(ctx, repository.TableMachines, ""); err != nil {
		return nil, err
	}
	avg, err := s.repo.Average(ctx, repository.TableMachines, "efficiency")
	if err != nil {
		return nil, err
	}
	out.Overview.MachineEfficiency = round(avg)

	groups := []struct {
		table  repository.Table
		column string
		dst    *map[string]int64
	}{
		{repository.TableTasks, "status", &out.TaskStatusDistribution},
		{repository.TableTasks, "priority", &out.TaskPriorityDistribution},
		{repository.TableMachines, "status", &out.MachineStatusDistribution},
		{repository.TableUsers, "role", &out.UserRoleDistribution},
	}
	for _, g := range groups {
		rows, err := s.repo.GroupCount(ctx, g.table, g.column)
		if err != nil {
			return nil, err
		}
		// These columns are NOT NULL in the schema, so nothing is dropped here.
		*g.dst = Distribution(rows, "")
	}

	recent, err := s.repo.RecentTasks(ctx, recentLimit)
	if err != nil {
		return nil, err
	}
	out.RecentTasks = make([]dto.RecentTask, len(recent))
	for i := range recent {
		t := &recent[i]
		out.RecentTasks[i] = dto.RecentTask{
			ID:            t.ID,
			Title:         t.Title,
			Status:        t.Status,
			Priority:      t.Priority,
			Progress:      t.Progress,
			CreatedAt:     t.CreatedAt,
			AssignedUser:  dto.MapUserSummary(t.AssignedUser, false),
			CreatedByUser: dto.MapUserSummary(t.CreatedByUser, false),
		}
	}
	return &out, nil
}

func (s *analyticsService) taskStats(ctx context.Context) (*dto.TaskAnalytics, error) {
	var (
		out dto.TaskAnalytics
		err error
	)
	if out.TotalTasks, err = s.repo.Count(ctx, repository.TableTasks, ""); err != nil {
		return nil, err
	}
	if out.CompletedTasks, err = s.repo.Count(ctx, repository.TableTasks, model.TaskStatusCompleted); err != nil {
		return nil, err
	}
	out.CompletionRate = percentage(out.CompletedTasks, out.TotalTasks)

	avg, err := s.repo.Average(ctx, repository.TableTasks, "progress")
	if err != nil {
		return nil, err
	}
	out.AverageProgress = round(avg)

	byCategory, err := s.repo.GroupCount(ctx, repository.TableTasks, "category")
	if err != nil {
		return nil, err
	}
	out.TasksByCategory = Distribution(byCategory, sentinelUncategorized)

	if out.TasksByUser, err = s.tasksByAssigneeName(ctx); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *analyticsService) machineStats(ctx context.Context) (*dto.MachineAnalytics, error) {
	var (
		out dto.MachineAnalytics
		err error
	)
	if out.TotalMachines, err = s.repo.Count(ctx, repository.TableMachines, ""); err != nil {
		return nil, err
	}
	if out.OperationalMachines, err = s.repo.Count(ctx, repository.TableMachines, model.MachineStatusOperational); err != nil {
		return nil, err
	}
	out.OperationalPercentage = percentage(out.OperationalMachines, out.TotalMachines)

	avg, err := s.repo.Average(ctx, repository.TableMachines, "efficiency")
	if err != nil {
		return nil, err
	}
	out.AverageEfficiency = round(avg)

	byDept, err := s.repo.GroupCount(ctx, repository.TableMachines, "department")
	if err != nil {
		return nil, err
	}
	out.MachinesByDepartment = Distribution(byDept, sentinelUnassigned)

	machines, err := s.repo.MaintenanceHistories(ctx)
	if err != nil {
		return nil, err
	}
	out.MaintenanceFrequency = make(map[string]int64, len(machines))
	for _, m := range machines {
		out.MaintenanceFrequency[m.Name] = int64(len(m.MaintenanceHistory))
	}
	return &out, nil
}

func (s *analyticsService) userStats(ctx context.Context) (*dto.UserAnalytics, error) {
	var (
		out dto.UserAnalytics
		err error
	)
	if out.TotalUsers, err = s.repo.Count(ctx, repository.TableUsers, ""); err != nil {
		return nil, err
	}
	if out.ActiveUsers, err = s.repo.Count(ctx, repository.TableUsers, model.UserStatusActive); err != nil {
		return nil, err
	}

	byStatus, err := s.repo.GroupCount(ctx, repository.TableUsers, "status")
	if err != nil {
		return nil, err
	}
	out.UserStatusDistribution = Distribution(byStatus, "") // status is NOT NULL

	byDept, err := s.repo.GroupCount(ctx, repository.TableUsers, "department")
	if err != nil {
		return nil, err
	}
	out.UsersByDepartment = Distribution(byDept, sentinelUnassigned)

	if out.TasksPerUser, err = s.tasksByAssigneeName(ctx); err != nil {
		return nil, err
	}

	recent, err := s.repo.RecentUsers(ctx, recentLimit)
	if err != nil {
		return nil, err
	}
	out.RecentUsers = dto.MapUsers(recent)
	return &out, nil
}

func (s *analyticsService) tasksByAssigneeName(ctx context.Context) (map[string]int64, error) {
	rows, err := s.repo.TasksPerAssignee(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Name] += r.Count
	}
	return out, nil
}

// Distribution maps grouped counts to value → count. A NULL or empty group is
// reported under sentinel; with an empty sentinel such groups are dropped.
func Distribution(rows []repository.GroupCount, sentinel string) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		key := labelOr(r.Value, sentinel)
		if key == "" {
			continue
		}
		out[key] += r.Count
	}
	return out
}

func round(v float64) int64 {
	return decimal.NewFromFloat(v).Round(0).IntPart()
}

func percentage(part, total int64) int64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(part).Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(total)).Round(0).IntPart()
}

// cached serves key from the cache when possible and stores a freshly computed
// value otherwise. Cache failures only cost a recomputation.
func cached[T any](ctx context.Context, s *analyticsService, key string, compute func(context.Context) (*T, error)) (*T, error) {
	if s.cache == nil || s.ttl <= 0 {
		return compute(ctx)
	}
	if raw, err := s.cache.Get(ctx, key); err == nil {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return &v, nil
		}
	} else if !errors.Is(err, ErrCacheMiss) {
		log.Warn().Err(err).Str("key", key).Msg("analytics: cache read failed")
	}

	v, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(v); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("analytics: cache write failed")
		}
	}
	return v, nil
}
