package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Ayush3323/crm-backend/internal/authz"
	"github.com/Ayush3323/crm-backend/internal/dto"
	"github.com/Ayush3323/crm-backend/internal/model"
	"github.com/Ayush3323/crm-backend/internal/repository"
	"github.com/Ayush3323/crm-backend/internal/worker"

	"gorm.io/gorm"
)

// ── In-memory UserRepository ─────────────────────────────────────────────────

type stubUserRepo struct {
	users  map[uint]*model.User
	nextID uint
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uint]*model.User), nextID: 1}
}

func (r *stubUserRepo) seed(name string, role authz.Role) *model.User {
	u := &model.User{
		Name:   name,
		Email:  strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@plant.io",
		Role:   string(role),
		Status: model.UserStatusActive,
	}
	_ = r.Create(context.Background(), u)
	return u
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	for _, other := range r.users {
		if other.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	u.ID = r.nextID
	r.nextID++
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uint) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByRef(_ context.Context, ref dto.Ref, role string) (*model.User, error) {
	for _, id := range r.sortedIDs() {
		u := r.users[id]
		if role != "" && u.Role != role {
			continue
		}
		if (ref.ID != 0 && u.ID == ref.ID) || (ref.Name != "" && u.Name == ref.Name) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByIDs(_ context.Context, ids []uint, role string) ([]model.User, error) {
	seen := make(map[uint]bool, len(ids))
	var out []model.User
	for _, id := range ids {
		u, ok := r.users[id]
		if !ok || seen[id] || (role != "" && u.Role != role) {
			continue
		}
		seen[id] = true
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) List(_ context.Context, filter dto.UserFilter) ([]model.User, error) {
	var out []model.User
	for _, id := range r.sortedIDs() {
		u := r.users[id]
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) TouchLastLogin(_ context.Context, id uint, at time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.LastLogin = &at
	return nil
}

func (r *stubUserRepo) sortedIDs() []uint {
	ids := make([]uint, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ── In-memory MachineRepository ──────────────────────────────────────────────

type stubMachineRepo struct {
	machines map[uint]*model.Machine
	nextID   uint
}

func newStubMachineRepo() *stubMachineRepo {
	return &stubMachineRepo{machines: make(map[uint]*model.Machine), nextID: 1}
}

func (r *stubMachineRepo) Create(_ context.Context, m *model.Machine) error {
	m.ID = r.nextID
	r.nextID++
	cp := *m
	r.machines[m.ID] = &cp
	return nil
}

func (r *stubMachineRepo) FindByID(_ context.Context, id uint) (*model.Machine, error) {
	m, ok := r.machines[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *stubMachineRepo) FindByRef(ctx context.Context, ref dto.Ref) (*model.Machine, error) {
	if m, err := r.FindByID(ctx, ref.ID); err == nil {
		return m, nil
	}
	for _, m := range r.machines {
		if ref.Name != "" && m.Name == ref.Name {
			cp := *m
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubMachineRepo) NameTaken(_ context.Context, name string, exceptID uint) (bool, error) {
	for _, m := range r.machines {
		if m.Name == name && m.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubMachineRepo) List(_ context.Context, filter dto.MachineFilter, page dto.Page) ([]model.Machine, int64, error) {
	var all []model.Machine
	for _, m := range r.machines {
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		all = append(all, *m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, page), int64(len(all)), nil
}

func (r *stubMachineRepo) Update(_ context.Context, m *model.Machine) error {
	if _, ok := r.machines[m.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *m
	r.machines[m.ID] = &cp
	return nil
}

func (r *stubMachineRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.machines[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.machines, id)
	return nil
}

// ── In-memory TaskRepository ─────────────────────────────────────────────────

type stubTaskRepo struct {
	tasks  map[uint]*model.Task
	nextID uint
	// users joins the assignee on reads when set.
	users *stubUserRepo
}

func newStubTaskRepo(users *stubUserRepo) *stubTaskRepo {
	return &stubTaskRepo{tasks: make(map[uint]*model.Task), nextID: 1, users: users}
}

func (r *stubTaskRepo) Create(_ context.Context, t *model.Task) error {
	t.ID = r.nextID
	r.nextID++
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *stubTaskRepo) FindByID(_ context.Context, id uint) (*model.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	if r.users != nil {
		if u, ok := r.users.users[cp.AssignedTo]; ok {
			joined := *u
			cp.AssignedUser = &joined
		}
	}
	return &cp, nil
}

func (r *stubTaskRepo) List(_ context.Context, filter dto.TaskFilter, page dto.Page) ([]model.Task, int64, error) {
	var all []model.Task
	for _, t := range r.sorted() {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && t.Priority != filter.Priority {
			continue
		}
		if filter.AssignedTo != 0 && t.AssignedTo != filter.AssignedTo {
			continue
		}
		all = append(all, t)
	}
	return paginate(all, page), int64(len(all)), nil
}

func (r *stubTaskRepo) ListAll(_ context.Context, assignedTo *uint) ([]model.Task, error) {
	var out []model.Task
	for _, t := range r.sorted() {
		if assignedTo != nil && t.AssignedTo != *assignedTo {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *stubTaskRepo) Update(_ context.Context, t *model.Task) error {
	if _, ok := r.tasks[t.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *t
	cp.AssignedUser, cp.CreatedByUser, cp.MachineDetails = nil, nil, nil
	r.tasks[t.ID] = &cp
	return nil
}

func (r *stubTaskRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.tasks[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *stubTaskRepo) CountByAssignee(_ context.Context, userID uint) (int64, error) {
	var n int64
	for _, t := range r.tasks {
		if t.AssignedTo == userID {
			n++
		}
	}
	return n, nil
}

func (r *stubTaskRepo) sorted() []model.Task {
	out := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func paginate[T any](all []T, page dto.Page) []T {
	start := page.Offset()
	if start >= len(all) {
		return nil
	}
	end := start + page.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

// ── Canned AnalyticsRepository ───────────────────────────────────────────────

type stubAnalyticsRepo struct {
	counts    map[string]int64 // "table" or "table:status"
	groups    map[string][]repository.GroupCount
	averages  map[string]float64
	assignees []repository.AssigneeCount
	machines  []model.Machine
	tasks     []model.Task
	users     []model.User
	calls     int
}

func newStubAnalyticsRepo() *stubAnalyticsRepo {
	return &stubAnalyticsRepo{
		counts:   make(map[string]int64),
		groups:   make(map[string][]repository.GroupCount),
		averages: make(map[string]float64),
	}
}

func (r *stubAnalyticsRepo) Count(_ context.Context, t repository.Table, status string) (int64, error) {
	r.calls++
	key := string(t)
	if status != "" {
		key += ":" + status
	}
	return r.counts[key], nil
}

func (r *stubAnalyticsRepo) GroupCount(_ context.Context, t repository.Table, column string) ([]repository.GroupCount, error) {
	return r.groups[string(t)+"."+column], nil
}

func (r *stubAnalyticsRepo) Average(_ context.Context, t repository.Table, column string) (float64, error) {
	return r.averages[string(t)+"."+column], nil
}

func (r *stubAnalyticsRepo) TasksPerAssignee(context.Context) ([]repository.AssigneeCount, error) {
	return r.assignees, nil
}

func (r *stubAnalyticsRepo) MaintenanceHistories(context.Context) ([]model.Machine, error) {
	return r.machines, nil
}

func (r *stubAnalyticsRepo) RecentTasks(_ context.Context, n int) ([]model.Task, error) {
	if len(r.tasks) > n {
		return r.tasks[:n], nil
	}
	return r.tasks, nil
}

func (r *stubAnalyticsRepo) RecentUsers(_ context.Context, n int) ([]model.User, error) {
	if len(r.users) > n {
		return r.users[:n], nil
	}
	return r.users, nil
}

// ── Cache and Notifier fakes ─────────────────────────────────────────────────

type memCache struct {
	items map[string][]byte
	gets  int
	sets  int
}

func newMemCache() *memCache { return &memCache{items: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.gets++
	v, ok := c.items[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.sets++
	c.items[key] = value
	return nil
}

type recordingNotifier struct {
	sent []worker.EmailJobPayload
}

func (n *recordingNotifier) EnqueueEmail(_ context.Context, p worker.EmailJobPayload) error {
	n.sent = append(n.sent, p)
	return nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func ptr[T any](v T) *T { return &v }

func callerOf(u *model.User) authz.Caller {
	return authz.Caller{ID: u.ID, Name: u.Name, Role: authz.Role(u.Role)}
}
