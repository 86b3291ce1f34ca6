package repository

import (
	"context"

	"github.com/Ayush3323/crm-backend/internal/dto"
	"github.com/Ayush3323/crm-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MachineRepository interface {
	Create(ctx context.Context, m *model.Machine) error
	FindByID(ctx context.Context, id uint) (*model.Machine, error)
	FindByRef(ctx context.Context, ref dto.Ref) (*model.Machine, error)
	// NameTaken reports whether another machine than exceptID already uses name.
	NameTaken(ctx context.Context, name string, exceptID uint) (bool, error)
	List(ctx context.Context, filter dto.MachineFilter, page dto.Page) ([]model.Machine, int64, error)
	Update(ctx context.Context, m *model.Machine) error
	// Delete removes the machine and unlinks it from every task.
	Delete(ctx context.Context, id uint) error
}

type machineRepo struct{ db *gorm.DB }

func NewMachineRepository(db *gorm.DB) MachineRepository { return &machineRepo{db: db} }

func preloadTechnician(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email", "role")
}

func (r *machineRepo) Create(ctx context.Context, m *model.Machine) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error
}

func (r *machineRepo) FindByID(ctx context.Context, id uint) (*model.Machine, error) {
	var m model.Machine
	err := r.db.WithContext(ctx).Preload("Technician", preloadTechnician).First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *machineRepo) FindByRef(ctx context.Context, ref dto.Ref) (*model.Machine, error) {
	var m model.Machine
	if err := refQuery(r.db.WithContext(ctx), ref).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *machineRepo) NameTaken(ctx context.Context, name string, exceptID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Machine{}).
		Where("name = ? AND id <> ?", name, exceptID).Count(&n).Error
	return n > 0, err
}

func (r *machineRepo) List(ctx context.Context, filter dto.MachineFilter, page dto.Page) ([]model.Machine, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Machine{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Location != "" {
		q = q.Where("location = ?", filter.Location)
	}
	if filter.Department != "" {
		q = q.Where("department = ?", filter.Department)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var machines []model.Machine
	err := q.Preload("Technician", preloadTechnician).
		Order("id ASC").Limit(page.Limit).Offset(page.Offset()).Find(&machines).Error
	return machines, total, err
}

func (r *machineRepo) Update(ctx context.Context, m *model.Machine) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(m).Error
}

func (r *machineRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Task{}).Where("machine_id = ?", id).
			Update("machine_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Machine{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
