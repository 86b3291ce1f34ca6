package repository

import (
	"context"
	"time"

	"github.com/Ayush3323/crm-backend/internal/dto"
	"github.com/Ayush3323/crm-backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindByRef resolves ref by id or name. A non-empty role restricts the match.
	FindByRef(ctx context.Context, ref dto.Ref, role string) (*model.User, error)
	// FindByIDs returns the distinct users among ids, optionally restricted to role.
	FindByIDs(ctx context.Context, ids []uint, role string) ([]model.User, error)
	List(ctx context.Context, filter dto.UserFilter) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	// Delete removes the user and clears the weak references held by machines
	// and tasks, in one transaction.
	Delete(ctx context.Context, id uint) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) FindByRef(ctx context.Context, ref dto.Ref, role string) (*model.User, error) {
	q := refQuery(r.db.WithContext(ctx), ref)
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var u model.User
	if err := q.First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) FindByIDs(ctx context.Context, ids []uint, role string) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	q := r.db.WithContext(ctx).Where("id IN ?", ids)
	if role != "" {
		q = q.Where("role = ?", role)
	}
	err := q.Find(&users).Error
	return users, err
}

func (r *userRepo) List(ctx context.Context, filter dto.UserFilter) ([]model.User, error) {
	q := r.db.WithContext(ctx).Model(&model.User{})
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Department != "" {
		q = q.Where("department = ?", filter.Department)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var users []model.User
	err := q.Order("id ASC").Find(&users).Error
	return users, err
}

func (r *userRepo) Update(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *userRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Machine{}).Where("assigned_technician = ?", id).
			Update("assigned_technician", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Task{}).Where("created_by = ?", id).
			Update("created_by", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *userRepo) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		UpdateColumn("last_login", at).Error
}

// refQuery narrows q to the record named by ref. A reference that is both a
// valid id and a name matches either.
func refQuery(q *gorm.DB, ref dto.Ref) *gorm.DB {
	switch {
	case ref.ID != 0 && ref.Name != "":
		return q.Where("id = ? OR name = ?", ref.ID, ref.Name)
	case ref.ID != 0:
		return q.Where("id = ?", ref.ID)
	default:
		return q.Where("name = ?", ref.Name)
	}
}
