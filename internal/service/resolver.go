package service

import (
	"context"

	"github.com/Ayush3323/crm-backend/internal/apierror"
	"github.com/Ayush3323/crm-backend/internal/authz"
	"github.com/Ayush3323/crm-backend/internal/dto"
	"github.com/Ayush3323/crm-backend/internal/model"
	"github.com/Ayush3323/crm-backend/internal/repository"
)

const (
	msgManagerRequired   = "Assigned user must be a Manager"
	msgEmployeesNotFound = "One or more assigned employees not found or not employees"
	msgMachineNotFound   = "Machine not found"
)

// Resolver turns id-or-name references from request bodies into records.
// Every failure is a NotFound carrying the client-facing message.
type Resolver struct {
	users    repository.UserRepository
	machines repository.MachineRepository
}

func NewResolver(users repository.UserRepository, machines repository.MachineRepository) *Resolver {
	return &Resolver{users: users, machines: machines}
}

// Manager resolves ref to a user with role Manager.
func (r *Resolver) Manager(ctx context.Context, ref dto.Ref) (*model.User, error) {
	if ref.IsZero() {
		return nil, apierror.NotFound(msgManagerRequired)
	}
	u, err := r.users.FindByRef(ctx, ref, string(authz.RoleManager))
	if err != nil {
		return nil, notFound(err, msgManagerRequired)
	}
	return u, nil
}

// Employees resolves every ref by id to a user with role Employee and returns
// the ids in input order. Unless all of them resolve, including when the input
// repeats an id, nothing is returned.
func (r *Resolver) Employees(ctx context.Context, refs []dto.Ref) ([]uint, error) {
	ids := make([]uint, len(refs))
	for i, ref := range refs {
		if ref.ID == 0 {
			return nil, apierror.NotFound(msgEmployeesNotFound)
		}
		ids[i] = ref.ID
	}
	found, err := r.users.FindByIDs(ctx, ids, string(authz.RoleEmployee))
	if err != nil {
		return nil, err
	}
	if len(found) != len(ids) {
		return nil, apierror.NotFound(msgEmployeesNotFound)
	}
	return ids, nil
}

// Machine resolves ref by id or name.
func (r *Resolver) Machine(ctx context.Context, ref dto.Ref) (*model.Machine, error) {
	if ref.IsZero() {
		return nil, apierror.NotFound(msgMachineNotFound)
	}
	m, err := r.machines.FindByRef(ctx, ref)
	if err != nil {
		return nil, notFound(err, msgMachineNotFound)
	}
	return m, nil
}
