package service

import (
	"context"
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

const (
	msgDuplicateMachine   = "Machine with this name already exists"
	msgTechnicianNotFound = "Assigned technician not found"
)

type MachineService interface {
	List(ctx context.Context, filter dto.MachineFilter, page dto.Page) ([]dto.MachineResponse, int64, error)
	Get(ctx context.Context, id uint) (*dto.MachineResponse, error)
	Create(ctx context.Context, req dto.CreateMachineRequest) (*dto.MachineResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateMachineRequest) (*dto.MachineResponse, error)
	Delete(ctx context.Context, id uint) error
	// UpdateStatus moves the machine to a new status and records the change in
	// its maintenance history.
	UpdateStatus(ctx context.Context, caller authz.Caller, id uint, req dto.MachineStatusRequest) (*dto.MachineResponse, error)
	AddMaintenance(ctx context.Context, caller authz.Caller, id uint, req dto.MaintenanceRequest) (*dto.MachineResponse, error)
}

type machineService struct {
	machines repository.MachineRepository
	users    repository.UserRepository
	now      func() time.Time
}

func NewMachineService(machines repository.MachineRepository, users repository.UserRepository) MachineService {
	return &machineService{machines: machines, users: users, now: time.Now}
}

func (s *machineService) List(ctx context.Context, filter dto.MachineFilter, page dto.Page) ([]dto.MachineResponse, int64, error) {
	machines, total, err := s.machines.List(ctx, filter, page)
	if err != nil {
		return nil, 0, err
	}
	return dto.MapMachines(machines), total, nil
}

func (s *machineService) Get(ctx context.Context, id uint) (*dto.MachineResponse, error) {
	m, err := s.machines.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgMachineNotFound)
	}
	resp := dto.MapMachine(m)
	return &resp, nil
}

func (s *machineService) Create(ctx context.Context, req dto.CreateMachineRequest) (*dto.MachineResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, req.Name, 0); err != nil {
		return nil, err
	}
	if err := s.ensureTechnician(ctx, req.AssignedTechnician); err != nil {
		return nil, err
	}

	m := &model.Machine{
		Name:                req.Name,
		Model:               req.Model,
		SerialNumber:        req.SerialNumber,
		Status:              req.Status,
		Location:            req.Location,
		Department:          req.Department,
		Manufacturer:        req.Manufacturer,
		InstallationDate:    s.now(),
		NextMaintenance:     req.NextMaintenance,
		MaintenanceInterval: model.DefaultMaintenanceInterval,
		Specifications:      datatypes.JSONMap(req.Specifications),
		AssignedTechnician:  req.AssignedTechnician,
		OperatingHours:      req.OperatingHours,
		Efficiency:          100,
		Notes:               req.Notes,
		MaintenanceHistory:  datatypes.JSONSlice[model.MaintenanceRecord]{},
		Alerts:              datatypes.JSONSlice[model.MachineAlert]{},
	}
	if m.Status == "" {
		m.Status = model.MachineStatusOperational
	}
	if m.Department == nil {
		dept := model.DefaultMachineDepartment
		m.Department = &dept
	}
	if m.Specifications == nil {
		m.Specifications = datatypes.JSONMap{}
	}
	if req.InstallationDate != nil {
		m.InstallationDate = *req.InstallationDate
	}
	if req.MaintenanceInterval != nil {
		m.MaintenanceInterval = *req.MaintenanceInterval
	}
	if req.Efficiency != nil {
		m.Efficiency = *req.Efficiency
	}

	if err := s.machines.Create(ctx, m); err != nil {
		return nil, conflictOnDuplicate(err, msgDuplicateMachine)
	}
	log.Info().Uint("machine_id", m.ID).Str("name", m.Name).Msg("machine created")
	return s.Get(ctx, m.ID)
}

func (s *machineService) Update(ctx context.Context, id uint, req dto.UpdateMachineRequest) (*dto.MachineResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	m, err := s.machines.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgMachineNotFound)
	}

	if req.Name != nil && *req.Name != m.Name {
		if err := s.ensureNameFree(ctx, *req.Name, m.ID); err != nil {
			return nil, err
		}
		m.Name = *req.Name
	}
	if req.AssignedTechnician.Set {
		if err := s.ensureTechnician(ctx, req.AssignedTechnician.Value); err != nil {
			return nil, err
		}
		m.AssignedTechnician = req.AssignedTechnician.Value
	}
	if req.Model != nil {
		m.Model = *req.Model
	}
	if req.SerialNumber.Set {
		m.SerialNumber = req.SerialNumber.Value
	}
	if req.Status != nil {
		m.Status = *req.Status
	}
	if req.Location != nil {
		m.Location = *req.Location
	}
	if req.Department.Set {
		m.Department = req.Department.Value
	}
	if req.Manufacturer != nil {
		m.Manufacturer = *req.Manufacturer
	}
	if req.InstallationDate != nil {
		m.InstallationDate = *req.InstallationDate
	}
	if req.NextMaintenance != nil {
		m.NextMaintenance = req.NextMaintenance
	}
	if req.MaintenanceInterval != nil {
		m.MaintenanceInterval = *req.MaintenanceInterval
	}
	if req.Specifications != nil {
		m.Specifications = datatypes.JSONMap(req.Specifications)
	}
	if req.OperatingHours != nil {
		m.OperatingHours = *req.OperatingHours
	}
	if req.Efficiency != nil {
		m.Efficiency = *req.Efficiency
	}
	if req.Notes != nil {
		m.Notes = *req.Notes
	}

	if err := s.machines.Update(ctx, m); err != nil {
		return nil, conflictOnDuplicate(err, msgDuplicateMachine)
	}
	return s.Get(ctx, m.ID)
}

func (s *machineService) Delete(ctx context.Context, id uint) error {
	if err := s.machines.Delete(ctx, id); err != nil {
		return notFound(err, msgMachineNotFound)
	}
	log.Info().Uint("machine_id", id).Msg("machine deleted")
	return nil
}

func (s *machineService) UpdateStatus(ctx context.Context, caller authz.Caller, id uint, req dto.MachineStatusRequest) (*dto.MachineResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	m, err := s.machines.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgMachineNotFound)
	}

	prev := m.Status
	m.ChangeStatus(req.Status, model.MaintenanceRecord{
		ID:          uuid.NewString(),
		Date:        s.now(),
		PerformedBy: caller.ID,
		Cost:        decimal.Zero,
		Notes:       req.Notes,
	})
	if err := s.machines.Update(ctx, m); err != nil {
		return nil, err
	}
	log.Info().Uint("machine_id", m.ID).Str("from", prev).Str("to", m.Status).Uint("by", caller.ID).Msg("machine status changed")
	return s.Get(ctx, m.ID)
}

func (s *machineService) AddMaintenance(ctx context.Context, caller authz.Caller, id uint, req dto.MaintenanceRequest) (*dto.MachineResponse, error) {
	if req.Type == "" || req.Description == "" {
		return nil, apierror.Validation("Maintenance type and description are required")
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	m, err := s.machines.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgMachineNotFound)
	}

	rec := model.MaintenanceRecord{
		ID:          uuid.NewString(),
		Type:        req.Type,
		Description: req.Description,
		Date:        s.now(),
		PerformedBy: caller.ID,
		Cost:        decimal.Zero,
		Duration:    req.Duration,
		Notes:       req.Notes,
	}
	if req.Date != nil {
		rec.Date = *req.Date
	}
	if req.Cost != nil {
		rec.Cost = req.Cost.Round(2)
	}
	m.RecordMaintenance(rec)
	if err := s.machines.Update(ctx, m); err != nil {
		return nil, err
	}
	log.Info().Uint("machine_id", m.ID).Str("type", rec.Type).Msg("maintenance recorded")
	return s.Get(ctx, m.ID)
}

func (s *machineService) ensureNameFree(ctx context.Context, name string, exceptID uint) error {
	taken, err := s.machines.NameTaken(ctx, name, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return apierror.Conflict(msgDuplicateMachine)
	}
	return nil
}

func (s *machineService) ensureTechnician(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := s.users.FindByID(ctx, *id); err != nil {
		return notFound(err, msgTechnicianNotFound)
	}
	return nil
}
