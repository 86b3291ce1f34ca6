package dto

import (
	"time"

	"github.com/Ayush3323/crm-backend/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateMachineRequest struct {
	Name                string         `json:"name"                validate:"required,max=100"`
	Model               string         `json:"model"               validate:"required"`
	SerialNumber        *string        `json:"serialNumber"`
	Status              string         `json:"status"              validate:"omitempty,oneof=Operational Maintenance Repair Offline Retired"`
	Location            string         `json:"location"            validate:"required"`
	Department          *string        `json:"department"`
	Manufacturer        string         `json:"manufacturer"`
	InstallationDate    *time.Time     `json:"installationDate"`
	NextMaintenance     *time.Time     `json:"nextMaintenance"`
	MaintenanceInterval *int           `json:"maintenanceInterval" validate:"omitempty,min=1"`
	Specifications      map[string]any `json:"specifications"`
	AssignedTechnician  *uint          `json:"assignedTechnician"`
	OperatingHours      float64        `json:"operatingHours"      validate:"min=0"`
	Efficiency          *float64       `json:"efficiency"          validate:"omitempty,min=0,max=100"`
	Notes               string         `json:"notes"               validate:"max=500"`
}

type UpdateMachineRequest struct {
	Name                *string          `json:"name"                validate:"omitempty,min=1,max=100"`
	Model               *string          `json:"model"               validate:"omitempty,min=1"`
	SerialNumber        Nullable[string] `json:"serialNumber"`
	Status              *string          `json:"status"              validate:"omitempty,oneof=Operational Maintenance Repair Offline Retired"`
	Location            *string          `json:"location"            validate:"omitempty,min=1"`
	Department          Nullable[string] `json:"department"`
	Manufacturer        *string          `json:"manufacturer"`
	InstallationDate    *time.Time       `json:"installationDate"`
	NextMaintenance     *time.Time       `json:"nextMaintenance"`
	MaintenanceInterval *int             `json:"maintenanceInterval" validate:"omitempty,min=1"`
	Specifications      map[string]any   `json:"specifications"`
	AssignedTechnician  Nullable[uint]   `json:"assignedTechnician"`
	OperatingHours      *float64         `json:"operatingHours"      validate:"omitempty,min=0"`
	Efficiency          *float64         `json:"efficiency"          validate:"omitempty,min=0,max=100"`
	Notes               *string          `json:"notes"               validate:"omitempty,max=500"`
}

type MachineStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Operational Maintenance Repair Offline Retired"`
	Notes  string `json:"notes"  validate:"max=500"`
}

type MaintenanceRequest struct {
	Type        string           `json:"type"        validate:"required"`
	Description string           `json:"description" validate:"required"`
	Date        *time.Time       `json:"date"`
	Cost        *decimal.Decimal `json:"cost"        validate:"omitempty,min=0"`
	Duration    float64          `json:"duration"    validate:"min=0"`
	Notes       string           `json:"notes"`
}

type MachineFilter struct {
	Status     string `form:"status"`
	Location   string `form:"location"`
	Department string `form:"department"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MachineResponse struct {
	ID                  uint                      `json:"id"`
	Name                string                    `json:"name"`
	Model               string                    `json:"model"`
	SerialNumber        *string                   `json:"serialNumber"`
	Status              string                    `json:"status"`
	Location            string                    `json:"location"`
	Department          *string                   `json:"department"`
	Manufacturer        string                    `json:"manufacturer"`
	InstallationDate    time.Time                 `json:"installationDate"`
	LastMaintenance     *time.Time                `json:"lastMaintenance"`
	NextMaintenance     *time.Time                `json:"nextMaintenance"`
	MaintenanceInterval int                       `json:"maintenanceInterval"`
	Specifications      map[string]any            `json:"specifications"`
	AssignedTechnician  *uint                     `json:"assignedTechnician"`
	Technician          *UserSummary              `json:"technician,omitempty"`
	OperatingHours      float64                   `json:"operatingHours"`
	Efficiency          float64                   `json:"efficiency"`
	Notes               string                    `json:"notes"`
	MaintenanceHistory  []model.MaintenanceRecord `json:"maintenanceHistory"`
	Alerts              []model.MachineAlert      `json:"alerts"`
	CreatedAt           time.Time                 `json:"createdAt"`
	UpdatedAt           time.Time                 `json:"updatedAt"`
}

// MachineSummary is the joined form of a machine inside a task.
type MachineSummary struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Model  string `json:"model"`
	Status string `json:"status"`
}

func MapMachine(m *model.Machine) MachineResponse {
	specs := map[string]any(m.Specifications)
	if specs == nil {
		specs = map[string]any{}
	}
	history := []model.MaintenanceRecord(m.MaintenanceHistory)
	if history == nil {
		history = []model.MaintenanceRecord{}
	}
	alerts := []model.MachineAlert(m.Alerts)
	if alerts == nil {
		alerts = []model.MachineAlert{}
	}
	return MachineResponse{
		ID:                  m.ID,
		Name:                m.Name,
		Model:               m.Model,
		SerialNumber:        m.SerialNumber,
		Status:              m.Status,
		Location:            m.Location,
		Department:          m.Department,
		Manufacturer:        m.Manufacturer,
		InstallationDate:    m.InstallationDate,
		LastMaintenance:     m.LastMaintenance,
		NextMaintenance:     m.NextMaintenance,
		MaintenanceInterval: m.MaintenanceInterval,
		Specifications:      specs,
		AssignedTechnician:  m.AssignedTechnician,
		Technician:          MapUserSummary(m.Technician, true),
		OperatingHours:      m.OperatingHours,
		Efficiency:          m.Efficiency,
		Notes:               m.Notes,
		MaintenanceHistory:  history,
		Alerts:              alerts,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func MapMachines(ms []model.Machine) []MachineResponse {
	out := make([]MachineResponse, len(ms))
	for i := range ms {
		out[i] = MapMachine(&ms[i])
	}
	return out
}

func MapMachineSummary(m *model.Machine) *MachineSummary {
	if m == nil || m.ID == 0 {
		return nil
	}
	return &MachineSummary{ID: m.ID, Name: m.Name, Model: m.Model, Status: m.Status}
}
