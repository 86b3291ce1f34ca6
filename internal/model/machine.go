package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Machine statuses.
const (
	MachineStatusOperational = "Operational"
	MachineStatusMaintenance = "Maintenance"
	MachineStatusRepair      = "Repair"
	MachineStatusOffline     = "Offline"
	MachineStatusRetired     = "Retired"
)

const (
	DefaultMachineDepartment   = "Production"
	DefaultMaintenanceInterval = 30 // days
	MaintenanceTypeStatus      = "Status Change"
)

// Machine is an equipment record.
type Machine struct {
	ID           uint    `gorm:"primaryKey"`
	Name         string  `gorm:"size:100;uniqueIndex;not null"`
	Model        string  `gorm:"not null"`
	SerialNumber *string `gorm:"uniqueIndex"`
	Status       string  `gorm:"type:varchar(20);not null;index"`
	Location     string  `gorm:"not null;index"`
	// Department is nullable; analytics report a missing one as "Unassigned".
	Department       *string
	Manufacturer     string     `gorm:"not null"`
	InstallationDate time.Time  `gorm:"not null"`
	LastMaintenance  *time.Time
	NextMaintenance  *time.Time `gorm:"index"`
	// MaintenanceInterval is in days.
	MaintenanceInterval int               `gorm:"not null"`
	Specifications      datatypes.JSONMap `gorm:"type:json"`
	// AssignedTechnician is a weak reference, nulled when the user is deleted.
	AssignedTechnician *uint                                  `gorm:"index"`
	OperatingHours     float64                                `gorm:"not null"`
	Efficiency         float64                                `gorm:"not null"`
	Notes              string                                 `gorm:"size:500;not null"`
	MaintenanceHistory datatypes.JSONSlice[MaintenanceRecord] `gorm:"type:json"`
	Alerts             datatypes.JSONSlice[MachineAlert]      `gorm:"type:json"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Technician *User `gorm:"foreignKey:AssignedTechnician;constraint:OnDelete:SET NULL"`
}

// MaintenanceRecord is one entry of a machine's maintenance history.
// Entries are only ever appended.
type MaintenanceRecord struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	PerformedBy uint            `json:"performedBy"`
	Cost        decimal.Decimal `json:"cost"`
	// Duration is in hours.
	Duration   float64 `json:"duration"`
	Notes      string  `json:"notes,omitempty"`
	FromStatus string  `json:"fromStatus,omitempty"`
	ToStatus   string  `json:"toStatus,omitempty"`
}

// MachineAlert is a condition flagged on a machine.
type MachineAlert struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Resolved  bool      `json:"resolved"`
	CreatedAt time.Time `json:"createdAt"`
}

// RecordMaintenance appends rec to the history and reschedules the next
// maintenance one interval after rec.Date.
func (m *Machine) RecordMaintenance(rec MaintenanceRecord) {
	m.MaintenanceHistory = append(m.MaintenanceHistory, rec)
	m.stampMaintenance(rec.Date)
}

func (m *Machine) stampMaintenance(at time.Time) {
	interval := m.MaintenanceInterval
	if interval <= 0 {
		interval = DefaultMaintenanceInterval
	}
	last := at
	next := at.AddDate(0, 0, interval)
	m.LastMaintenance = &last
	m.NextMaintenance = &next
}

// ChangeStatus moves the machine to status and appends a status-change record.
// Returning to Operational from Maintenance or Repair counts as a completed
// maintenance.
func (m *Machine) ChangeStatus(status string, rec MaintenanceRecord) {
	prev := m.Status
	rec.Type = MaintenanceTypeStatus
	rec.FromStatus = prev
	rec.ToStatus = status
	if rec.Description == "" {
		rec.Description = "Status changed from " + prev + " to " + status
	}
	m.Status = status
	m.MaintenanceHistory = append(m.MaintenanceHistory, rec)
	if status == MachineStatusOperational && (prev == MachineStatusMaintenance || prev == MachineStatusRepair) {
		m.stampMaintenance(rec.Date)
	}
}
