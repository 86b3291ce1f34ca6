package service

import (
	"context"
	"testing"
	"time"

	"github.com/Ayush3323/crm-backend/internal/apierror"
	"github.com/Ayush3323/crm-backend/internal/authz"
	"github.com/Ayush3323/crm-backend/internal/dto"
	"github.com/Ayush3323/crm-backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMachineFixture() (*machineService, *stubMachineRepo, *stubUserRepo) {
	users := newStubUserRepo()
	machines := newStubMachineRepo()
	svc := NewMachineService(machines, users).(*machineService)
	svc.now = func() time.Time { return fixedNow }
	return svc, machines, users
}

func createPress(t *testing.T, svc *machineService) *dto.MachineResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), dto.CreateMachineRequest{
		Name: "Press 7", Model: "HX-9", Location: "Hall B",
	})
	require.NoError(t, err)
	return resp
}

func TestMachineCreate_Defaults(t *testing.T) {
	svc, _, _ := newMachineFixture()

	resp := createPress(t, svc)

	assert.Equal(t, model.MachineStatusOperational, resp.Status)
	require.NotNil(t, resp.Department)
	assert.Equal(t, model.DefaultMachineDepartment, *resp.Department)
	assert.Equal(t, model.DefaultMaintenanceInterval, resp.MaintenanceInterval)
	assert.Equal(t, float64(100), resp.Efficiency)
	assert.Equal(t, fixedNow, resp.InstallationDate)
	assert.Equal(t, map[string]any{}, resp.Specifications)
	assert.Equal(t, []model.MaintenanceRecord{}, resp.MaintenanceHistory)
}

func TestMachineCreate_Conflicts(t *testing.T) {
	svc, _, _ := newMachineFixture()
	createPress(t, svc)
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.CreateMachineRequest{Name: "Press 7", Model: "m", Location: "l"})
	assert.True(t, apierror.Is(err, apierror.KindConflict))
	assert.EqualError(t, err, "Machine with this name already exists")

	_, err = svc.Create(ctx, dto.CreateMachineRequest{Name: "Press 8", Model: "m", Location: "l", AssignedTechnician: ptr(uint(42))})
	assert.EqualError(t, err, "Assigned technician not found")

	_, err = svc.Create(ctx, dto.CreateMachineRequest{Name: "Press 9"})
	assert.True(t, apierror.Is(err, apierror.KindValidation))
}

func TestMachineUpdate(t *testing.T) {
	svc, _, users := newMachineFixture()
	tech := users.seed("Tess Tech", authz.RoleEmployee)
	press := createPress(t, svc)
	other, err := svc.Create(context.Background(), dto.CreateMachineRequest{Name: "Drill", Model: "D", Location: "Hall C"})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Update(ctx, other.ID, dto.UpdateMachineRequest{Name: ptr("Press 7")})
	assert.True(t, apierror.Is(err, apierror.KindConflict))

	resp, err := svc.Update(ctx, press.ID, dto.UpdateMachineRequest{
		Name:               ptr("Press 7"),
		Location:           ptr("Hall D"),
		AssignedTechnician: dto.Nullable[uint]{Set: true, Value: &tech.ID},
		Department:         dto.Nullable[string]{Set: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hall D", resp.Location)
	require.NotNil(t, resp.AssignedTechnician)
	assert.Equal(t, tech.ID, *resp.AssignedTechnician)
	assert.Nil(t, resp.Department)

	_, err = svc.Update(ctx, 999, dto.UpdateMachineRequest{})
	assert.EqualError(t, err, "Machine not found")
}

func TestMachineUpdateStatus(t *testing.T) {
	svc, _, users := newMachineFixture()
	mgr := users.seed("Mo Manager", authz.RoleManager)
	press := createPress(t, svc)
	ctx := context.Background()

	resp, err := svc.UpdateStatus(ctx, callerOf(mgr), press.ID, dto.MachineStatusRequest{Status: model.MachineStatusRepair})
	require.NoError(t, err)
	assert.Equal(t, model.MachineStatusRepair, resp.Status)
	require.Len(t, resp.MaintenanceHistory, 1)
	assert.Equal(t, mgr.ID, resp.MaintenanceHistory[0].PerformedBy)
	assert.Nil(t, resp.LastMaintenance)

	resp, err = svc.UpdateStatus(ctx, callerOf(mgr), press.ID, dto.MachineStatusRequest{Status: model.MachineStatusOperational, Notes: "back up"})
	require.NoError(t, err)
	require.Len(t, resp.MaintenanceHistory, 2)
	assert.Equal(t, "back up", resp.MaintenanceHistory[1].Notes)
	require.NotNil(t, resp.LastMaintenance)
	assert.Equal(t, fixedNow, *resp.LastMaintenance)

	_, err = svc.UpdateStatus(ctx, callerOf(mgr), press.ID, dto.MachineStatusRequest{Status: "Broken"})
	assert.True(t, apierror.Is(err, apierror.KindValidation))
}

func TestMachineAddMaintenance(t *testing.T) {
	svc, _, users := newMachineFixture()
	mgr := users.seed("Mo Manager", authz.RoleManager)
	press := createPress(t, svc)
	ctx := context.Background()
	cost := decimal.RequireFromString("120.499")
	when := fixedNow.Add(-24 * time.Hour)

	resp, err := svc.AddMaintenance(ctx, callerOf(mgr), press.ID, dto.MaintenanceRequest{
		Type: "Preventive", Description: "Oil change", Cost: &cost, Date: &when, Duration: 1.5,
	})
	require.NoError(t, err)
	require.Len(t, resp.MaintenanceHistory, 1)
	rec := resp.MaintenanceHistory[0]
	assert.Equal(t, "Preventive", rec.Type)
	assert.Equal(t, "120.50", rec.Cost.StringFixed(2))
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, when, *resp.LastMaintenance)
	assert.Equal(t, when.AddDate(0, 0, model.DefaultMaintenanceInterval), *resp.NextMaintenance)

	_, err = svc.AddMaintenance(ctx, callerOf(mgr), press.ID, dto.MaintenanceRequest{Type: "Preventive"})
	assert.EqualError(t, err, "Maintenance type and description are required")
}

func TestMachineDelete(t *testing.T) {
	svc, machines, _ := newMachineFixture()
	press := createPress(t, svc)

	require.NoError(t, svc.Delete(context.Background(), press.ID))
	assert.Empty(t, machines.machines)
	assert.EqualError(t, svc.Delete(context.Background(), press.ID), "Machine not found")
}

func TestMachineList(t *testing.T) {
	svc, _, _ := newMachineFixture()
	for _, name := range []string{"A", "B", "C"} {
		_, err := svc.Create(context.Background(), dto.CreateMachineRequest{Name: name, Model: "m", Location: "l"})
		require.NoError(t, err)
	}

	got, total, err := svc.List(context.Background(), dto.MachineFilter{}, dto.Page{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, got, 1)
	assert.Equal(t, "C", got[0].Name)
}
