package dto

import (
	"testing"

	"github.com/Ayush3323/crm-backend/internal/apierror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	req := CreateUserRequest{Name: "A", Email: "not-an-email", Password: "123", Role: "Boss"}
	err := Validate(req)
	require.Error(t, err)

	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.KindValidation, apiErr.Kind)
	assert.Equal(t, map[string]string{"email": "email", "password": "min", "role": "oneof"}, apiErr.Fields)
}

func TestValidate_MultiWordEnumValues(t *testing.T) {
	assert.NoError(t, Validate(CreateUserRequest{Role: "Sub Admin"}))
	assert.NoError(t, Validate(UpdateTaskRequest{Status: ptr("In Progress"), Category: ptr("Quality Check")}))
	assert.Error(t, Validate(UpdateTaskRequest{Status: ptr("InProgress")}))
}

func TestValidate_Decimal(t *testing.T) {
	neg := decimal.NewFromFloat(-1.5)
	err := Validate(CreateTaskRequest{EstimatedHours: &neg})
	require.Error(t, err)
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "min", apiErr.Fields["estimatedHours"])

	ok := decimal.NewFromFloat(2.25)
	assert.NoError(t, Validate(CreateTaskRequest{EstimatedHours: &ok}))
	assert.NoError(t, Validate(MaintenanceRequest{Type: "Repair", Description: "belt"}))
}

func TestValidate_ProgressRange(t *testing.T) {
	assert.Error(t, Validate(UpdateTaskRequest{Progress: ptr(101)}))
	assert.Error(t, Validate(UpdateTaskRequest{Progress: ptr(-1)}))
	assert.NoError(t, Validate(UpdateTaskRequest{Progress: ptr(0)}))
	assert.NoError(t, Validate(UpdateTaskRequest{Progress: ptr(100)}))
}

func TestValidate_MachineEfficiency(t *testing.T) {
	base := CreateMachineRequest{Name: "Press", Model: "P1", Location: "Hall A"}
	assert.NoError(t, Validate(base))

	over := base
	over.Efficiency = ptr(120.0)
	assert.Error(t, Validate(over))

	missing := base
	missing.Location = ""
	err := Validate(missing)
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "required", apiErr.Fields["location"])
}
