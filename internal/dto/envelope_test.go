package dto

import (
	"encoding/json"
	"testing"

	"github.com/Ayush3323/crm-backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		pages int64
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 5, 5},
	}
	for _, tc := range cases {
		p := NewPagination(tc.total, 1, tc.limit)
		assert.Equal(t, tc.pages, p.Pages, "total=%d limit=%d", tc.total, tc.limit)
	}
}

func TestPage_Offset(t *testing.T) {
	assert.Equal(t, 0, Page{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, Page{Page: 3, Limit: 10}.Offset())
}

func TestList_NilBecomesEmptyArray(t *testing.T) {
	b, err := json.Marshal(List[TaskResponse](nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"count":0,"data":[]}`, string(b))
}

func TestPaged_Shape(t *testing.T) {
	env := Paged([]int{1, 2}, 12, Page{Page: 2, Limit: 2})
	b, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"count":2,"pagination":{"total":12,"pages":6,"currentPage":2,"limit":2},"data":[1,2]}`, string(b))
}

func TestMapTask_JoinsAndEmptySlices(t *testing.T) {
	mid := uint(3)
	task := &model.Task{
		ID:             7,
		AssignedTo:     5,
		MachineID:      &mid,
		EstimatedHours: decimal.RequireFromString("1.50"),
		AssignedUser:   &model.User{ID: 5, Name: "Ana", Email: "ana@x.io", Role: "Manager"},
		MachineDetails: &model.Machine{ID: 3, Name: "Lathe", Model: "L2", Status: "Operational"},
	}
	resp := MapTask(task)

	assert.Equal(t, []uint{}, resp.Employees)
	assert.Equal(t, []string{}, resp.Tags)
	assert.Equal(t, &UserSummary{ID: 5, Name: "Ana", Email: "ana@x.io", Role: "Manager"}, resp.AssignedUser)
	assert.Nil(t, resp.CreatedByUser)
	assert.Equal(t, &MachineSummary{ID: 3, Name: "Lathe", Model: "L2", Status: "Operational"}, resp.MachineDetails)

	b, err := json.Marshal(resp)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, 1.5, raw["estimatedHours"])
	assert.Equal(t, float64(3), raw["machine"])
}

func TestMapUser_NeverCarriesPassword(t *testing.T) {
	b, err := json.Marshal(MapUser(&model.User{ID: 1, PasswordHash: "$2a$secret"}))
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
	assert.NotContains(t, string(b), "password")
}
