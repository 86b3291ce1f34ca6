package handler

import (
	"net/http"

	"github.com/Ayush3323/crm-backend/internal/dto"
	"github.com/Ayush3323/crm-backend/internal/service"

	"github.com/gin-gonic/gin"
)

const msgMachineNotFound = "Machine not found"

type MachinesHandler struct{ svc service.MachineService }

func NewMachinesHandler(svc service.MachineService) *MachinesHandler {
	return &MachinesHandler{svc: svc}
}

// List godoc
// @Summary List machines
// @Tags machines
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status"
// @Param location query string false "Location"
// @Param department query string false "Department"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} dto.Envelope
// @Router /api/machines [get]
func (h *MachinesHandler) List(c *gin.Context) {
	var filter dto.MachineFilter
	if !bindQuery(c, &filter) {
		return
	}
	page := pageParams(c)
	machines, total, err := h.svc.List(c.Request.Context(), filter, page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Paged(machines, total, page))
}

func (h *MachinesHandler) Get(c *gin.Context) {
	id, valid := idParam(c, "id", msgMachineNotFound)
	if !valid {
		return
	}
	m, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, m)
}

func (h *MachinesHandler) Create(c *gin.Context) {
	var req dto.CreateMachineRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, m)
}

func (h *MachinesHandler) Update(c *gin.Context) {
	id, valid := idParam(c, "id", msgMachineNotFound)
	if !valid {
		return
	}
	var req dto.UpdateMachineRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, m)
}

func (h *MachinesHandler) Delete(c *gin.Context) {
	id, valid := idParam(c, "id", msgMachineNotFound)
	if !valid {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

func (h *MachinesHandler) UpdateStatus(c *gin.Context) {
	id, valid := idParam(c, "id", msgMachineNotFound)
	if !valid {
		return
	}
	var req dto.MachineStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.svc.UpdateStatus(c.Request.Context(), caller(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, m)
}

func (h *MachinesHandler) AddMaintenance(c *gin.Context) {
	id, valid := idParam(c, "id", msgMachineNotFound)
	if !valid {
		return
	}
	var req dto.MaintenanceRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.svc.AddMaintenance(c.Request.Context(), caller(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, m)
}
