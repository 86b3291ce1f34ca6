package handler

import (
	"net/http"

	"github.com/Ayush3323/crm-backend/internal/dto"
	"github.com/Ayush3323/crm-backend/internal/service"

	"github.com/gin-gonic/gin"
)

const msgUserNotFound = "User not found"

type UsersHandler struct{ svc service.UserService }

func NewUsersHandler(svc service.UserService) *UsersHandler { return &UsersHandler{svc: svc} }

// List godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param role query string false "Role"
// @Param department query string false "Department"
// @Param status query string false "Status"
// @Success 200 {object} dto.Envelope
// @Router /api/users [get]
func (h *UsersHandler) List(c *gin.Context) {
	var filter dto.UserFilter
	if !bindQuery(c, &filter) {
		return
	}
	users, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.List(users))
}

func (h *UsersHandler) Employees(c *gin.Context) {
	users, err := h.svc.ListEmployees(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.List(users))
}

func (h *UsersHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, stats)
}

func (h *UsersHandler) Get(c *gin.Context) {
	id, valid := idParam(c, "id", msgUserNotFound)
	if !valid {
		return
	}
	u, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, u)
}

func (h *UsersHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, u)
}

func (h *UsersHandler) Update(c *gin.Context) {
	id, valid := idParam(c, "id", msgUserNotFound)
	if !valid {
		return
	}
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, u)
}

func (h *UsersHandler) Delete(c *gin.Context) {
	id, valid := idParam(c, "id", msgUserNotFound)
	if !valid {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

func (h *UsersHandler) ResetPassword(c *gin.Context) {
	id, valid := idParam(c, "id", msgUserNotFound)
	if !valid {
		return
	}
	password, err := h.svc.ResetPassword(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ResetPasswordResponse{
		Success:     true,
		Message:     "Password reset successfully",
		NewPassword: password,
	})
}
