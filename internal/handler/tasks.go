package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Ayush3323/crm-backend/internal/authz"
	"github.com/Ayush3323/crm-backend/internal/dto"
	"github.com/Ayush3323/crm-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const msgTaskNotFound = "Task not found"

type TasksHandler struct{ svc service.TaskService }

func NewTasksHandler(svc service.TaskService) *TasksHandler { return &TasksHandler{svc: svc} }

// List godoc
// @Summary List tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status"
// @Param priority query string false "Priority"
// @Param assignedTo query int false "Assignee id"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} dto.Envelope
// @Router /api/tasks [get]
func (h *TasksHandler) List(c *gin.Context) {
	var filter dto.TaskFilter
	if !bindQuery(c, &filter) {
		return
	}
	page := pageParams(c)
	tasks, total, err := h.svc.List(c.Request.Context(), filter, page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Paged(tasks, total, page))
}

func (h *TasksHandler) ByEmployee(c *gin.Context) {
	id, valid := idParam(c, "employeeId", "Employee not found")
	if !valid {
		return
	}
	page := pageParams(c)
	tasks, total, err := h.svc.ListForEmployee(c.Request.Context(), id, page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Paged(tasks, total, page))
}

func (h *TasksHandler) ByUser(c *gin.Context) {
	id, valid := idParam(c, "userId", msgUserNotFound)
	if !valid {
		return
	}
	tasks, err := h.svc.ListForUser(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.List(tasks))
}

func (h *TasksHandler) Get(c *gin.Context) {
	id, valid := idParam(c, "id", msgTaskNotFound)
	if !valid {
		return
	}
	t, err := h.svc.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, t)
}

// Create godoc
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateTaskRequest true "Task"
// @Success 201 {object} dto.Envelope
// @Failure 400 {object} dto.Envelope
// @Failure 404 {object} dto.Envelope
// @Router /api/tasks [post]
func (h *TasksHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.svc.Create(c.Request.Context(), caller(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, t)
}

func (h *TasksHandler) Update(c *gin.Context) {
	id, valid := idParam(c, "id", msgTaskNotFound)
	if !valid {
		return
	}
	var req dto.UpdateTaskRequest
	if !h.bindOwned(c, authz.UpdateTask, id, &req) {
		return
	}
	t, err := h.svc.Update(c.Request.Context(), caller(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, t)
}

func (h *TasksHandler) UpdateProgress(c *gin.Context) {
	id, valid := idParam(c, "id", msgTaskNotFound)
	if !valid {
		return
	}
	var req dto.ProgressRequest
	if !h.bindOwned(c, authz.UpdateTaskProgress, id, &req) {
		return
	}
	t, err := h.svc.UpdateProgress(c.Request.Context(), caller(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, t)
}

func (h *TasksHandler) AddComment(c *gin.Context) {
	id, valid := idParam(c, "id", msgTaskNotFound)
	if !valid {
		return
	}
	var req dto.CommentRequest
	if !h.bindOwned(c, authz.CommentTask, id, &req) {
		return
	}
	t, err := h.svc.AddComment(c.Request.Context(), caller(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, t)
}

func (h *TasksHandler) Delete(c *gin.Context) {
	id, valid := idParam(c, "id", msgTaskNotFound)
	if !valid {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{})
}

// bindOwned binds the body of a task mutation. When the body is malformed the
// ownership check still takes precedence, so a caller without access to the
// task learns nothing from the shape of their payload. On updates, fields the
// caller may not write are removed before decoding.
func (h *TasksHandler) bindOwned(c *gin.Context, action authz.Action, id uint, req interface{}) bool {
	body, err := c.GetRawData()
	if err == nil && action == authz.UpdateTask {
		body, err = writableTaskFields(caller(c), body)
	}
	if err == nil {
		err = binding.JSON.BindBody(body, req)
	}
	if err != nil {
		if aerr := h.svc.Check(c.Request.Context(), caller(c), action, id); aerr != nil {
			fail(c, aerr)
			return false
		}
		fail(c, invalidBody(err))
		return false
	}
	return true
}

// writableTaskFields drops the top-level keys of an update body that caller
// may not write, whatever their value.
func writableTaskFields(caller authz.Caller, body []byte) ([]byte, error) {
	if caller.Role != authz.RoleEmployee {
		return body, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	for name := range fields {
		if !authz.TaskFieldWritable(caller, name) {
			delete(fields, name)
		}
	}
	return json.Marshal(fields)
}
