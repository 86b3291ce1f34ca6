package handler

import (
	"context"

	"github.com/Ayush3323/crm-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct{ svc service.AnalyticsService }

func NewAnalyticsHandler(svc service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

func (h *AnalyticsHandler) Dashboard(c *gin.Context) { serve(c, h.svc.Dashboard) }
func (h *AnalyticsHandler) Tasks(c *gin.Context)     { serve(c, h.svc.Tasks) }
func (h *AnalyticsHandler) Machines(c *gin.Context)  { serve(c, h.svc.Machines) }
func (h *AnalyticsHandler) Users(c *gin.Context)     { serve(c, h.svc.Users) }

func serve[T any](c *gin.Context, fn func(context.Context) (*T, error)) {
	v, err := fn(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, v)
}
