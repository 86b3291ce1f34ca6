package handler

import (
	"net/http"
	"strconv"

	"github.com/Ayush3323/crm-backend/internal/apierror"
	"github.com/Ayush3323/crm-backend/internal/authz"
	"github.com/Ayush3323/crm-backend/internal/dto"
	"github.com/Ayush3323/crm-backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// bindJSON decodes the JSON body into req. On failure it records a validation
// error for the ErrorHandler and returns false; the caller should return
// immediately without writing a response.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		_ = c.Error(invalidBody(err))
		return false
	}
	return true
}

func invalidBody(err error) error {
	return apierror.Validation("Invalid request body: " + err.Error())
}

// bindQuery decodes the query string into filter.
func bindQuery(c *gin.Context, filter interface{}) bool {
	if err := c.ShouldBindQuery(filter); err != nil {
		_ = c.Error(apierror.Validation("Invalid query parameters: " + err.Error()))
		return false
	}
	return true
}

// bindAndValidate binds the body and runs its validate tags.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if !bindJSON(c, req) {
		return false
	}
	if err := dto.Validate(req); err != nil {
		_ = c.Error(err)
		return false
	}
	return true
}

// idParam parses the named path parameter. A malformed id cannot match any
// record, so it is reported as notFoundMsg.
func idParam(c *gin.Context, name, notFoundMsg string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		_ = c.Error(apierror.NotFound(notFoundMsg))
		return 0, false
	}
	return uint(id), true
}

// pageParams reads page and limit from the query string. Missing, malformed
// or non-positive values fall back to the defaults.
func pageParams(c *gin.Context) dto.Page {
	return dto.Page{
		Page:  positiveQuery(c, "page", dto.DefaultPage),
		Limit: positiveQuery(c, "limit", dto.DefaultLimit),
	}
}

func positiveQuery(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// caller returns the authenticated caller. Protected routes always have one.
func caller(c *gin.Context) authz.Caller {
	if cl := middleware.GetCaller(c); cl != nil {
		return *cl
	}
	return authz.Caller{}
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.OK(data))
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.OK(data))
}
