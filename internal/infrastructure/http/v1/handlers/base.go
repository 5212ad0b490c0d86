// Package handlers provides HTTP request handlers for API v1.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/apperror"
	appctx "github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/context"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/infrastructure/http/v1/dto"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error processes error and sends appropriate response.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	h.HandleError(c, err)
}

// HandleError registers error on Gin context and aborts request.
// Actual JSON response is produced by middleware.ErrorHandler (single source of truth).
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParseIntQuery parses integer query parameter with default value.
func (h *BaseHandler) ParseIntQuery(c *gin.Context, key string, defaultVal int) int {
	val := c.Query(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// ParseID parses a UUID string, reporting a validation error on failure.
func (h *BaseHandler) ParseID(c *gin.Context, value, field string) (id.ID, bool) {
	parsed, err := id.Parse(value)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id").
			WithDetail("field", field).
			WithDetail("value", value))
		return id.Nil(), false
	}
	return parsed, true
}

// ParamID parses the :id path parameter.
func (h *BaseHandler) ParamID(c *gin.Context) (id.ID, bool) {
	return h.ParseID(c, c.Param("id"), "id")
}

// CurrentUser returns the authenticated user or aborts with 401.
func (h *BaseHandler) CurrentUser(c *gin.Context) (*appctx.UserContext, bool) {
	user := appctx.GetUser(c.Request.Context())
	if user == nil {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return nil, false
	}
	return user, true
}

// CurrentUserID returns the authenticated user's ID or aborts.
func (h *BaseHandler) CurrentUserID(c *gin.Context) (id.ID, bool) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return id.Nil(), false
	}
	return h.ParseID(c, user.UserID, "user_id")
}

// CurrentEmpresaID returns the authenticated company ID or aborts.
// Solo users act as their own company.
func (h *BaseHandler) CurrentEmpresaID(c *gin.Context) (id.ID, bool) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return id.Nil(), false
	}
	raw := user.EmpresaID
	if raw == "" {
		raw = user.UserID
	}
	return h.ParseID(c, raw, "empresa_id")
}

// CurrentVendedorID returns the authenticated seller ID or aborts.
func (h *BaseHandler) CurrentVendedorID(c *gin.Context) (id.ID, bool) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return id.Nil(), false
	}
	if user.VendedorID == "" {
		h.Error(c, apperror.NewForbidden("vendedor profile required"))
		return id.Nil(), false
	}
	return h.ParseID(c, user.VendedorID, "vendedor_id")
}

// VisivelPara reports whether a row owned by (empresaID, vendedorID) is
// visible to the authenticated user. Sellers see their own rows; company
// and solo users see the rows of their tenant.
func (h *BaseHandler) VisivelPara(user *appctx.UserContext, empresaID, vendedorID id.ID) bool {
	if user.VendedorID != "" && user.VendedorID == vendedorID.String() {
		return true
	}
	empresa := user.EmpresaID
	if empresa == "" {
		empresa = user.UserID
	}
	return empresa == empresaID.String()
}

// Created sends 201 response with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// NoContent sends 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Success sends success response.
func (h *BaseHandler) Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: message})
}
