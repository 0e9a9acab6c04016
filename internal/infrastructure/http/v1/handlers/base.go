// Package handlers provides HTTP request handlers.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
	"erpledger/internal/infrastructure/http/v1/dto"
	"erpledger/internal/infrastructure/http/v1/middleware"
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
		h.Error(c, dto.BindingError(err, "invalid request body"))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, dto.BindingError(err, "invalid query parameters"))
		return false
	}
	return true
}

// Error registers err on the gin context and aborts the request.
// middleware.ErrorHandler writes the response.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParamID parses a numeric path parameter.
func (h *BaseHandler) ParamID(c *gin.Context, name string) (id.ID, bool) {
	v, err := id.Parse(c.Param(name))
	if err != nil || v <= 0 {
		h.Error(c, apperror.NewValidation("invalid "+name+" format").WithDetail("value", c.Param(name)))
		return 0, false
	}
	return v, true
}

// ParamItemRef parses :itemType and :itemId.
func (h *BaseHandler) ParamItemRef(c *gin.Context) (entity.ItemRef, bool) {
	t := entity.ItemType(strings.ToLower(c.Param("itemType")))
	if !t.Valid() {
		h.Error(c, apperror.NewValidation("itemType must be product or component").WithDetail("value", c.Param("itemType")))
		return entity.ItemRef{}, false
	}
	itemID, ok := h.ParamID(c, "itemId")
	if !ok {
		return entity.ItemRef{}, false
	}
	return entity.ItemRef{Type: t, ID: itemID}, true
}

// Created sends 201 response with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	middleware.CompleteIdempotency(c, http.StatusCreated, "application/json", data)
	c.JSON(http.StatusCreated, data)
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	middleware.CompleteIdempotency(c, http.StatusOK, "application/json", data)
	c.JSON(http.StatusOK, data)
}
