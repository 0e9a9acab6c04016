package handlers

import (
	"github.com/gin-gonic/gin"

	"erpledger/internal/domain/returns"
	"erpledger/internal/infrastructure/http/v1/dto"
)

// ReturnsHandler handles customer and supplier returns.
type ReturnsHandler struct {
	*BaseHandler
	service *returns.Service
}

// NewReturnsHandler creates a new returns handler.
func NewReturnsHandler(base *BaseHandler, service *returns.Service) *ReturnsHandler {
	return &ReturnsHandler{BaseHandler: base, service: service}
}

// Create handles POST /returns
func (h *ReturnsHandler) Create(c *gin.Context) {
	var req dto.CreateReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}
	rma, err := h.service.CreateReturn(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, rma)
}

// Get handles GET /returns/:id
func (h *ReturnsHandler) Get(c *gin.Context) {
	returnID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	rma, err := h.service.GetReturn(c.Request.Context(), returnID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rma)
}

// Process handles POST /returns/:id/process
func (h *ReturnsHandler) Process(c *gin.Context) {
	returnID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	out, err := h.service.ProcessReturn(c.Request.Context(), returnID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, out)
}

// CreateSupplier handles POST /supplier-returns
func (h *ReturnsHandler) CreateSupplier(c *gin.Context) {
	var req dto.CreateSupplierReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}
	srma, err := h.service.CreateSupplierReturn(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, srma)
}

// ProcessSupplier handles POST /supplier-returns/:id/process
func (h *ReturnsHandler) ProcessSupplier(c *gin.Context) {
	returnID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	srma, err := h.service.ProcessSupplierReturn(c.Request.Context(), returnID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, srma)
}
