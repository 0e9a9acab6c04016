package handlers

import (
	"github.com/gin-gonic/gin"

	"erpledger/internal/domain/quality"
	"erpledger/internal/infrastructure/http/v1/dto"
)

// QualityHandler changes QC status of product batches.
type QualityHandler struct {
	*BaseHandler
	service *quality.Service
}

// NewQualityHandler creates a new quality handler.
func NewQualityHandler(base *BaseHandler, service *quality.Service) *QualityHandler {
	return &QualityHandler{BaseHandler: base, service: service}
}

// SetStatus handles PUT /quality/:productId/batches/:lot
func (h *QualityHandler) SetStatus(c *gin.Context) {
	productID, ok := h.ParamID(c, "productId")
	if !ok {
		return
	}
	var req dto.SetQCStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	tr, err := h.service.SetStatus(c.Request.Context(), productID, c.Param("lot"), req.Status)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, tr)
}
