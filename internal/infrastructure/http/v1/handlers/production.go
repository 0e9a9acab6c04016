package handlers

import (
	"github.com/gin-gonic/gin"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/types"
	"erpledger/internal/domain/production"
	"erpledger/internal/infrastructure/http/v1/dto"
)

// ProductionHandler runs and previews production.
type ProductionHandler struct {
	*BaseHandler
	engine *production.Engine
}

// NewProductionHandler creates a new production handler.
func NewProductionHandler(base *BaseHandler, engine *production.Engine) *ProductionHandler {
	return &ProductionHandler{BaseHandler: base, engine: engine}
}

// Produce handles POST /production
func (h *ProductionHandler) Produce(c *gin.Context) {
	var req dto.ProductionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	po, err := h.engine.Produce(c.Request.Context(), req.ProductID, req.Quantity)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, po)
}

// Preview handles GET /production/preview?productId=&quantity=
func (h *ProductionHandler) Preview(c *gin.Context) {
	var q dto.ProductionPreviewQuery
	if !h.BindQuery(c, &q) {
		return
	}
	quantity, err := types.ParseQuantity(q.Quantity)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid quantity").WithDetail("value", q.Quantity))
		return
	}
	preview, err := h.engine.Preview(c.Request.Context(), q.ProductID, quantity)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, preview)
}

// History handles GET /products/:id/production
func (h *ProductionHandler) History(c *gin.Context) {
	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	runs, err := h.engine.History(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(runs))
}
