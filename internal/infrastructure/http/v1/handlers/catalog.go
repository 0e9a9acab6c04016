package handlers

import (
	"github.com/gin-gonic/gin"

	"erpledger/internal/domain/catalog"
	"erpledger/internal/infrastructure/http/v1/dto"
)

// CatalogHandler handles products, components and BOMs.
type CatalogHandler struct {
	*BaseHandler
	service *catalog.Service
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(base *BaseHandler, service *catalog.Service) *CatalogHandler {
	return &CatalogHandler{BaseHandler: base, service: service}
}

// CreateProduct handles POST /products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}
	created, err := h.service.CreateProduct(c.Request.Context(), p)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, created)
}

// ListProducts handles GET /products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.service.ListProducts(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(products))
}

// GetProduct handles GET /products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.GetProduct(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// SetBOM handles PUT /products/:id/bom
func (h *CatalogHandler) SetBOM(c *gin.Context) {
	productID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.SetBOMRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.service.SetBOM(c.Request.Context(), productID, dto.BOMLines(req.Lines))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// CreateComponent handles POST /components
func (h *CatalogHandler) CreateComponent(c *gin.Context) {
	var req dto.CreateComponentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	comp, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}
	created, err := h.service.CreateComponent(c.Request.Context(), comp)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, created)
}

// ListComponents handles GET /components
func (h *CatalogHandler) ListComponents(c *gin.Context) {
	components, err := h.service.ListComponents(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(components))
}
