package dto

import (
	"time"

	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
	"erpledger/internal/core/types"
	"erpledger/internal/domain/inventory"
)

// ReceiveStockRequest books a new lot into stock.
type ReceiveStockRequest struct {
	LotNumber     string         `json:"lotNumber" binding:"required"`
	Quantity      types.Quantity `json:"quantity" binding:"gt=0"`
	ExpiryDate    *time.Time     `json:"expiryDate"`
	ReceivedDate  *time.Time     `json:"receivedDate"`
	PurchaseOrder string         `json:"purchaseOrder"`
}

// ToInput converts the request for the item in the path.
func (r *ReceiveStockRequest) ToInput(ref entity.ItemRef) inventory.ReceiveInput {
	return inventory.ReceiveInput{
		Ref:           ref,
		LotNumber:     r.LotNumber,
		Quantity:      r.Quantity,
		ExpiryDate:    r.ExpiryDate,
		ReceivedDate:  r.ReceivedDate,
		PurchaseOrder: r.PurchaseOrder,
	}
}

// AdjustStockRequest is a signed manual correction.
type AdjustStockRequest struct {
	LotNumber  string         `json:"lotNumber" binding:"required"`
	Delta      types.Quantity `json:"delta" binding:"required"`
	Reason     string         `json:"reason" binding:"required"`
	ExpiryDate *time.Time     `json:"expiryDate"`
}

// ToInput converts the request for the item in the path.
func (r *AdjustStockRequest) ToInput(ref entity.ItemRef) inventory.AdjustInput {
	return inventory.AdjustInput{
		Ref:        ref,
		LotNumber:  r.LotNumber,
		Delta:      r.Delta,
		Reason:     r.Reason,
		ExpiryDate: r.ExpiryDate,
	}
}

// StockResponse is one item's stock with its batches.
type StockResponse struct {
	Item     entity.ItemRef `json:"item"`
	Total    types.Quantity `json:"total"`
	Sellable types.Quantity `json:"sellable"`
	Batches  []entity.Batch `json:"batches"`
}

// FromBatches builds a StockResponse.
func FromBatches(ref entity.ItemRef, batches []entity.Batch) StockResponse {
	resp := StockResponse{Item: ref, Batches: batches}
	if resp.Batches == nil {
		resp.Batches = []entity.Batch{}
	}
	for _, b := range batches {
		resp.Total += b.Quantity
		if b.IsSellable() {
			resp.Sellable += b.Quantity
		}
	}
	return resp
}

// SetQCStatusRequest moves a product batch between QC states.
type SetQCStatusRequest struct {
	Status entity.QCStatus `json:"status" binding:"required,qcstatus"`
}

// ProductionRequest runs production.
type ProductionRequest struct {
	ProductID id.ID          `json:"productId" binding:"required,gt=0"`
	Quantity  types.Quantity `json:"quantity" binding:"gt=0"`
}

// ProductionPreviewQuery is the preview query string.
type ProductionPreviewQuery struct {
	ProductID id.ID  `form:"productId" binding:"required,gt=0"`
	Quantity  string `form:"quantity" binding:"required"`
}
