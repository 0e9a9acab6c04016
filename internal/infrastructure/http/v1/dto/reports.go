package dto

import (
	"time"

	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
	"erpledger/internal/domain/ledger"
)

// LedgerQuery filters the ledger.
type LedgerQuery struct {
	ItemType        entity.ItemType        `form:"itemType" binding:"omitempty,itemtype"`
	ItemID          id.ID                  `form:"itemId" binding:"gte=0"`
	LotNumber       string                 `form:"lot"`
	CorrelationType entity.CorrelationType `form:"correlationType"`
	CorrelationID   string                 `form:"correlationId"`
	Search          string                 `form:"search"`
	From            *time.Time             `form:"from"`
	To              *time.Time             `form:"to"`
	Limit           int                    `form:"limit" binding:"gte=0,lte=10000"`
}

// ToFilter converts the query. An item id without a type is ignored.
func (q *LedgerQuery) ToFilter() ledger.Filter {
	f := ledger.Filter{
		ItemType:        q.ItemType,
		CorrelationType: q.CorrelationType,
		CorrelationID:   q.CorrelationID,
		LotNumber:       q.LotNumber,
		Search:          q.Search,
		From:            q.From,
		To:              q.To,
		Limit:           q.Limit,
	}
	if q.ItemType != "" && q.ItemID > 0 {
		ref := entity.ItemRef{Type: q.ItemType, ID: q.ItemID}
		f.Ref = &ref
	}
	return f
}

// StockLevelQuery narrows stock levels to one item type.
type StockLevelQuery struct {
	ItemType entity.ItemType `form:"itemType" binding:"omitempty,itemtype"`
}
