// Package snapshot defines the persisted shape of the ledger engine's state:
// one bucket per entity collection, JSON encoded and zstd-compressed when large.
package snapshot

import (
	"context"

	"erpledger/internal/core/entity"
)

// Bucket names. Batches are embedded in their items.
const (
	BucketProducts         = "products"
	BucketComponents       = "components"
	BucketOrders           = "orders"
	BucketProductionOrders = "production_orders"
	BucketLedger           = "ledger"
	BucketReturns          = "returns"
	BucketSupplierReturns  = "supplier_returns"
	BucketCreditNotes      = "credit_notes"
	BucketInvoices         = "invoices"
	BucketSequences        = "sequences"
)

// AllBuckets lists every bucket in load order.
var AllBuckets = []string{
	BucketProducts,
	BucketComponents,
	BucketOrders,
	BucketProductionOrders,
	BucketLedger,
	BucketReturns,
	BucketSupplierReturns,
	BucketCreditNotes,
	BucketInvoices,
	BucketSequences,
}

// Snapshot is the serialisable representation of the in-memory state.
type Snapshot struct {
	Products         []entity.Product         `json:"products"`
	Components       []entity.Component       `json:"components"`
	Orders           []entity.Order           `json:"orders"`
	ProductionOrders []entity.ProductionOrder `json:"productionOrders"`
	Ledger           []entity.LedgerEntry     `json:"ledger"`
	Returns          []entity.Return          `json:"returns"`
	SupplierReturns  []entity.SupplierReturn  `json:"supplierReturns"`
	CreditNotes      []entity.CreditNote      `json:"creditNotes"`
	Invoices         []entity.Invoice         `json:"invoices"`
	Sequences        map[string]int64         `json:"sequences"`
}

// CompressionAlgo specifies the compression algorithm used for a bucket payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// Bucket is one persisted collection.
type Bucket struct {
	Name            string          `db:"name"`
	Payload         []byte          `db:"payload"`
	CompressionAlgo CompressionAlgo `db:"compression_algo"`
}

// Store persists buckets. SaveBuckets must be atomic: all given buckets are
// written or none are.
type Store interface {
	LoadBuckets(ctx context.Context) ([]Bucket, error)
	SaveBuckets(ctx context.Context, buckets []Bucket) error
	Close() error
}
