package memory

import (
	"maps"
	"slices"
	"sort"

	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
	"erpledger/internal/infrastructure/storage/snapshot"
)

// Sequence names for store-assigned ids.
const (
	seqProducts         = "entity:products"
	seqComponents       = "entity:components"
	seqBatches          = "entity:batches"
	seqOrders           = "entity:orders"
	seqProductionOrders = "entity:production_orders"
	seqLedger           = "entity:ledger"
	seqReturns          = "entity:returns"
	seqSupplierReturns  = "entity:supplier_returns"
	seqCreditNotes      = "entity:credit_notes"
	seqInvoices         = "entity:invoices"
)

type state struct {
	products   map[id.ID]entity.Product
	skuIndex   map[string]id.ID
	components map[id.ID]entity.Component

	// batches is the arena; itemBatches keeps each item's insertion order.
	batches     map[id.ID]entity.Batch
	itemBatches map[entity.ItemRef][]id.ID

	orders          map[id.ID]entity.Order
	production      map[id.ID]entity.ProductionOrder
	ledger          []entity.LedgerEntry
	returns         map[id.ID]entity.Return
	supplierReturns map[id.ID]entity.SupplierReturn
	creditNotes     map[id.ID]entity.CreditNote
	invoices        map[id.ID]entity.Invoice

	sequences map[string]int64
}

func newState() *state {
	return &state{
		products:        map[id.ID]entity.Product{},
		skuIndex:        map[string]id.ID{},
		components:      map[id.ID]entity.Component{},
		batches:         map[id.ID]entity.Batch{},
		itemBatches:     map[entity.ItemRef][]id.ID{},
		orders:          map[id.ID]entity.Order{},
		production:      map[id.ID]entity.ProductionOrder{},
		returns:         map[id.ID]entity.Return{},
		supplierReturns: map[id.ID]entity.SupplierReturn{},
		creditNotes:     map[id.ID]entity.CreditNote{},
		invoices:        map[id.ID]entity.Invoice{},
		sequences:       map[string]int64{},
	}
}

// next bumps a sequence under the transaction journal.
func (st *state) next(t *txState, name string) int64 {
	v := st.sequences[name] + 1
	put(t, st.sequences, name, v)
	t.touch(snapshot.BucketSequences)
	return v
}

func (st *state) itemExists(ref entity.ItemRef) bool {
	switch ref.Type {
	case entity.ItemTypeProduct:
		_, ok := st.products[ref.ID]
		return ok
	case entity.ItemTypeComponent:
		_, ok := st.components[ref.ID]
		return ok
	}
	return false
}

func (st *state) batchesOf(ref entity.ItemRef) []entity.Batch {
	ids := st.itemBatches[ref]
	out := make([]entity.Batch, 0, len(ids))
	for _, bid := range ids {
		out = append(out, cloneBatch(st.batches[bid]))
	}
	return out
}

func (st *state) productView(p entity.Product) entity.Product {
	p = cloneProduct(p)
	p.Batches = st.batchesOf(p.Ref())
	return p
}

func (st *state) componentView(c entity.Component) entity.Component {
	c.Batches = st.batchesOf(c.Ref())
	return c
}

// bucketFor names the bucket holding an item's batches.
func bucketFor(ref entity.ItemRef) string {
	if ref.Type == entity.ItemTypeComponent {
		return snapshot.BucketComponents
	}
	return snapshot.BucketProducts
}

func (st *state) export() *snapshot.Snapshot {
	s := &snapshot.Snapshot{
		Products:         make([]entity.Product, 0, len(st.products)),
		Components:       make([]entity.Component, 0, len(st.components)),
		Orders:           make([]entity.Order, 0, len(st.orders)),
		ProductionOrders: make([]entity.ProductionOrder, 0, len(st.production)),
		Ledger:           slices.Clone(st.ledger),
		Returns:          make([]entity.Return, 0, len(st.returns)),
		SupplierReturns:  make([]entity.SupplierReturn, 0, len(st.supplierReturns)),
		CreditNotes:      make([]entity.CreditNote, 0, len(st.creditNotes)),
		Invoices:         make([]entity.Invoice, 0, len(st.invoices)),
		Sequences:        maps.Clone(st.sequences),
	}
	for _, k := range sortedKeys(st.products) {
		s.Products = append(s.Products, st.productView(st.products[k]))
	}
	for _, k := range sortedKeys(st.components) {
		s.Components = append(s.Components, st.componentView(st.components[k]))
	}
	for _, k := range sortedKeys(st.orders) {
		s.Orders = append(s.Orders, st.orders[k].Clone())
	}
	for _, k := range sortedKeys(st.production) {
		s.ProductionOrders = append(s.ProductionOrders, st.production[k].Clone())
	}
	for _, k := range sortedKeys(st.returns) {
		s.Returns = append(s.Returns, st.returns[k].Clone())
	}
	for _, k := range sortedKeys(st.supplierReturns) {
		s.SupplierReturns = append(s.SupplierReturns, st.supplierReturns[k])
	}
	for _, k := range sortedKeys(st.creditNotes) {
		s.CreditNotes = append(s.CreditNotes, st.creditNotes[k].Clone())
	}
	for _, k := range sortedKeys(st.invoices) {
		s.Invoices = append(s.Invoices, st.invoices[k].Clone())
	}
	return s
}

func stateFromSnapshot(s *snapshot.Snapshot) *state {
	st := newState()
	maps.Copy(st.sequences, s.Sequences)

	var maxBatch id.ID
	addBatches := func(ref entity.ItemRef, batches []entity.Batch) {
		for _, b := range batches {
			st.batches[b.ID] = cloneBatch(b)
			st.itemBatches[ref] = append(st.itemBatches[ref], b.ID)
			maxBatch = max(maxBatch, b.ID)
		}
	}

	for _, p := range s.Products {
		addBatches(p.Ref(), p.Batches)
		p = cloneProduct(p)
		st.products[p.ID] = p
		st.skuIndex[p.SKU] = p.ID
		bumpSeq(st, seqProducts, p.ID)
	}
	for _, c := range s.Components {
		addBatches(c.Ref(), c.Batches)
		c.Batches = nil
		st.components[c.ID] = c
		bumpSeq(st, seqComponents, c.ID)
	}
	bumpSeq(st, seqBatches, maxBatch)
	for _, o := range s.Orders {
		st.orders[o.ID] = o.Clone()
		bumpSeq(st, seqOrders, o.ID)
	}
	for _, p := range s.ProductionOrders {
		st.production[p.ID] = p.Clone()
		bumpSeq(st, seqProductionOrders, p.ID)
	}
	st.ledger = slices.Clone(s.Ledger)
	for _, e := range s.Ledger {
		bumpSeq(st, seqLedger, e.ID)
	}
	for _, r := range s.Returns {
		st.returns[r.ID] = r.Clone()
		bumpSeq(st, seqReturns, r.ID)
	}
	for _, r := range s.SupplierReturns {
		st.supplierReturns[r.ID] = r
		bumpSeq(st, seqSupplierReturns, r.ID)
	}
	for _, n := range s.CreditNotes {
		st.creditNotes[n.ID] = n.Clone()
		bumpSeq(st, seqCreditNotes, n.ID)
	}
	for _, inv := range s.Invoices {
		st.invoices[inv.ID] = inv.Clone()
		bumpSeq(st, seqInvoices, inv.ID)
	}
	return st
}

// bumpSeq keeps a sequence ahead of ids already in use.
func bumpSeq(st *state, name string, used id.ID) {
	if st.sequences[name] < used {
		st.sequences[name] = used
	}
}

func sortedKeys[V any](m map[id.ID]V) []id.ID {
	keys := make([]id.ID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func cloneProduct(p entity.Product) entity.Product {
	p.PricingTiers = slices.Clone(p.PricingTiers)
	p.BOM = slices.Clone(p.BOM)
	p.Batches = nil
	return p
}

func cloneBatch(b entity.Batch) entity.Batch {
	if b.ExpiryDate != nil {
		t := *b.ExpiryDate
		b.ExpiryDate = &t
	}
	if b.ReceivedDate != nil {
		t := *b.ReceivedDate
		b.ReceivedDate = &t
	}
	return b
}
