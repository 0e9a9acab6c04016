// Package app wires the domain services over a store.
package app

import (
	"erpledger/internal/core/clock"
	"erpledger/internal/domain/billing"
	"erpledger/internal/domain/catalog"
	"erpledger/internal/domain/inventory"
	"erpledger/internal/domain/ledger"
	"erpledger/internal/domain/orders"
	"erpledger/internal/domain/production"
	"erpledger/internal/domain/quality"
	"erpledger/internal/domain/reports"
	"erpledger/internal/domain/returns"
	"erpledger/internal/infrastructure/storage/memory"
	numfmt "erpledger/pkg/numerator"
)

// Services is the full set of use cases.
type Services struct {
	Store      *memory.Store
	Ledger     *ledger.Recorder
	Catalog    *catalog.Service
	Inventory  *inventory.Service
	Production *production.Engine
	Orders     *orders.Service
	Quality    *quality.Service
	Billing    *billing.Service
	Returns    *returns.Service
	Reports    *reports.Service
}

// New builds every service on top of store. A nil clk uses the wall clock.
func New(store *memory.Store, clk clock.Clock) *Services {
	if clk == nil {
		clk = clock.System()
	}
	numbers := numfmt.New(store)
	catalogRepo := store.Catalog()
	orderRepo := store.Orders()
	productionRepo := store.Production()

	rec := ledger.NewRecorder(store.Ledger(), clk)
	stock := inventory.NewService(store.Batches(), rec, numbers, store, clk)
	bill := billing.NewService(store.Billing(), orderRepo, catalogRepo, numbers, store, clk)

	return &Services{
		Store:      store,
		Ledger:     rec,
		Catalog:    catalog.NewService(catalogRepo, store),
		Inventory:  stock,
		Production: production.NewEngine(catalogRepo, stock, rec, productionRepo, store, clk),
		Orders:     orders.NewService(orderRepo, catalogRepo, stock, rec, numbers, store, clk),
		Quality:    quality.NewService(stock, rec, store),
		Billing:    bill,
		Returns: returns.NewService(returns.Deps{
			Repo:    store.Returns(),
			Orders:  orderRepo,
			Catalog: catalogRepo,
			Stock:   stock,
			Ledger:  rec,
			Billing: bill,
			Numbers: numbers,
			TxM:     store,
			Clock:   clk,
		}),
		Reports: reports.NewService(catalogRepo, rec, productionRepo, store),
	}
}
