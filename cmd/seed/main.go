// Package main provides a CLI tool for seeding the ledger with demo data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"erpledger/internal/app"
	"erpledger/internal/config"
	appctx "erpledger/internal/core/context"
	"erpledger/internal/core/entity"
	"erpledger/internal/core/types"
	"erpledger/internal/domain/auth"
	"erpledger/internal/domain/inventory"
	"erpledger/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}
	if cfg.StorageDriver == config.DriverMemory {
		log.Fatal("seeding the memory driver has no effect, set STORAGE_DRIVER to sqlite or postgres")
	}

	ctx := logger.WithLogger(context.Background(), log)
	ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: "seed"})

	storage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open storage", "error", err)
	}
	defer storage.Close()

	services := app.New(storage.Store, nil)

	existing, err := services.Catalog.ListProducts(ctx)
	if err != nil {
		log.Fatalw("failed to list products", "error", err)
	}
	if len(existing) > 0 {
		log.Infow("catalog already seeded, skipping demo data", "products", len(existing))
	} else if err := seedDemoData(ctx, services, log); err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}

	if err := printDevToken(cfg, log); err != nil {
		log.Fatalw("failed to issue token", "error", err)
	}
	log.Info("seeding completed successfully")
}

func seedDemoData(ctx context.Context, s *app.Services, log *logger.Logger) error {
	steel, err := s.Catalog.CreateComponent(ctx, &entity.Component{
		Name: "Steel tube", Unit: "m", UnitCost: types.MustMoney("3.20"), ReorderPoint: types.NewQuantity(50),
	})
	if err != nil {
		return fmt.Errorf("create steel: %w", err)
	}
	bolt, err := s.Catalog.CreateComponent(ctx, &entity.Component{
		Name: "M8 bolt", Unit: "pcs", UnitCost: types.MustMoney("0.15"), ReorderPoint: types.NewQuantity(200),
	})
	if err != nil {
		return fmt.Errorf("create bolt: %w", err)
	}

	frame, err := s.Catalog.CreateProduct(ctx, &entity.Product{
		SKU:           "FRAME",
		Name:          "Bike frame",
		UnitCost:      types.MustMoney("14.00"),
		ReorderPoint:  types.NewQuantity(5),
		ShelfLifeDays: 365,
		PricingTiers: []entity.PricingTier{
			{MinQuantity: types.NewQuantity(1), UnitPrice: types.MustMoney("49.00")},
			{MinQuantity: types.NewQuantity(10), UnitPrice: types.MustMoney("44.00")},
		},
		BOM: []entity.BOMLine{
			{ComponentID: steel.ID, QuantityPerUnit: types.MustQuantity("2.5")},
			{ComponentID: bolt.ID, QuantityPerUnit: types.NewQuantity(6)},
		},
	})
	if err != nil {
		return fmt.Errorf("create frame: %w", err)
	}
	log.Infow("catalog created", "product", frame.SKU, "components", 2)

	expiry := time.Now().UTC().AddDate(2, 0, 0)
	receipts := []inventory.ReceiveInput{
		{Ref: steel.Ref(), LotNumber: "ST-0001", Quantity: types.NewQuantity(120), PurchaseOrder: "PO-1001"},
		{Ref: bolt.Ref(), LotNumber: "BL-0001", Quantity: types.NewQuantity(500), ExpiryDate: &expiry, PurchaseOrder: "PO-1001"},
	}
	for _, in := range receipts {
		if _, err := s.Inventory.ReceiveStock(ctx, in); err != nil {
			return fmt.Errorf("receive %s: %w", in.LotNumber, err)
		}
	}

	run, err := s.Production.Produce(ctx, frame.ID, types.NewQuantity(20))
	if err != nil {
		return fmt.Errorf("produce frames: %w", err)
	}
	log.Infow("demo production completed", "lot", run.LotNumber, "quantity", run.QuantityProduced.String())
	return nil
}

func printDevToken(cfg *config.Config, log *logger.Logger) error {
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))
	token, expires, err := jwtService.GenerateAccessToken("seed-admin", "admin@erpledger.local", []string{"admin"})
	if err != nil {
		return err
	}
	log.Infow("development token issued", "user_id", "seed-admin", "expires_at", expires)
	fmt.Println(token)
	return nil
}
