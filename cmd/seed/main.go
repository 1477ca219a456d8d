// cmd/seed creates an approved demo vendor with one shop, a cashier, an admin
// and a few products. Running it again leaves existing rows untouched.
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"errors"

	"airportpos/internal/config"
	"airportpos/internal/infra"
	"airportpos/internal/model"
	"airportpos/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const demoPassword = "airport123"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt")
	}

	vendors := repository.NewVendorRepository(db)
	cashiers := repository.NewCashierRepository(db)
	shops := repository.NewShopRepository(db)
	products := repository.NewProductRepository(db)

	if err := db.WithContext(ctx).
		Where(model.Admin{Email: "admin@airport.local"}).
		FirstOrCreate(&model.Admin{Email: "admin@airport.local", PasswordHash: string(hash)}).Error; err != nil {
		log.Fatal().Err(err).Msg("seed admin")
	}

	vendor, err := vendors.FindByEmail(ctx, "vendor@airport.local")
	if errors.Is(err, gorm.ErrRecordNotFound) {
		vendor = &model.Vendor{
			CompanyName:  "Skyline Retail",
			Email:        "vendor@airport.local",
			PasswordHash: string(hash),
			Address:      "Terminal 2, Departures",
			PhoneNumber:  "+91 98765 43210",
			Approved:     true,
		}
		if err := vendors.Create(ctx, vendor); err != nil {
			log.Fatal().Err(err).Msg("seed vendor")
		}
		shop := &model.Shop{Name: "Gate 12 Snacks", Location: "Terminal 2, Gate 12", VendorID: vendor.ID}
		if err := shops.Create(ctx, shop); err != nil {
			log.Fatal().Err(err).Msg("seed shop")
		}
		if err := cashiers.Create(ctx, &model.Cashier{
			Name: "Demo Cashier", Email: "cashier@airport.local", PasswordHash: string(hash), ShopID: shop.ID,
		}); err != nil {
			log.Fatal().Err(err).Msg("seed cashier")
		}
		for _, p := range []model.Product{
			{Name: "Water Bottle", Price: decimal.NewFromInt(20), Quantity: 10, LowStockThreshold: 5},
			{Name: "Masala Chips", Price: decimal.NewFromInt(35), Quantity: 40, LowStockThreshold: 8},
			{Name: "Travel Pillow", Price: decimal.RequireFromString("499.00"), Quantity: 6, LowStockThreshold: 2},
		} {
			p.ShopID = shop.ID
			if err := products.Create(ctx, &p); err != nil {
				log.Fatal().Err(err).Str("product", p.Name).Msg("seed product")
			}
		}
	} else if err != nil {
		log.Fatal().Err(err).Msg("lookup vendor")
	}

	log.Info().
		Str("admin", "admin@airport.local").
		Str("vendor", "vendor@airport.local").
		Str("cashier", "cashier@airport.local").
		Str("password", demoPassword).
		Msg("demo data ready")
}
