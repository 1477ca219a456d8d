//go:build integration

package service_test

// Runs the checkout against a real Postgres so the conditional UPDATE and the
// CHECK constraint are exercised under contention.
// Run with: go test -tags integration ./internal/service/...

import (
	"context"
	"sync"
	"testing"
	"time"

	"airportpos/internal/infra"
	"airportpos/internal/model"
	"airportpos/internal/repository"
	"airportpos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("airportpos_test"),
		tcPostgres.WithUsername("airportpos"),
		tcPostgres.WithPassword("airportpos"),
		tcPostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, pgC)
	require.NoError(t, err)

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := infra.NewDatabase(dsn)
	require.NoError(t, err)
	return db
}

func seedShop(t *testing.T, db *gorm.DB) (*model.Shop, *model.Cashier) {
	t.Helper()
	vendor := &model.Vendor{ID: uuid.New(), CompanyName: "Skyline Retail", Email: "vendor-" + uuid.NewString()[:8] + "@airport.local",
		PasswordHash: "x", Address: "T2", PhoneNumber: "000", Approved: true}
	require.NoError(t, db.Create(vendor).Error)
	shop := &model.Shop{ID: uuid.New(), Name: "Gate 12 Snacks", Location: "Terminal 2", VendorID: vendor.ID}
	require.NoError(t, db.Create(shop).Error)
	cashier := &model.Cashier{ID: uuid.New(), Name: "Asha", Email: "cashier-" + uuid.NewString()[:8] + "@airport.local",
		PasswordHash: "x", ShopID: shop.ID}
	require.NoError(t, db.Create(cashier).Error)
	return shop, cashier
}

func TestCheckoutIntegration_ConcurrentBuyersNeverOversell(t *testing.T) {
	db := startPostgres(t)
	shop, cashier := seedShop(t, db)

	products := repository.NewProductRepository(db)
	water := &model.Product{Name: "Water Bottle", Price: decimal.NewFromInt(20), Quantity: 10, LowStockThreshold: 5, ShopID: shop.ID}
	require.NoError(t, products.Create(context.Background(), water))

	svc := service.NewCheckoutService(service.CheckoutDeps{
		Tx:     repository.NewTransactor(db),
		Ledger: service.NewStockLedger(products, repository.NewStockMovementRepository(db)),
		Bills:  repository.NewBillRepository(db),
		Shops:  repository.NewShopRepository(db),
	})

	const buyers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Checkout(context.Background(), service.CheckoutInput{
				Items:     []service.CartLine{{ProductID: water.ID, Quantity: 1}},
				CashierID: cashier.ID,
				ShopID:    shop.ID,
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if service.IsInsufficientStock(err) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 10, rejected)

	got, err := products.FindByID(context.Background(), water.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)

	var bills int64
	require.NoError(t, db.Model(&model.Bill{}).Where("shop_id = ?", shop.ID).Count(&bills).Error)
	assert.Equal(t, int64(10), bills)

	var movements int64
	require.NoError(t, db.Model(&model.StockMovement{}).Where("product_id = ?", water.ID).Count(&movements).Error)
	assert.Equal(t, int64(10), movements)
}

func TestCheckoutIntegration_TwoCartsSplitTheStock(t *testing.T) {
	db := startPostgres(t)
	shop, cashier := seedShop(t, db)
	ctx := context.Background()

	products := repository.NewProductRepository(db)
	pillow := &model.Product{Name: "Travel Pillow", Price: decimal.NewFromInt(899), Quantity: 10, LowStockThreshold: 2, ShopID: shop.ID}
	require.NoError(t, products.Create(ctx, pillow))

	svc := service.NewCheckoutService(service.CheckoutDeps{
		Tx:     repository.NewTransactor(db),
		Ledger: service.NewStockLedger(products, repository.NewStockMovementRepository(db)),
		Bills:  repository.NewBillRepository(db),
	})

	start := make(chan struct{})
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.Checkout(ctx, service.CheckoutInput{
				Items:     []service.CartLine{{ProductID: pillow.ID, Quantity: 5}},
				CashierID: cashier.ID,
				ShopID:    shop.ID,
			})
		}(i)
	}
	close(start)
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])

	got, err := products.FindByID(ctx, pillow.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)

	var bills int64
	require.NoError(t, db.Model(&model.Bill{}).Where("shop_id = ?", shop.ID).Count(&bills).Error)
	assert.Equal(t, int64(2), bills)
}

func TestCheckoutIntegration_MultiLineRollback(t *testing.T) {
	db := startPostgres(t)
	shop, cashier := seedShop(t, db)
	ctx := context.Background()

	products := repository.NewProductRepository(db)
	chips := &model.Product{Name: "Masala Chips", Price: decimal.NewFromInt(35), Quantity: 40, ShopID: shop.ID}
	pillow := &model.Product{Name: "Travel Pillow", Price: decimal.NewFromInt(899), Quantity: 1, ShopID: shop.ID}
	require.NoError(t, products.Create(ctx, chips))
	require.NoError(t, products.Create(ctx, pillow))

	svc := service.NewCheckoutService(service.CheckoutDeps{
		Tx:     repository.NewTransactor(db),
		Ledger: service.NewStockLedger(products, repository.NewStockMovementRepository(db)),
		Bills:  repository.NewBillRepository(db),
	})

	_, err := svc.Checkout(ctx, service.CheckoutInput{
		Items:     []service.CartLine{{ProductID: chips.ID, Quantity: 5}, {ProductID: pillow.ID, Quantity: 2}},
		CashierID: cashier.ID,
		ShopID:    shop.ID,
	})
	require.Error(t, err)
	assert.Equal(t, "Not enough stock for Travel Pillow", err.Error())

	got, err := products.FindByID(ctx, chips.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, got.Quantity)

	var bills int64
	require.NoError(t, db.Model(&model.Bill{}).Count(&bills).Error)
	assert.Zero(t, bills)
}

func TestBillRepoIntegration_ListCreatedBetweenPagesNewestFirst(t *testing.T) {
	db := startPostgres(t)
	shop, cashier := seedShop(t, db)
	ctx := context.Background()
	bills := repository.NewBillRepository(db)

	base := time.Now().UTC().Truncate(time.Millisecond).Add(-10 * time.Minute)
	var created []uuid.UUID
	for i := 0; i < 5; i++ {
		// Two bills share each timestamp so the id tiebreak is exercised.
		b := &model.Bill{ID: uuid.New(), Total: decimal.NewFromInt(10), PaymentMethod: model.PaymentCash,
			ShopID: shop.ID, CashierID: cashier.ID, CreatedAt: base.Add(time.Duration(i/2) * time.Minute)}
		require.NoError(t, bills.CreateTx(ctx, db, b))
		created = append(created, b.ID)
	}

	var walked []uuid.UUID
	var after *repository.BillCursor
	for {
		page, err := bills.ListCreatedBetween(ctx, base.Add(-time.Minute), time.Now(), after, 2)
		require.NoError(t, err)
		for i, b := range page {
			walked = append(walked, b.ID)
			if i > 0 {
				assert.False(t, b.CreatedAt.After(page[i-1].CreatedAt))
			}
		}
		if len(page) < 2 {
			break
		}
		last := page[len(page)-1]
		after = &repository.BillCursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	assert.ElementsMatch(t, created, walked)
}
