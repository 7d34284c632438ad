package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/binarymart/storefront-backend/internal/catalog"
	"github.com/binarymart/storefront-backend/pkg/db"
	"github.com/binarymart/storefront-backend/pkg/db/models"
	"github.com/binarymart/storefront-backend/pkg/enums"
	pkgerrors "github.com/binarymart/storefront-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:cart_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.SoftwarePlan{}, &models.CartridgeProduct{},
		&models.Cart{}, &models.CartItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(NewRepository(conn), catalog.NewRepository(conn), db.FromGorm(conn), 100)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func seedCartridge(t *testing.T, conn *gorm.DB, price int64, stock int) *models.CartridgeProduct {
	t.Helper()
	product := &models.CartridgeProduct{
		ProductName: "Toner X",
		ModelNumber: "TX-1",
		Price:       decimal.NewFromInt(price),
		Quantity:    stock,
		IsActive:    true,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func TestGetOrCreateReusesActiveCart(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.GetOrCreate(ctx, userID)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := svc.GetOrCreate(ctx, userID)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the same cart, got %s and %s", first.ID, second.ID)
	}
}

func TestAddItemMergesQuantityAndRefreshesPrice(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := seedCartridge(t, conn, 30, 20)
	ref := ItemRef{Line: enums.ProductLineCartridge, CatalogItemID: product.ID}

	if _, err := svc.AddItem(ctx, userID, enums.UserRoleCustomer, ref, 2); err != nil {
		t.Fatalf("first add: %v", err)
	}

	// Reprice between adds; the merge must overwrite the snapshot.
	if err := conn.Model(product).Update("price", decimal.NewFromInt(35)).Error; err != nil {
		t.Fatalf("reprice: %v", err)
	}

	view, err := svc.AddItem(ctx, userID, enums.UserRoleCustomer, ref, 3)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected one merged line, got %d", len(view.Items))
	}
	line := view.Items[0]
	if line.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", line.Quantity)
	}
	if !line.UnitPrice.Equal(decimal.NewFromInt(35)) {
		t.Fatalf("expected refreshed price 35, got %s", line.UnitPrice)
	}
	if !view.Subtotal.Equal(decimal.NewFromInt(175)) {
		t.Fatalf("expected subtotal 175, got %s", view.Subtotal)
	}
}

func TestAddItemInsufficientStock(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := seedCartridge(t, conn, 30, 4)
	ref := ItemRef{Line: enums.ProductLineCartridge, CatalogItemID: product.ID}

	if _, err := svc.AddItem(ctx, userID, enums.UserRoleCustomer, ref, 3); err != nil {
		t.Fatalf("first add: %v", err)
	}

	// 3 already held; 2 more would exceed the 4 in stock.
	_, err := svc.AddItem(ctx, userID, enums.UserRoleCustomer, ref, 2)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	view, err := svc.View(ctx, userID, enums.UserRoleCustomer)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].Quantity != 3 {
		t.Fatalf("failed add must not change the cart: %+v", view.Items)
	}
}

func TestAddItemDistributorPrice(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	special := decimal.NewFromInt(22)
	product := seedCartridge(t, conn, 30, 10)
	if err := conn.Model(product).Update("special_price", special).Error; err != nil {
		t.Fatalf("set special price: %v", err)
	}

	view, err := svc.AddItem(ctx, userID, enums.UserRoleDistributor,
		ItemRef{Line: enums.ProductLineCartridge, CatalogItemID: product.ID}, 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !view.Items[0].UnitPrice.Equal(special) {
		t.Fatalf("expected special price %s, got %s", special, view.Items[0].UnitPrice)
	}
}

func TestUpdateAndRemoveEnforceOwnership(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	intruder := uuid.New()
	product := seedCartridge(t, conn, 30, 20)

	view, err := svc.AddItem(ctx, owner, enums.UserRoleCustomer,
		ItemRef{Line: enums.ProductLineCartridge, CatalogItemID: product.ID}, 2)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	itemID := view.Items[0].CartItemID

	err = svc.UpdateItem(ctx, intruder, itemID, 5)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign update, got %v", err)
	}
	err = svc.RemoveItem(ctx, intruder, itemID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign remove, got %v", err)
	}

	if err := svc.UpdateItem(ctx, owner, itemID, 5); err != nil {
		t.Fatalf("owner update: %v", err)
	}
	ownerView, err := svc.View(ctx, owner, enums.UserRoleCustomer)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if ownerView.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", ownerView.Items[0].Quantity)
	}

	if err := svc.RemoveItem(ctx, owner, itemID); err != nil {
		t.Fatalf("owner remove: %v", err)
	}
}

func TestUpdateItemRejectsZeroQuantity(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.UpdateItem(context.Background(), uuid.New(), uuid.New(), 0)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestViewNeverAutoCreates(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	view, err := svc.View(ctx, uuid.New(), enums.UserRoleCustomer)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.CartID != nil || len(view.Items) != 0 {
		t.Fatalf("expected empty view, got %+v", view)
	}

	var count int64
	if err := conn.Model(&models.Cart{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("view must not create carts, found %d", count)
	}
}

func TestViewAnnotations(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := seedCartridge(t, conn, 30, 10)
	ref := ItemRef{Line: enums.ProductLineCartridge, CatalogItemID: product.ID}

	if _, err := svc.AddItem(ctx, userID, enums.UserRoleCustomer, ref, 4); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Price moves and stock drains after the snapshot was taken.
	if err := conn.Model(product).
		Updates(map[string]any{"price": decimal.NewFromInt(40), "quantity": 2}).Error; err != nil {
		t.Fatalf("mutate catalog: %v", err)
	}

	view, err := svc.View(ctx, userID, enums.UserRoleCustomer)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	line := view.Items[0]
	if !line.Available {
		t.Fatal("expected line to be available")
	}
	if !line.PriceChanged {
		t.Fatal("expected price_changed annotation")
	}
	if line.CurrentPrice == nil || !line.CurrentPrice.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("unexpected current price %v", line.CurrentPrice)
	}
	if line.StockSufficient {
		t.Fatal("expected stock_sufficient to be false")
	}
	// The subtotal sticks to the snapshot price.
	if !view.Subtotal.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("expected subtotal 120, got %s", view.Subtotal)
	}

	// Deactivation renders the line unavailable but keeps it listed.
	if err := conn.Model(product).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	view, err = svc.View(ctx, userID, enums.UserRoleCustomer)
	if err != nil {
		t.Fatalf("view after deactivate: %v", err)
	}
	if view.Items[0].Available {
		t.Fatal("expected unavailable line after deactivation")
	}
}

func TestSyncMergesDuplicateReferences(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := seedCartridge(t, conn, 10, 50)
	ref := ItemRef{Line: enums.ProductLineCartridge, CatalogItemID: product.ID}

	view, err := svc.Sync(ctx, userID, enums.UserRoleCustomer, []SyncItem{
		{Ref: ref, Qty: 2},
		{Ref: ref, Qty: 3},
	})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].Quantity != 5 {
		t.Fatalf("expected one line of 5, got %+v", view.Items)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := seedCartridge(t, conn, 10, 50)

	if _, err := svc.AddItem(ctx, userID, enums.UserRoleCustomer,
		ItemRef{Line: enums.ProductLineCartridge, CatalogItemID: product.ID}, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.Clear(ctx, userID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := svc.Clear(ctx, userID); err != nil {
		t.Fatalf("second clear: %v", err)
	}

	var count int64
	if err := conn.Model(&models.CartItem{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no items, found %d", count)
	}
}
