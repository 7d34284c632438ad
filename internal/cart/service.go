package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/binarymart/storefront-backend/internal/catalog"
	"github.com/binarymart/storefront-backend/internal/pricing"
	"github.com/binarymart/storefront-backend/pkg/db"
	"github.com/binarymart/storefront-backend/pkg/db/models"
	"github.com/binarymart/storefront-backend/pkg/enums"
	pkgerrors "github.com/binarymart/storefront-backend/pkg/errors"
)

// CartRepository is the persistence surface the service depends on.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	Create(ctx context.Context, cart *models.Cart) error
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindItem(ctx context.Context, cartID uuid.UUID, line enums.ProductLine, catalogItemID uuid.UUID) (*models.CartItem, error)
	UpsertItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, userID, cartItemID uuid.UUID, qty int) (int64, error)
	DeleteItem(ctx context.Context, userID, cartItemID uuid.UUID) (int64, error)
	ClearItems(ctx context.Context, userID uuid.UUID) error
	ItemsForUpdate(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error)
	Retire(ctx context.Context, cartID uuid.UUID) error
}

// CatalogReader resolves catalog snapshots for pricing and stock checks.
type CatalogReader interface {
	WithTx(tx *gorm.DB) *catalog.Repository
	Fetch(ctx context.Context, line enums.ProductLine, id uuid.UUID) (*catalog.Snapshot, error)
	FetchForUpdate(ctx context.Context, line enums.ProductLine, id uuid.UUID) (*catalog.Snapshot, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ItemRef names one catalog item across both product lines.
type ItemRef struct {
	Line          enums.ProductLine
	CatalogItemID uuid.UUID
}

// SyncItem is one client-held cart line to be replayed onto the server cart.
type SyncItem struct {
	Ref ItemRef
	Qty int
}

// Service exposes the cart operations.
type Service interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, role enums.UserRole, ref ItemRef, qty int) (*View, error)
	UpdateItem(ctx context.Context, userID, cartItemID uuid.UUID, qty int) error
	RemoveItem(ctx context.Context, userID, cartItemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	Sync(ctx context.Context, userID uuid.UUID, role enums.UserRole, items []SyncItem) (*View, error)
	View(ctx context.Context, userID uuid.UUID, role enums.UserRole) (*View, error)
}

type service struct {
	repo       CartRepository
	catalog    CatalogReader
	tx         txRunner
	maxItemQty int
	now        func() time.Time
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, cat CatalogReader, tx txRunner, maxItemQty int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog reader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if maxItemQty <= 0 {
		maxItemQty = 100
	}
	return &service{
		repo:       repo,
		catalog:    cat,
		tx:         tx,
		maxItemQty: maxItemQty,
		now:        time.Now,
	}, nil
}

// GetOrCreate returns the user's active cart, creating one on first use.
// Creation races are settled by the partial unique index: the loser's insert
// fails and the winner's row is re-selected.
func (s *service) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return s.getOrCreate(ctx, s.repo, userID)
}

func (s *service) getOrCreate(ctx context.Context, repo CartRepository, userID uuid.UUID) (*models.Cart, error) {
	cart, err := repo.FindActiveByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := &models.Cart{UserID: userID, Status: enums.CartStatusActive}
	if createErr := repo.Create(ctx, fresh); createErr != nil {
		if db.IsUniqueViolation(createErr, "uq_carts_user_active") {
			return repo.FindActiveByUser(ctx, userID)
		}
		return nil, createErr
	}
	return fresh, nil
}

// AddItem merges qty units of a catalog item into the active cart. The
// catalog row is locked for the duration so the stock check and the price
// snapshot cannot be invalidated mid-write.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, role enums.UserRole, ref ItemRef, qty int) (*View, error) {
	if err := s.validateRef(ref, qty); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cat := s.catalog.WithTx(tx)

		cart, err := s.getOrCreate(ctx, repo, userID)
		if err != nil {
			return err
		}

		snap, err := cat.FetchForUpdate(ctx, ref.Line, ref.CatalogItemID)
		if err != nil {
			return err
		}

		existing := 0
		if line, err := repo.FindItem(ctx, cart.ID, ref.Line, ref.CatalogItemID); err != nil {
			return err
		} else if line != nil {
			existing = line.Quantity
		}

		merged := existing + qty
		if merged > s.maxItemQty {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("quantity %d exceeds the per-item limit of %d", merged, s.maxItemQty))
		}
		if !snap.HasStock(merged) {
			return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
				WithDetails(map[string]any{
					"product_line":    ref.Line,
					"catalog_item_id": ref.CatalogItemID,
					"requested":       merged,
					"available":       snap.Stock,
				})
		}

		price, err := pricing.UnitPrice(snap, role, s.now())
		if err != nil {
			return err
		}

		return repo.UpsertItem(ctx, &models.CartItem{
			CartID:        cart.ID,
			ProductLine:   ref.Line,
			CatalogItemID: ref.CatalogItemID,
			UnitPrice:     price,
			Quantity:      qty,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.View(ctx, userID, role)
}

// UpdateItem sets the quantity of one owned cart line.
func (s *service) UpdateItem(ctx context.Context, userID, cartItemID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if qty > s.maxItemQty {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("quantity %d exceeds the per-item limit of %d", qty, s.maxItemQty))
	}

	affected, err := s.repo.UpdateItemQuantity(ctx, userID, cartItemID, qty)
	if err != nil {
		return err
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return nil
}

// RemoveItem deletes one owned cart line.
func (s *service) RemoveItem(ctx context.Context, userID, cartItemID uuid.UUID) error {
	affected, err := s.repo.DeleteItem(ctx, userID, cartItemID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return nil
}

// Clear removes every line of the active cart. Clearing an absent cart is
// a no-op, not an error.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.repo.ClearItems(ctx, userID)
}

// Sync replays a client-held item list onto the server cart, merging
// duplicate references before applying them.
func (s *service) Sync(ctx context.Context, userID uuid.UUID, role enums.UserRole, items []SyncItem) (*View, error) {
	merged := make([]SyncItem, 0, len(items))
	index := make(map[ItemRef]int, len(items))
	for _, item := range items {
		if pos, ok := index[item.Ref]; ok {
			merged[pos].Qty += item.Qty
			continue
		}
		index[item.Ref] = len(merged)
		merged = append(merged, item)
	}

	for _, item := range merged {
		if _, err := s.AddItem(ctx, userID, role, item.Ref, item.Qty); err != nil {
			return nil, err
		}
	}
	return s.View(ctx, userID, role)
}

// View assembles the annotated cart without creating one. The annotations
// compare the stored snapshot against the live catalog; they are advisory,
// checkout recomputes everything under lock.
func (s *service) View(ctx context.Context, userID uuid.UUID, role enums.UserRole) (*View, error) {
	cart, err := s.repo.FindActiveByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &View{Subtotal: decimal.Zero}, nil
	}
	if err != nil {
		return nil, err
	}

	view := &View{
		CartID:   &cart.ID,
		Items:    make([]LineView, 0, len(cart.Items)),
		Subtotal: decimal.Zero,
	}
	for _, item := range cart.Items {
		line := LineView{
			CartItemID:    item.ID,
			Line:          item.ProductLine,
			CatalogItemID: item.CatalogItemID,
			UnitPrice:     item.UnitPrice,
			Quantity:      item.Quantity,
		}

		snap, err := s.catalog.Fetch(ctx, item.ProductLine, item.CatalogItemID)
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			view.Items = append(view.Items, line)
			view.Subtotal = view.Subtotal.Add(line.LineTotal())
			continue
		}
		if err != nil {
			return nil, err
		}

		line.Available = true
		line.Name = snap.Name
		line.StockSufficient = snap.HasStock(item.Quantity)
		if current, err := pricing.UnitPrice(snap, role, s.now()); err == nil {
			line.CurrentPrice = &current
			line.PriceChanged = !current.Equal(item.UnitPrice)
		}

		view.Items = append(view.Items, line)
		view.Subtotal = view.Subtotal.Add(line.LineTotal())
	}
	return view, nil
}

func (s *service) validateRef(ref ItemRef, qty int) error {
	if !ref.Line.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown product line %q", ref.Line))
	}
	if ref.CatalogItemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "catalog item id is required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if qty > s.maxItemQty {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("quantity %d exceeds the per-item limit of %d", qty, s.maxItemQty))
	}
	return nil
}
