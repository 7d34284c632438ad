package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/binarymart/storefront-backend/internal/cart"
	"github.com/binarymart/storefront-backend/internal/catalog"
	"github.com/binarymart/storefront-backend/internal/pricing"
	"github.com/binarymart/storefront-backend/pkg/db"
	"github.com/binarymart/storefront-backend/pkg/db/models"
	"github.com/binarymart/storefront-backend/pkg/enums"
	pkgerrors "github.com/binarymart/storefront-backend/pkg/errors"
	"github.com/binarymart/storefront-backend/pkg/logger"
	"github.com/binarymart/storefront-backend/pkg/metrics"
	"github.com/binarymart/storefront-backend/pkg/serial"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OrderWriter persists the committed order graph.
type OrderWriter interface {
	WithTx(tx *gorm.DB) OrderWriter
	Create(ctx context.Context, order *models.Order) error
}

// ConfirmationSender delivers the post-commit order confirmation. Delivery
// is best effort; checkout never fails because of it.
type ConfirmationSender interface {
	OrderConfirmation(ctx context.Context, order *models.Order) error
}

// Service executes the cart-to-order transaction.
type Service interface {
	Checkout(ctx context.Context, identity *Identity, billing BillingInfo, source Source, method enums.PaymentType, paymentRef *string) (*Result, error)
}

type service struct {
	cart          cart.CartRepository
	catalog       *catalog.Repository
	orders        OrderWriter
	tx            txRunner
	logg          *logger.Logger
	metrics       *metrics.CheckoutMetrics
	confirm       ConfirmationSender
	generate      func(prefix string, n int) ([]string, error)
	maxItemQty    int
	maxOrderLines int
	confirmTTL    time.Duration
	now           func() time.Time
}

// Options carries the optional collaborators.
type Options struct {
	Logger          *logger.Logger
	Metrics         *metrics.CheckoutMetrics
	Confirmations   ConfirmationSender
	MaxItemQty      int
	MaxOrderLines   int
	ConfirmationTTL time.Duration
}

// NewService builds the checkout service.
func NewService(cartRepo cart.CartRepository, cat *catalog.Repository, orders OrderWriter, tx txRunner, opts Options) (Service, error) {
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order writer required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if opts.MaxItemQty <= 0 {
		opts.MaxItemQty = 100
	}
	if opts.MaxOrderLines <= 0 {
		opts.MaxOrderLines = 50
	}
	if opts.ConfirmationTTL <= 0 {
		opts.ConfirmationTTL = 10 * time.Second
	}
	return &service{
		cart:          cartRepo,
		catalog:       cat,
		orders:        orders,
		tx:            tx,
		logg:          opts.Logger,
		metrics:       opts.Metrics,
		confirm:       opts.Confirmations,
		generate:      serial.Generate,
		maxItemQty:    opts.MaxItemQty,
		maxOrderLines: opts.MaxOrderLines,
		confirmTTL:    opts.ConfirmationTTL,
		now:           time.Now,
	}, nil
}

// Checkout turns a purchase request into a paid order in one transaction.
// Catalog rows are locked before stock moves, prices are recomputed from the
// locked rows, and any failure rolls the whole attempt back. On success the
// buyer's cart (when used) is drained and retired inside the same
// transaction, and a confirmation is dispatched after commit.
func (s *service) Checkout(ctx context.Context, identity *Identity, billing BillingInfo, source Source, method enums.PaymentType, paymentRef *string) (*Result, error) {
	started := time.Now()
	order, err := s.checkout(ctx, identity, billing, source, method, paymentRef)
	if err != nil {
		s.metrics.ObserveAttempt("rolled_back", time.Since(started))
		return nil, err
	}
	s.metrics.ObserveAttempt("committed", time.Since(started))
	s.metrics.IncOrderCreated(string(method))

	s.dispatchConfirmation(ctx, order)
	return &Result{Order: order}, nil
}

func (s *service) checkout(ctx context.Context, identity *Identity, billing BillingInfo, source Source, method enums.PaymentType, paymentRef *string) (*models.Order, error) {
	if err := billing.Validate(); err != nil {
		return nil, err
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown payment type %q", method))
	}
	if source.UseCart && identity == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "cart checkout requires authentication")
	}

	var explicit []ItemInput
	if !source.UseCart {
		normalized, err := Normalize(source.Items, s.maxItemQty, s.maxOrderLines)
		if err != nil {
			return nil, err
		}
		explicit = normalized
	}

	role := enums.UserRoleCustomer
	var buyerID *uuid.UUID
	if identity != nil {
		role = identity.Role
		id := identity.UserID
		buyerID = &id
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cart.WithTx(tx)
		cat := s.catalog.WithTx(tx)

		lines := explicit
		var activeCartID uuid.UUID
		if source.UseCart {
			drained, cartID, err := s.drainCart(ctx, cartRepo, identity.UserID)
			if err != nil {
				return err
			}
			lines = drained
			activeCartID = cartID
		}

		now := s.now()
		total := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			snap, err := cat.FetchForUpdate(ctx, line.Line, line.CatalogItemID)
			if err != nil {
				return err
			}
			if !snap.HasStock(line.Qty) {
				return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
					WithDetails(map[string]any{
						"product_line":    line.Line,
						"catalog_item_id": line.CatalogItemID,
						"requested":       line.Qty,
						"available":       snap.Stock,
					})
			}
			if err := cat.DecrementStock(ctx, line.Line, line.CatalogItemID, line.Qty); err != nil {
				return err
			}

			price, err := pricing.UnitPrice(snap, role, now)
			if err != nil {
				return err
			}

			codes, err := s.generate(line.Line.SerialPrefix(), line.Qty)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating serial codes")
			}
			itemCodes := make([]models.OrderItemCode, 0, len(codes))
			for _, code := range codes {
				itemCodes = append(itemCodes, models.OrderItemCode{Code: code})
			}

			orderItems = append(orderItems, models.OrderItem{
				ProductLine:   line.Line,
				CatalogItemID: line.CatalogItemID,
				ItemName:      snap.Name,
				UnitPrice:     price,
				Quantity:      line.Qty,
				Codes:         itemCodes,
			})
			total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Qty))))
		}

		paidAt := now
		order = &models.Order{
			BuyerUserID: buyerID,
			Status:      enums.OrderStatusPaid,
			Total:       total,
			Items:       orderItems,
			Payment: &models.Payment{
				PaymentType: method,
				Reference:   paymentRef,
				Amount:      total,
				Status:      enums.PaymentStatusSettled,
				PaidAt:      &paidAt,
			},
		}
		billing.applyTo(order)

		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			if db.IsUniqueViolation(err, "order_item_codes") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "serial code collision, retry checkout")
			}
			return err
		}

		if source.UseCart {
			if err := cartRepo.ClearItems(ctx, identity.UserID); err != nil {
				return err
			}
			if err := cartRepo.Retire(ctx, activeCartID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// drainCart loads and locks the buyer's cart lines. The row locks freeze
// the cart against concurrent edits until the transaction ends.
func (s *service) drainCart(ctx context.Context, cartRepo cart.CartRepository, userID uuid.UUID) ([]ItemInput, uuid.UUID, error) {
	activeCart, err := cartRepo.FindActiveByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeConflict, "cart is empty")
	}
	if err != nil {
		return nil, uuid.Nil, err
	}

	items, err := cartRepo.ItemsForUpdate(ctx, activeCart.ID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	if len(items) == 0 {
		return nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeConflict, "cart is empty")
	}
	if len(items) > s.maxOrderLines {
		return nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("cart has %d lines, limit is %d", len(items), s.maxOrderLines))
	}

	lines := make([]ItemInput, 0, len(items))
	for _, item := range items {
		lines = append(lines, ItemInput{
			Line:          item.ProductLine,
			CatalogItemID: item.CatalogItemID,
			Qty:           item.Quantity,
		})
	}
	return lines, activeCart.ID, nil
}

func (s *service) dispatchConfirmation(ctx context.Context, order *models.Order) {
	if s.confirm == nil {
		return
	}
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.confirmTTL)
	defer cancel()
	if err := s.confirm.OrderConfirmation(sendCtx, order); err != nil && s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, order.ID.String())
		s.logg.Warn(logCtx, fmt.Sprintf("order confirmation failed: %v", err))
	}
}
