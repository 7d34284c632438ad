package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/binarymart/storefront-backend/pkg/db/models"
	"github.com/binarymart/storefront-backend/pkg/enums"
	pkgerrors "github.com/binarymart/storefront-backend/pkg/errors"
)

// allowedTransitions enumerates the admin status moves. Anything absent is
// rejected; cancelled and failed are terminal.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending: {enums.OrderStatusPaid, enums.OrderStatusFailed, enums.OrderStatusCancelled},
	enums.OrderStatusPaid:    {enums.OrderStatusCancelled},
}

// Service exposes the order read side and admin status transitions.
type Service interface {
	GetByID(ctx context.Context, orderID uuid.UUID, buyerUserID *uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, error)
	GetGuestOrder(ctx context.Context, orderID uuid.UUID, email string) (*models.Order, error)
	LookupBySerial(ctx context.Context, code string) (*models.Order, error)
	AdminList(ctx context.Context, filters ListFilters) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus) (*models.Order, error)
}

type service struct {
	repo *Repository
}

// NewService builds the orders service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

// GetByID loads one order. When buyerUserID is set the lookup is scoped to
// that buyer, so a foreign order id reads as not found rather than
// forbidden.
func (s *service) GetByID(ctx context.Context, orderID uuid.UUID, buyerUserID *uuid.UUID) (*models.Order, error) {
	var (
		order *models.Order
		err   error
	)
	if buyerUserID != nil {
		order, err = s.repo.FindByIDAndBuyer(ctx, orderID, *buyerUserID)
	} else {
		order, err = s.repo.FindByID(ctx, orderID)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ListByUser returns the buyer's order history, newest first.
func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, error) {
	return s.repo.ListByBuyer(ctx, userID, limit, offset)
}

// GetGuestOrder loads a guest order by id and billing email.
func (s *service) GetGuestOrder(ctx context.Context, orderID uuid.UUID, email string) (*models.Order, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	order, err := s.repo.FindGuestOrder(ctx, orderID, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// LookupBySerial resolves the purchase a serial code was issued by. Codes
// are stored uppercase, so casing in the query does not matter.
func (s *service) LookupBySerial(ctx context.Context, code string) (*models.Order, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "serial code is required")
	}

	order, err := s.repo.FindBySerialCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "serial code not found")
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// AdminList returns orders matching the filters plus the unpaged total.
func (s *service) AdminList(ctx context.Context, filters ListFilters) ([]models.Order, int64, error) {
	if filters.Status != "" && !filters.Status.IsValid() {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown status %q", filters.Status))
	}
	if filters.PaymentType != "" && !filters.PaymentType.IsValid() {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown payment type %q", filters.PaymentType))
	}
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 50
	}
	filters.Email = strings.ToLower(strings.TrimSpace(filters.Email))
	return s.repo.List(ctx, filters)
}

// UpdateStatus applies one admin transition. The write is guarded by the
// status it was decided against, so two concurrent transitions cannot both
// win.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus) (*models.Order, error) {
	if !to.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown status %q", to))
	}

	order, err := s.GetByID(ctx, orderID, nil)
	if err != nil {
		return nil, err
	}
	if order.Status == to {
		return order, nil
	}
	if !transitionAllowed(order.Status, to) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, to))
	}

	affected, err := s.repo.UpdateStatus(ctx, orderID, order.Status, to)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently")
	}
	return s.GetByID(ctx, orderID, nil)
}

func transitionAllowed(from, to enums.OrderStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
