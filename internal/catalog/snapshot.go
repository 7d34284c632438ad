package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/binarymart/storefront-backend/pkg/enums"
)

// Snapshot is the line-agnostic view of one sellable catalog item, read at a
// single point in time. Pricing and stock decisions are made against a
// Snapshot, never against the raw rows, so both product lines flow through
// the same cart and checkout code.
type Snapshot struct {
	Line         enums.ProductLine
	ID           uuid.UUID
	Name         string
	BasePrice    decimal.Decimal
	SpecialPrice *decimal.Decimal
	StartDate    *time.Time
	ExpiryDate   *time.Time
	Stock        int
	IsActive     bool
}

// StockLimited reports whether the item can run out. Software plans are
// issued on demand and never deplete.
func (s *Snapshot) StockLimited() bool {
	return s.Line == enums.ProductLineCartridge
}

// HasStock reports whether qty units are available.
func (s *Snapshot) HasStock(qty int) bool {
	if !s.StockLimited() {
		return true
	}
	return s.Stock >= qty
}
