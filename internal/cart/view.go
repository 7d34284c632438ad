package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/binarymart/storefront-backend/pkg/enums"
)

// View is the annotated read model of a cart. CartID is nil when the user
// has no active cart.
type View struct {
	CartID   *uuid.UUID      `json:"cart_id,omitempty"`
	Items    []LineView      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// LineView is one cart line enriched with live catalog data. UnitPrice is
// the snapshot taken when the line was written; CurrentPrice is what the
// catalog would charge right now. Available is false when the item has been
// removed or deactivated since it was added.
type LineView struct {
	CartItemID      uuid.UUID         `json:"cart_item_id"`
	Line            enums.ProductLine `json:"product_line"`
	CatalogItemID   uuid.UUID         `json:"catalog_item_id"`
	Name            string            `json:"name,omitempty"`
	UnitPrice       decimal.Decimal   `json:"unit_price"`
	CurrentPrice    *decimal.Decimal  `json:"current_price,omitempty"`
	Quantity        int               `json:"quantity"`
	PriceChanged    bool              `json:"price_changed"`
	StockSufficient bool              `json:"stock_sufficient"`
	Available       bool              `json:"available"`
}

// LineTotal is the snapshot price extended by quantity.
func (l LineView) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
