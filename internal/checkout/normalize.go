package checkout

import (
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/binarymart/storefront-backend/pkg/errors"
)

type lineKey struct {
	line          string
	catalogItemID uuid.UUID
}

// Normalize validates a requested item list and merges duplicate references
// by summing their quantities. Bounds are enforced on the merged result, so
// a client cannot sidestep the per-item limit by splitting a line in two.
// Order of first appearance is preserved.
func Normalize(items []ItemInput, maxItemQty, maxOrderLines int) ([]ItemInput, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no items to purchase")
	}

	merged := make([]ItemInput, 0, len(items))
	index := make(map[lineKey]int, len(items))
	for i, item := range items {
		if !item.Line.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("item %d: unknown product line %q", i, item.Line))
		}
		if item.CatalogItemID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("item %d: catalog item id is required", i))
		}
		if item.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("item %d: quantity must be positive", i))
		}

		key := lineKey{line: string(item.Line), catalogItemID: item.CatalogItemID}
		if pos, ok := index[key]; ok {
			merged[pos].Qty += item.Qty
			continue
		}
		index[key] = len(merged)
		merged = append(merged, item)
	}

	if len(merged) > maxOrderLines {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("order has %d lines, limit is %d", len(merged), maxOrderLines))
	}
	for _, item := range merged {
		if item.Qty > maxItemQty {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("quantity %d for item %s exceeds the per-item limit of %d",
					item.Qty, item.CatalogItemID, maxItemQty))
		}
	}
	return merged, nil
}
