// Package pricing prices cart lines and whole carts. Everything here is a
// pure function over in-memory lines: no I/O, no clock, no randomness.
// All amounts are in the smallest currency subunit (paise).
package pricing

import "github.com/craftloom/storefront-api/models"

// AddOnCharges is the single table of fixed per-unit surcharges for the
// optional services a line can carry.
var AddOnCharges = struct {
	PreDrape  int64
	Petticoat int64
}{
	PreDrape:  1750,
	Petticoat: 1245,
}

// Surcharge returns the per-unit add-on surcharge for a line's add-on flags.
func Surcharge(a *models.AddOns) int64 {
	if a == nil {
		return 0
	}
	var s int64
	if a.PreDrape {
		s += AddOnCharges.PreDrape
	}
	if a.Petticoat {
		s += AddOnCharges.Petticoat
	}
	return s
}

// LinePrice is the breakdown for a single cart line.
type LinePrice struct {
	Base      int64 `json:"base"`      // unit price * quantity
	Surcharge int64 `json:"surcharge"` // add-on charges * quantity
	LineTotal int64 `json:"line_total"`
}

// PriceLine prices one line. Callers are responsible for handing in a
// sanitized line with quantity >= 1.
func PriceLine(l models.CartLine) LinePrice {
	qty := int64(l.Quantity)
	base := l.UnitPrice * qty
	sur := Surcharge(l.AddOns) * qty
	return LinePrice{
		Base:      base,
		Surcharge: sur,
		LineTotal: base + sur,
	}
}

// CartPrice aggregates a cart. Shipping is free across the store.
type CartPrice struct {
	ItemsSubtotal int64 `json:"items_subtotal"`
	AddOnSubtotal int64 `json:"add_on_subtotal"`
	Shipping      int64 `json:"shipping"`
	Total         int64 `json:"total"`
}

// PriceCart totals a set of lines. An empty cart prices to all zeros.
// Line order never affects the result.
func PriceCart(lines []models.CartLine) CartPrice {
	var p CartPrice
	for _, l := range lines {
		lp := PriceLine(l)
		p.ItemsSubtotal += lp.Base
		p.AddOnSubtotal += lp.Surcharge
	}
	p.Total = p.ItemsSubtotal + p.AddOnSubtotal + p.Shipping
	return p
}

// PriceItems totals already-snapshotted order items, used to reconcile an
// order submission against the engine.
func PriceItems(items []models.OrderItem) CartPrice {
	lines := make([]models.CartLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, models.CartLine{
			ProductID:     it.ProductID,
			Size:          it.Size,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			Customization: it.Customization,
			AddOns:        it.AddOns,
		})
	}
	return PriceCart(lines)
}
