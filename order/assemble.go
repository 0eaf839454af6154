// Package order holds the checkout assembler and the fulfilment state
// machine. Assembly turns a priced cart plus shipping input into an immutable
// submission; the lifecycle governs every status change after that.
package order

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/craftloom/storefront-api/models"
	"github.com/craftloom/storefront-api/pricing"
)

// ValidationError names the field and reason of the first rule an assembly
// request violates. The reason is specific enough to render as-is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ShippingInput is the raw shipping form as the customer typed it.
type ShippingInput struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Submission is the immutable order payload produced by Assemble. Items are
// snapshotted from the cart so later cart mutations cannot alter it.
type Submission struct {
	Items             []models.OrderItem
	Shipping          models.ShippingAddress
	PaymentMethod     models.PaymentMethod
	CustomizationNote string
	ItemsPrice        int64
	ShippingPrice     int64
	TotalPrice        int64
}

// ProductInfo is the live product view used for the stock gate, fetched
// through the product lookup collaborator.
type ProductInfo struct {
	Price        int64
	InStock      bool
	CountInStock int
}

// ProductLookup resolves a product reference to its live price/stock state.
type ProductLookup func(productID uint) (ProductInfo, error)

const maxNoteLength = 500

var (
	nonDigits    = regexp.MustCompile(`\D`)
	postalCodeRe = regexp.MustCompile(`^[0-9]{6}$`)
	countryRe    = regexp.MustCompile(`^[A-Za-z ]+$`)
)

// Assemble validates the checkout request and snapshots the cart into a
// Submission. Rules run in a fixed order and the first violation wins.
// Assemble has no side effects: persisting the submission and clearing the
// cart are the caller's job, after the backend confirms persistence.
func Assemble(lines []models.CartLine, lookup ProductLookup, shipping ShippingInput, method models.PaymentMethod, note string) (*Submission, error) {
	if len(lines) == 0 {
		return nil, &ValidationError{Field: "cart", Reason: "cart is empty"}
	}

	// 1. all shipping fields present
	fields := []struct{ name, value string }{
		{"name", shipping.Name},
		{"phone", shipping.Phone},
		{"address", shipping.Address},
		{"city", shipping.City},
		{"state", shipping.State},
		{"postal_code", shipping.PostalCode},
		{"country", shipping.Country},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return nil, &ValidationError{Field: f.name, Reason: f.name + " is required"}
		}
	}

	// 2. stock gate: reject the whole submission if any line's product is
	// out of stock, naming an offending item
	for _, l := range lines {
		info, err := lookup(l.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product lookup for %q: %w", l.ProductName, err)
		}
		if !info.InStock || info.CountInStock < l.Quantity {
			return nil, &ValidationError{
				Field:  "items",
				Reason: fmt.Sprintf("%q is out of stock", l.ProductName),
			}
		}
	}

	// 3. phone: exactly 10 digits once separators are stripped
	phone := nonDigits.ReplaceAllString(shipping.Phone, "")
	if len(phone) != 10 {
		return nil, &ValidationError{Field: "phone", Reason: "phone number must be 10 digits"}
	}

	// 4. postal code: exactly 6 digits
	if !postalCodeRe.MatchString(strings.TrimSpace(shipping.PostalCode)) {
		return nil, &ValidationError{Field: "postal_code", Reason: "postal code must be 6 digits"}
	}

	// 5. country: letters and spaces only
	if !countryRe.MatchString(strings.TrimSpace(shipping.Country)) {
		return nil, &ValidationError{Field: "country", Reason: "country may contain only letters and spaces"}
	}

	// 6. customization note length
	if len(note) > maxNoteLength {
		return nil, &ValidationError{Field: "customization_note", Reason: fmt.Sprintf("customization note must be at most %d characters", maxNoteLength)}
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.OrderItem{
			ProductID:     l.ProductID,
			ProductName:   l.ProductName,
			ProductImage:  l.ProductImage,
			Size:          l.Size,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
			Customization: l.Customization,
			AddOns:        l.AddOns,
		})
	}

	price := pricing.PriceCart(lines)
	itemsPrice := price.ItemsSubtotal + price.AddOnSubtotal
	return &Submission{
		Items: items,
		Shipping: models.ShippingAddress{
			Name:       strings.TrimSpace(shipping.Name),
			Phone:      phone,
			Address:    strings.TrimSpace(shipping.Address),
			City:       strings.TrimSpace(shipping.City),
			State:      strings.TrimSpace(shipping.State),
			PostalCode: strings.TrimSpace(shipping.PostalCode),
			Country:    strings.TrimSpace(shipping.Country),
		},
		PaymentMethod:     method,
		CustomizationNote: note,
		ItemsPrice:        itemsPrice,
		ShippingPrice:     price.Shipping,
		TotalPrice:        itemsPrice + price.Shipping,
	}, nil
}
