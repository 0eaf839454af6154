package models

import "time"

// Customization captures the tailoring choices attached to a cart line.
// A nil pointer and a zero-valued record mean the same thing: no customization.
type Customization struct {
	StitchingOption string `json:"stitching_option,omitempty"`
	StitchingSize   string `json:"stitching_size,omitempty"`
	Padding         string `json:"padding,omitempty"`
	Design          string `json:"design,omitempty"`
}

// AddOns are independently priced services attached to a cart line.
// Their surcharges live in the pricing package.
type AddOns struct {
	PreDrape  bool `json:"pre_drape,omitempty"`
	Petticoat bool `json:"petticoat,omitempty"`
}

// CartLine is one priced entry in a cart. UnitPrice is snapshotted from the
// product at add time and never updated afterwards.
type CartLine struct {
	ProductID     uint           `json:"product_id"`
	ProductName   string         `json:"product_name"`
	ProductImage  string         `json:"product_image"`
	Size          string         `json:"size"`
	Quantity      int            `json:"quantity"`
	UnitPrice     int64          `json:"unit_price"`
	Customization *Customization `json:"customization,omitempty"`
	AddOns        *AddOns        `json:"add_ons,omitempty"`
	AddedAt       time.Time      `json:"added_at"`
}

// SameIdentity reports whether two lines are the same cart line: identical
// product, size, customization and add-ons. Quantity and timestamps are not
// part of identity. Comparison is structural, field by field, so it cannot be
// tripped up by serialization key order.
func (l CartLine) SameIdentity(other CartLine) bool {
	return l.ProductID == other.ProductID &&
		l.Size == other.Size &&
		equalCustomization(l.Customization, other.Customization) &&
		equalAddOns(l.AddOns, other.AddOns)
}

func equalCustomization(a, b *Customization) bool {
	// nil and the zero value both mean "no customization"
	av, bv := Customization{}, Customization{}
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

func equalAddOns(a, b *AddOns) bool {
	av, bv := AddOns{}, AddOns{}
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

// CartSnapshot is the single durable row holding a user's serialized cart.
// One row per user, last write wins.
type CartSnapshot struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"uniqueIndex;not null"`
	Payload   string `gorm:"type:text"`
	UpdatedAt time.Time
}
