package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartLineSameIdentity(t *testing.T) {
	base := CartLine{ProductID: 1, Size: "M", Quantity: 2, UnitPrice: 1000}

	tests := []struct {
		name  string
		other CartLine
		same  bool
	}{
		{
			name:  "identical fields, different quantity",
			other: CartLine{ProductID: 1, Size: "M", Quantity: 5, UnitPrice: 1000},
			same:  true,
		},
		{
			name:  "different size",
			other: CartLine{ProductID: 1, Size: "L", Quantity: 2, UnitPrice: 1000},
			same:  false,
		},
		{
			name:  "different product",
			other: CartLine{ProductID: 2, Size: "M", Quantity: 2, UnitPrice: 1000},
			same:  false,
		},
		{
			name:  "add-on makes it a distinct line",
			other: CartLine{ProductID: 1, Size: "M", AddOns: &AddOns{PreDrape: true}},
			same:  false,
		},
		{
			name:  "customization makes it a distinct line",
			other: CartLine{ProductID: 1, Size: "M", Customization: &Customization{StitchingOption: "blouse"}},
			same:  false,
		},
		{
			name:  "nil and zero-valued customization are the same identity",
			other: CartLine{ProductID: 1, Size: "M", Customization: &Customization{}, AddOns: &AddOns{}},
			same:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.same, base.SameIdentity(tt.other))
			assert.Equal(t, tt.same, tt.other.SameIdentity(base), "identity must be symmetric")
		})
	}
}

func TestCartLineIdentityStructural(t *testing.T) {
	// Identity compares records structurally; two pointers with equal
	// contents match regardless of how they were built.
	a := CartLine{ProductID: 3, Size: "S",
		Customization: &Customization{StitchingOption: "lehenga", StitchingSize: "38", Padding: "yes", Design: "v-neck"},
		AddOns:        &AddOns{Petticoat: true}}
	b := CartLine{ProductID: 3, Size: "S",
		Customization: &Customization{Design: "v-neck", Padding: "yes", StitchingSize: "38", StitchingOption: "lehenga"},
		AddOns:        &AddOns{Petticoat: true}}
	assert.True(t, a.SameIdentity(b))

	b.Customization.Design = "round-neck"
	assert.False(t, a.SameIdentity(b))
}
