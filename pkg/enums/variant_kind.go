package enums

import "fmt"

// VariantKind is the closed set of reservable sub-units a product can expose.
type VariantKind string

const (
	VariantKindRoomType     VariantKind = "room_type"
	VariantKindTicketTier   VariantKind = "ticket_tier"
	VariantKindVehicleClass VariantKind = "vehicle_class"
)

type variantKindTraits struct {
	category   ProductCategory
	nightBased bool
}

var variantKinds = map[VariantKind]variantKindTraits{
	VariantKindRoomType:     {category: ProductCategoryHotel, nightBased: true},
	VariantKindTicketTier:   {category: ProductCategoryTicket},
	VariantKindVehicleClass: {category: ProductCategoryVanTour},
}

// String implements fmt.Stringer.
func (k VariantKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known VariantKind.
func (k VariantKind) IsValid() bool {
	_, ok := variantKinds[k]
	return ok
}

// Category returns the product category the kind belongs to.
func (k VariantKind) Category() ProductCategory {
	return variantKinds[k].category
}

// NightBased reports whether a stay occupies one service date per night,
// excluding the checkout date.
func (k VariantKind) NightBased() bool {
	return variantKinds[k].nightBased
}

// ParseVariantKind converts raw input into a VariantKind.
func ParseVariantKind(value string) (VariantKind, error) {
	kind := VariantKind(value)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid variant kind %q", value)
	}
	return kind, nil
}
