package enums

import "fmt"

// ProductCategory groups products that share a discount rate.
type ProductCategory string

const (
	ProductCategoryHotel   ProductCategory = "hotel"
	ProductCategoryTicket  ProductCategory = "ticket"
	ProductCategoryVanTour ProductCategory = "van_tour"
)

var validProductCategories = []ProductCategory{
	ProductCategoryHotel,
	ProductCategoryTicket,
	ProductCategoryVanTour,
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}
