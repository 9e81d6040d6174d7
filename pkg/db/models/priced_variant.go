package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tripdesk/backoffice/pkg/enums"
	"github.com/tripdesk/backoffice/pkg/types"
)

// PricedVariant is a reservable sub-unit of a product. Variants are retired,
// never deleted.
type PricedVariant struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ProductID  uuid.UUID         `gorm:"column:product_id;type:uuid;not null;index"`
	Kind       enums.VariantKind `gorm:"column:kind;type:text;not null"`
	Name       string            `gorm:"column:name;not null"`
	BasePrice  decimal.Decimal   `gorm:"column:base_price;type:numeric(12,2);not null"`
	BaseCost   decimal.Decimal   `gorm:"column:base_cost;type:numeric(12,2);not null"`
	OwnerPrice decimal.Decimal   `gorm:"column:owner_price;type:numeric(12,2);not null"`
	AgentPrice decimal.Decimal   `gorm:"column:agent_price;type:numeric(12,2);not null"`
	RetiredAt  *time.Time        `gorm:"column:retired_at"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (v *PricedVariant) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// PricingID identifies the variant for period lookups.
func (v *PricedVariant) PricingID() uuid.UUID {
	return v.ID
}

// PricingKind reports the variant kind.
func (v *PricedVariant) PricingKind() enums.VariantKind {
	return v.Kind
}

// BaseTuple returns the variant's own prices, used when no period applies.
func (v *PricedVariant) BaseTuple() types.PriceTuple {
	return types.PriceTuple{
		Sale:     v.BasePrice,
		Cost:     v.BaseCost,
		OwnerRef: v.OwnerPrice,
		Agent:    v.AgentPrice,
	}
}

// IsRetired reports whether the variant has been withdrawn from sale.
func (v *PricedVariant) IsRetired() bool {
	return v.RetiredAt != nil
}
