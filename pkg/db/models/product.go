package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripdesk/backoffice/pkg/enums"
)

// Product is a catalog entry (a hotel, an attraction, a tour) owning variants.
type Product struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Category  enums.ProductCategory `gorm:"column:category;type:text;not null"`
	Name      string                `gorm:"column:name;not null"`
	IsActive  bool                  `gorm:"column:is_active;not null"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time             `gorm:"column:updated_at;autoUpdateTime"`

	Variants []PricedVariant  `gorm:"foreignKey:ProductID"`
	Partners []ProductPartner `gorm:"foreignKey:ProductID"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProductPartner links a product to a partner that manages its allotment.
type ProductPartner struct {
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	PartnerID uuid.UUID `gorm:"column:partner_id;type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
