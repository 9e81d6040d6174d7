package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PartnerAllotment is a partner's contracted stock of a variant for one night.
type PartnerAllotment struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	PartnerID uuid.UUID           `gorm:"column:partner_id;type:uuid;not null;uniqueIndex:uq_partner_allotments,priority:1"`
	VariantID uuid.UUID           `gorm:"column:variant_id;type:uuid;not null;uniqueIndex:uq_partner_allotments,priority:2"`
	Date      time.Time           `gorm:"column:date;type:date;not null;uniqueIndex:uq_partner_allotments,priority:3"`
	Stock     int64               `gorm:"column:stock;not null;check:chk_partner_allotments_stock,stock >= 0"`
	Discount  decimal.NullDecimal `gorm:"column:discount;type:numeric(12,2)"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *PartnerAllotment) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// PartnerAllotmentDefault supplies stock for every date without its own row.
type PartnerAllotmentDefault struct {
	PartnerID uuid.UUID           `gorm:"column:partner_id;type:uuid;primaryKey"`
	VariantID uuid.UUID           `gorm:"column:variant_id;type:uuid;primaryKey"`
	Stock     int64               `gorm:"column:stock;not null;check:chk_partner_allotment_defaults_stock,stock >= 0"`
	Discount  decimal.NullDecimal `gorm:"column:discount;type:numeric(12,2)"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
