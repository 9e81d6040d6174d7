package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PricePeriod overrides a variant's sale, cost and agent prices for the
// inclusive range [StartDate, EndDate]. Periods may overlap.
type PricePeriod struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	VariantID  uuid.UUID       `gorm:"column:variant_id;type:uuid;not null;index:idx_price_periods_lookup,priority:1"`
	StartDate  time.Time       `gorm:"column:start_date;type:date;not null;index:idx_price_periods_lookup,priority:2;check:chk_price_periods_range,start_date <= end_date"`
	EndDate    time.Time       `gorm:"column:end_date;type:date;not null"`
	SalePrice  decimal.Decimal `gorm:"column:sale_price;type:numeric(12,2);not null"`
	CostPrice  decimal.Decimal `gorm:"column:cost_price;type:numeric(12,2);not null"`
	AgentPrice decimal.Decimal `gorm:"column:agent_price;type:numeric(12,2);not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (p *PricePeriod) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
