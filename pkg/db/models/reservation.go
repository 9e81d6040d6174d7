package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tripdesk/backoffice/pkg/enums"
)

// Reservation is a booking of a variant through a partner. AllotmentOutcome
// records the capacity check made before the lines were written.
type Reservation struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	PartnerID        uuid.UUID              `gorm:"column:partner_id;type:uuid;not null;index"`
	VariantID        uuid.UUID              `gorm:"column:variant_id;type:uuid;not null;index"`
	CheckIn          time.Time              `gorm:"column:check_in;type:date;not null"`
	CheckOut         *time.Time             `gorm:"column:check_out;type:date"`
	Quantity         int64                  `gorm:"column:quantity;not null"`
	AllotmentOutcome enums.AllotmentOutcome `gorm:"column:allotment_outcome;type:text;not null"`
	AllotmentNote    string                 `gorm:"column:allotment_note;not null;default:''"`
	TotalSale        decimal.Decimal        `gorm:"column:total_sale;type:numeric(12,2);not null"`
	CancelledAt      *time.Time             `gorm:"column:cancelled_at"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime"`

	Lines []ReservationLine `gorm:"foreignKey:ReservationID"`
}

func (r *Reservation) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ReservationLine consumes Quantity units of a variant on ServiceDate.
// Soft-deleted lines no longer count toward booked quantity.
type ReservationLine struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ReservationID uuid.UUID       `gorm:"column:reservation_id;type:uuid;not null;index"`
	VariantID     uuid.UUID       `gorm:"column:variant_id;type:uuid;not null;index:idx_reservation_lines_booked,priority:1"`
	ServiceDate   time.Time       `gorm:"column:service_date;type:date;not null;index:idx_reservation_lines_booked,priority:2"`
	Quantity      int64           `gorm:"column:quantity;not null"`
	UnitSale      decimal.Decimal `gorm:"column:unit_sale;type:numeric(12,2);not null"`
	UnitCost      decimal.Decimal `gorm:"column:unit_cost;type:numeric(12,2);not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	DeletedAt     gorm.DeletedAt  `gorm:"column:deleted_at;index"`
}

func (l *ReservationLine) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
