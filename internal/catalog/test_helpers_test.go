package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tripdesk/backoffice/pkg/db/dbtest"
	"github.com/tripdesk/backoffice/pkg/db/models"
	"github.com/tripdesk/backoffice/pkg/enums"
)

func newTestRepository(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	return NewRepository(conn), conn
}

func mustCreateHotelVariant(t *testing.T, r *Repository) *models.PricedVariant {
	t.Helper()
	ctx := context.Background()
	product, err := r.CreateProduct(ctx, &models.Product{
		Category: enums.ProductCategoryHotel,
		Name:     "Harbour View Hotel",
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	variant, err := r.CreateVariant(ctx, &models.PricedVariant{
		ProductID:  product.ID,
		Kind:       enums.VariantKindRoomType,
		Name:       "Deluxe Double",
		BasePrice:  decimal.NewFromInt(1000),
		BaseCost:   decimal.NewFromInt(600),
		OwnerPrice: decimal.NewFromInt(1200),
		AgentPrice: decimal.NewFromInt(900),
	})
	if err != nil {
		t.Fatalf("create variant: %v", err)
	}
	return variant
}

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func newPartnerID() uuid.UUID {
	return uuid.New()
}
