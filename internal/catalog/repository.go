package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tripdesk/backoffice/internal/repo"
	"github.com/tripdesk/backoffice/pkg/dates"
	"github.com/tripdesk/backoffice/pkg/db/models"
	"github.com/tripdesk/backoffice/pkg/enums"
	pkgerrors "github.com/tripdesk/backoffice/pkg/errors"
)

// Repository persists the catalog entities that pricing and allotment read.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Rebind(tx)}
}

func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is required")
	}
	if !product.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid product category %q", product.Category))
	}
	if err := r.DB(ctx).Omit(clause.Associations).Create(product).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return product, nil
}

// LinkPartner associates a partner with a product. Linking twice is a no-op.
func (r *Repository) LinkPartner(ctx context.Context, productID, partnerID uuid.UUID) error {
	link := &models.ProductPartner{ProductID: productID, PartnerID: partnerID}
	err := r.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(link).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "link partner")
	}
	return nil
}

// UnlinkPartner removes a partner association.
func (r *Repository) UnlinkPartner(ctx context.Context, productID, partnerID uuid.UUID) error {
	err := r.DB(ctx).
		Where("product_id = ? AND partner_id = ?", productID, partnerID).
		Delete(&models.ProductPartner{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unlink partner")
	}
	return nil
}

// CountPartners returns how many partners manage allotment for the product.
func (r *Repository) CountPartners(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.ProductPartner{}).
		Where("product_id = ?", productID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CreateVariant stores a variant under an existing product. The variant kind
// must belong to the product's category.
func (r *Repository) CreateVariant(ctx context.Context, variant *models.PricedVariant) (*models.PricedVariant, error) {
	if variant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant is required")
	}
	if !variant.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid variant kind %q", variant.Kind))
	}

	product, err := repo.FindRequired[models.Product](r.DB(ctx).Where("id = ?", variant.ProductID), "product")
	if err != nil {
		return nil, err
	}
	if variant.Kind.Category() != product.Category {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("variant kind %s does not belong to %s products", variant.Kind, product.Category))
	}
	for _, price := range []decimal.Decimal{variant.BasePrice, variant.BaseCost, variant.OwnerPrice, variant.AgentPrice} {
		if price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "prices must not be negative")
		}
	}

	if err := r.DB(ctx).Omit(clause.Associations).Create(variant).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create variant")
	}
	return variant, nil
}

// FindVariant loads a variant with its product. Missing variants map to
// CodeNotFound.
func (r *Repository) FindVariant(ctx context.Context, id uuid.UUID) (*models.PricedVariant, error) {
	return repo.FindRequired[models.PricedVariant](
		r.DB(ctx).Preload("Product").Where("id = ?", id),
		"variant",
	)
}

// RetireVariant withdraws a variant from sale. Retiring twice keeps the first
// timestamp.
func (r *Repository) RetireVariant(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.DB(ctx).
		Model(&models.PricedVariant{}).
		Where("id = ? AND retired_at IS NULL", id).
		Update("retired_at", at.UTC())
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "retire variant")
	}
	if res.RowsAffected == 0 {
		if _, err := repo.FindRequired[models.PricedVariant](r.DB(ctx).Where("id = ?", id), "variant"); err != nil {
			return err
		}
	}
	return nil
}

// CreatePricePeriod stores an override period. Overlap with existing periods
// is allowed; resolution picks the newest.
func (r *Repository) CreatePricePeriod(ctx context.Context, period *models.PricePeriod) (*models.PricePeriod, error) {
	if period == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price period is required")
	}
	period.StartDate = dates.Normalize(period.StartDate)
	period.EndDate = dates.Normalize(period.EndDate)
	if period.StartDate.IsZero() || period.EndDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start and end dates are required")
	}
	if period.StartDate.After(period.EndDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start date must not be after end date").
			WithDetails(map[string]string{
				"start_date": dates.Format(period.StartDate),
				"end_date":   dates.Format(period.EndDate),
			})
	}
	if _, err := repo.FindRequired[models.PricedVariant](r.DB(ctx).Where("id = ?", period.VariantID), "variant"); err != nil {
		return nil, err
	}
	if err := r.DB(ctx).Create(period).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create price period")
	}
	return period, nil
}

// DeletePricePeriod removes a period independently of its variant.
func (r *Repository) DeletePricePeriod(ctx context.Context, id uuid.UUID) error {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.PricePeriod{})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "delete price period")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "price period not found")
	}
	return nil
}

// ListPricePeriods returns every period of the variant ordered by start date.
func (r *Repository) ListPricePeriods(ctx context.Context, variantID uuid.UUID) ([]models.PricePeriod, error) {
	var periods []models.PricePeriod
	err := r.DB(ctx).
		Where("variant_id = ?", variantID).
		Order("start_date ASC").
		Order("created_at ASC").
		Find(&periods).Error
	if err != nil {
		return nil, err
	}
	return periods, nil
}

// FindCoveringPeriod returns the period whose inclusive range contains day,
// or nil when none does. Overlapping periods resolve to the most recently
// created one.
func (r *Repository) FindCoveringPeriod(ctx context.Context, variantID uuid.UUID, day time.Time) (*models.PricePeriod, error) {
	day = dates.Normalize(day)
	return repo.FindOptional[models.PricePeriod](
		r.DB(ctx).
			Where("variant_id = ? AND start_date <= ? AND end_date >= ?", variantID, day, day).
			Order("created_at DESC").
			Order("id DESC"),
	)
}

// UpsertAllotment sets the partner's stock for one night.
func (r *Repository) UpsertAllotment(ctx context.Context, allotment *models.PartnerAllotment) (*models.PartnerAllotment, error) {
	if allotment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "allotment is required")
	}
	if allotment.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}
	allotment.Date = dates.Normalize(allotment.Date)
	if allotment.Date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}

	err := r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "partner_id"}, {Name: "variant_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"stock", "discount", "updated_at"}),
		}).
		Create(allotment).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert allotment")
	}
	// on conflict the stored row keeps its original id
	stored, err := r.FindAllotment(ctx, allotment.PartnerID, allotment.VariantID, allotment.Date)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload allotment")
	}
	if stored == nil {
		return allotment, nil
	}
	return stored, nil
}

// UpsertAllotmentDefault sets the stock used for dates without their own row.
func (r *Repository) UpsertAllotmentDefault(ctx context.Context, def *models.PartnerAllotmentDefault) (*models.PartnerAllotmentDefault, error) {
	if def == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "allotment default is required")
	}
	if def.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}

	err := r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "partner_id"}, {Name: "variant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"stock", "discount", "updated_at"}),
		}).
		Create(def).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert allotment default")
	}
	return def, nil
}

// FindAllotment returns the partner's row for the night, or nil.
func (r *Repository) FindAllotment(ctx context.Context, partnerID, variantID uuid.UUID, day time.Time) (*models.PartnerAllotment, error) {
	return repo.FindOptional[models.PartnerAllotment](
		r.DB(ctx).Where("partner_id = ? AND variant_id = ? AND date = ?", partnerID, variantID, dates.Normalize(day)),
	)
}

// FindAllotmentDefault returns the partner's fallback row, or nil.
func (r *Repository) FindAllotmentDefault(ctx context.Context, partnerID, variantID uuid.UUID) (*models.PartnerAllotmentDefault, error) {
	return repo.FindOptional[models.PartnerAllotmentDefault](
		r.DB(ctx).Where("partner_id = ? AND variant_id = ?", partnerID, variantID),
	)
}

// BookedQuantity sums live reservation lines for the variant on day.
// Soft-deleted lines are excluded by the model's DeletedAt scope.
func (r *Repository) BookedQuantity(ctx context.Context, variantID uuid.UUID, day time.Time) (int64, error) {
	var booked int64
	err := r.DB(ctx).
		Model(&models.ReservationLine{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("variant_id = ? AND service_date = ?", variantID, dates.Normalize(day)).
		Scan(&booked).Error
	if err != nil {
		return 0, err
	}
	return booked, nil
}

// ListProducts returns products of the category, or all when category is empty.
func (r *Repository) ListProducts(ctx context.Context, category enums.ProductCategory) ([]models.Product, error) {
	query := r.DB(ctx).Preload("Variants", "retired_at IS NULL").Order("name ASC")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
