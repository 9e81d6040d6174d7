package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripdesk/backoffice/internal/repo"
	"github.com/tripdesk/backoffice/pkg/db/models"
	pkgerrors "github.com/tripdesk/backoffice/pkg/errors"
	"github.com/tripdesk/backoffice/pkg/pagination"
)

// Repository persists reservations and their lines.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Rebind(tx)}
}

// Create inserts the reservation and its lines.
func (r *Repository) Create(ctx context.Context, reservation *models.Reservation) error {
	if err := r.DB(ctx).Create(reservation).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create reservation")
	}
	return nil
}

// FindByID loads a reservation with every line, cancelled ones included.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	return repo.FindRequired[models.Reservation](
		r.DB(ctx).
			Preload("Lines", func(db *gorm.DB) *gorm.DB {
				return db.Unscoped().Order("service_date ASC")
			}).
			Where("id = ?", id),
		"reservation",
	)
}

// Cancel stamps the reservation and soft-deletes its lines so they leave the
// booked quantity. It reports false when the reservation was already cancelled.
func (r *Repository) Cancel(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.DB(ctx).
		Model(&models.Reservation{}).
		Where("id = ? AND cancelled_at IS NULL", id).
		Update("cancelled_at", at.UTC())
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "cancel reservation")
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	if err := r.DB(ctx).Where("reservation_id = ?", id).Delete(&models.ReservationLine{}).Error; err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "release reservation lines")
	}
	return true, nil
}

type listQuery struct {
	partnerID  uuid.UUID
	variantID  uuid.UUID
	activeOnly bool
	limit      int
	cursor     *pagination.Cursor
}

// List returns reservations newest first, without lines. limit should carry
// one extra row so the caller can detect the next page.
func (r *Repository) List(ctx context.Context, q listQuery) ([]models.Reservation, error) {
	query := r.DB(ctx).Model(&models.Reservation{})
	if q.partnerID != uuid.Nil {
		query = query.Where("partner_id = ?", q.partnerID)
	}
	if q.variantID != uuid.Nil {
		query = query.Where("variant_id = ?", q.variantID)
	}
	if q.activeOnly {
		query = query.Where("cancelled_at IS NULL")
	}
	if q.cursor != nil {
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)", q.cursor.CreatedAt, q.cursor.CreatedAt, q.cursor.ID)
	}

	var rows []models.Reservation
	if err := query.Order("created_at DESC, id DESC").Limit(q.limit).Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reservations")
	}
	return rows, nil
}
