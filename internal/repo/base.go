package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	pkgerrors "github.com/tripdesk/backoffice/pkg/errors"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Rebind returns a Base running on tx, typically an open transaction.
func (b Base) Rebind(tx *gorm.DB) Base {
	return Base{db: tx}
}

// FindOptional runs First on query. A missing row yields (nil, nil).
func FindOptional[T any](query *gorm.DB) (*T, error) {
	var out T
	err := query.First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FindRequired runs First on query and maps a missing row to CodeNotFound.
func FindRequired[T any](query *gorm.DB, entity string) (*T, error) {
	var out T
	err := query.First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s not found", entity))
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("load %s", entity))
	}
	return &out, nil
}
