// Package repository is the GORM-backed store of the catalog. Every call is
// scoped to a tenant and takes the request context.
package repository

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/apperr"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = apperr.NotFound("No document found with that ID")
	ErrDuplicate = apperr.Conflict("Duplicate field value. Please use another value")
)

// translate maps driver errors onto the apperr taxonomy. The database must be
// opened with TranslateError so unique violations arrive as ErrDuplicatedKey.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.Wrap(ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Wrap(ErrDuplicate, err)
	default:
		return err
	}
}
