package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "budgeteer/internal/errors"
)

// classifyStoreError maps a raw store error onto the engine taxonomy:
// duplicate keys become CONSTRAINT_VIOLATION (usually benign, callers
// fall back to lookup), everything else is a fatal STORE_FAILURE.
func classifyStoreError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Wrap(apperrors.ErrConstraintViolation, err)
	}
	return apperrors.Wrap(apperrors.ErrStoreFailure, err)
}

// isDuplicate reports whether the error is a duplicate-key violation,
// either raw or already classified.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var appErr *apperrors.AppError
	return errors.As(err, &appErr) && appErr.Code == apperrors.ErrConstraintViolation.Code
}
