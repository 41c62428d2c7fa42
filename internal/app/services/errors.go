package services

import (
	"errors"
	"strings"

	"github.com/yigit/academy/internal/app/repositories"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/logger"
)

// storeError logs a driver failure and wraps it as an internal error
func storeError(op string, err error) error {
	logger.Error().Err(err).Str("op", op).Msg("Store operation failed")
	return apperrors.NewStoreError(op, err)
}

// mapRepoError translates repository errors for one entity
func mapRepoError(op string, err error, notFound error, duplicate func(field string) error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return notFound
	}
	if field, ok := repositories.DuplicateField(err); ok {
		return duplicate(field)
	}
	return storeError(op, err)
}

func requireString(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.NewMissingFieldError(field)
	}
	return nil
}

func requireWeekID(weekID int) error {
	if weekID == 0 {
		return apperrors.NewMissingFieldError("weekId")
	}
	if weekID < 0 {
		return apperrors.NewValidationError("weekId", "weekId must be a positive integer")
	}
	return nil
}
