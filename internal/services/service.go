package services

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errMissingDatabase = errors.New("services: database handle is required")

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func kindLabel(err error) string {
	if kind := KindOf(err); kind != nil {
		return kind.Error()
	}
	return "unknown"
}

// ensureExists fails with ErrNotFound when no row of model has the given id.
func ensureExists(tx *gorm.DB, op string, model any, id, what string) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return newError(op, ErrNotFound, what+" not found")
	}
	return nil
}
