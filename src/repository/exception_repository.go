package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"signalrelay/src/database"
	"signalrelay/src/model"
)

// ExceptionRepository handles persistence of captured exceptions.
type ExceptionRepository struct {
	db *gorm.DB
}

func NewExceptionRepository() *ExceptionRepository {
	return &ExceptionRepository{
		db: database.MainDB,
	}
}

func (r *ExceptionRepository) WithDB(db *gorm.DB) *ExceptionRepository {
	return &ExceptionRepository{db: db}
}

// Create persists a new exception.
func (r *ExceptionRepository) Create(ctx context.Context, exc *model.Exception) error {
	logger.WithFields(logger.Fields{
		"module": exc.Module,
		"method": exc.Method,
		"level":  exc.Level,
	}).Debug("Persisting exception")

	return r.db.WithContext(ctx).Create(exc).Error
}
