package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"signalrelay/src/database"
	"signalrelay/src/model"
)

// WebhookAlertRepository keeps the raw log of every authorised webhook.
type WebhookAlertRepository struct {
	db *gorm.DB
}

func NewWebhookAlertRepository() *WebhookAlertRepository {
	return &WebhookAlertRepository{db: database.MainDB}
}

func (r *WebhookAlertRepository) WithDB(db *gorm.DB) *WebhookAlertRepository {
	return &WebhookAlertRepository{db: db}
}

func (r *WebhookAlertRepository) Create(ctx context.Context, alert *model.WebhookAlert) error {
	if err := r.db.WithContext(ctx).Create(alert).Error; err != nil {
		logger.WithFields(logger.Fields{
			"repo":   "WebhookAlertRepository",
			"op":     "Create",
			"ticker": alert.Ticker,
		}).WithError(err).Error("Failed to store webhook alert")
		return err
	}
	return nil
}

// Latest returns the newest alerts first.
func (r *WebhookAlertRepository) Latest(ctx context.Context, limit int) ([]model.WebhookAlert, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var alerts []model.WebhookAlert
	err := r.db.WithContext(ctx).
		Order("received_at DESC, id DESC").
		Limit(limit).
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}
