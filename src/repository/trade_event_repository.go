package repository

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"signalrelay/src/database"
	"signalrelay/src/model"
)

const defaultSearchLimit = 100

// TradeEventRepository persists the OPEN/CLOSE/ERROR audit trail.
type TradeEventRepository struct {
	db *gorm.DB
}

// TradeEventSearchOptions filters Search. Nil fields are ignored.
type TradeEventSearchOptions struct {
	Ticker *string
	Action *string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// NewTradeEventRepository creates a repository on the main database.
func NewTradeEventRepository() *TradeEventRepository {
	logger.WithField("component", "TradeEventRepository").
		Info("Creating new TradeEventRepository with MainDB")

	return &TradeEventRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *TradeEventRepository) WithDB(db *gorm.DB) *TradeEventRepository {
	return &TradeEventRepository{db: db}
}

// Create inserts one trade event.
func (r *TradeEventRepository) Create(ctx context.Context, event *model.TradeEvent) error {
	fields := logger.Fields{
		"repo":   "TradeEventRepository",
		"op":     "Create",
		"action": event.Action,
		"ticker": event.Ticker,
	}
	logger.WithFields(fields).Debug("Creating trade event")

	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		logger.WithFields(fields).WithError(err).Error("Failed to create trade event")
		return err
	}

	return nil
}

// Latest returns the most recent events, newest first.
func (r *TradeEventRepository) Latest(ctx context.Context, limit int) ([]model.TradeEvent, error) {
	return r.Search(ctx, TradeEventSearchOptions{Limit: limit})
}

// Search returns events matching opts ordered by timestamp descending.
func (r *TradeEventRepository) Search(ctx context.Context, opts TradeEventSearchOptions) ([]model.TradeEvent, error) {
	query := r.db.WithContext(ctx).Model(&model.TradeEvent{})

	if opts.Ticker != nil {
		query = query.Where("ticker = ?", *opts.Ticker)
	}
	if opts.Action != nil {
		query = query.Where("action = ?", *opts.Action)
	}
	if opts.From != nil {
		query = query.Where("timestamp >= ?", *opts.From)
	}
	if opts.To != nil {
		query = query.Where("timestamp <= ?", *opts.To)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	query = query.Order("timestamp DESC, id DESC").Limit(limit)
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	var events []model.TradeEvent
	if err := query.Find(&events).Error; err != nil {
		logger.WithFields(logger.Fields{
			"repo": "TradeEventRepository",
			"op":   "Search",
		}).WithError(err).Error("Failed to search trade events")
		return nil, err
	}

	return events, nil
}
