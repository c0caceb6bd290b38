package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"relayapi/src/database"
	"relayapi/src/model"
)

// EventRepository handles the relational event archive.
type EventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a repository on the archive connection.
func NewEventRepository() *EventRepository {
	return &EventRepository{db: database.ArchiveDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *EventRepository) WithDB(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts one archived event row.
func (r *EventRepository) Create(ctx context.Context, evt *model.ArchivedEvent) error {
	err := r.db.WithContext(ctx).Create(evt).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "EventRepository",
			"op":   "Create",
			"id":   evt.ID,
		}).WithError(err).Error("Failed to archive event")

		return err
	}
	return nil
}

// CountSince counts archived events with id strictly greater than sinceID.
func (r *EventRepository) CountSince(ctx context.Context, sinceID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ArchivedEvent{}).
		Where("id > ?", sinceID).
		Count(&count).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "EventRepository",
			"op":       "CountSince",
			"since_id": sinceID,
		}).WithError(err).Error("Failed to count archived events")

		return 0, err
	}
	return count, nil
}

// LastByTraderKey fetches the most recent archived event for a trader key.
// Returns (nil, nil) if none exists.
func (r *EventRepository) LastByTraderKey(ctx context.Context, traderKey string) (*model.ArchivedEvent, error) {
	var evt model.ArchivedEvent

	err := r.db.WithContext(ctx).
		Where("trader_key = ?", traderKey).
		Order("id DESC").
		First(&evt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":       "EventRepository",
			"op":         "LastByTraderKey",
			"trader_key": traderKey,
		}).WithError(err).Error("Failed to fetch last archived event")

		return nil, err
	}
	return &evt, nil
}

// Archive satisfies the store's archiver hook: best-effort mirror of each
// appended event, called after the in-memory commit.
func (r *EventRepository) Archive(evt model.Event) error {
	return r.Create(context.Background(), model.NewArchivedEvent(evt))
}
